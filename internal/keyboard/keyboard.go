// Package keyboard implements the virtual keyboard's focus routing and
// text splicing. A single router per editing session tracks which field
// owns the focus; key presses resolve against the current field text
// and produce an edit describing the new text and caret position.
package keyboard

import "errors"

// ErrNoFocus means a key press arrived with no focused field, or the
// focused coordinate no longer resolves to a field. Callers treat it as
// a silent no-op.
var ErrNoFocus = errors.New("no focused field")

// Coordinate addresses one editable field. QuestionID is the stable
// question ID; Part and Alt address a writing alternative (or an answer
// slot, with Alt unused); Points marks the point-value field instead.
type Coordinate struct {
	QuestionID string `json:"question_id"`
	Part       int    `json:"part"`
	Alt        int    `json:"alt"`
	Points     bool   `json:"points,omitempty"`
}

// Selection is a half-open rune range [Start, End) inside the focused
// field. A collapsed selection (Start == End) is a bare caret.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Edit is the outcome of a key press: the field to update, its new
// text, and where the caret lands. The caller commits the text first
// and restores the caret afterwards.
type Edit struct {
	Coord Coordinate `json:"coord"`
	Text  string     `json:"text"`
	Caret int        `json:"caret"`
}

// FieldResolver looks up the current text of a field. A false return
// means the coordinate is stale (the field was removed since focus was
// set).
type FieldResolver interface {
	FieldText(c Coordinate) (string, bool)
}

// Router owns the focus state for one editing session.
type Router struct {
	focused   bool
	coord     Coordinate
	selection Selection
}

// NewRouter returns a router with no focused field.
func NewRouter() *Router {
	return &Router{}
}

// State is the router's serializable snapshot, stored alongside the
// session it belongs to.
type State struct {
	Focused   bool       `json:"focused"`
	Coord     Coordinate `json:"coord"`
	Selection Selection  `json:"selection"`
}

// RouterFromState rebuilds a router from a stored snapshot.
func RouterFromState(st State) *Router {
	return &Router{focused: st.Focused, coord: st.Coord, selection: clamp(st.Selection)}
}

// State snapshots the router for storage.
func (r *Router) State() State {
	return State{Focused: r.focused, Coord: r.coord, Selection: r.selection}
}

// Focus directs subsequent key presses at the given field.
func (r *Router) Focus(c Coordinate, sel Selection) {
	r.focused = true
	r.coord = c
	r.selection = clamp(sel)
}

// Blur clears the focus. Key presses become no-ops until the next Focus.
func (r *Router) Blur() {
	r.focused = false
}

// Focused returns the current focus coordinate, if any.
func (r *Router) Focused() (Coordinate, bool) {
	return r.coord, r.focused
}

// SetSelection moves the caret or selection inside the focused field.
func (r *Router) SetSelection(sel Selection) {
	if r.focused {
		r.selection = clamp(sel)
	}
}

// Insert types a string at the current selection: the selected range is
// replaced and the caret lands after the inserted text.
func (r *Router) Insert(fields FieldResolver, s string) (Edit, error) {
	text, sel, err := r.resolve(fields)
	if err != nil {
		return Edit{}, err
	}

	runes := []rune(text)
	start, end := boundSelection(sel, len(runes))
	ins := []rune(s)

	out := make([]rune, 0, len(runes)-(end-start)+len(ins))
	out = append(out, runes[:start]...)
	out = append(out, ins...)
	out = append(out, runes[end:]...)

	caret := start + len(ins)
	r.selection = Selection{Start: caret, End: caret}
	return Edit{Coord: r.coord, Text: string(out), Caret: caret}, nil
}

// Backspace deletes backwards: a selected range is removed whole, a
// bare caret removes the single rune before it, and a caret at the
// start of the field changes nothing.
func (r *Router) Backspace(fields FieldResolver) (Edit, error) {
	text, sel, err := r.resolve(fields)
	if err != nil {
		return Edit{}, err
	}

	runes := []rune(text)
	start, end := boundSelection(sel, len(runes))

	if start == end {
		if start == 0 {
			r.selection = Selection{}
			return Edit{Coord: r.coord, Text: text, Caret: 0}, nil
		}
		start--
	}

	out := make([]rune, 0, len(runes)-(end-start))
	out = append(out, runes[:start]...)
	out = append(out, runes[end:]...)

	r.selection = Selection{Start: start, End: start}
	return Edit{Coord: r.coord, Text: string(out), Caret: start}, nil
}

// Clear empties the focused field.
func (r *Router) Clear(fields FieldResolver) (Edit, error) {
	if _, _, err := r.resolve(fields); err != nil {
		return Edit{}, err
	}
	r.selection = Selection{}
	return Edit{Coord: r.coord, Text: "", Caret: 0}, nil
}

func (r *Router) resolve(fields FieldResolver) (string, Selection, error) {
	if !r.focused {
		return "", Selection{}, ErrNoFocus
	}
	text, ok := fields.FieldText(r.coord)
	if !ok {
		return "", Selection{}, ErrNoFocus
	}
	return text, r.selection, nil
}

func clamp(sel Selection) Selection {
	if sel.Start < 0 {
		sel.Start = 0
	}
	if sel.End < sel.Start {
		sel.End = sel.Start
	}
	return sel
}

// boundSelection pins a selection inside the field's current length.
// The field may have changed underneath a stale selection.
func boundSelection(sel Selection, n int) (int, int) {
	start, end := sel.Start, sel.End
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return start, end
}
