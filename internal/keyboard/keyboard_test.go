package keyboard

import "testing"

// mapFields resolves coordinates against a fixed map, standing in for a
// live draft or answer sheet.
type mapFields map[Coordinate]string

func (m mapFields) FieldText(c Coordinate) (string, bool) {
	v, ok := m[c]
	return v, ok
}

func coord(id string) Coordinate { return Coordinate{QuestionID: id} }

func TestInsertAtCaret(t *testing.T) {
	fields := mapFields{coord("q1"): "ab"}
	r := NewRouter()
	r.Focus(coord("q1"), Selection{Start: 2, End: 2})

	edit, err := r.Insert(fields, "x")
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "abx" || edit.Caret != 3 {
		t.Errorf("edit = %+v", edit)
	}
}

func TestInsertMidfieldAndOverSelection(t *testing.T) {
	fields := mapFields{coord("q1"): "abcd"}
	r := NewRouter()

	r.Focus(coord("q1"), Selection{Start: 1, End: 1})
	edit, err := r.Insert(fields, "XY")
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "aXYbcd" || edit.Caret != 3 {
		t.Errorf("caret insert = %+v", edit)
	}

	r.Focus(coord("q1"), Selection{Start: 1, End: 3})
	edit, err = r.Insert(fields, "Z")
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "aZd" || edit.Caret != 2 {
		t.Errorf("range insert = %+v", edit)
	}
}

func TestInsertRuneSafe(t *testing.T) {
	fields := mapFields{coord("q1"): "oʻzbek"}
	r := NewRouter()
	r.Focus(coord("q1"), Selection{Start: 2, End: 2})

	edit, err := r.Insert(fields, "g")
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "oʻgzbek" || edit.Caret != 3 {
		t.Errorf("edit = %+v", edit)
	}
}

func TestBackspace(t *testing.T) {
	fields := mapFields{coord("q1"): "abcd"}
	r := NewRouter()

	// Collapsed caret removes one rune before it.
	r.Focus(coord("q1"), Selection{Start: 3, End: 3})
	edit, err := r.Backspace(fields)
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "abd" || edit.Caret != 2 {
		t.Errorf("collapsed backspace = %+v", edit)
	}

	// Caret at the start changes nothing.
	r.Focus(coord("q1"), Selection{Start: 0, End: 0})
	edit, err = r.Backspace(fields)
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "abcd" || edit.Caret != 0 {
		t.Errorf("start-of-field backspace = %+v", edit)
	}

	// A range is removed whole, caret at range start.
	r.Focus(coord("q1"), Selection{Start: 1, End: 3})
	edit, err = r.Backspace(fields)
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "ad" || edit.Caret != 1 {
		t.Errorf("range backspace = %+v", edit)
	}
}

func TestClear(t *testing.T) {
	fields := mapFields{coord("q1"): "nimadir"}
	r := NewRouter()
	r.Focus(coord("q1"), Selection{Start: 4, End: 4})

	edit, err := r.Clear(fields)
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "" || edit.Caret != 0 {
		t.Errorf("clear = %+v", edit)
	}
}

func TestNoFocusIsNoOp(t *testing.T) {
	fields := mapFields{coord("q1"): "ab"}
	r := NewRouter()

	if _, err := r.Insert(fields, "x"); err != ErrNoFocus {
		t.Errorf("unfocused insert err = %v", err)
	}
	if _, err := r.Backspace(fields); err != ErrNoFocus {
		t.Errorf("unfocused backspace err = %v", err)
	}
}

func TestStaleCoordinateIsNoOp(t *testing.T) {
	fields := mapFields{coord("q1"): "ab"}
	r := NewRouter()
	r.Focus(coord("q-removed"), Selection{})

	if _, err := r.Insert(fields, "x"); err != ErrNoFocus {
		t.Errorf("stale insert err = %v", err)
	}
}

func TestBlurDropsFocus(t *testing.T) {
	fields := mapFields{coord("q1"): "ab"}
	r := NewRouter()
	r.Focus(coord("q1"), Selection{})
	r.Blur()

	if _, ok := r.Focused(); ok {
		t.Error("still focused after Blur")
	}
	if _, err := r.Insert(fields, "x"); err != ErrNoFocus {
		t.Errorf("post-blur insert err = %v", err)
	}
}

func TestSelectionBoundedToField(t *testing.T) {
	// The field shrank after focus was taken; the stale selection is
	// pinned to the current length instead of failing.
	fields := mapFields{coord("q1"): "ab"}
	r := NewRouter()
	r.Focus(coord("q1"), Selection{Start: 10, End: 12})

	edit, err := r.Insert(fields, "x")
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "abx" || edit.Caret != 3 {
		t.Errorf("edit = %+v", edit)
	}
}

func TestConsecutiveEditsTrackCaret(t *testing.T) {
	text := ""
	fields := mapFields{}
	r := NewRouter()
	r.Focus(coord("q1"), Selection{})

	type step struct {
		key  string
		want string
	}
	steps := []step{
		{"s", "s"},
		{"a", "sa"},
		{"l", "sal"},
		{"o", "salo"},
		{"m", "salom"},
	}
	for _, st := range steps {
		fields[coord("q1")] = text
		edit, err := r.Insert(fields, st.key)
		if err != nil {
			t.Fatal(err)
		}
		if edit.Text != st.want {
			t.Fatalf("after %q: text = %q, want %q", st.key, edit.Text, st.want)
		}
		text = edit.Text
	}

	fields[coord("q1")] = text
	edit, err := r.Backspace(fields)
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "salo" || edit.Caret != 4 {
		t.Errorf("backspace after typing = %+v", edit)
	}
}
