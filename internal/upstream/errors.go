package upstream

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Fallback messages when an error body yields no usable text.
const (
	msgDataError    = "Ma'lumotlarda xatolik aniqlandi"
	msgGenericError = "Xatolik yuz berdi"
)

// fieldNames maps backend field keys to the labels shown to users.
var fieldNames = map[string]string{
	"questions":      "Savollar:",
	"correct_answer": "Javob",
	"points":         "Ball",
	"title":          "Test nomi",
}

// APIError is a non-2xx upstream response reduced to a display message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.Status, e.Message)
}

// ExtractMessage reduces an arbitrary JSON error body to one display
// message. A top-level "detail" string wins outright; otherwise every
// leaf string is collected with its translated field prefix and the
// leaves are joined with " | ". Bodies that decode to nothing readable
// fall back to a generic message.
func ExtractMessage(body []byte) string {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		trimmed := strings.TrimSpace(string(body))
		if trimmed != "" && len(trimmed) < 200 && !strings.HasPrefix(trimmed, "<") {
			return trimmed
		}
		return msgGenericError
	}

	if m, ok := doc.(map[string]interface{}); ok {
		if detail, ok := m["detail"].(string); ok && strings.TrimSpace(detail) != "" {
			return detail
		}
	}

	var parts []string
	collect(doc, "", &parts)
	if len(parts) == 0 {
		return msgDataError
	}
	return strings.Join(parts, " | ")
}

func collect(node interface{}, prefix string, out *[]string) {
	switch v := node.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			*out = append(*out, prefix+s)
		}
	case []interface{}:
		for _, el := range v {
			collect(el, prefix, out)
		}
	case map[string]interface{}:
		for _, key := range sortedKeys(v) {
			p := prefix
			if label, ok := fieldLabel(key); ok {
				p += label + " "
			}
			collect(v[key], p, out)
		}
	case float64:
		*out = append(*out, prefix+strconv.FormatFloat(v, 'f', -1, 64))
	}
}

// fieldLabel translates a backend field key into a user-facing label.
// A numeric key indexes into the questions list and becomes a
// one-based question prefix.
func fieldLabel(key string) (string, bool) {
	if label, ok := fieldNames[key]; ok {
		return label, true
	}
	if n, err := strconv.Atoi(key); err == nil {
		return strconv.Itoa(n+1) + "-savol:", true
	}
	return "", false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Numeric keys sort by value so question errors come out in order.
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

func keyLess(a, b string) bool {
	na, ea := strconv.Atoi(a)
	nb, eb := strconv.Atoi(b)
	if ea == nil && eb == nil {
		return na < nb
	}
	return a < b
}
