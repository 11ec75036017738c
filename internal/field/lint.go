package field

import "fmt"

// Issue - противоречие в наборе определений.
type Issue struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Lint проверяет базовые противоречия в определениях полей.
// fixed сообщает, занят ли ключ фиксированным атрибутом записи (может быть nil).
func Lint(defs []Definition, fixed func(key string) bool) []Issue {
	var issues []Issue
	seen := make(map[string]string, len(defs))

	for _, d := range defs {
		if d.Key == "" {
			issues = append(issues, Issue{ID: d.ID, Code: "key_empty", Message: "field has an empty key"})
			continue
		}
		if other, dup := seen[d.Key]; dup {
			issues = append(issues, Issue{
				ID:      d.ID,
				Key:     d.Key,
				Code:    "key_duplicate",
				Message: fmt.Sprintf("key %q is also used by field %s", d.Key, other),
			})
		} else {
			seen[d.Key] = d.ID
		}
		if fixed != nil && fixed(d.Key) {
			issues = append(issues, Issue{
				ID:      d.ID,
				Key:     d.Key,
				Code:    "key_shadowed",
				Message: fmt.Sprintf("key %q is a fixed attribute; the dynamic field is never rendered", d.Key),
			})
		}
		if !d.Type.Valid() {
			issues = append(issues, Issue{ID: d.ID, Key: d.Key, Code: "type_unknown",
				Message: fmt.Sprintf("unknown type %q", d.Type)})
		}
		if d.Type == TypeEnum && len(d.EnumOptions) == 0 {
			issues = append(issues, Issue{ID: d.ID, Key: d.Key, Code: "enum_without_options",
				Message: "enum field has no options; every value will be rejected"})
		}
		if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
			issues = append(issues, Issue{ID: d.ID, Key: d.Key, Code: "bounds_inverted",
				Message: fmt.Sprintf("min %s is greater than max %s", formatFloat(*d.Min), formatFloat(*d.Max))})
		}
	}
	return issues
}
