package docstore

import (
	"encoding/json"
	"fmt"
	"strings"

	"fungarium/internal/field"
)

// Match вычисляет op над значением поля документа и value.
// Числа сравниваются как числа, остальное - как текст. Отсутствующее поле
// совпадает только с != (и с == nil).
func Match(body map[string]any, key string, op Op, value any) bool {
	got, ok := body[key]
	if !ok || got == nil {
		switch op {
		case OpEq:
			return value == nil
		case OpNe:
			return value != nil
		}
		return false
	}
	if value == nil {
		return op == OpNe
	}

	c, ok := compare(got, value)
	if !ok {
		return op == OpNe
	}
	switch op {
	case OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	}
	return false
}

// compare: -1/0/1; ok=false если значения несравнимы (например, bool и число).
func compare(a, b any) (int, bool) {
	if ab, isBool := a.(bool); isBool {
		bb, ok := b.(bool)
		if !ok {
			if s, isStr := b.(string); isStr && (s == "true" || s == "false") {
				bb, ok = s == "true", true
			}
		}
		if !ok {
			return 0, false
		}
		switch {
		case ab == bb:
			return 0, true
		case !ab:
			return -1, true
		default:
			return 1, true
		}
	}
	if _, isBool := b.(bool); isBool {
		return 0, false
	}

	an, aNum := field.ToNumber(a)
	bn, bNum := field.ToNumber(b)
	if aNum && bNum {
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		}
		return 0, true
	}
	return strings.Compare(field.Text(a), field.Text(b)), true
}

// Normalize приводит тело к JSON-дереву: time.Time → строка, int → float64 и т.д.
// Так все реализации Store возвращают одинаковые типы.
func Normalize(body map[string]any) (map[string]any, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}
