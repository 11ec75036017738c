package field

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Convert приводит значение к типу поля. Пустое значение всегда даёт nil -
// так кодируется очистка поля.
func Convert(d Definition, v any) (any, error) {
	v = unwrap(v)
	if IsEmpty(v) {
		return nil, nil
	}

	switch d.Type {
	case TypeString, TypeEnum:
		return Text(v), nil
	case TypeNumber:
		n, ok := ToNumber(v)
		if !ok {
			return nil, newError(CodeTypeMismatch, d, "must be a number")
		}
		return n, nil
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return Text(v) == "true", nil
	case TypeDate:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
		t, ok := ParseDate(Text(v))
		if !ok {
			return nil, newError(CodeTypeMismatch, d, "must be a valid date")
		}
		return t, nil
	default:
		// неизвестный тип - оставим как есть
		return v, nil
	}
}

// Text - текстовое представление значения, как его видит строковое поле.
func Text(v any) string {
	switch t := unwrap(v).(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatFloat(t)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case time.Time:
		return t.Format(DateLayout)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
