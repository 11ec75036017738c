package field

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout - формат хранения дат.
	DateLayout = "2006-01-02"
	// DisplayDateLayout - формат показа дат (es-MX).
	DisplayDateLayout = "02/01/2006"
)

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DisplayDateLayout,
}

// IsEmpty - nil, пустая строка или nil-указатель. Так представляется «поле очищено».
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case Value:
		return IsEmpty(t.Data)
	case *Value:
		return t == nil || IsEmpty(t.Data)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// Validate сообщает, допустимо ли значение v для поля d.
func Validate(d Definition, v any) bool {
	return Check(d, v) == nil
}

// Check - то же, что Validate, но с причиной отказа.
func Check(d Definition, v any) *Error {
	v = unwrap(v)
	if IsEmpty(v) {
		if d.Required {
			return newError(CodeRequired, d, "is required")
		}
		return nil
	}

	switch d.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return newError(CodeTypeMismatch, d, "expected text")
		}
	case TypeNumber:
		n, ok := ToNumber(v)
		if !ok {
			return newError(CodeTypeMismatch, d, "must be a number")
		}
		if d.Min != nil && n < *d.Min {
			return newError(CodeOutOfRange, d, "must be at least %s", formatFloat(*d.Min))
		}
		if d.Max != nil && n > *d.Max {
			return newError(CodeOutOfRange, d, "must be at most %s", formatFloat(*d.Max))
		}
	case TypeBoolean:
		switch t := v.(type) {
		case bool:
		case string:
			if t != "true" && t != "false" {
				return newError(CodeTypeMismatch, d, "expected true or false")
			}
		default:
			return newError(CodeTypeMismatch, d, "expected true or false")
		}
	case TypeEnum:
		if len(d.EnumOptions) == 0 {
			return newError(CodeEnumInvalid, d, "has no allowed values")
		}
		s, ok := v.(string)
		if !ok || !d.HasOption(s) {
			return newError(CodeEnumInvalid, d, "has invalid value")
		}
	case TypeDate:
		switch t := v.(type) {
		case time.Time:
			if t.IsZero() {
				return newError(CodeTypeMismatch, d, "must be a valid date")
			}
		case string:
			if _, ok := ParseDate(t); !ok {
				return newError(CodeTypeMismatch, d, "must be a valid date")
			}
		default:
			return newError(CodeTypeMismatch, d, "must be a valid date")
		}
	default:
		return newError(CodeTypeMismatch, d, "has unknown type %q", string(d.Type))
	}
	return nil
}

// CheckValues проверяет значения values по каждому определению из defs.
// Ключи values без определения не проверяются.
func CheckValues(defs []Definition, values map[string]any) Errors {
	var errs Errors
	for _, d := range defs {
		if e := Check(d, values[d.Key]); e != nil {
			errs = append(errs, *e)
		}
	}
	return errs
}

// ToNumber разбирает число из любого числового типа или строки. Только конечные значения.
func ToNumber(v any) (float64, bool) {
	var f float64
	switch t := unwrap(v).(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		n, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseDate разбирает календарную дату в одном из поддерживаемых форматов.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func unwrap(v any) any {
	switch t := v.(type) {
	case Value:
		return t.Data
	case *Value:
		if t == nil {
			return nil
		}
		return t.Data
	}
	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
