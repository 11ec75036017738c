package field

import (
	"fmt"
	"strings"
)

// Коды ошибок валидации
const (
	CodeRequired     = "required"
	CodeTypeMismatch = "type_mismatch"
	CodeOutOfRange   = "out_of_range"
	CodeEnumInvalid  = "enum_invalid"
	CodeUnknownField = "unknown_field"
)

// Error - ошибка значения конкретного поля.
type Error struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Errors - набор ошибок одной записи. Сообщение называет первое проблемное поле.
type Errors []Error

func (es Errors) Error() string {
	switch len(es) {
	case 0:
		return "validation failed"
	case 1:
		return es[0].Message
	default:
		return fmt.Sprintf("%s (and %d more)", es[0].Message, len(es)-1)
	}
}

// Fields - ключи проблемных полей, в порядке обнаружения.
func (es Errors) Fields() []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Field)
	}
	return out
}

func newError(code string, d Definition, format string, args ...any) *Error {
	name := d.Label
	if strings.TrimSpace(name) == "" {
		name = d.Key
	}
	return &Error{
		Code:    code,
		Field:   d.Key,
		Message: fmt.Sprintf("Field '%s' ", name) + fmt.Sprintf(format, args...),
	}
}
