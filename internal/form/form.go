// Package form связывает поля схемы с элементами управления: выбор виджета по типу,
// разбор введённого текста и нормализованный показ значений.
package form

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fungarium/internal/field"
	"fungarium/internal/schema"
)

// Mode - контекст формы: одна запись или массовое редактирование.
type Mode string

const (
	Single Mode = "single"
	Bulk   Mode = "bulk"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Single:
		return Single, nil
	case Bulk:
		return Bulk, nil
	}
	return "", fmt.Errorf("unknown form mode %q", s)
}

// Widget - вид элемента управления.
type Widget string

const (
	WidgetText     Widget = "text"
	WidgetNumber   Widget = "number"
	WidgetCheckbox Widget = "checkbox"
	WidgetTristate Widget = "tristate"
	WidgetSelect   Widget = "select"
	WidgetDate     Widget = "date"
)

// WidgetFor выбирает виджет только по типу поля.
func WidgetFor(d field.Definition, mode Mode) Widget {
	switch d.Type {
	case field.TypeNumber:
		return WidgetNumber
	case field.TypeBoolean:
		if mode == Bulk {
			return WidgetTristate
		}
		return WidgetCheckbox
	case field.TypeEnum:
		return WidgetSelect
	case field.TypeDate:
		return WidgetDate
	default:
		return WidgetText
	}
}

var (
	trueWords  = map[string]bool{"true": true, "on": true, "1": true, "sí": true, "si": true}
	falseWords = map[string]bool{"false": true, "off": true, "0": true, "no": true}
)

// Parse разбирает текст, пришедший из виджета поля d.
// nil означает «значения нет»: пустое число не превращается в ноль.
// Границы min/max здесь не проверяются, это делает field.Check.
func Parse(d field.Definition, raw string, mode Mode) (any, error) {
	trimmed := strings.TrimSpace(raw)
	switch WidgetFor(d, mode) {
	case WidgetText:
		return raw, nil
	case WidgetNumber:
		if trimmed == "" {
			return nil, nil
		}
		n, ok := field.ToNumber(trimmed)
		if !ok {
			return nil, invalid(d, trimmed)
		}
		return n, nil
	case WidgetCheckbox:
		if trimmed == "" {
			return false, nil
		}
		return parseBool(d, trimmed)
	case WidgetTristate:
		if trimmed == "" {
			return nil, nil
		}
		return parseBool(d, trimmed)
	case WidgetSelect:
		if trimmed == "" {
			return nil, nil
		}
		return trimmed, nil
	case WidgetDate:
		if trimmed == "" {
			return nil, nil
		}
		t, ok := field.ParseDate(trimmed)
		if !ok {
			return nil, invalid(d, trimmed)
		}
		return t, nil
	}
	return raw, nil
}

func parseBool(d field.Definition, s string) (any, error) {
	s = strings.ToLower(s)
	switch {
	case trueWords[s]:
		return true, nil
	case falseWords[s]:
		return false, nil
	}
	return nil, invalid(d, s)
}

// invalid - ошибка поля с тем же текстом, что даёт проверка значения.
func invalid(d field.Definition, v string) error {
	if e := field.Check(d, v); e != nil {
		return e
	}
	return fmt.Errorf("field %q: cannot parse %q", d.Key, v)
}

// ParseForm разбирает отправленные значения по полям схемы. Ключи, которых нет
// в схеме, отбрасываются. Ошибки разбора собираются по всем полям.
// Браузер не отправляет снятый флажок: в Single отсутствующий checkbox - false.
func ParseForm(s schema.Schema, mode Mode, raw map[string]string) (map[string]any, error) {
	out := map[string]any{}
	var errs field.Errors
	for _, d := range s.Fields() {
		text, ok := raw[d.Key]
		if !ok {
			if WidgetFor(d, mode) == WidgetCheckbox {
				out[d.Key] = false
			}
			continue
		}
		v, err := Parse(d, text, mode)
		if err != nil {
			var fe *field.Error
			if errors.As(err, &fe) {
				errs = append(errs, *fe)
				continue
			}
			return nil, err
		}
		out[d.Key] = v
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// Display - значение для показа: даты как 02/01/2006, булевы Sí/No, числа без лишних нулей.
func Display(d field.Definition, v any) string {
	if field.IsEmpty(v) {
		return ""
	}
	switch d.Type {
	case field.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			if fv, isVal := v.(field.Value); isVal {
				b, ok = fv.Bool()
			}
		}
		if !ok {
			return field.Text(v)
		}
		if b {
			return "Sí"
		}
		return "No"
	case field.TypeDate:
		if t, ok := asTime(v); ok {
			return t.Format(field.DisplayDateLayout)
		}
	case field.TypeNumber:
		if n, ok := field.ToNumber(v); ok {
			return field.Text(n)
		}
	}
	return field.Text(v)
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case field.Value:
		return t.Time()
	case string:
		return field.ParseDate(t)
	}
	return time.Time{}, false
}
