package bulk

import (
	"errors"

	"fungarium/internal/field"
)

// ErrEmptyPatch - ни одно поле не включено (или все включённые пусты). Это «нечего делать»,
// а не запись пустого объекта.
var ErrEmptyPatch = errors.New("nothing to update")

// Patch - плоский набор ключ → значение, одинаковый для всех записей выборки.
type Patch map[string]any

func (p Patch) Keys() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	return out
}

// PlanPatch берёт только включённые и непустые поля черновика. Значения динамических
// полей (dynamic) проверяются и приводятся к типу; фиксированные идут как есть.
func PlanPatch(dr *Draft, dynamic map[string]field.Definition) (Patch, error) {
	patch := Patch{}
	var errs field.Errors

	for _, key := range dr.order {
		e := dr.entries[key]
		if !e.Enabled || field.IsEmpty(e.Value) {
			continue
		}
		d, isDynamic := dynamic[key]
		if !isDynamic {
			patch[key] = e.Value
			continue
		}
		if fe := field.Check(d, e.Value); fe != nil {
			errs = append(errs, *fe)
			continue
		}
		v, err := field.Convert(d, e.Value)
		if err != nil {
			var fe *field.Error
			if errors.As(err, &fe) {
				errs = append(errs, *fe)
				continue
			}
			return nil, err
		}
		patch[key] = v
	}

	if len(errs) > 0 {
		return nil, errs
	}
	if len(patch) == 0 {
		return patch, ErrEmptyPatch
	}
	return patch, nil
}
