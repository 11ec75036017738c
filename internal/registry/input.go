package registry

import (
	"errors"
	"reflect"
	"strings"

	"fungarium/internal/field"

	"github.com/go-playground/validator/v10"
)

// Input - частичное определение для Save. nil в Order/Visible означает «не задано».
type Input struct {
	ID          string         `json:"id"`
	Key         string         `json:"key"`
	Label       string         `json:"label" validate:"required_without=Key,max=120"`
	Type        field.Type     `json:"type" validate:"required,oneof=string number boolean enum date"`
	Category    field.Category `json:"category" validate:"required,oneof=identification sample ecology morphology measurements location spores molecular other"`
	Required    bool           `json:"required"`
	EnumOptions []string       `json:"enumOptions" validate:"omitempty,unique,dive,required"`
	Min         *float64       `json:"min"`
	Max         *float64       `json:"max"`
	Order       *int           `json:"order" validate:"omitempty,gte=0"`
	Visible     *bool          `json:"visible"`
	Placeholder string         `json:"placeholder"`
	Description string         `json:"description"`
}

// FromDefinition - Input, который сохранит d как есть.
func FromDefinition(d field.Definition) Input {
	in := Input{
		ID:          d.ID,
		Key:         d.Key,
		Label:       d.Label,
		Type:        d.Type,
		Category:    d.Category,
		Required:    d.Required,
		EnumOptions: d.EnumOptions,
		Min:         d.Min,
		Max:         d.Max,
		Placeholder: d.Placeholder,
		Description: d.Description,
	}
	order, visible := d.Order, d.Visible
	in.Order, in.Visible = &order, &visible
	return in
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check переводит ошибки validator в field.Errors, чтобы HTTP-слой отвечал одинаково.
func (r *Registry) check(in Input) error {
	err := r.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(field.Errors, 0, len(verrs))
	for _, fe := range verrs {
		code := field.CodeTypeMismatch
		switch fe.Tag() {
		case "required", "required_without":
			code = field.CodeRequired
		case "oneof":
			code = field.CodeEnumInvalid
		case "gte", "max":
			code = field.CodeOutOfRange
		}
		out = append(out, field.Error{
			Code:    code,
			Field:   fe.Field(),
			Message: "Field '" + fe.Field() + "' failed rule " + fe.Tag(),
		})
	}
	return out
}
