package form

import (
	"fungarium/internal/field"
	"fungarium/internal/schema"
)

// Control - описание элемента формы для клиента.
type Control struct {
	Key           string     `json:"key"`
	Label         string     `json:"label"`
	Type          field.Type `json:"type"`
	Widget        Widget     `json:"widget"`
	Required      bool       `json:"required,omitempty"`
	Options       []string   `json:"options,omitempty"`
	Min           *float64   `json:"min,omitempty"`
	Max           *float64   `json:"max,omitempty"`
	Placeholder   string     `json:"placeholder,omitempty"`
	CheckboxLabel string     `json:"checkboxLabel,omitempty"`
	Value         any        `json:"value"`
	Display       string     `json:"display,omitempty"`
	Enabled       *bool      `json:"enabled,omitempty"` // только в массовом режиме
}

// Group - секция формы.
type Group struct {
	Name     string    `json:"name"`
	Fixed    bool      `json:"fixed"`
	Controls []Control `json:"controls"`
}

// Controls строит элементы формы по секциям схемы. values может быть nil (новая запись).
// В массовом режиме значения записи не подставляются: каждое поле начинается выключенным
// с начальным значением.
func Controls(s schema.Schema, mode Mode, values schema.Valuer) []Group {
	out := make([]Group, 0, len(s.Sections))
	for _, sec := range s.Sections {
		g := Group{Name: sec.Name, Fixed: sec.Fixed, Controls: make([]Control, 0, len(sec.Fields))}
		for _, d := range sec.Fields {
			g.Controls = append(g.Controls, control(d, mode, values))
		}
		out = append(out, g)
	}
	return out
}

func control(d field.Definition, mode Mode, values schema.Valuer) Control {
	c := Control{
		Key:         d.Key,
		Label:       d.Label,
		Type:        d.Type,
		Widget:      WidgetFor(d, mode),
		Required:    d.Required,
		Placeholder: d.Placeholder,
	}
	switch c.Widget {
	case WidgetSelect:
		c.Options = append([]string(nil), d.EnumOptions...)
	case WidgetNumber:
		c.Min, c.Max = d.Min, d.Max
	case WidgetCheckbox, WidgetTristate:
		c.CheckboxLabel = d.Description
		if c.CheckboxLabel == "" {
			c.CheckboxLabel = d.Label
		}
	}

	if mode == Bulk {
		off := false
		c.Enabled = &off
		if c.Widget != WidgetTristate {
			c.Value = ""
		}
		return c
	}

	c.Value = initial(c.Widget)
	if values != nil {
		if v, ok := values.Get(d.Key); ok && !field.IsEmpty(v) {
			c.Value = v
			c.Display = Display(d, v)
		}
	}
	return c
}

func initial(w Widget) any {
	switch w {
	case WidgetCheckbox:
		return false
	case WidgetText:
		return ""
	}
	return nil
}
