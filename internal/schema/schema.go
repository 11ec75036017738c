// Package schema собирает действующую схему записи: фиксированные секции плюс видимые
// динамические поля, сгруппированные по категориям. Схема вычисляется на каждый
// вызов из переданного списка определений и нигде не сохраняется.
package schema

import (
	"fungarium/internal/field"
	"fungarium/internal/specimen"
)

type Section struct {
	Name     string             `json:"name"`
	Category field.Category     `json:"category,omitempty"` // только у динамических секций
	Fixed    bool               `json:"fixed"`
	Fields   []field.Definition `json:"fields"`
}

type Schema struct {
	Sections []Section `json:"sections"`
}

// Valuer - запись, из которой читаются значения для детального просмотра.
type Valuer interface {
	Get(key string) (any, bool)
}

// Merge: сначала жёстко заданные секции, затем видимые динамические поля, чей ключ
// не занят атрибутом, по категориям в порядке field.Categories. Внутри категории
// порядок defs сохраняется. Повторный ключ пропускается.
func Merge(defs []field.Definition) Schema {
	var out Schema
	for _, s := range specimen.Sections() {
		out.Sections = append(out.Sections, Section{Name: s.Name, Fixed: true, Fields: s.Fields})
	}

	groups := map[field.Category][]field.Definition{}
	var extraCats []field.Category
	seen := map[string]bool{}
	for _, d := range defs {
		if !d.Visible || d.Key == "" || specimen.IsFixed(d.Key) || seen[d.Key] {
			continue
		}
		seen[d.Key] = true
		if _, ok := groups[d.Category]; !ok && !d.Category.Valid() {
			extraCats = append(extraCats, d.Category)
		}
		groups[d.Category] = append(groups[d.Category], d)
	}

	cats := append(append([]field.Category(nil), field.Categories...), extraCats...)
	for _, c := range cats {
		fs := groups[c]
		if len(fs) == 0 {
			continue
		}
		out.Sections = append(out.Sections, Section{Name: c.Label(), Category: c, Fields: fs})
	}
	return out
}

// Detail - Merge, ограниченная полями, для которых у записи есть непустое значение.
// Пустые секции не попадают в результат.
func Detail(rec Valuer, defs []field.Definition) Schema {
	merged := Merge(defs)
	var out Schema
	for _, s := range merged.Sections {
		var fs []field.Definition
		for _, d := range s.Fields {
			if v, ok := rec.Get(d.Key); ok && !field.IsEmpty(v) {
				fs = append(fs, d)
			}
		}
		if len(fs) == 0 {
			continue
		}
		s.Fields = fs
		out.Sections = append(out.Sections, s)
	}
	return out
}

// Fields - все поля схемы подряд.
func (s Schema) Fields() []field.Definition {
	var out []field.Definition
	for _, sec := range s.Sections {
		out = append(out, sec.Fields...)
	}
	return out
}

// Dynamic - динамические поля схемы по ключу.
func (s Schema) Dynamic() map[string]field.Definition {
	out := map[string]field.Definition{}
	for _, sec := range s.Sections {
		if sec.Fixed {
			continue
		}
		for _, d := range sec.Fields {
			out[d.Key] = d
		}
	}
	return out
}
