package specimen

import (
	"reflect"
	"sort"

	"fungarium/internal/docstore"
	"fungarium/internal/field"
)

// ToDocument - тело документа для хранилища (без id: он ключ документа).
func ToDocument(r Record) map[string]any {
	body := r.Flat()
	delete(body, "id")
	return body
}

// FromDocument разбирает документ без отказов: значение, которое не ложится в
// фиксированный атрибут, и ключи без атрибута попадают в Extra как есть.
// drift - ключи, сохранённые таким образом для атрибутов.
func FromDocument(doc docstore.Document) (rec Record, drift []string) {
	rec.ID = doc.ID
	rec.Extra = map[string]field.Value{}
	rv := reflect.ValueOf(&rec).Elem()

	for key, raw := range doc.Body {
		if key == "id" {
			continue
		}
		if i, ok := attrIndex[key]; ok {
			if !setAttr(rv.Field(i), raw) {
				rec.Extra[key] = field.Untyped(raw)
				drift = append(drift, key)
			}
			continue
		}
		if field.IsEmpty(raw) {
			continue
		}
		rec.Extra[key] = field.Untyped(raw)
	}
	sort.Strings(drift)
	return rec, drift
}

// Tag связывает динамические значения с их определениями: значение приводится
// к типу поля, а если это невозможно или определения нет - остаётся нетипизированным.
// Возвращает ключи без определения.
func (r *Record) Tag(defs map[string]field.Definition) (orphans []string) {
	for key, v := range r.Extra {
		if IsFixed(key) {
			continue
		}
		d, ok := defs[key]
		if !ok {
			r.Extra[key] = field.Untyped(v.Data)
			orphans = append(orphans, key)
			continue
		}
		r.Extra[key] = field.Bind(d, v.Data)
	}
	sort.Strings(orphans)
	return orphans
}
