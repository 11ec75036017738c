// Package field описывает динамические поля: определение, нормализацию ключа,
// валидацию и приведение значений к типу поля.
package field

import "time"

// Type - тип значения динамического поля.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeEnum    Type = "enum"
	TypeDate    Type = "date"
)

// Types - закрытый список типов в порядке показа в админке.
var Types = []Type{TypeString, TypeNumber, TypeBoolean, TypeEnum, TypeDate}

func (t Type) Valid() bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Category группирует динамические поля при отображении. Только для показа.
type Category string

const (
	CategoryIdentification Category = "identification"
	CategorySample         Category = "sample"
	CategoryEcology        Category = "ecology"
	CategoryMorphology     Category = "morphology"
	CategoryMeasurements   Category = "measurements"
	CategoryLocation       Category = "location"
	CategorySpores         Category = "spores"
	CategoryMolecular      Category = "molecular"
	CategoryOther          Category = "other"
)

// Categories - порядок групп на экране.
var Categories = []Category{
	CategoryIdentification,
	CategorySample,
	CategoryEcology,
	CategoryMorphology,
	CategoryMeasurements,
	CategoryLocation,
	CategorySpores,
	CategoryMolecular,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryIdentification: "Identificación",
	CategorySample:         "Estado de la muestra",
	CategoryEcology:        "Ecología",
	CategoryMorphology:     "Morfología",
	CategoryMeasurements:   "Medidas",
	CategoryLocation:       "Ubicación",
	CategorySpores:         "Esporas",
	CategoryMolecular:      "Datos moleculares",
	CategoryOther:          "Otros",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label возвращает подпись группы; для неизвестной категории - её код.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Rank - позиция категории в Categories, неизвестные в конце.
func (c Category) Rank() int {
	for i, k := range Categories {
		if k == c {
			return i
		}
	}
	return len(Categories)
}

// Definition - метаданные динамического поля.
type Definition struct {
	ID          string    `json:"id" bson:"id"`
	Key         string    `json:"key" bson:"key"`
	Label       string    `json:"label" bson:"label"`
	Type        Type      `json:"type" bson:"type"`
	Category    Category  `json:"category" bson:"category"`
	Required    bool      `json:"required" bson:"required"`
	EnumOptions []string  `json:"enumOptions,omitempty" bson:"enumOptions,omitempty"`
	Min         *float64  `json:"min,omitempty" bson:"min,omitempty"`
	Max         *float64  `json:"max,omitempty" bson:"max,omitempty"`
	Order       int       `json:"order" bson:"order"`
	Visible     bool      `json:"visible" bson:"visible"`
	Placeholder string    `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasOption проверяет вхождение s в EnumOptions.
func (d Definition) HasOption(s string) bool {
	for _, o := range d.EnumOptions {
		if o == s {
			return true
		}
	}
	return false
}
