package reference

// EnumDirectory описывает один справочник значений для полей типа enum
type EnumDirectory struct {
	Name  string     `yaml:"name"`
	Items []EnumItem `yaml:"items"`
}

type EnumItem struct {
	Code  string `yaml:"code"`
	Name  string `yaml:"name"`
	Order int    `yaml:"order,omitempty"`
}

// FieldFile - один YAML-файл с набором стартовых динамических полей.
// category файла применяется к полям, у которых своя не указана.
type FieldFile struct {
	Category string      `yaml:"category"`
	Fields   []FieldSeed `yaml:"fields"`
}

type FieldSeed struct {
	Key         string   `yaml:"key"`
	Label       string   `yaml:"label"`
	Type        string   `yaml:"type"`
	Category    string   `yaml:"category,omitempty"`
	Required    bool     `yaml:"required,omitempty"`
	Options     []string `yaml:"options,omitempty"`
	Enum        string   `yaml:"enum,omitempty"` // имя справочника вместо options
	Min         *float64 `yaml:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty"`
	Hidden      bool     `yaml:"hidden,omitempty"`
	Placeholder string   `yaml:"placeholder,omitempty"`
	Description string   `yaml:"description,omitempty"`
}
