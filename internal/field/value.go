package field

import (
	"encoding/json"
	"time"
)

// Value - значение динамического поля записи, помеченное типом определения-владельца.
// Type пустой, если определения нет (скрыто или удалено): данные хранятся, но не показываются.
type Value struct {
	Type Type
	Data any
}

// Untyped оборачивает сырое значение из хранилища.
func Untyped(data any) Value {
	return Value{Data: data}
}

// Bind приводит сырое значение к типу d. Если привести нельзя, значение остаётся
// нетипизированным - старые данные никогда не теряются.
func Bind(d Definition, raw any) Value {
	raw = unwrap(raw)
	conv, err := Convert(d, raw)
	if err != nil {
		return Untyped(raw)
	}
	return Value{Type: d.Type, Data: conv}
}

func (v Value) Typed() bool  { return v.Type != "" }
func (v Value) IsNull() bool { return IsEmpty(v.Data) }

func (v Value) String() string { return Text(v.Data) }

func (v Value) Number() (float64, bool) { return ToNumber(v.Data) }

func (v Value) Bool() (bool, bool) {
	b, ok := v.Data.(bool)
	return b, ok
}

func (v Value) Time() (time.Time, bool) {
	switch t := v.Data.(type) {
	case time.Time:
		return t, true
	case string:
		return ParseDate(t)
	}
	return time.Time{}, false
}

// Stored - представление для документа: даты хранятся строкой YYYY-MM-DD.
func (v Value) Stored() any {
	if t, ok := v.Data.(time.Time); ok && v.Type == TypeDate {
		return t.Format(DateLayout)
	}
	return v.Data
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Stored())
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*v = Untyped(raw)
	return nil
}
