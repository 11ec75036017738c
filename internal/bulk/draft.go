// Package bulk - массовое редактирование: черновик с явным включением полей,
// построение одного патча и его применение к набору записей.
package bulk

import (
	"errors"
	"fmt"

	"fungarium/internal/field"
)

var (
	ErrUnknownKey = errors.New("key is not part of the draft")
	ErrDisabled   = errors.New("entry is disabled")
)

type Entry struct {
	Value   any  `json:"value"`
	Enabled bool `json:"enabled"`
}

// Draft - состояние формы массового редактирования. Живёт только в пределах сессии.
//
//	Disabled(значение по умолчанию) --Enable--> Enabled --Disable--> Disabled
type Draft struct {
	defs    map[string]field.Definition
	order   []string
	entries map[string]*Entry
}

// initial - значение выключенного поля: «не задано» для булевых (три состояния), "" для остальных.
func initial(d field.Definition) any {
	if d.Type == field.TypeBoolean {
		return nil
	}
	return ""
}

// NewDraft - черновик со всеми полями выключенными.
func NewDraft(defs []field.Definition) *Draft {
	dr := &Draft{
		defs:    make(map[string]field.Definition, len(defs)),
		entries: make(map[string]*Entry, len(defs)),
	}
	for _, d := range defs {
		if _, dup := dr.entries[d.Key]; dup {
			continue
		}
		dr.defs[d.Key] = d
		dr.order = append(dr.order, d.Key)
		dr.entries[d.Key] = &Entry{Value: initial(d)}
	}
	return dr
}

// FromEntries собирает черновик из присланного состояния. Ключи вне defs - ошибка.
func FromEntries(defs []field.Definition, in map[string]Entry) (*Draft, error) {
	dr := NewDraft(defs)
	for key, e := range in {
		if _, ok := dr.entries[key]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
		if !e.Enabled {
			continue
		}
		if err := dr.Enable(key); err != nil {
			return nil, err
		}
		if err := dr.Set(key, e.Value); err != nil {
			return nil, err
		}
	}
	return dr, nil
}

func (dr *Draft) Enable(key string) error {
	e, ok := dr.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	e.Enabled = true
	return nil
}

// Disable выключает поле и возвращает его значение к исходному.
func (dr *Draft) Disable(key string) error {
	e, ok := dr.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	e.Enabled = false
	e.Value = initial(dr.defs[key])
	return nil
}

func (dr *Draft) Set(key string, v any) error {
	e, ok := dr.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if !e.Enabled {
		return fmt.Errorf("%w: %q", ErrDisabled, key)
	}
	e.Value = v
	return nil
}

func (dr *Draft) Entry(key string) (Entry, bool) {
	e, ok := dr.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Keys - ключи в порядке определений.
func (dr *Draft) Keys() []string {
	return append([]string(nil), dr.order...)
}
