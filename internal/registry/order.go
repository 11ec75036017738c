package registry

import (
	"context"
	"fmt"

	"fungarium/internal/field"
)

type Direction int

const (
	Up Direction = iota
	Down
)

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Move меняет поле местами с соседом по отображению. На краю списка - ничего не делает.
func (r *Registry) Move(ctx context.Context, id string, dir Direction) error {
	defs, err := r.List(ctx)
	if err != nil {
		return err
	}
	pos := -1
	for i, d := range defs {
		if d.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return ErrNotFound
	}
	other := pos - 1
	if dir == Down {
		other = pos + 1
	}
	if other < 0 || other >= len(defs) {
		return nil
	}
	return r.swap(ctx, defs, pos, other)
}

// Swap меняет местами Order двух определений.
func (r *Registry) Swap(ctx context.Context, a, b string) error {
	defs, err := r.List(ctx)
	if err != nil {
		return err
	}
	ia, ib := -1, -1
	for i, d := range defs {
		switch d.ID {
		case a:
			ia = i
		case b:
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return ErrNotFound
	}
	if ia == ib {
		return nil
	}
	return r.swap(ctx, defs, ia, ib)
}

// swap пишет два определения двумя отдельными записями, без транзакции.
// Если вторая запись не удалась, первая остаётся: Order может оказаться
// повторяющимся, и List упорядочит такие поля по порядку хранилища.
func (r *Registry) swap(ctx context.Context, defs []field.Definition, i, j int) error {
	if i > j {
		i, j = j, i
	}
	first, second := defs[i], defs[j]
	if first.Order == second.Order {
		// после частичного сбоя: разводим явно
		first.Order, second.Order = second.Order+1, second.Order
	} else {
		first.Order, second.Order = second.Order, first.Order
	}
	now := r.now().UTC()
	first.UpdatedAt, second.UpdatedAt = now, now

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.put(ctx, "reorder", first); err != nil {
		return err
	}
	if err := r.put(ctx, "reorder", second); err != nil {
		return err
	}
	r.log.WithField("ids", []string{first.ID, second.ID}).Debug("fields reordered")
	return nil
}
