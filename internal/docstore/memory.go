package docstore

import (
	"context"
	"sync"
)

type collection struct {
	order []string
	docs  map[string]map[string]any
}

// Memory - хранилище в памяти процесса. Документы копируются на входе и выходе,
// так что вызывающий не может изменить сохранённое состояние.
type Memory struct {
	mu   sync.RWMutex
	data map[string]*collection
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]*collection)}
}

func (m *Memory) coll(name string) *collection {
	c := m.data[name]
	if c == nil {
		c = &collection{docs: make(map[string]map[string]any)}
		m.data[name] = c
	}
	return c
}

func (m *Memory) GetAll(ctx context.Context, name string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := m.data[name]
	if c == nil {
		return []Document{}, nil
	}
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		body, err := Normalize(c.docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, Document{ID: id, Body: body})
	}
	return out, nil
}

func (m *Memory) GetOne(ctx context.Context, name, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := m.data[name]
	if c == nil {
		return Document{}, ErrNotFound
	}
	stored, ok := c.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	body, err := Normalize(stored)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Body: body}, nil
}

func (m *Memory) Upsert(ctx context.Context, name, id string, body map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied, err := Normalize(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(name)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = copied
	return nil
}

// Delete не считает отсутствие документа ошибкой.
func (m *Memory) Delete(ctx context.Context, name, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.data[name]
	if c == nil {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) QueryWhere(ctx context.Context, name, key string, op Op, value any) ([]Document, error) {
	all, err := m.GetAll(ctx, name)
	if err != nil {
		return nil, err
	}
	return Filter(all, key, op, value), nil
}

func (m *Memory) Close() error { return nil }

// Filter - общий для реализаций фильтр по Match, сохраняющий порядок.
func Filter(docs []Document, key string, op Op, value any) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if Match(d.Body, key, op, value) {
			out = append(out, d)
		}
	}
	return out
}
