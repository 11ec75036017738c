// Package docstore - контракт документного хранилища, которым пользуются реестр полей
// и записи коллекции: коллекции независимых JSON-документов без внешних ключей.
package docstore

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("document not found")

// Document - сохранённый документ. Body - JSON-совместимое дерево
// (map[string]any, []any, string, float64, bool, nil).
type Document struct {
	ID   string         `json:"id"`
	Body map[string]any `json:"body"`
}

// Op - оператор сравнения для QueryWhere.
type Op string

const (
	OpEq  Op = "=="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

// ParseOp принимает как символьную запись, так и суффиксы фильтров (eq, gte, ...).
func ParseOp(s string) (Op, error) {
	switch s {
	case "==", "=", "eq":
		return OpEq, nil
	case "!=", "ne":
		return OpNe, nil
	case "<", "lt":
		return OpLt, nil
	case "<=", "lte":
		return OpLte, nil
	case ">", "gt":
		return OpGt, nil
	case ">=", "gte":
		return OpGte, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Store - операции, которые ядро ожидает от хранилища.
// GetAll отдаёт документы в порядке первой вставки.
type Store interface {
	GetAll(ctx context.Context, collection string) ([]Document, error)
	GetOne(ctx context.Context, collection, id string) (Document, error)
	Upsert(ctx context.Context, collection, id string, body map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	QueryWhere(ctx context.Context, collection, field string, op Op, value any) ([]Document, error)
	Close() error
}
