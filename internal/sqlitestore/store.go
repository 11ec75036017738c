// Package sqlitestore - docstore.Store в одном файле SQLite (modernc.org/sqlite, без cgo).
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fungarium/internal/docstore"

	_ "modernc.org/sqlite"
)

const schema = `create table if not exists documents (
  collection text not null,
  id text not null,
  body text not null,
  updated_at text not null default (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
  primary key (collection, id)
);`

// Store хранит документы в таблице documents; порядок первой вставки - rowid.
type Store struct {
	sqlDB *sql.DB
}

// Open открывает (или создаёт) базу по пути и применяет схему.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// один писатель
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.query(ctx, `select id, body from documents where collection = ? order by rowid`, collection)
}

func (s *Store) GetOne(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}
	var raw string
	err := s.sqlDB.QueryRowContext(ctx,
		`select body from documents where collection = ? and id = ?`, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	body, err := decode(raw)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Body: body}, nil
}

func (s *Store) Upsert(ctx context.Context, collection, id string, body map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `insert into documents (collection, id, body) values (?, ?, ?)
on conflict (collection, id) do update set body = excluded.body,
  updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`, collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`delete from documents where collection = ? and id = ?`, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) QueryWhere(ctx context.Context, collection, key string, op docstore.Op, value any) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []docstore.Document
	var err error
	if op == docstore.OpNe || value == nil {
		docs, err = s.GetAll(ctx, collection)
	} else {
		docs, err = s.query(ctx,
			`select id, body from documents where collection = ? and json_extract(body, ?) is not null order by rowid`,
			collection, jsonPath(key))
	}
	if err != nil {
		return nil, err
	}
	return docstore.Filter(docs, key, op, value), nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]docstore.Document, error) {
	rows, err := s.sqlDB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := []docstore.Document{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		body, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Document{ID: id, Body: body})
	}
	return out, rows.Err()
}

func jsonPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}

func decode(raw string) (map[string]any, error) {
	body := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return body, nil
}
