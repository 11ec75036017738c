package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fungarium/internal/docstore"

	"github.com/sirupsen/logrus"
)

// Store - docstore.Store поверх одной jsonb-таблицы.
type Store struct {
	db    *sql.DB
	table string
	log   *logrus.Entry
}

// NewStore оборачивает открытое соединение. При migrate создаёт таблицу и индексы.
func NewStore(ctx context.Context, db *sql.DB, table string, migrate bool, log *logrus.Entry) (*Store, error) {
	s := &Store{db: db, table: safeTable(table), log: log}
	if migrate {
		if err := ApplyDDL(ctx, db, GenerateDDL(s.table), log); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]docstore.Document, error) {
	q := fmt.Sprintf(`select "id", "body" from %s where "collection" = $1 order by "seq"`, sqlIdent(s.table))
	return s.query(ctx, q, collection)
}

func (s *Store) GetOne(ctx context.Context, collection, id string) (docstore.Document, error) {
	q := fmt.Sprintf(`select "body" from %s where "collection" = $1 and "id" = $2`, sqlIdent(s.table))
	var raw []byte
	err := s.db.QueryRowContext(ctx, q, collection, id).Scan(&raw)
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
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	q := fmt.Sprintf(`insert into %s ("collection", "id", "body") values ($1, $2, $3::jsonb)
on conflict ("collection", "id") do update set "body" = excluded."body", "updated_at" = now()`, sqlIdent(s.table))
	if _, err := s.db.ExecContext(ctx, q, collection, id, string(raw)); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	q := fmt.Sprintf(`delete from %s where "collection" = $1 and "id" = $2`, sqlIdent(s.table))
	if _, err := s.db.ExecContext(ctx, q, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// QueryWhere сужает выборку по наличию ключа в jsonb, а сравнение делает docstore.Match,
// чтобы семантика совпадала с остальными хранилищами.
func (s *Store) QueryWhere(ctx context.Context, collection, key string, op docstore.Op, value any) ([]docstore.Document, error) {
	var docs []docstore.Document
	var err error
	if op == docstore.OpNe || value == nil {
		docs, err = s.GetAll(ctx, collection)
	} else {
		q := fmt.Sprintf(`select "id", "body" from %s where "collection" = $1 and jsonb_exists("body", $2) order by "seq"`,
			sqlIdent(s.table))
		docs, err = s.query(ctx, q, collection, key)
	}
	if err != nil {
		return nil, err
	}
	return docstore.Filter(docs, key, op, value), nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) query(ctx context.Context, q string, args ...any) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := []docstore.Document{}
	for rows.Next() {
		var id string
		var raw []byte
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

func decode(raw []byte) (map[string]any, error) {
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return body, nil
}
