package pg

import (
	"fmt"
	"strings"
)

const DefaultTable = "documents"

var reserved = map[string]struct{}{
	"user": {}, "select": {}, "table": {}, "insert": {}, "update": {}, "delete": {},
	"where": {}, "join": {}, "group": {}, "order": {}, "limit": {}, "offset": {},
	"primary": {}, "foreign": {}, "key": {}, "constraint": {}, "default": {},
	"from": {}, "into": {}, "values": {}, "unique": {}, "index": {}, "create": {},
	"drop": {}, "alter": {}, "schema": {}, "grant": {}, "revoke": {},
}

func isReserved(s string) bool { _, ok := reserved[strings.ToLower(s)]; return ok }

// safeTable - имя таблицы в нижнем регистре; ключевые слова получают префикс.
func safeTable(name string) string {
	t := strings.ToLower(strings.TrimSpace(name))
	if t == "" {
		t = DefaultTable
	}
	if isReserved(t) {
		t = "e_" + t
	}
	return t
}

func sqlIdent(s string) string { return `"` + strings.ToLower(s) + `"` }

// GenerateDDL возвращает шаги DDL для таблицы документов: сама таблица и индексы.
// Коллекция + id - первичный ключ, seq фиксирует порядок первой вставки.
func GenerateDDL(table string) map[string]string {
	t := safeTable(table)
	out := make(map[string]string, 2)

	out["000_tables"] = fmt.Sprintf(`create table if not exists %s (
  "collection" text not null,
  "id" text not null,
  "body" jsonb not null,
  "seq" bigserial,
  "created_at" timestamp with time zone not null default now(),
  "updated_at" timestamp with time zone not null default now(),
  primary key ("collection", "id")
);`, sqlIdent(t))

	out["100_indexes"] = fmt.Sprintf(
		"create index if not exists %s on %s(\"collection\", \"seq\");\n"+
			"create index if not exists %s on %s using gin (\"body\" jsonb_path_ops);",
		sqlIdent(t+"_collection_seq_idx"), sqlIdent(t),
		sqlIdent(t+"_body_gin"), sqlIdent(t),
	)
	return out
}
