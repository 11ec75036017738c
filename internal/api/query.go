package api

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"fungarium/internal/docstore"
	"fungarium/internal/field"
)

// ==== Типы сортировки и параметров листинга ====

type SortKey struct {
	Field string
	Desc  bool
}

type ListParams struct {
	Limit  int
	Offset int
	Sort   []SortKey
	Conds  []filterCond
	Q      string
	Nulls  string // "last" (default) | "first"
}

// filterCond - условие вида key__op=value.
type filterCond struct {
	field string
	op    docstore.Op
	vals  []string // для __in - несколько значений
}

// ==== Парсинг query-параметров ====

func parseListParams(q url.Values) (ListParams, error) {
	// limit
	limit := 50
	lv := q.Get("_limit")
	if lv == "" {
		lv = q.Get("limit")
	}
	if lv != "" {
		if n, err := strconv.Atoi(lv); err == nil && n >= 0 && n <= 1000 {
			limit = n
		}
	}

	// offset
	offset := 0
	ov := q.Get("_offset")
	if ov == "" {
		ov = q.Get("offset")
	}
	if ov != "" {
		if n, err := strconv.Atoi(ov); err == nil && n >= 0 {
			offset = n
		}
	}

	// sort
	var sortKeys []SortKey
	sv := strings.TrimSpace(q.Get("_sort"))
	if sv == "" {
		sv = strings.TrimSpace(q.Get("sort"))
	}
	for _, p := range strings.Split(sv, ",") {
		p = strings.TrimSpace(p)
		desc := strings.HasPrefix(p, "-")
		p = strings.TrimLeft(p, "+-")
		if p != "" {
			sortKeys = append(sortKeys, SortKey{Field: p, Desc: desc})
		}
	}

	// nulls
	nulls := strings.ToLower(strings.TrimSpace(q.Get("nulls")))
	if nulls != "first" && nulls != "last" {
		nulls = "last"
	}

	conds, err := buildConds(q)
	if err != nil {
		return ListParams{}, err
	}

	return ListParams{
		Limit:  limit,
		Offset: offset,
		Sort:   sortKeys,
		Conds:  conds,
		Q:      strings.TrimSpace(q.Get("q")),
		Nulls:  nulls,
	}, nil
}

// buildConds разбирает условия фильтра:
//
//	genero=Amanita
//	altitud__gte=1000
//	habito__in=Solitario,Gregario
func buildConds(q url.Values) ([]filterCond, error) {
	var out []filterCond
	for key, vals := range q {
		switch key {
		case "q", "offset", "limit", "sort", "order",
			"_offset", "_limit", "_sort", "_order",
			"nulls":
			continue
		}
		clean := make([]string, 0, len(vals))
		for _, v := range vals {
			if strings.TrimSpace(v) != "" {
				clean = append(clean, strings.TrimSpace(v))
			}
		}
		if len(clean) == 0 {
			continue
		}

		name, op := key, "eq"
		if i := strings.LastIndex(key, "__"); i > 0 {
			name, op = key[:i], key[i+2:]
		}
		if op == "in" {
			var items []string
			for _, v := range clean {
				for _, p := range strings.Split(v, ",") {
					if p = strings.TrimSpace(p); p != "" {
						items = append(items, p)
					}
				}
			}
			out = append(out, filterCond{field: name, op: docstore.OpEq, vals: items})
			continue
		}
		parsed, err := docstore.ParseOp(op)
		if err != nil {
			return nil, err
		}
		out = append(out, filterCond{field: name, op: parsed, vals: clean[len(clean)-1:]})
	}
	// порядок map недетерминирован - упорядочим для повторяемости
	sort.Slice(out, func(i, j int) bool { return out[i].field+string(out[i].op) < out[j].field+string(out[j].op) })
	return out, nil
}

func (fc filterCond) match(row map[string]any) bool {
	for _, v := range fc.vals {
		if docstore.Match(row, fc.field, fc.op, v) {
			return true
		}
	}
	return false
}

// containsText - поиск q по всем текстовым значениям строки (без учёта регистра).
func containsText(row map[string]any, q string) bool {
	q = strings.ToLower(q)
	for _, v := range row {
		if field.IsEmpty(v) {
			continue
		}
		if strings.Contains(strings.ToLower(field.Text(v)), q) {
			return true
		}
	}
	return false
}

// ==== Сортировка с политикой nulls ====

// сравнение двух строк по одному ключу с учётом nullsPolicy и направления
func cmpByKey(a, b map[string]any, key string, nullsPolicy string, desc bool) int {
	va, vb := a[key], b[key]
	na, nb := field.IsEmpty(va), field.IsEmpty(vb)

	// nulls first/last
	if na && nb {
		return 0
	}
	if na != nb {
		if nullsPolicy == "last" {
			if na {
				return +1 // a=null → в конец при asc
			}
			return -1
		}
		// nulls=first
		if na {
			return -1
		}
		return +1
	}

	rel := 0
	fa, okA := field.ToNumber(va)
	fb, okB := field.ToNumber(vb)
	if okA && okB {
		switch {
		case fa < fb:
			rel = -1
		case fa > fb:
			rel = +1
		}
	} else {
		rel = strings.Compare(field.Text(va), field.Text(vb))
	}
	if desc {
		rel = -rel
	}
	return rel
}

// мультисортировка с учётом nullsPolicy
func sortRows(rows []map[string]any, keys []SortKey, nullsPolicy string) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			if c := cmpByKey(rows[i], rows[j], k.Field, nullsPolicy, k.Desc); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func page[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
