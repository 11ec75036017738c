package specimen

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fungarium/internal/bulk"
	"fungarium/internal/field"
	"fungarium/internal/registry"
)

// ImportResult - итог импорта: Outcome по созданным id и строкам с ошибкой ("row N").
type ImportResult struct {
	bulk.Outcome
	Columns  map[string]string `json:"columns"`  // заголовок → ключ
	Unmapped []string          `json:"unmapped"` // заголовки без поля
}

var boolWords = map[string]string{
	"true": "true", "sí": "true", "si": "true", "yes": "true", "x": "true", "1": "true", "verdadero": "true",
	"false": "false", "no": "false", "0": "false", "falso": "false",
}

// Import создаёт по записи на каждую строку CSV (первая строка - заголовки).
// Каждая строка проверяется как отправка формы; ошибки строк не прерывают импорт.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	defs, err := s.fields.List(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	active := registry.Active(defs)
	byKey := registry.ByKey(active)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ImportResult{}, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}

	res := ImportResult{Outcome: bulk.NewOutcome(0), Columns: map[string]string{}, Unmapped: []string{}}
	keys := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		key, ok := MatchHeader(h, active)
		if !ok {
			res.Unmapped = append(res.Unmapped, h)
			continue
		}
		keys[i] = key
		res.Columns[h] = key
	}
	if len(res.Unmapped) > 0 {
		s.log.WithField("columns", res.Unmapped).Info("csv columns without a matching field are ignored")
	}

	for row := 2; ; row++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowID := fmt.Sprintf("row %d", row)
		if err != nil {
			res.Add(rowID, err)
			continue
		}
		values := map[string]any{}
		for i, cell := range cells {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			values[keys[i]] = cellValue(keys[i], cell, byKey)
		}
		if len(values) == 0 {
			continue
		}
		rec, err := s.Create(ctx, values)
		if err != nil {
			res.Add(rowID, err)
			continue
		}
		res.Add(rec.ID, nil)
	}

	res.Outcome.Log(s.log.WithField("source", "csv"), "import")
	return res, nil
}

// cellValue приводит распространённые записи булевых значений к "true"/"false".
func cellValue(key, cell string, dynamic map[string]field.Definition) any {
	d, ok := FixedDefinition(key)
	if !ok {
		d, ok = dynamic[key]
	}
	if ok && d.Type == field.TypeBoolean {
		if b, known := boolWords[strings.ToLower(cell)]; known {
			return b
		}
	}
	return cell
}
