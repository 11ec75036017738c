package specimen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fungarium/internal/bulk"
	"fungarium/internal/docstore"
	"fungarium/internal/field"
	"fungarium/internal/registry"

	"github.com/sirupsen/logrus"
)

const Collection = "specimens"

var (
	ErrNotFound        = errors.New("specimen not found")
	ErrVersionConflict = errors.New("specimen was modified concurrently")
)

// Fields - источник определений динамических полей (реестр).
type Fields interface {
	List(ctx context.Context) ([]field.Definition, error)
}

type Service struct {
	store  docstore.Store
	fields Fields
	log    *logrus.Entry
	now    func() time.Time

	// чтение-изменение-запись одной записи не перемежаются в пределах процесса
	mu sync.Mutex
}

func NewService(store docstore.Store, fields Fields, log *logrus.Entry) *Service {
	return &Service{store: store, fields: fields, log: log, now: time.Now}
}

// Create проверяет и сохраняет новую запись. values - ключ → сырое значение формы.
func (s *Service) Create(ctx context.Context, values map[string]any) (Record, error) {
	defs, err := s.fields.List(ctx)
	if err != nil {
		return Record{}, err
	}
	rec := Record{Extra: map[string]field.Value{}}
	if err := apply(&rec, values, registry.ByKey(registry.Active(defs)), true); err != nil {
		return Record{}, err
	}

	now := s.now().UTC()
	rec.ID = docstore.NewID()
	rec.CreatedAt, rec.UpdatedAt = now, now
	rec.Version = 1

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Upsert(ctx, Collection, rec.ID, ToDocument(rec)); err != nil {
		return Record{}, fmt.Errorf("create specimen: %w", err)
	}
	rec.Tag(registry.ByKey(defs))
	s.log.WithFields(logrus.Fields{"id": rec.ID, "codigo": rec.Codigo}).Info("specimen created")
	return rec, nil
}

// Update сохраняет форму целиком. Ключи, которых нет в values (например, скрытые поля),
// сохраняют прежние значения. expected != nil включает проверку версии.
func (s *Service) Update(ctx context.Context, id string, values map[string]any, expected *int64) (Record, error) {
	return s.mutate(ctx, id, values, expected)
}

// Patch - частичное изменение одной записи; используется массовым редактированием.
func (s *Service) Patch(ctx context.Context, id string, patch bulk.Patch) error {
	_, err := s.mutate(ctx, id, patch, nil)
	return err
}

func (s *Service) mutate(ctx context.Context, id string, values map[string]any, expected *int64) (Record, error) {
	defs, err := s.fields.List(ctx)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if expected != nil && *expected != rec.Version {
		return Record{}, fmt.Errorf("%w: have version %d, got %d", ErrVersionConflict, rec.Version, *expected)
	}
	if err := apply(&rec, values, registry.ByKey(registry.Active(defs)), false); err != nil {
		return Record{}, err
	}
	rec.UpdatedAt = s.now().UTC()
	rec.Version++

	if err := s.store.Upsert(ctx, Collection, rec.ID, ToDocument(rec)); err != nil {
		return Record{}, fmt.Errorf("update specimen %s: %w", id, err)
	}
	rec.Tag(registry.ByKey(defs))
	s.log.WithFields(logrus.Fields{"id": rec.ID, "keys": len(values), "version": rec.Version}).Debug("specimen updated")
	return rec, nil
}

// Get - запись с динамическими значениями, привязанными к текущим определениям.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	defs, err := s.fields.List(ctx)
	if err != nil {
		return Record{}, err
	}
	rec, err := s.load(ctx, id)
	if err != nil {
		return Record{}, err
	}
	s.tag(&rec, registry.ByKey(defs))
	return rec, nil
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	docs, err := s.store.GetAll(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("list specimens: %w", err)
	}
	return s.decodeAll(ctx, docs)
}

// Query - записи, у которых key op value.
func (s *Service) Query(ctx context.Context, key string, op docstore.Op, value any) ([]Record, error) {
	docs, err := s.store.QueryWhere(ctx, Collection, key, op, value)
	if err != nil {
		return nil, fmt.Errorf("query specimens: %w", err)
	}
	return s.decodeAll(ctx, docs)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.store.GetOne(ctx, Collection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("delete specimen %s: %w", id, err)
	}
	s.log.WithField("id", id).Info("specimen deleted")
	return nil
}

func (s *Service) load(ctx context.Context, id string) (Record, error) {
	doc, err := s.store.GetOne(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get specimen %s: %w", id, err)
	}
	rec, drift := FromDocument(doc)
	if len(drift) > 0 {
		s.log.WithFields(logrus.Fields{"id": id, "keys": drift}).Debug("stored values do not fit fixed attributes")
	}
	return rec, nil
}

func (s *Service) decodeAll(ctx context.Context, docs []docstore.Document) ([]Record, error) {
	defs, err := s.fields.List(ctx)
	if err != nil {
		return nil, err
	}
	byKey := registry.ByKey(defs)
	out := make([]Record, 0, len(docs))
	for _, doc := range docs {
		rec, _ := FromDocument(doc)
		s.tag(&rec, byKey)
		out = append(out, rec)
	}
	return out, nil
}

func (s *Service) tag(rec *Record, defs map[string]field.Definition) {
	if orphans := rec.Tag(defs); len(orphans) > 0 {
		s.log.WithFields(logrus.Fields{"id": rec.ID, "keys": orphans}).Debug("values without field definition kept")
	}
}

// apply проверяет значения и только потом присваивает. full - проверка всей записи
// (создание): все фиксированные атрибуты и видимые динамические поля. Иначе проверяются
// только присланные ключи, сохранённые значения остаются как есть.
// Ключи без определения и системные ключи игнорируются.
func apply(rec *Record, values map[string]any, active map[string]field.Definition, full bool) error {
	var errs field.Errors
	converted := make(map[string]any, len(values))

	check := func(d field.Definition) {
		v, ok := values[d.Key]
		if !ok {
			if !full {
				return
			}
			v, _ = rec.Get(d.Key)
		}
		if e := field.Check(d, v); e != nil {
			errs = append(errs, *e)
		}
	}

	for _, sec := range sections {
		for _, d := range sec.Fields {
			check(d)
		}
	}
	for key, d := range active {
		if IsFixed(key) {
			continue
		}
		check(d)
	}
	if len(errs) > 0 {
		sortErrors(errs, active)
		return errs
	}

	for key, raw := range values {
		if IsSystem(key) {
			continue
		}
		d, ok := FixedDefinition(key)
		if !ok {
			d, ok = active[key]
		}
		if !ok {
			continue
		}
		v, err := field.Convert(d, raw)
		if err != nil {
			return err
		}
		converted[key] = v
	}
	for key, v := range converted {
		if IsFixed(key) {
			if !rec.Set(key, v) {
				return fmt.Errorf("cannot assign %q", key)
			}
			continue
		}
		if v == nil {
			rec.Set(key, nil)
			continue
		}
		rec.Set(key, field.Value{Type: active[key].Type, Data: v})
	}
	return nil
}

// sortErrors: сначала фиксированные атрибуты в порядке секций, затем динамические по Order.
func sortErrors(errs field.Errors, active map[string]field.Definition) {
	rank := func(key string) int {
		i := 0
		for _, sec := range sections {
			for _, d := range sec.Fields {
				if d.Key == key {
					return i
				}
				i++
			}
		}
		return i + active[key].Order
	}
	for i := 1; i < len(errs); i++ {
		for j := i; j > 0 && rank(errs[j].Field) < rank(errs[j-1].Field); j-- {
			errs[j], errs[j-1] = errs[j-1], errs[j]
		}
	}
}

// MatchHeader ищет ключ поля по заголовку столбца: нормализованный ключ
// (атрибут или динамическое поле) или подпись динамического поля.
func MatchHeader(header string, active []field.Definition) (string, bool) {
	key := field.NormalizeKey(header)
	if key == "" {
		return "", false
	}
	if _, ok := FixedDefinition(key); ok {
		return key, true
	}
	for _, d := range active {
		if d.Key == key {
			return key, true
		}
	}
	for _, d := range active {
		if strings.EqualFold(strings.TrimSpace(d.Label), strings.TrimSpace(header)) {
			return d.Key, true
		}
	}
	return "", false
}
