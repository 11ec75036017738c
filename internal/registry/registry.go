// Package registry - реестр динамических полей: CRUD определений поверх docstore,
// порядок показа, уникальность ключей и стартовое наполнение.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fungarium/internal/docstore"
	"fungarium/internal/field"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const Collection = "field_definitions"

type Registry struct {
	store    docstore.Store
	log      *logrus.Entry
	validate *validator.Validate

	// fixed сообщает, занят ли ключ фиксированным атрибутом записи.
	fixed func(key string) bool
	now   func() time.Time

	// сериализует Save: проверка уникальности ключа и запись идут вместе
	mu sync.Mutex
}

func New(store docstore.Store, log *logrus.Entry) *Registry {
	return &Registry{
		store:    store,
		log:      log,
		validate: newValidator(),
		fixed:    func(string) bool { return false },
		now:      time.Now,
	}
}

// WithFixed задаёт проверку ключей фиксированных атрибутов (для предупреждений и Lint).
func (r *Registry) WithFixed(fixed func(key string) bool) *Registry {
	if fixed != nil {
		r.fixed = fixed
	}
	return r
}

// List - все определения (скрытые тоже) по возрастанию Order; при равенстве - порядок хранилища.
func (r *Registry) List(ctx context.Context) ([]field.Definition, error) {
	docs, err := r.store.GetAll(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	defs := make([]field.Definition, 0, len(docs))
	for _, doc := range docs {
		d, err := decode(doc)
		if err != nil {
			r.log.WithError(err).WithField("id", doc.ID).Warn("skipping unreadable field definition")
			continue
		}
		defs = append(defs, d)
	}
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].Order < defs[j].Order })
	return defs, nil
}

func (r *Registry) Get(ctx context.Context, id string) (field.Definition, error) {
	doc, err := r.store.GetOne(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return field.Definition{}, ErrNotFound
	}
	if err != nil {
		return field.Definition{}, fmt.Errorf("get field %s: %w", id, err)
	}
	return decode(doc)
}

// Save создаёт или перезаписывает определение по ID.
// Ключ всегда пересчитывается из Key (или Label, если Key пуст).
func (r *Registry) Save(ctx context.Context, in Input) (field.Definition, error) {
	if err := r.check(in); err != nil {
		return field.Definition{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	defs, err := r.List(ctx)
	if err != nil {
		return field.Definition{}, err
	}

	var existing *field.Definition
	if in.ID != "" {
		for i := range defs {
			if defs[i].ID == in.ID {
				existing = &defs[i]
				break
			}
		}
	}

	raw := in.Key
	if strings.TrimSpace(raw) == "" {
		raw = in.Label
	}
	d := field.Definition{
		ID:          in.ID,
		Key:         field.NormalizeKey(raw),
		Label:       strings.TrimSpace(in.Label),
		Type:        in.Type,
		Category:    in.Category,
		Required:    in.Required,
		EnumOptions: in.EnumOptions,
		Min:         in.Min,
		Max:         in.Max,
		Placeholder: in.Placeholder,
		Description: in.Description,
	}
	if d.Label == "" {
		d.Label = strings.TrimSpace(in.Key)
	}
	if d.Type != field.TypeEnum {
		d.EnumOptions = nil
	}
	if d.Type != field.TypeNumber {
		d.Min, d.Max = nil, nil
	}

	for _, other := range defs {
		if other.Key == d.Key && other.ID != d.ID {
			return field.Definition{}, fmt.Errorf("%w: %q (field %s)", ErrDuplicateKey, d.Key, other.ID)
		}
	}

	now := r.now().UTC()
	switch {
	case in.Order != nil:
		d.Order = *in.Order
	case existing != nil:
		d.Order = existing.Order
	default:
		d.Order = len(defs)
	}
	switch {
	case in.Visible != nil:
		d.Visible = *in.Visible
	case existing != nil:
		d.Visible = existing.Visible
	default:
		d.Visible = true
	}
	if existing != nil && !existing.CreatedAt.IsZero() {
		d.CreatedAt = existing.CreatedAt
	} else {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	if d.ID == "" {
		d.ID = docstore.NewID()
	}

	if r.fixed(d.Key) {
		r.log.WithField("key", d.Key).Warn("field key matches a fixed attribute and will not be rendered")
	}
	if existing != nil && existing.Type != d.Type {
		r.log.WithFields(logrus.Fields{"key": d.Key, "from": existing.Type, "to": d.Type}).
			Warn("field type changed; stored values are not converted")
	}

	if err := r.put(ctx, "save", d); err != nil {
		return field.Definition{}, err
	}
	r.log.WithFields(logrus.Fields{"id": d.ID, "key": d.Key}).Info("field saved")
	return d, nil
}

// Delete удаляет только определение; значения в записях остаются.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return &WriteError{Op: "delete", ID: id, Err: err}
	}
	r.log.WithField("id", id).Info("field deleted")
	return nil
}

// Active - видимые определения в исходном порядке.
func Active(defs []field.Definition) []field.Definition {
	out := make([]field.Definition, 0, len(defs))
	for _, d := range defs {
		if d.Visible {
			out = append(out, d)
		}
	}
	return out
}

// ByKey индексирует определения по ключу. При совпадении ключей побеждает первое.
func ByKey(defs []field.Definition) map[string]field.Definition {
	out := make(map[string]field.Definition, len(defs))
	for _, d := range defs {
		if _, ok := out[d.Key]; !ok {
			out[d.Key] = d
		}
	}
	return out
}

// Lint - противоречия в текущем наборе определений.
func (r *Registry) Lint(ctx context.Context) ([]field.Issue, error) {
	defs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return field.Lint(defs, r.fixed), nil
}

// Seed сохраняет определения, ключей которых ещё нет в реестре. Возвращает число созданных.
func (r *Registry) Seed(ctx context.Context, seeds []field.Definition) (int, error) {
	defs, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	known := ByKey(defs)
	created := 0
	for _, s := range seeds {
		if _, ok := known[s.Key]; ok {
			continue
		}
		in := FromDefinition(s)
		in.ID, in.Order = "", nil
		d, err := r.Save(ctx, in)
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", s.Key, err)
		}
		known[d.Key] = d
		created++
	}
	if created > 0 {
		r.log.WithField("created", created).Info("field definitions seeded")
	}
	return created, nil
}

func (r *Registry) put(ctx context.Context, op string, d field.Definition) error {
	body, err := encode(d)
	if err != nil {
		return &WriteError{Op: op, ID: d.ID, Err: err}
	}
	if err := r.store.Upsert(ctx, Collection, d.ID, body); err != nil {
		return &WriteError{Op: op, ID: d.ID, Err: err}
	}
	return nil
}

func encode(d field.Definition) (map[string]any, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	body := map[string]any{}
	return body, json.Unmarshal(b, &body)
}

func decode(doc docstore.Document) (field.Definition, error) {
	b, err := json.Marshal(doc.Body)
	if err != nil {
		return field.Definition{}, err
	}
	var d field.Definition
	if err := json.Unmarshal(b, &d); err != nil {
		return field.Definition{}, fmt.Errorf("decode field %s: %w", doc.ID, err)
	}
	d.ID = doc.ID
	return d, nil
}
