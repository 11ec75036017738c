package bulk

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Updater применяет патч к одной записи.
type Updater interface {
	Patch(ctx context.Context, id string, patch Patch) error
}

type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Failure - ошибка одной записи пакета.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Outcome - результат пакетной операции по каждой записи.
type Outcome struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

func (o Outcome) OK() bool { return len(o.Failed) == 0 }

// Add учитывает результат одной записи: err == nil - успех.
func (o *Outcome) Add(id string, err error) {
	if err != nil {
		o.Failed = append(o.Failed, Failure{ID: id, Reason: err.Error(), Err: err})
		return
	}
	o.Succeeded = append(o.Succeeded, id)
}

// Log пишет сводку и по строке на каждую ошибку.
func (o Outcome) Log(log *logrus.Entry, op string) {
	for _, f := range o.Failed {
		log.WithFields(logrus.Fields{"op": op, "id": f.ID}).Warn(f.Reason)
	}
	log.WithFields(logrus.Fields{
		"op":        op,
		"succeeded": len(o.Succeeded),
		"failed":    len(o.Failed),
	}).Info("batch finished")
}

// NewOutcome - пустой результат на n записей.
func NewOutcome(n int) Outcome {
	return Outcome{Succeeded: make([]string, 0, n), Failed: []Failure{}}
}

// Apply отправляет один и тот же патч каждой записи по очереди. Ошибка одной записи
// не останавливает остальные. После отмены ctx оставшиеся записи помечаются ошибкой.
func Apply(ctx context.Context, u Updater, ids []string, patch Patch) Outcome {
	out := NewOutcome(len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			out.Add(id, err)
			continue
		}
		out.Add(id, u.Patch(ctx, id, patch))
	}
	return out
}

// Delete - то же для удаления.
func Delete(ctx context.Context, d Deleter, ids []string) Outcome {
	out := NewOutcome(len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			out.Add(id, err)
			continue
		}
		out.Add(id, d.Delete(ctx, id))
	}
	return out
}
