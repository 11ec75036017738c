package registry

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("field definition not found")
	ErrDuplicateKey = errors.New("field key already in use")
)

// WriteError - отказ хранилища при записи определения. Повторов нет:
// вызывающий перечитывает List, а не считает запись успешной.
type WriteError struct {
	Op  string
	ID  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("registry %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
