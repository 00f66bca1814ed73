package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyInput     = errors.New("empty input")
	ErrEmptyCatalog   = errors.New("catalog is empty")
	ErrNoAnimal       = errors.New("no animal selected")
	ErrUnknownShape   = errors.New("unknown shape type")
	ErrNotImplemented = errors.New("not implemented")
)

// DecodeError reports a malformed catalog asset. Record is the zero-based
// record index, or -1 when the document itself could not be parsed.
type DecodeError struct {
	Record int
	Name   string
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Record < 0 {
		return fmt.Sprintf("decode catalog: %v", e.Err)
	}
	where := fmt.Sprintf("record %d", e.Record)
	if e.Name != "" {
		where += fmt.Sprintf(" (%s)", e.Name)
	}
	if e.Field != "" {
		where += " field " + e.Field
	}
	return fmt.Sprintf("decode catalog: %s: %v", where, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
