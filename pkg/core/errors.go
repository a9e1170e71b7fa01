package core

import (
	"errors"
	"fmt"
)

// Common errors returned by store operations.
var (
	ErrStoreClosed    = errors.New("rolodex: store is closed")
	ErrNotInitialized = errors.New("rolodex: store not initialized")
	ErrNilPerson      = errors.New("rolodex: nil person in batch")
	ErrNoPath         = errors.New("rolodex: store path is empty")
)

// StoreError carries the failing operation name alongside the underlying
// error so callers can log or match on either.
type StoreError struct {
	Op  string // operation that failed
	Err error  // underlying error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("rolodex: %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapError attaches operation context to err. Nil in, nil out.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
