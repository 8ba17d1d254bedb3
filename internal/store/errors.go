package store

import "fmt"

// StorageError wraps any I/O, constraint or decode failure surfaced by
// the store, tagged with the operation that failed. It unwraps to the
// underlying driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
