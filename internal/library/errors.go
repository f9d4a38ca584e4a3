package library

import (
	"errors"

	"github.com/vmunix/phimgo/internal/docstore"
)

var (
	// ErrNotFound indicates the requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a unique constraint violation: a slug, favorite or saved entry that already exists.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrInvalid indicates input that failed validation.
	ErrInvalid = errors.New("invalid input")
)

// mapStoreError converts store sentinels to library errors.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
