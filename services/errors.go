package services

import (
	"errors"
	"fmt"

	"speed-review/storage"
)

var (
	// ErrNotFound: referenzierter Artikel, Score oder Rolle existiert nicht.
	ErrNotFound = errors.New("not found")
	// ErrValidation: Pflichtfeld fehlt oder Wert ungültig.
	ErrValidation = errors.New("validation failed")
	// ErrConflict: Eintrag existiert bereits (z.B. Rolle mit gleicher E-Mail).
	ErrConflict = errors.New("conflict")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// mapStoreError übersetzt Storage-Fehler in Service-Fehler. Alles andere bleibt ein interner Fehler.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrDuplicateKey):
		return ErrConflict
	}
	return err
}
