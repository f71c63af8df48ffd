package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrConflict               = errors.New("conflict")
	ErrTransient              = errors.New("temporarily unavailable")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrStorageUnavailable     = errors.New("storage service is not configured")
)

var taggedErrors = []error{
	ErrNotFound,
	ErrForbidden,
	ErrInvalidInput,
	ErrInvalidStateTransition,
	ErrConflict,
	ErrTransient,
	ErrInvalidCredentials,
	ErrUnauthenticated,
	ErrStorageUnavailable,
}

// classifyStoreError tags a repository error with one service sentinel and
// keeps the original in the chain. Errors that already carry a tag only get
// the operation prefix.
func classifyStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, tagged := range taggedErrors {
		if errors.Is(err, tagged) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, storeErrorKind(err), err)
}

func storeErrorKind(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42501":
			return ErrForbidden
		case pgErr.Code == "23505":
			return ErrConflict
		case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"):
			// Data exceptions and integrity violations come from bad input.
			return ErrInvalidInput
		}
	}
	return ErrTransient
}
