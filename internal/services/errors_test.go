package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassifyStoreError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"permission denied", &pgconn.PgError{Code: "42501"}, ErrForbidden},
		{"foreign key", &pgconn.PgError{Code: "23503"}, ErrInvalidInput},
		{"check", &pgconn.PgError{Code: "23514"}, ErrInvalidInput},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, ErrInvalidInput},
		{"not null", &pgconn.PgError{Code: "23502"}, ErrInvalidInput},
		{"numeric out of range", &pgconn.PgError{Code: "22003"}, ErrInvalidInput},
		{"string too long", &pgconn.PgError{Code: "22001"}, ErrInvalidInput},
		{"negative offset", &pgconn.PgError{Code: "2201X"}, ErrInvalidInput},
		{"exclusion", &pgconn.PgError{Code: "23P01"}, ErrInvalidInput},
		{"unique", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"unknown code", &pgconn.PgError{Code: "57014"}, ErrTransient},
		{"network", errors.New("connection reset by peer"), ErrTransient},
		{"timeout", context.DeadlineExceeded, ErrTransient},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyStoreError("load", tc.err)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("expected original error to stay in chain, got %v", got)
			}
		})
	}
}

func TestClassifyStoreErrorKeepsExistingTag(t *testing.T) {
	got := classifyStoreError("assign", ErrForbidden)
	if !errors.Is(got, ErrForbidden) || errors.Is(got, ErrTransient) {
		t.Fatalf("expected forbidden only, got %v", got)
	}
	if classifyStoreError("noop", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
