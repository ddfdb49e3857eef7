package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"evalportal/internal/platform/apperr"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{name: "no rows", err: pgx.ErrNoRows, kind: apperr.ErrLookup},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), kind: apperr.ErrLookup},
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, kind: apperr.ErrConstraint},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503", ConstraintName: "employees_position_id_fkey"}, kind: apperr.ErrState},
		{name: "check", err: &pgconn.PgError{Code: "23514", ConstraintName: "metric_exclusions_check"}, kind: apperr.ErrConstraint},
		{name: "invalid text representation", err: &pgconn.PgError{Code: "22P02"}, kind: apperr.ErrLookup},
		{name: "client side encode failure", err: errors.New("failed to encode args[0]: unable to encode \"not-a-uuid\" into binary format for uuid (OID 2950): cannot find encode plan"), kind: apperr.ErrLookup},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Translate(tc.err, "metric")
			if !errors.Is(got, tc.kind) {
				t.Fatalf("expected kind %v, got %v", tc.kind, got)
			}
		})
	}
}

func TestTranslatePassesThroughUnknownErrors(t *testing.T) {
	orig := errors.New("connection reset")
	if got := Translate(orig, "metric"); got != orig {
		t.Fatalf("expected original error, got %v", got)
	}
	if Translate(nil, "metric") != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("get employee: %w", pgx.ErrNoRows)) {
		t.Fatal("expected no rows to be not found")
	}
	if !IsNotFound(fmt.Errorf("get metric: %w", &pgconn.PgError{Code: "22P02"})) {
		t.Fatal("expected a malformed id to be not found")
	}
	if IsNotFound(&pgconn.PgError{Code: "23505"}) || IsNotFound(errors.New("connection reset")) || IsNotFound(nil) {
		t.Fatal("expected other errors not to be not found")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})) {
		t.Fatal("expected unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key is not a unique violation")
	}
}
