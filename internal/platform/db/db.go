package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"evalportal/internal/platform/apperr"
	"evalportal/internal/platform/config"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"

	codeInvalidTextRepresentation = "22P02"
)

func Connect(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Translate maps storage errors onto the apperr kinds. Errors it does not
// recognise are returned unchanged.
func Translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return apperr.Lookup(entity + " not found")
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return apperr.Constraint(entity + " already exists")
	case codeForeignKeyViolation:
		if pgErr.ConstraintName != "" {
			return apperr.State(entity + " is still referenced (" + pgErr.ConstraintName + ")")
		}
		return apperr.State(entity + " is still referenced")
	case codeCheckViolation, codeNotNullViolation:
		return apperr.Constraint(entity + " violates " + pgErr.ConstraintName)
	}
	return err
}

// IsNotFound reports whether err means the requested row does not exist. An id
// the database cannot parse counts as missing.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows) || isMalformedInput(err)
}

func isMalformedInput(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeInvalidTextRepresentation
	}
	msg := err.Error()
	return strings.Contains(msg, "failed to encode") || strings.Contains(msg, "cannot find encode plan")
}

// IsUniqueViolation reports whether err is a unique-key conflict.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
