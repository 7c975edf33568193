package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Beginner is satisfied by *pgxpool.Pool and pgx.Tx (nested savepoints).
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx runs fn inside a transaction. Any error returned by fn rolls
// everything back; nil commits.
func WithTx(ctx context.Context, db Beginner, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

// MapError turns driver errors into apperr kinds. what names the entity
// for the message, e.g. "product".
func MapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("%s not found", what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return &apperr.Error{Kind: apperr.KindConflict, Msg: what + " already exists", Err: err}
		case codeForeignKeyViolation:
			return &apperr.Error{Kind: apperr.KindConflict, Msg: what + " is referenced by other records", Err: err}
		case codeInvalidText:
			// malformed uuid in a path parameter
			return apperr.NotFound("%s not found", what)
		case codeCheckViolation:
			return &apperr.Error{Kind: apperr.KindValidation, Msg: what + " violates a constraint", Err: err}
		}
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching s literally anywhere.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
