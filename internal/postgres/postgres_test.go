package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://h/db", migrateURL("postgresql://h/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}

func TestMapError(t *testing.T) {
	assert.Nil(t, MapError(nil, "product"))

	err := MapError(fmt.Errorf("scan: %w", pgx.ErrNoRows), "product")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "product not found", err.Error())

	dup := MapError(&pgconn.PgError{Code: "23505"}, "business")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(dup))

	fk := MapError(&pgconn.PgError{Code: "23503"}, "product")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(fk))

	chk := MapError(&pgconn.PgError{Code: "23514"}, "product")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(chk))

	other := errors.New("connection reset")
	assert.Same(t, other, MapError(other, "product"))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}

type failingBeginner struct{}

func (failingBeginner) Begin(context.Context) (pgx.Tx, error) { return nil, errors.New("pool closed") }

func TestWithTxBeginError(t *testing.T) {
	called := false
	err := WithTx(context.Background(), failingBeginner{}, func(pgx.Tx) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%sugar%", ContainsPattern("sugar"))
	assert.Equal(t, `%50\%\_off\\%`, ContainsPattern(`50%_off\`))
}

func TestMapErrorInvalidUUID(t *testing.T) {
	err := MapError(&pgconn.PgError{Code: "22P02"}, "order")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
