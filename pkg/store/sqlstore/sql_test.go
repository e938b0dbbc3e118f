package sqlstore_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-fieldblocks/pkg/store/sqlstore"
)

func TestStore_SaveUpsertsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "field_values"`))
	prep.ExpectExec().WithArgs("42", "a", []byte("1")).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("42", "b", []byte(`"two"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := sqlstore.New(db, "")
	require.NoError(t, s.Save(context.Background(), "42", map[string]any{"b": "two", "a": 1}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "field_values"`))
	prep.ExpectExec().WithArgs("42", "a", []byte("1")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	s := sqlstore.New(db, "")
	err = s.Save(context.Background(), "42", map[string]any{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "field_values" WHERE owner_id = $1 AND field_key = $2`)).
		WithArgs("42", "headline").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`"Hello"`)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "field_values"`)).
		WithArgs("42", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	s := sqlstore.New(db, "")
	value, ok, err := s.Get(context.Background(), "42", "headline")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Hello", value)

	value, ok, err = s.Get(context.Background(), "42", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetMany(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT field_key, value FROM "field_values" WHERE owner_id = $1 AND field_key = ANY($2)`)).
		WithArgs("42", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"field_key", "value"}).
			AddRow("a", []byte(`1`)).
			AddRow("b", []byte(`["x"]`)))

	s := sqlstore.New(db, "")
	got, err := s.GetMany(context.Background(), "42", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1), "b": []any{"x"}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
