package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS state`).WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := New(context.Background(), "")
	require.NoError(t, err)
	return store, mock
}

func TestNewEnsuresStateTable(t *testing.T) {
	store, mock := setupMockStore(t)
	assert.Equal(t, "postgres", string(store.Driver()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAndSet(t *testing.T) {
	store, mock := setupMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO state`).
		WithArgs("app-grievances", `[{"id":1}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Set(ctx, "app-grievances", []byte(`[{"id":1}]`)))

	mock.ExpectQuery(`SELECT payload FROM state WHERE bucket = \$1`).
		WithArgs("app-grievances").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`[{"id":1}]`))
	got, ok, err := store.Get(ctx, "app-grievances")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(got))

	mock.ExpectQuery(`SELECT payload FROM state WHERE bucket = \$1`).
		WithArgs("app-library").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	_, ok, err = store.Get(ctx, "app-library")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeysAndDelete(t *testing.T) {
	store, mock := setupMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT bucket FROM state ORDER BY bucket`).
		WillReturnRows(sqlmock.NewRows([]string{"bucket"}).AddRow("app-audits").AddRow("app-users"))
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"app-audits", "app-users"}, keys)

	mock.ExpectExec(`DELETE FROM state WHERE bucket = \$1`).
		WithArgs("app-users").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Delete(ctx, "app-users"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetWrapsDriverErrors(t *testing.T) {
	store, mock := setupMockStore(t)
	boom := errors.New("disk full")
	mock.ExpectExec(`INSERT INTO state`).WillReturnError(boom)

	err := store.Set(context.Background(), "app-vrps", []byte(`[]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "upsert app-vrps")
}

func TestNewFailsWhenTableCannotBeCreated(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS state`).WillReturnError(errors.New("permission denied"))
	mock.ExpectClose()
	_, err = New(context.Background(), "postgres://example/db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure state table")
}
