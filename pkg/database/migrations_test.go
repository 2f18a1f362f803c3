package database

import (
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"002_transitions.sql":     {Data: []byte("CREATE TABLE report_transitions (id INTEGER);")},
		"001_reconciliations.sql": {Data: []byte("CREATE TABLE reconciliations (id INTEGER);")},
		"README.md":               {Data: []byte("not a migration")},
	}
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations(testFS())
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "reconciliations", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Version)
	assert.Equal(t, "transitions", migrations[1].Name)
}

func TestLoadMigrations_RejectsBadNames(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{"init.sql": {Data: []byte("SELECT 1")}})
	assert.Error(t, err)

	_, err = LoadMigrations(fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1")},
		"001_b.sql": {Data: []byte("SELECT 2")},
	})
	assert.Error(t, err)
}

func TestMigrator_AppliesOnlyPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE report_transitions")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version, name) VALUES (?, ?)")).
		WithArgs(2, "transitions").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err = NewMigrator(db, zap.NewNop()).Run(testFS())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE reconciliations")).
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = NewMigrator(db, zap.NewNop()).Run(testFS())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
