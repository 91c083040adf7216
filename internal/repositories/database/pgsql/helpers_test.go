package pgsql

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// arrayConverter lets []string arguments reach sqlmock the way pgx's stdlib driver accepts them.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// stringsArg matches a []string argument exactly.
type stringsArg []string

func (a stringsArg) Match(v driver.Value) bool {
	got, ok := v.([]string)
	return ok && reflect.DeepEqual([]string(a), got)
}
