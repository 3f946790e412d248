package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/sqlcore/internal/compiler"
	"github.com/roach88/sqlcore/internal/dialect"
	"github.com/roach88/sqlcore/internal/request"
	"github.com/roach88/sqlcore/internal/testutil"
	"github.com/stretchr/testify/require"
)

var modelDDL = []string{
	`CREATE TABLE documents (id INTEGER PRIMARY KEY, version INTEGER, title TEXT NOT NULL, body TEXT)`,
	`CREATE TABLE invoices (id INTEGER PRIMARY KEY REFERENCES documents(id), amount NUMERIC NOT NULL, stamp NUMERIC)`,
}

// createTestStore opens a SQLite store in a temp dir with the test model's
// tables created.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.ExecScript(context.Background(), modelDDL...))
	return s
}

func newCache(name string) *request.TaskCache {
	c := compiler.New(dialect.MustLookup(name), compiler.WithLogger(testutil.DiscardLogger()))
	b := request.NewPersistRequestBuilder(c, request.WithLogger(testutil.DiscardLogger()))
	return request.NewTaskCache(b, request.WithLogger(testutil.DiscardLogger()))
}
