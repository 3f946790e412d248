package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sqlcore/internal/binding"
	"github.com/roach88/sqlcore/internal/dialect"
	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/request"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrVersionConflict is returned when a statement filtered on version
// columns affects no rows: the row was changed or deleted since it was
// read.
var ErrVersionConflict = errors.NewKind("version conflict: command %s affected no rows")

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// driverArgs spells the arguments of cmd for database/sql. Named-style
// dialects get sql.Named values so drivers bind by name.
func driverArgs(cmd *request.Command) []any {
	args := make([]any, len(cmd.Args))
	for i, a := range cmd.Args {
		if cmd.Style == dialect.ParamNamed {
			args[i] = sql.Named(a.Name, a.Value)
		} else {
			args[i] = a.Value
		}
	}
	return args
}

func (s *Store) exec(ctx context.Context, db execer, cmd *request.Command) (int64, error) {
	res, err := db.ExecContext(ctx, cmd.SQL, driverArgs(cmd)...)
	if err != nil {
		return 0, fmt.Errorf("exec %s: %w", cmd.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("exec %s: rows affected: %w", cmd.ID, err)
	}
	s.logger.Debug("command executed",
		"id", cmd.ID.String(),
		"args", len(cmd.Args),
		"rows", n)
	if cmd.ChecksVersion && n == 0 {
		return 0, ErrVersionConflict.New(cmd.ID.String())
	}
	return n, nil
}

// Exec runs cmd and returns the number of rows it affected. A command that
// checks versions and affects nothing fails with ErrVersionConflict.
func (s *Store) Exec(ctx context.Context, cmd *request.Command) (int64, error) {
	return s.exec(ctx, s.db, cmd)
}

// ExecPersist renders every request for state and runs them in order in
// one transaction. Any error, including a version conflict, rolls the
// transaction back. It returns the total rows affected.
func (s *Store) ExecPersist(ctx context.Context, reqs []*request.PersistRequest, state request.EntityState) (int64, error) {
	cmds := make([]*request.Command, 0, len(reqs))
	for _, r := range reqs {
		cmd, err := r.Command(state)
		if err != nil {
			return 0, fmt.Errorf("exec persist: %w", err)
		}
		cmds = append(cmds, cmd)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("exec persist: begin: %w", err)
	}
	var total int64
	for _, cmd := range cmds {
		n, err := s.exec(ctx, tx, cmd)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn("rollback failed", "error", rbErr)
			}
			return 0, err
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("exec persist: commit: %w", err)
	}
	return total, nil
}

// Query runs cmd and decodes every row with reader.
func (s *Store) Query(ctx context.Context, cmd *request.Command, reader *request.RowReader) ([]ir.Tuple, error) {
	rows, err := s.db.QueryContext(ctx, cmd.SQL, driverArgs(cmd)...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", cmd.ID, err)
	}
	defer rows.Close()

	width := reader.Width()
	raw := make([]any, width)
	dest := make([]any, width)
	for i := range raw {
		dest[i] = &raw[i]
	}

	var out []ir.Tuple
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("query %s: scan: %w", cmd.ID, err)
		}
		row, err := reader.Read(raw)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", cmd.ID, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", cmd.ID, err)
	}
	s.logger.Debug("query executed", "id", cmd.ID.String(), "rows", len(out))
	return out, nil
}

// RunQuery renders req with params and runs it.
func (s *Store) RunQuery(ctx context.Context, req *request.QueryRequest, params map[string]ir.IRValue) ([]ir.Tuple, error) {
	reader, err := req.Reader()
	if err != nil {
		return nil, err
	}
	cmd, err := req.Command(binding.NewParameterContext(params))
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, cmd, reader)
}
