package request

import (
	"sync"

	"github.com/roach88/sqlcore/internal/binding"
	"github.com/roach88/sqlcore/internal/compiler"
	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/sqlast"
)

// EntityState is the data one persist command writes. Regular bindings
// read Current; version filters read Original, or Current when Original
// is nil.
type EntityState struct {
	Current  ir.Tuple
	Original ir.Tuple
}

// PersistRequest is one INSERT, UPDATE, DELETE or batch of them, with the
// bindings its parameters refer to.
//
// A request starts uncompiled. Prepare compiles it once and drops the
// statement tree; later calls do nothing.
type PersistRequest struct {
	mu            sync.Mutex
	compiler      *compiler.Compiler
	stmt          sqlast.Statement
	bindings      *binding.Set
	checksVersion bool
	result        *compiler.Result
}

// NewPersistRequest returns an unprepared request. checksVersion marks a
// statement whose WHERE clause filters on version columns.
func NewPersistRequest(c *compiler.Compiler, stmt sqlast.Statement, bindings *binding.Set, checksVersion bool) *PersistRequest {
	return &PersistRequest{
		compiler:      c,
		stmt:          stmt,
		bindings:      bindings,
		checksVersion: checksVersion,
	}
}

// Prepare compiles the request.
func (r *PersistRequest) Prepare() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result != nil {
		return nil
	}
	res, err := r.compiler.Compile(r.stmt)
	if err != nil {
		return err
	}
	r.result = res
	r.stmt = nil
	return nil
}

// IsPrepared reports whether Prepare has succeeded.
func (r *PersistRequest) IsPrepared() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result != nil
}

// Compiled returns the compiled statement.
func (r *PersistRequest) Compiled() (*compiler.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return nil, ErrNotPrepared.New("persist")
	}
	return r.result, nil
}

// Bindings returns the parameter bindings of the statement.
func (r *PersistRequest) Bindings() *binding.Set { return r.bindings }

// ChecksVersion reports whether a run that affects no rows means the row
// was changed concurrently.
func (r *PersistRequest) ChecksVersion() bool { return r.checksVersion }

// Command renders the request for state.
func (r *PersistRequest) Command(state EntityState) (*Command, error) {
	res, err := r.Compiled()
	if err != nil {
		return nil, err
	}
	original := state.Original
	if original == nil {
		original = state.Current
	}
	cmd, err := renderCommand(res, r.bindings, func(b *binding.Binding) (ir.IRValue, error) {
		if b.IsVersionFilter() {
			return b.Value(original, nil)
		}
		return b.Value(state.Current, nil)
	})
	if err != nil {
		return nil, err
	}
	cmd.ChecksVersion = r.checksVersion
	return cmd, nil
}
