package request

import (
	"strings"
	"sync"

	"github.com/roach88/sqlcore/internal/binding"
	"github.com/roach88/sqlcore/internal/compiler"
	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/sqlast"
)

// QueryOptions are flags carried with a query request.
type QueryOptions uint16

const (
	AllowOptimization QueryOptions = 1 << iota
	Cacheable
	Prefetch
	ReadOnly
)

// Contains reports whether every flag of other is set.
func (o QueryOptions) Contains(other QueryOptions) bool {
	return o&other == other
}

func (o QueryOptions) String() string {
	var names []string
	for _, f := range []struct {
		flag QueryOptions
		name string
	}{{AllowOptimization, "optimize"}, {Cacheable, "cacheable"}, {Prefetch, "prefetch"}, {ReadOnly, "readonly"}} {
		if o.Contains(f.flag) {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// QueryRequest is a SELECT with its bindings and result row shape.
// Prepare compiles the statement and builds the row reader together.
type QueryRequest struct {
	mu         sync.Mutex
	compiler   *compiler.Compiler
	stmt       sqlast.Statement
	bindings   *binding.Set
	descriptor RowDescriptor
	options    QueryOptions

	result *compiler.Result
	reader *RowReader
}

// NewQueryRequest returns an unprepared request.
func NewQueryRequest(c *compiler.Compiler, stmt sqlast.Statement, bindings *binding.Set, descriptor RowDescriptor, options QueryOptions) *QueryRequest {
	if bindings == nil {
		bindings = binding.NewSet()
	}
	return &QueryRequest{
		compiler:   c,
		stmt:       stmt,
		bindings:   bindings,
		descriptor: descriptor,
		options:    options,
	}
}

// Prepare compiles the statement and builds the row reader. On error
// neither is kept.
func (r *QueryRequest) Prepare() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result != nil {
		return nil
	}
	res, err := r.compiler.Compile(r.stmt)
	if err != nil {
		return err
	}
	reader, err := NewRowReader(r.descriptor)
	if err != nil {
		return err
	}
	r.result, r.reader = res, reader
	r.stmt = nil
	return nil
}

// Compiled returns the compiled statement.
func (r *QueryRequest) Compiled() (*compiler.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return nil, ErrNotPrepared.New("query")
	}
	return r.result, nil
}

// Reader returns the row reader.
func (r *QueryRequest) Reader() (*RowReader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reader == nil {
		return nil, ErrNotPrepared.New("query")
	}
	return r.reader, nil
}

func (r *QueryRequest) Bindings() *binding.Set { return r.bindings }

func (r *QueryRequest) Options() QueryOptions { return r.options }

// Command renders the request with the given parameter values.
func (r *QueryRequest) Command(params *binding.ParameterContext) (*Command, error) {
	res, err := r.Compiled()
	if err != nil {
		return nil, err
	}
	return renderCommand(res, r.bindings, func(b *binding.Binding) (ir.IRValue, error) {
		return b.Value(nil, params)
	})
}
