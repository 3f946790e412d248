package request

import (
	"log/slog"
	"slices"

	"github.com/roach88/sqlcore/internal/binding"
	"github.com/roach88/sqlcore/internal/compiler"
	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/sqlast"
)

// Option configures builders and caches.
type Option func(*settings)

type settings struct {
	logger *slog.Logger
}

// WithLogger sets the logger.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// PersistRequestBuilder turns tasks into prepared persist requests.
type PersistRequestBuilder struct {
	compiler *compiler.Compiler
	logger   *slog.Logger
}

// NewPersistRequestBuilder returns a builder compiling with c.
func NewPersistRequestBuilder(c *compiler.Compiler, opts ...Option) *PersistRequestBuilder {
	s := newSettings(opts)
	return &PersistRequestBuilder{compiler: c, logger: s.logger}
}

// Compiler returns the compiler requests are prepared with.
func (b *PersistRequestBuilder) Compiler() *compiler.Compiler { return b.compiler }

// buildContext is the state of one Build call.
type buildContext struct {
	task        Task
	keyBindings map[*ir.ColumnInfo]*binding.Binding
}

type part struct {
	stmt          sqlast.Statement
	bindings      *binding.Set
	checksVersion bool
}

// Build returns the prepared requests that perform task, in execution
// order.
//
// Inserts write ancestor tables first and deletes write them last. When
// the dialect runs batches and no statement validates versions, several
// statements are merged into one batch request.
func (b *PersistRequestBuilder) Build(task Task) ([]*PersistRequest, error) {
	if err := task.validate(); err != nil {
		return nil, err
	}
	ctx := &buildContext{task: task, keyBindings: make(map[*ir.ColumnInfo]*binding.Binding)}

	tables := ancestorsFirst(task.Type.Tables)
	var parts []part
	switch task.Operation {
	case Insert:
		for _, tbl := range tables {
			if len(tbl.Columns) > 0 {
				parts = append(parts, ctx.insert(tbl))
			}
		}
	case Update:
		for _, tbl := range tables {
			if p, ok := ctx.update(tbl); ok {
				parts = append(parts, p)
			}
		}
	case Delete:
		slices.Reverse(tables)
		for _, tbl := range tables {
			parts = append(parts, ctx.delete(tbl))
		}
	default:
		return nil, ErrInvalidTask.New("unknown operation " + task.Operation.String())
	}

	caps := b.compiler.Dialect().Capabilities()
	if caps.Batches && len(parts) > 1 && !task.ValidateVersion {
		batch := &sqlast.Batch{}
		sets := make([]*binding.Set, 0, len(parts))
		for _, p := range parts {
			batch.Statements = append(batch.Statements, p.stmt)
			sets = append(sets, p.bindings)
		}
		parts = []part{{stmt: batch, bindings: binding.Union(sets...)}}
	}

	requests := make([]*PersistRequest, 0, len(parts))
	for _, p := range parts {
		req := NewPersistRequest(b.compiler, p.stmt, p.bindings, p.checksVersion)
		if err := req.Prepare(); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	b.logger.Debug("persist requests built",
		"task", task.String(),
		"requests", len(requests))
	return requests, nil
}

// ancestorsFirst orders tables so that every table follows its ancestors.
// Unrelated tables keep their relative order.
func ancestorsFirst(tables []*ir.TableInfo) []*ir.TableInfo {
	rest := slices.Clone(tables)
	out := make([]*ir.TableInfo, 0, len(tables))
	for len(rest) > 0 {
		for i, t := range rest {
			blocked := slices.ContainsFunc(rest, func(o *ir.TableInfo) bool {
				return o != t && o.IsAncestorOf(t)
			})
			if !blocked {
				out = append(out, t)
				rest = slices.Delete(rest, i, i+1)
				break
			}
		}
	}
	return out
}

func tableRef(tbl *ir.TableInfo) *sqlast.TableRef {
	return sqlast.Ref(&sqlast.BaseTable{Schema: tbl.Schema, Name: tbl.Name})
}

func (ctx *buildContext) insert(tbl *ir.TableInfo) part {
	ref := tableRef(tbl)
	ins := &sqlast.Insert{Into: ref}
	set := binding.NewSet()
	for _, col := range tbl.Columns {
		if !ctx.task.Available.Has(col.FieldIndex) {
			continue
		}
		bind := binding.NewPersist(binding.MappingFor(col.Type), col.FieldIndex, binding.PersistRegular)
		ins.Columns = append(ins.Columns, sqlast.Col(ref, col.Name))
		ins.Values = append(ins.Values, bind.Ref)
		set.Add(bind)
	}
	return part{stmt: ins, bindings: set}
}

func (ctx *buildContext) update(tbl *ir.TableInfo) (part, bool) {
	ref := tableRef(tbl)
	upd := &sqlast.Update{Table: ref}
	set := binding.NewSet()
	for _, col := range tbl.Columns {
		if col.PrimaryKey || !ctx.task.Changed.Has(col.FieldIndex) {
			continue
		}
		bind := binding.NewPersist(binding.MappingFor(col.Type), col.FieldIndex, binding.PersistRegular)
		upd.Set = append(upd.Set, &sqlast.Assignment{Column: sqlast.Col(ref, col.Name), Value: bind.Ref})
		set.Add(bind)
	}

	versions := tbl.VersionColumns()
	validate := ctx.task.ValidateVersion && len(versions) > 0
	if len(upd.Set) == 0 {
		if !validate {
			return part{}, false
		}
		// Touch the row so the version filter still runs.
		v := versions[0]
		upd.Set = append(upd.Set, &sqlast.Assignment{Column: sqlast.Col(ref, v.Name), Value: sqlast.Col(ref, v.Name)})
	}

	upd.Where = ctx.where(ref, tbl, set, validate)
	return part{stmt: upd, bindings: set, checksVersion: validate}, true
}

func (ctx *buildContext) delete(tbl *ir.TableInfo) part {
	ref := tableRef(tbl)
	set := binding.NewSet()
	validate := ctx.task.ValidateVersion && len(tbl.VersionColumns()) > 0
	del := &sqlast.Delete{From: ref, Where: ctx.where(ref, tbl, set, validate)}
	return part{stmt: del, bindings: set, checksVersion: validate}
}

// where builds the key equality conditions and, when validating, one
// version condition per version column.
func (ctx *buildContext) where(ref *sqlast.TableRef, tbl *ir.TableInfo, set *binding.Set, validate bool) sqlast.Expression {
	var conds []sqlast.Expression
	for _, col := range tbl.KeyColumns() {
		bind := ctx.keyBinding(col)
		set.Add(bind)
		conds = append(conds, sqlast.Eq(sqlast.Col(ref, col.Name), bind.Ref))
	}
	if validate {
		for _, col := range tbl.VersionColumns() {
			conds = append(conds, versionFilter(ref, col, set))
		}
	}
	return sqlast.And(conds...)
}

func (ctx *buildContext) keyBinding(col *ir.ColumnInfo) *binding.Binding {
	if b, ok := ctx.keyBindings[col]; ok {
		return b
	}
	b := binding.NewPersist(binding.MappingFor(col.Type), col.FieldIndex, binding.PersistRegular)
	ctx.keyBindings[col] = b
	return b
}

// versionFilter compares a version column with its original value. The
// variant is keyed on the binding: a null original renders IS NULL.
func versionFilter(ref *sqlast.TableRef, col *ir.ColumnInfo, set *binding.Set) sqlast.Expression {
	bind := binding.NewPersist(binding.MappingFor(col.Type), col.FieldIndex, binding.VersionFilter)
	set.Add(bind)

	var value sqlast.Expression = bind.Ref
	if col.Type.IsHighPrecisionDecimal() {
		value = &sqlast.Cast{Expr: bind.Ref, Type: col.Type}
	}
	return &sqlast.Variant{
		Key:  bind,
		Main: sqlast.IsNull(sqlast.Col(ref, col.Name)),
		Alt:  sqlast.Eq(sqlast.Col(ref, col.Name), value),
	}
}
