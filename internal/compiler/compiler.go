package compiler

import (
	"log/slog"

	"github.com/roach88/sqlcore/internal/dialect"
	"github.com/roach88/sqlcore/internal/output"
	"github.com/roach88/sqlcore/internal/sqlast"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrCycle is returned when a node is reached again while it is still
// being compiled. No text is produced.
var ErrCycle = errors.NewKind("cycle in statement tree at %s")

// Compiler turns statement trees into compiled results for one dialect.
// A Compiler holds no per-compile state and may be shared by goroutines.
type Compiler struct {
	tr       dialect.Translator
	logger   *slog.Logger
	deferred bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for compile diagnostics.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// WithDeferredNaming leaves parameter names unassigned at compile time.
// Render then asks RenderOptions.Namer for each name.
func WithDeferredNaming() Option {
	return func(c *Compiler) {
		c.deferred = true
	}
}

// New creates a Compiler for tr.
func New(tr dialect.Translator, opts ...Option) *Compiler {
	c := &Compiler{
		tr:     tr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dialect returns the translator the compiler renders through.
func (c *Compiler) Dialect() dialect.Translator {
	return c.tr
}

// Compile walks stmt depth-first and builds its output tree.
//
// Every node is validated on entry. A node that is reached again while one
// of its own descendants is being compiled fails the whole compile with
// ErrCycle. Shared subtrees that are not on the current path are fine.
func (c *Compiler) Compile(stmt sqlast.Statement) (*Result, error) {
	var opts output.Options
	if c.deferred {
		opts |= output.DeferredNames
	}
	ctx := newCompileContext(c.tr, c.deferred, opts)
	if err := ctx.visit(stmt); err != nil {
		c.logger.Debug("compile failed",
			"dialect", c.tr.Name(),
			"error", err)
		return nil, err
	}

	c.logger.Debug("statement compiled",
		"dialect", c.tr.Name(),
		"kind", sqlast.KindName(stmt),
		"parameters", len(ctx.order),
		"aliases", ctx.aliases.Len())

	return &Result{
		tr:       c.tr,
		root:     ctx.root,
		params:   ctx.order,
		names:    ctx.names,
		deferred: c.deferred,
	}, nil
}
