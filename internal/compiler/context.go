package compiler

import (
	"fmt"
	"strconv"

	"github.com/roach88/sqlcore/internal/dialect"
	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/output"
	"github.com/roach88/sqlcore/internal/sqlast"
)

// compileContext is the state of a single compile. It is never reused.
type compileContext struct {
	tr      dialect.Translator
	caps    dialect.Capabilities
	aliases *AliasProvider

	stack   []sqlast.Node
	onStack map[sqlast.Node]struct{}

	root *output.Container
	out  *output.Container

	// targets are the tables of enclosing INSERT/UPDATE/DELETE statements.
	targets []sqlast.Table

	deferred bool
	names    map[any]string
	order    []any
}

func newCompileContext(tr dialect.Translator, deferred bool, opts output.Options) *compileContext {
	root := output.NewContainer(opts)
	return &compileContext{
		tr:       tr,
		caps:     tr.Capabilities(),
		aliases:  NewAliasProvider(),
		onStack:  make(map[sqlast.Node]struct{}),
		root:     root,
		out:      root,
		deferred: deferred,
		names:    make(map[any]string),
	}
}

// enter pushes n on the traversal stack. The returned func pops it.
func (c *compileContext) enter(n sqlast.Node) (func(), error) {
	if n != nil {
		if _, ok := c.onStack[n]; ok {
			return nil, ErrCycle.New(sqlast.KindName(n))
		}
	}
	if err := sqlast.Validate(n); err != nil {
		return nil, err
	}
	c.onStack[n] = struct{}{}
	c.stack = append(c.stack, n)
	return func() {
		c.stack = c.stack[:len(c.stack)-1]
		delete(c.onStack, n)
	}, nil
}

// nested runs fn with a fresh child container as the output target.
// nested compiles fn into a child container that keeps the current
// options and adds opts.
func (c *compileContext) nested(opts output.Options, fn func() error) error {
	return c.scoped(c.out.Options|opts, fn)
}

// query compiles a SELECT or set operation. Target columns referenced
// from inside it render qualified.
func (c *compileContext) query(fn func() error) error {
	return c.scoped(c.out.Options&^output.OmitTableAlias, fn)
}

func (c *compileContext) scoped(opts output.Options, fn func() error) error {
	parent := c.out
	child := output.NewContainer(opts)
	parent.Append(child)
	c.out = child
	defer func() { c.out = parent }()
	return fn()
}

func (c *compileContext) section(n sqlast.Node, s dialect.Section) error {
	text, err := c.tr.Translate(n, s)
	if err != nil {
		return err
	}
	c.out.AppendText(text)
	return nil
}

func (c *compileContext) text(s string) {
	c.out.AppendText(s)
}

// list visits items, placing the Delimiter section of owner between them.
func (c *compileContext) list(owner sqlast.Node, items []sqlast.Expression) error {
	for i, item := range items {
		if i > 0 {
			if err := c.section(owner, dialect.Delimiter); err != nil {
				return err
			}
		}
		if err := c.visit(item); err != nil {
			return err
		}
	}
	return nil
}

func (c *compileContext) visit(n sqlast.Node) error {
	leave, err := c.enter(n)
	if err != nil {
		return err
	}
	defer leave()

	switch node := n.(type) {
	case *sqlast.Select:
		return c.query(func() error { return c.visitSelect(node) })
	case *sqlast.SetOp:
		return c.query(func() error { return c.visitSetOp(node) })
	case *sqlast.Insert:
		return c.withTarget(node.Into, func() error { return c.visitInsert(node) })
	case *sqlast.Update:
		return c.withTarget(node.Table, func() error { return c.visitUpdate(node) })
	case *sqlast.Delete:
		return c.withTarget(node.From, func() error { return c.visitDelete(node) })
	case *sqlast.Batch:
		return c.nested(0, func() error { return c.visitBatch(node) })
	case *sqlast.CreateSequence, *sqlast.AlterSequence, *sqlast.DropSequence, *sqlast.DropIndex:
		if err := c.section(n, dialect.Entry); err != nil {
			return err
		}
		return c.section(n, dialect.Exit)
	case *sqlast.CreateIndex:
		return c.visitCreateIndex(node)
	case *sqlast.TableRef:
		c.text(c.tr.QuoteIdentifier(node.Table.Schema, node.Table.Name))
		if err := c.section(n, dialect.Alias); err != nil {
			return err
		}
		c.text(c.tr.QuoteIdentifier(c.aliases.Alias(node)))
		return nil
	case *sqlast.QueryRef:
		return c.nested(0, func() error { return c.visitQueryRef(node) })
	case *sqlast.Join:
		return c.nested(0, func() error { return c.visitJoin(node) })
	case *sqlast.Literal:
		text, err := c.tr.Literal(node.Value)
		if err != nil {
			return err
		}
		c.text(text)
		return nil
	case *sqlast.Null, *sqlast.Default:
		return c.section(n, dialect.Entry)
	case *sqlast.Native:
		c.text(node.Text)
		return nil
	case *sqlast.ParamRef:
		c.parameter(node.Binding)
		return nil
	case *sqlast.Placeholder:
		c.out.Append(&output.Placeholder{Kind: output.InlineValue, Key: node.Key})
		return nil
	case *sqlast.Variant:
		return c.visitVariant(node)
	case *sqlast.Column:
		c.text(c.columnName(node))
		return nil
	case *sqlast.Star:
		if node.Table != nil {
			c.text(c.tr.QuoteIdentifier(c.aliases.Alias(node.Table)) + ".")
		}
		return c.section(n, dialect.Entry)
	case *sqlast.ColumnAlias:
		if err := c.visit(node.Expr); err != nil {
			return err
		}
		if err := c.section(n, dialect.Alias); err != nil {
			return err
		}
		c.text(c.tr.QuoteIdentifier(node.Alias))
		return nil
	case *sqlast.Binary:
		return c.nested(0, func() error { return c.visitBinary(node) })
	case *sqlast.Unary:
		return c.nested(0, func() error {
			if err := c.section(n, dialect.Entry); err != nil {
				return err
			}
			if err := c.visit(node.Operand); err != nil {
				return err
			}
			return c.section(n, dialect.Exit)
		})
	case *sqlast.Like:
		return c.nested(0, func() error { return c.visitLike(node) })
	case *sqlast.Between:
		return c.nested(0, func() error { return c.visitBetween(node) })
	case *sqlast.Func:
		return c.nested(0, func() error { return c.visitFunc(node) })
	case *sqlast.Aggregate:
		return c.nested(0, func() error {
			if err := c.section(n, dialect.Entry); err != nil {
				return err
			}
			if node.Arg != nil {
				if err := c.visit(node.Arg); err != nil {
					return err
				}
			}
			return c.section(n, dialect.Exit)
		})
	case *sqlast.Case:
		return c.nested(0, func() error { return c.visitCase(node) })
	case *sqlast.Cast:
		return c.nested(0, func() error { return c.visitCast(node) })
	case *sqlast.Row:
		return c.nested(0, func() error {
			if err := c.section(n, dialect.Entry); err != nil {
				return err
			}
			if err := c.list(n, node.Items); err != nil {
				return err
			}
			return c.section(n, dialect.Exit)
		})
	case *sqlast.SubQuery:
		return c.nested(0, func() error {
			if err := c.section(n, dialect.Entry); err != nil {
				return err
			}
			if err := c.visit(node.Query); err != nil {
				return err
			}
			return c.section(n, dialect.Exit)
		})
	case *sqlast.OrderItem:
		if err := c.visit(node.Expr); err != nil {
			return err
		}
		return c.section(n, dialect.Exit)
	}
	return dialect.ErrUnsupported.New(fmt.Sprintf("node %T", n), c.tr.Name())
}

func (c *compileContext) visitSelect(sel *sqlast.Select) error {
	for _, s := range []dialect.Section{dialect.Entry, dialect.HintsEntry} {
		if err := c.section(sel, s); err != nil {
			return err
		}
	}
	if err := c.list(sel, sel.Columns); err != nil {
		return err
	}
	if sel.From != nil {
		if err := c.section(sel, dialect.From); err != nil {
			return err
		}
		if err := c.visit(sel.From); err != nil {
			return err
		}
	}
	if err := c.clause(sel, dialect.Where, sel.Where); err != nil {
		return err
	}
	if len(sel.GroupBy) > 0 {
		if err := c.section(sel, dialect.GroupBy); err != nil {
			return err
		}
		if err := c.list(sel, sel.GroupBy); err != nil {
			return err
		}
	}
	if err := c.clause(sel, dialect.Having, sel.Having); err != nil {
		return err
	}
	if err := c.visitOrderBy(sel); err != nil {
		return err
	}
	if err := c.visitPaging(sel); err != nil {
		return err
	}
	for _, s := range []dialect.Section{dialect.Lock, dialect.HintsExit, dialect.Exit} {
		if err := c.section(sel, s); err != nil {
			return err
		}
	}
	return nil
}

// clause writes section s followed by expr, or nothing when expr is nil.
func (c *compileContext) clause(owner sqlast.Node, s dialect.Section, expr sqlast.Expression) error {
	if expr == nil {
		return nil
	}
	if err := c.section(owner, s); err != nil {
		return err
	}
	return c.visit(expr)
}

func (c *compileContext) visitOrderBy(sel *sqlast.Select) error {
	if len(sel.OrderBy) == 0 {
		if sel.Limit != nil || sel.Offset != nil {
			return c.section(sel, dialect.OrderByDefault)
		}
		return nil
	}
	if err := c.section(sel, dialect.OrderBy); err != nil {
		return err
	}
	for i, item := range sel.OrderBy {
		if i > 0 {
			if err := c.section(sel, dialect.Delimiter); err != nil {
				return err
			}
		}
		if err := c.visit(item); err != nil {
			return err
		}
	}
	return nil
}

func (c *compileContext) visitPaging(sel *sqlast.Select) error {
	type part struct {
		expr        sqlast.Expression
		entry, exit dialect.Section
	}
	limit := part{sel.Limit, dialect.LimitEntry, dialect.LimitExit}
	offset := part{sel.Offset, dialect.OffsetEntry, dialect.OffsetExit}
	parts := []part{limit, offset}
	if c.caps.Paging == dialect.PagingOffsetFetch {
		parts = []part{offset, limit}
	}
	for _, p := range parts {
		if p.expr == nil {
			continue
		}
		if err := c.section(sel, p.entry); err != nil {
			return err
		}
		if err := c.visit(p.expr); err != nil {
			return err
		}
		if err := c.section(sel, p.exit); err != nil {
			return err
		}
	}
	return nil
}

func (c *compileContext) visitSetOp(op *sqlast.SetOp) error {
	if err := c.section(op, dialect.Entry); err != nil {
		return err
	}
	if err := c.visit(op.Left); err != nil {
		return err
	}
	if err := c.section(op, dialect.Operator); err != nil {
		return err
	}
	if err := c.visit(op.Right); err != nil {
		return err
	}
	return c.section(op, dialect.Exit)
}

// withTarget compiles a data-modification statement whose own table
// renders without an alias. Its columns render unqualified until a nested
// query clears OmitTableAlias.
func (c *compileContext) withTarget(target *sqlast.TableRef, fn func() error) error {
	c.targets = append(c.targets, target)
	defer func() { c.targets = c.targets[:len(c.targets)-1] }()
	return c.nested(output.OmitTableAlias, fn)
}

// targetTable writes the unaliased name of a statement's target table.
func (c *compileContext) targetTable(ref *sqlast.TableRef) error {
	leave, err := c.enter(ref)
	if err != nil {
		return err
	}
	defer leave()
	c.text(c.tr.QuoteIdentifier(ref.Table.Schema, ref.Table.Name))
	return nil
}

func (c *compileContext) isTarget(t sqlast.Table) bool {
	for _, target := range c.targets {
		if target == t {
			return true
		}
	}
	return false
}

func (c *compileContext) columnName(col *sqlast.Column) string {
	switch col.Table.(type) {
	case nil, *sqlast.Join:
		return c.tr.QuoteIdentifier(col.Name)
	}
	if c.isTarget(col.Table) {
		if c.out.Options.Has(output.OmitTableAlias) {
			return c.tr.QuoteIdentifier(col.Name)
		}
		// The target has no alias, so a subquery names it by table.
		if ref, ok := col.Table.(*sqlast.TableRef); ok {
			return c.tr.QuoteIdentifier(ref.Table.Schema, ref.Table.Name, col.Name)
		}
	}
	return c.tr.QuoteIdentifier(c.aliases.Alias(col.Table), col.Name)
}

func (c *compileContext) visitInsert(ins *sqlast.Insert) error {
	if err := c.section(ins, dialect.Entry); err != nil {
		return err
	}
	if err := c.targetTable(ins.Into); err != nil {
		return err
	}
	if len(ins.Columns) == 0 {
		if err := c.section(ins, dialect.DefaultValues); err != nil {
			return err
		}
		return c.section(ins, dialect.Exit)
	}

	columns := make([]sqlast.Expression, len(ins.Columns))
	for i, col := range ins.Columns {
		columns[i] = col
	}
	if err := c.section(ins, dialect.ColumnsEntry); err != nil {
		return err
	}
	if err := c.list(ins, columns); err != nil {
		return err
	}
	if err := c.section(ins, dialect.ColumnsExit); err != nil {
		return err
	}
	if err := c.section(ins, dialect.ValuesEntry); err != nil {
		return err
	}
	if err := c.list(ins, ins.Values); err != nil {
		return err
	}
	if err := c.section(ins, dialect.ValuesExit); err != nil {
		return err
	}
	return c.section(ins, dialect.Exit)
}

func (c *compileContext) visitUpdate(upd *sqlast.Update) error {
	if err := c.section(upd, dialect.Entry); err != nil {
		return err
	}
	if err := c.targetTable(upd.Table); err != nil {
		return err
	}
	if err := c.section(upd, dialect.Set); err != nil {
		return err
	}
	for i, a := range upd.Set {
		if i > 0 {
			if err := c.section(upd, dialect.Delimiter); err != nil {
				return err
			}
		}
		if err := c.visit(a.Column); err != nil {
			return err
		}
		if err := c.section(upd, dialect.Operator); err != nil {
			return err
		}
		if err := c.visit(a.Value); err != nil {
			return err
		}
	}
	if err := c.clause(upd, dialect.Where, upd.Where); err != nil {
		return err
	}
	return c.section(upd, dialect.Exit)
}

func (c *compileContext) visitDelete(del *sqlast.Delete) error {
	if err := c.section(del, dialect.Entry); err != nil {
		return err
	}
	if err := c.targetTable(del.From); err != nil {
		return err
	}
	if err := c.clause(del, dialect.Where, del.Where); err != nil {
		return err
	}
	return c.section(del, dialect.Exit)
}

func (c *compileContext) visitBatch(b *sqlast.Batch) error {
	if err := c.section(b, dialect.Entry); err != nil {
		return err
	}
	for i, stmt := range b.Statements {
		if i > 0 {
			if err := c.section(b, dialect.Delimiter); err != nil {
				return err
			}
		}
		if err := c.visit(stmt); err != nil {
			return err
		}
	}
	return c.section(b, dialect.Exit)
}

func (c *compileContext) visitCreateIndex(ix *sqlast.CreateIndex) error {
	if err := c.section(ix, dialect.Entry); err != nil {
		return err
	}
	if err := c.clause(ix, dialect.Where, ix.Where); err != nil {
		return err
	}
	return c.section(ix, dialect.Exit)
}

func (c *compileContext) visitQueryRef(ref *sqlast.QueryRef) error {
	if err := c.section(ref, dialect.Entry); err != nil {
		return err
	}
	if err := c.visit(ref.Query); err != nil {
		return err
	}
	if err := c.section(ref, dialect.Exit); err != nil {
		return err
	}
	if err := c.section(ref, dialect.Alias); err != nil {
		return err
	}
	c.text(c.tr.QuoteIdentifier(c.aliases.Alias(ref)))
	return nil
}

func (c *compileContext) visitJoin(j *sqlast.Join) error {
	if err := c.section(j, dialect.Entry); err != nil {
		return err
	}
	if err := c.visit(j.Left); err != nil {
		return err
	}
	if err := c.section(j, dialect.Operator); err != nil {
		return err
	}
	if err := c.visit(j.Right); err != nil {
		return err
	}
	if err := c.clause(j, dialect.Condition, j.On); err != nil {
		return err
	}
	return c.section(j, dialect.Exit)
}

func (c *compileContext) visitBinary(b *sqlast.Binary) error {
	if err := c.section(b, dialect.Entry); err != nil {
		return err
	}
	if err := c.visit(b.Left); err != nil {
		return err
	}
	if err := c.section(b, dialect.Operator); err != nil {
		return err
	}
	if err := c.visit(b.Right); err != nil {
		return err
	}
	return c.section(b, dialect.Exit)
}

func (c *compileContext) visitLike(l *sqlast.Like) error {
	if err := c.section(l, dialect.Entry); err != nil {
		return err
	}
	if err := c.visit(l.Expr); err != nil {
		return err
	}
	if err := c.section(l, dialect.Operator); err != nil {
		return err
	}
	if err := c.visit(l.Pattern); err != nil {
		return err
	}
	return c.section(l, dialect.Exit)
}

func (c *compileContext) visitBetween(b *sqlast.Between) error {
	if err := c.section(b, dialect.Entry); err != nil {
		return err
	}
	if err := c.visit(b.Expr); err != nil {
		return err
	}
	if err := c.section(b, dialect.Operator); err != nil {
		return err
	}
	if err := c.visit(b.Low); err != nil {
		return err
	}
	if err := c.section(b, dialect.Delimiter); err != nil {
		return err
	}
	if err := c.visit(b.High); err != nil {
		return err
	}
	return c.section(b, dialect.Exit)
}

func (c *compileContext) visitCase(cs *sqlast.Case) error {
	if err := c.section(cs, dialect.Entry); err != nil {
		return err
	}
	if cs.Operand != nil {
		if err := c.visit(cs.Operand); err != nil {
			return err
		}
	}
	for _, w := range cs.Whens {
		if err := c.clause(cs, dialect.When, w.Cond); err != nil {
			return err
		}
		if err := c.clause(cs, dialect.Then, w.Result); err != nil {
			return err
		}
	}
	if err := c.clause(cs, dialect.Else, cs.Else); err != nil {
		return err
	}
	return c.section(cs, dialect.Exit)
}

func (c *compileContext) visitCast(cast *sqlast.Cast) error {
	if err := c.section(cast, dialect.Entry); err != nil {
		return err
	}
	if err := c.visit(cast.Expr); err != nil {
		return err
	}
	if err := c.section(cast, dialect.Alias); err != nil {
		return err
	}
	typeName, err := c.tr.TypeName(cast.Type)
	if err != nil {
		return err
	}
	c.text(typeName)
	return c.section(cast, dialect.Exit)
}

// visitFunc writes a function call. Substring starts and Position results
// are zero-based in the tree and shifted by the dialect's string index
// base here.
func (c *compileContext) visitFunc(f *sqlast.Func) error {
	base := c.caps.StringIndexBase
	call := f
	if f.Kind == sqlast.FuncSubstring && base != 0 {
		shifted := *f
		shifted.Args = append([]sqlast.Expression(nil), f.Args...)
		shifted.Args[1] = shiftIndex(f.Args[1], base)
		call = &shifted
	}
	if f.Kind != sqlast.FuncPosition || base == 0 {
		return c.call(call)
	}

	offset := &sqlast.Binary{Op: sqlast.OpSub, Left: f, Right: &sqlast.Literal{Value: ir.IRInt(base)}}
	if err := c.section(offset, dialect.Entry); err != nil {
		return err
	}
	if err := c.call(call); err != nil {
		return err
	}
	if err := c.section(offset, dialect.Operator); err != nil {
		return err
	}
	if err := c.visit(offset.Right); err != nil {
		return err
	}
	return c.section(offset, dialect.Exit)
}

func (c *compileContext) call(f *sqlast.Func) error {
	if err := c.section(f, dialect.Entry); err != nil {
		return err
	}
	if err := c.list(f, c.tr.FuncArgs(f)); err != nil {
		return err
	}
	return c.section(f, dialect.Exit)
}

// shiftIndex adds base to a zero-based index expression, folding integer
// literals.
func shiftIndex(e sqlast.Expression, base int) sqlast.Expression {
	if lit, ok := e.(*sqlast.Literal); ok {
		if n, ok := lit.Value.(ir.IRInt); ok {
			return &sqlast.Literal{Value: n + ir.IRInt(base)}
		}
	}
	return &sqlast.Binary{Op: sqlast.OpAdd, Left: e, Right: &sqlast.Literal{Value: ir.IRInt(base)}}
}

func (c *compileContext) visitVariant(v *sqlast.Variant) error {
	out := &output.Variant{
		Key:  v.Key,
		Main: output.NewContainer(c.out.Options),
		Alt:  output.NewContainer(c.out.Options),
	}
	c.out.Append(out)

	parent := c.out
	defer func() { c.out = parent }()
	for _, branch := range []struct {
		expr sqlast.Expression
		into *output.Container
	}{{v.Main, out.Main}, {v.Alt, out.Alt}} {
		if branch.expr == nil {
			continue
		}
		c.out = branch.into
		if err := c.visit(branch.expr); err != nil {
			return err
		}
	}
	return nil
}

// parameter writes a placeholder for binding and records its name.
func (c *compileContext) parameter(binding any) {
	if _, ok := c.names[binding]; !ok {
		name := ""
		if !c.deferred {
			name = "p" + strconv.Itoa(len(c.order))
		}
		c.names[binding] = name
		c.order = append(c.order, binding)
	}
	c.out.Append(&output.Placeholder{Kind: output.ParameterName, Key: binding})
}
