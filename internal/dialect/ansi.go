package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sqlcore/internal/sqlast"
)

// ansi is the shared translator. Concrete dialects embed it, configure its
// tables and shadow the methods where their syntax differs.
type ansi struct {
	name       string
	caps       Capabilities
	quoteOpen  string
	quoteClose string
	funcs      map[sqlast.FuncKind]string // function name, without "("
	types      typeNames
	// offsetOnlyLimit is the LIMIT spelled when only OFFSET is given;
	// empty means OFFSET may stand alone.
	offsetOnlyLimit string
}

func (d *ansi) Name() string               { return d.name }
func (d *ansi) Capabilities() Capabilities { return d.caps }

// QuoteIdentifier quotes each part, doubling embedded close quotes.
func (d *ansi) QuoteIdentifier(parts ...string) string {
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		quoted = append(quoted, d.quoteOpen+strings.ReplaceAll(p, d.quoteClose, d.quoteClose+d.quoteClose)+d.quoteClose)
	}
	return strings.Join(quoted, ".")
}

func (d *ansi) ParameterMarker(ordinal int, name string) string {
	switch d.caps.Parameters {
	case ParamOrdinal:
		return "$" + strconv.Itoa(ordinal+1)
	case ParamPositional:
		return "?"
	default:
		return "@" + name
	}
}

func (d *ansi) FuncArgs(f *sqlast.Func) []sqlast.Expression {
	return f.Args
}

// Translate handles every node section that dialects share.
func (d *ansi) Translate(n sqlast.Node, s Section) (string, error) {
	switch node := n.(type) {
	case *sqlast.Select:
		return d.selectSection(node, s)
	case *sqlast.SetOp:
		return d.setOpSection(node, s)
	case *sqlast.Insert:
		return pick(n, s, d.name, map[Section]string{
			Entry: "INSERT INTO ", ColumnsEntry: " (", Delimiter: ", ", ColumnsExit: ")",
			ValuesEntry: " VALUES (", ValuesExit: ")", DefaultValues: " DEFAULT VALUES", Exit: "",
		})
	case *sqlast.Update:
		return pick(n, s, d.name, map[Section]string{
			Entry: "UPDATE ", Set: " SET ", Operator: " = ", Delimiter: ", ", Where: " WHERE ", Exit: "",
		})
	case *sqlast.Delete:
		return pick(n, s, d.name, map[Section]string{
			Entry: "DELETE FROM ", Where: " WHERE ", Exit: "",
		})
	case *sqlast.Batch:
		if !d.caps.Batches {
			return "", unsupported("batch", d.name)
		}
		return pick(n, s, d.name, map[Section]string{Entry: "", Delimiter: ";\n", Exit: ";"})
	case *sqlast.CreateSequence, *sqlast.AlterSequence, *sqlast.DropSequence:
		return d.sequenceSection(n, s)
	case *sqlast.CreateIndex:
		return d.createIndexSection(node, s)
	case *sqlast.DropIndex:
		if s == Entry {
			return "DROP INDEX " + d.QuoteIdentifier(node.Name), nil
		}
		return pick(n, s, d.name, map[Section]string{Exit: ""})
	case *sqlast.TableRef:
		return pick(n, s, d.name, map[Section]string{Alias: " AS "})
	case *sqlast.QueryRef:
		return pick(n, s, d.name, map[Section]string{Entry: "(", Exit: ")", Alias: " AS "})
	case *sqlast.Join:
		return d.joinSection(node, s)
	case *sqlast.Null:
		return pick(n, s, d.name, map[Section]string{Entry: "NULL"})
	case *sqlast.Default:
		return pick(n, s, d.name, map[Section]string{Entry: "DEFAULT"})
	case *sqlast.Star:
		return pick(n, s, d.name, map[Section]string{Entry: "*"})
	case *sqlast.ColumnAlias:
		return pick(n, s, d.name, map[Section]string{Alias: " AS "})
	case *sqlast.Binary:
		return d.binarySection(node, s)
	case *sqlast.Unary:
		return d.unarySection(node, s)
	case *sqlast.Like:
		return d.likeSection(node, s)
	case *sqlast.Between:
		op := " BETWEEN "
		if node.Not {
			op = " NOT BETWEEN "
		}
		return pick(n, s, d.name, map[Section]string{Entry: "", Operator: op, Delimiter: " AND ", Exit: ""})
	case *sqlast.Func:
		return d.funcSection(node, s)
	case *sqlast.Aggregate:
		return d.aggregateSection(node, s)
	case *sqlast.Case:
		entry := "CASE"
		if node.Operand != nil {
			entry = "CASE "
		}
		return pick(n, s, d.name, map[Section]string{
			Entry: entry, When: " WHEN ", Then: " THEN ", Else: " ELSE ", Exit: " END",
		})
	case *sqlast.Cast:
		// The compiler writes TypeName between Alias and Exit.
		return pick(n, s, d.name, map[Section]string{Entry: "CAST(", Alias: " AS ", Exit: ")"})
	case *sqlast.Row:
		return pick(n, s, d.name, map[Section]string{Entry: "(", Delimiter: ", ", Exit: ")"})
	case *sqlast.SubQuery:
		return pick(n, s, d.name, map[Section]string{Entry: "(", Exit: ")"})
	case *sqlast.OrderItem:
		if s == Exit {
			if node.Desc {
				return " DESC", nil
			}
			return "", nil
		}
	}
	return "", unsupportedSection(n, s, d.name)
}

// pick returns the text of s from table, or an unsupported error naming
// the section.
func pick(n sqlast.Node, s Section, dialect string, table map[Section]string) (string, error) {
	if text, ok := table[s]; ok {
		return text, nil
	}
	return "", unsupportedSection(n, s, dialect)
}

func (d *ansi) selectSection(sel *sqlast.Select, s Section) (string, error) {
	switch s {
	case Entry:
		if sel.Distinct {
			return "SELECT DISTINCT ", nil
		}
		return "SELECT ", nil
	case HintsEntry, HintsExit, Exit:
		return "", nil
	case Delimiter:
		return ", ", nil
	case From:
		return " FROM ", nil
	case Where:
		return " WHERE ", nil
	case GroupBy:
		return " GROUP BY ", nil
	case Having:
		return " HAVING ", nil
	case OrderBy:
		return " ORDER BY ", nil
	case OrderByDefault:
		if d.caps.Paging == PagingOffsetFetch {
			return " ORDER BY (SELECT NULL)", nil
		}
		return "", nil
	case LimitEntry, LimitExit, OffsetEntry, OffsetExit:
		return d.pagingSection(sel, s)
	case Lock:
		switch sel.Lock {
		case sqlast.NoLock:
			return "", nil
		case sqlast.LockForUpdate:
			if d.caps.RowLocking {
				return " FOR UPDATE", nil
			}
			return "", unsupported("select for update", d.name)
		case sqlast.LockForShare:
			if d.caps.RowLocking {
				return " FOR SHARE", nil
			}
			return "", unsupported("select for share", d.name)
		}
	}
	return "", unsupportedSection(sel, s, d.name)
}

func (d *ansi) pagingSection(sel *sqlast.Select, s Section) (string, error) {
	switch d.caps.Paging {
	case PagingLimitOffset:
		switch s {
		case LimitEntry:
			return " LIMIT ", nil
		case OffsetEntry:
			if sel.Limit == nil && d.offsetOnlyLimit != "" {
				return " LIMIT " + d.offsetOnlyLimit + " OFFSET ", nil
			}
			return " OFFSET ", nil
		default:
			return "", nil
		}
	case PagingOffsetFetch:
		switch s {
		case OffsetEntry:
			return " OFFSET ", nil
		case OffsetExit:
			return " ROWS", nil
		case LimitEntry:
			if sel.Offset == nil {
				return " OFFSET 0 ROWS FETCH NEXT ", nil
			}
			return " FETCH NEXT ", nil
		case LimitExit:
			return " ROWS ONLY", nil
		}
	}
	return "", unsupported("limit/offset", d.name)
}

func (d *ansi) setOpSection(op *sqlast.SetOp, s Section) (string, error) {
	if !d.caps.SupportsSetOp(op.Kind) {
		return "", unsupported(op.Kind.String(), d.name)
	}
	switch s {
	case Entry, Exit:
		return "", nil
	case Operator:
		text := " " + strings.ToUpper(op.Kind.String()) + " "
		if op.All {
			text += "ALL "
		}
		return text, nil
	}
	return "", unsupportedSection(op, s, d.name)
}

func (d *ansi) joinSection(j *sqlast.Join, s Section) (string, error) {
	switch s {
	case Entry, Exit:
		return "", nil
	case Operator:
		if j.Kind == sqlast.FullOuterJoin && !d.caps.FullOuterJoin {
			return "", unsupported(j.Kind.String(), d.name)
		}
		return " " + strings.ToUpper(j.Kind.String()) + " ", nil
	case Condition:
		return " ON ", nil
	}
	return "", unsupportedSection(j, s, d.name)
}

var binaryOperators = map[sqlast.BinaryOp]string{
	sqlast.OpEq: " = ", sqlast.OpNotEq: " <> ", sqlast.OpLt: " < ", sqlast.OpLtEq: " <= ",
	sqlast.OpGt: " > ", sqlast.OpGtEq: " >= ", sqlast.OpAnd: " AND ", sqlast.OpOr: " OR ",
	sqlast.OpAdd: " + ", sqlast.OpSub: " - ", sqlast.OpMul: " * ", sqlast.OpDiv: " / ",
	sqlast.OpMod: " % ", sqlast.OpConcat: " || ", sqlast.OpIn: " IN ", sqlast.OpNotIn: " NOT IN ",
	sqlast.OpBitAnd: " & ", sqlast.OpBitOr: " | ", sqlast.OpBitXor: " ^ ",
}

// groups reports whether a binary operator is parenthesized so that the
// rendered text never depends on operator precedence.
func groups(op sqlast.BinaryOp) bool {
	switch op {
	case sqlast.OpEq, sqlast.OpNotEq, sqlast.OpLt, sqlast.OpLtEq, sqlast.OpGt, sqlast.OpGtEq,
		sqlast.OpIn, sqlast.OpNotIn:
		return false
	}
	return true
}

func (d *ansi) binarySection(b *sqlast.Binary, s Section) (string, error) {
	switch s {
	case Entry:
		if groups(b.Op) {
			return "(", nil
		}
		return "", nil
	case Exit:
		if groups(b.Op) {
			return ")", nil
		}
		return "", nil
	case Operator:
		if text, ok := binaryOperators[b.Op]; ok {
			return text, nil
		}
		return "", unsupported("operator "+b.Op.String(), d.name)
	}
	return "", unsupportedSection(b, s, d.name)
}

func (d *ansi) unarySection(u *sqlast.Unary, s Section) (string, error) {
	var entry, exit string
	switch u.Op {
	case sqlast.OpNot:
		entry, exit = "NOT (", ")"
	case sqlast.OpNegate:
		entry, exit = "-(", ")"
	case sqlast.OpBitNot:
		entry, exit = "~(", ")"
	case sqlast.OpIsNull:
		exit = " IS NULL"
	case sqlast.OpIsNotNull:
		exit = " IS NOT NULL"
	case sqlast.OpExists:
		entry = "EXISTS "
	default:
		return "", unsupported("operator "+u.Op.String(), d.name)
	}
	switch s {
	case Entry:
		return entry, nil
	case Exit:
		return exit, nil
	}
	return "", unsupportedSection(u, s, d.name)
}

func (d *ansi) likeSection(l *sqlast.Like, s Section) (string, error) {
	switch s {
	case Entry:
		return "", nil
	case Operator:
		if l.Not {
			return " NOT LIKE ", nil
		}
		return " LIKE ", nil
	case Exit:
		if l.Escape == 0 {
			return "", nil
		}
		esc := string(l.Escape)
		return " ESCAPE '" + strings.ReplaceAll(esc, "'", "''") + "'", nil
	}
	return "", unsupportedSection(l, s, d.name)
}

func (d *ansi) funcSection(f *sqlast.Func, s Section) (string, error) {
	switch f.Kind {
	case sqlast.FuncUser:
		return pick(f, s, d.name, map[Section]string{Entry: f.Name + "(", Delimiter: ", ", Exit: ")"})
	case sqlast.FuncCurrentTimestamp, sqlast.FuncCurrentDate:
		name, ok := d.funcs[f.Kind]
		if !ok {
			return "", unsupported(sqlast.KindName(f), d.name)
		}
		return pick(f, s, d.name, map[Section]string{Entry: name, Exit: ""})
	case sqlast.FuncPosition:
		if _, ok := d.funcs[f.Kind]; !ok {
			return pick(f, s, d.name, map[Section]string{Entry: "POSITION(", Delimiter: " IN ", Exit: ")"})
		}
	case sqlast.FuncNextValue:
		return "", unsupported("sequences", d.name)
	}
	name, ok := d.funcs[f.Kind]
	if !ok {
		return "", unsupported(sqlast.KindName(f), d.name)
	}
	return pick(f, s, d.name, map[Section]string{Entry: name + "(", Delimiter: ", ", Exit: ")"})
}

func (d *ansi) aggregateSection(a *sqlast.Aggregate, s Section) (string, error) {
	switch s {
	case Entry:
		entry := strings.ToUpper(a.Kind.String()) + "("
		if a.Arg == nil {
			return entry + "*", nil
		}
		if a.Distinct {
			entry += "DISTINCT "
		}
		return entry, nil
	case Exit:
		return ")", nil
	}
	return "", unsupportedSection(a, s, d.name)
}

func (d *ansi) sequenceName(seq *sqlast.Sequence) string {
	return d.QuoteIdentifier(seq.Schema, seq.Name)
}

func (d *ansi) sequenceSection(n sqlast.Node, s Section) (string, error) {
	if !d.caps.Sequences {
		return "", unsupported("sequences", d.name)
	}
	switch s {
	case Exit:
		return "", nil
	case Entry:
	default:
		return "", unsupportedSection(n, s, d.name)
	}

	var sb strings.Builder
	switch node := n.(type) {
	case *sqlast.CreateSequence:
		sb.WriteString("CREATE SEQUENCE " + d.sequenceName(node.Sequence))
		writeSequenceOptions(&sb, node.Sequence.Descriptor, true)
	case *sqlast.AlterSequence:
		sb.WriteString("ALTER SEQUENCE " + d.sequenceName(node.Sequence))
		if node.Restart != nil {
			fmt.Fprintf(&sb, " RESTART WITH %d", *node.Restart)
		}
		writeSequenceOptions(&sb, node.Sequence.Descriptor, false)
	case *sqlast.DropSequence:
		sb.WriteString("DROP SEQUENCE " + d.sequenceName(node.Sequence))
	}
	return sb.String(), nil
}

func writeSequenceOptions(sb *strings.Builder, desc sqlast.SequenceDescriptor, withStart bool) {
	if withStart && desc.Start != nil {
		fmt.Fprintf(sb, " START WITH %d", *desc.Start)
	}
	if desc.Increment != nil {
		fmt.Fprintf(sb, " INCREMENT BY %d", *desc.Increment)
	}
	if desc.Min != nil {
		fmt.Fprintf(sb, " MINVALUE %d", *desc.Min)
	}
	if desc.Max != nil {
		fmt.Fprintf(sb, " MAXVALUE %d", *desc.Max)
	}
	if desc.Cycle {
		sb.WriteString(" CYCLE")
	}
}

func (d *ansi) indexColumns(ix *sqlast.CreateIndex) string {
	cols := make([]string, len(ix.Columns))
	for i, c := range ix.Columns {
		cols[i] = d.QuoteIdentifier(c.Name)
		if c.Desc {
			cols[i] += " DESC"
		}
	}
	return "(" + strings.Join(cols, ", ") + ")"
}

func (d *ansi) indexHead(ix *sqlast.CreateIndex) string {
	head := "CREATE "
	if ix.Unique {
		head += "UNIQUE "
	}
	return head + "INDEX " + d.QuoteIdentifier(ix.Name) + " ON " + d.QuoteIdentifier(ix.Table.Schema, ix.Table.Name)
}

func (d *ansi) createIndexSection(ix *sqlast.CreateIndex, s Section) (string, error) {
	if !d.caps.SupportsIndex(ix.Kind) {
		return "", unsupported(ix.Kind.String()+" index", d.name)
	}
	switch s {
	case Entry:
		switch ix.Kind {
		case sqlast.IndexBTree, sqlast.IndexFiltered:
			return d.indexHead(ix) + " " + d.indexColumns(ix), nil
		}
		return "", unsupported(ix.Kind.String()+" index", d.name)
	case Where:
		return " WHERE ", nil
	case Exit:
		return "", nil
	}
	return "", unsupportedSection(ix, s, d.name)
}
