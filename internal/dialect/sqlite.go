package dialect

import (
	"time"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/sqlast"
)

// SQLite translates for SQLite 3.39 and later.
type SQLite struct {
	ansi
}

// NewSQLite returns the SQLite translator.
func NewSQLite() *SQLite {
	return &SQLite{ansi{
		name: "sqlite",
		caps: Capabilities{
			Paging:          PagingLimitOffset,
			Parameters:      ParamNamed,
			Indexes:         IndexBTree | IndexFiltered,
			SetOperations:   SetIntersect | SetExcept,
			Batches:         true,
			FullOuterJoin:   true,
			BooleanLiterals: true,
			StringIndexBase: 1,
		},
		quoteOpen:       `"`,
		quoteClose:      `"`,
		offsetOnlyLimit: "-1",
		funcs: map[sqlast.FuncKind]string{
			sqlast.FuncSubstring:        "SUBSTR",
			sqlast.FuncPosition:         "INSTR",
			sqlast.FuncLength:           "LENGTH",
			sqlast.FuncUpper:            "UPPER",
			sqlast.FuncLower:            "LOWER",
			sqlast.FuncTrim:             "TRIM",
			sqlast.FuncCoalesce:         "COALESCE",
			sqlast.FuncAbs:              "ABS",
			sqlast.FuncRound:            "ROUND",
			sqlast.FuncCurrentTimestamp: "CURRENT_TIMESTAMP",
			sqlast.FuncCurrentDate:      "CURRENT_DATE",
		},
		types: typeNames{
			names: map[ir.TypeKind]string{
				ir.KindBool: "INTEGER", ir.KindInt16: "INTEGER", ir.KindInt32: "INTEGER",
				ir.KindInt64: "INTEGER", ir.KindFloat: "REAL", ir.KindDouble: "REAL",
				ir.KindDecimal: "NUMERIC", ir.KindString: "TEXT", ir.KindText: "TEXT",
				ir.KindBinary: "BLOB", ir.KindBlob: "BLOB", ir.KindDateTime: "TEXT",
				ir.KindDate: "TEXT", ir.KindTime: "TEXT", ir.KindGUID: "TEXT",
			},
		},
	}}
}

func (d *SQLite) Translate(n sqlast.Node, s Section) (string, error) {
	if f, ok := n.(*sqlast.Func); ok && f.Kind == sqlast.FuncConcat {
		return pick(n, s, d.name, map[Section]string{Entry: "(", Delimiter: " || ", Exit: ")"})
	}
	return d.ansi.Translate(n, s)
}

// FuncArgs puts INSTR arguments in (haystack, needle) order.
func (d *SQLite) FuncArgs(f *sqlast.Func) []sqlast.Expression {
	if f.Kind == sqlast.FuncPosition && len(f.Args) == 2 {
		return []sqlast.Expression{f.Args[1], f.Args[0]}
	}
	return f.Args
}

func (d *SQLite) Literal(v ir.IRValue) (string, error) {
	if t, ok := v.(ir.IRTime); ok {
		return d.stringLiteral(time.Time(t).Format(DateTimeLayout)), nil
	}
	return d.ansi.Literal(v)
}
