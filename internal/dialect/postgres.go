package dialect

import (
	"encoding/hex"
	"strings"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/sqlast"
)

// Postgres translates for PostgreSQL 12 and later.
type Postgres struct {
	ansi
}

// NewPostgres returns the PostgreSQL translator.
func NewPostgres() *Postgres {
	return &Postgres{ansi{
		name: "postgres",
		caps: Capabilities{
			Paging:          PagingLimitOffset,
			Parameters:      ParamOrdinal,
			Indexes:         IndexBTree | IndexHash | IndexFiltered,
			SetOperations:   SetIntersect | SetExcept,
			Sequences:       true,
			RowLocking:      true,
			FullOuterJoin:   true,
			BooleanLiterals: true,
			StringIndexBase: 1,
		},
		quoteOpen:  `"`,
		quoteClose: `"`,
		funcs: map[sqlast.FuncKind]string{
			sqlast.FuncSubstring:        "SUBSTRING",
			sqlast.FuncLength:           "CHAR_LENGTH",
			sqlast.FuncUpper:            "UPPER",
			sqlast.FuncLower:            "LOWER",
			sqlast.FuncTrim:             "TRIM",
			sqlast.FuncConcat:           "CONCAT",
			sqlast.FuncCoalesce:         "COALESCE",
			sqlast.FuncAbs:              "ABS",
			sqlast.FuncRound:            "ROUND",
			sqlast.FuncCurrentTimestamp: "CURRENT_TIMESTAMP",
			sqlast.FuncCurrentDate:      "CURRENT_DATE",
		},
		types: typeNames{
			names: map[ir.TypeKind]string{
				ir.KindBool: "boolean", ir.KindInt16: "smallint", ir.KindInt32: "integer",
				ir.KindInt64: "bigint", ir.KindFloat: "real", ir.KindDouble: "double precision",
				ir.KindDecimal: "numeric", ir.KindString: "text", ir.KindText: "text",
				ir.KindBinary: "bytea", ir.KindBlob: "bytea", ir.KindDateTime: "timestamp",
				ir.KindDate: "date", ir.KindTime: "time", ir.KindGUID: "uuid",
			},
			withLength:    map[ir.TypeKind]string{ir.KindString: "varchar(%d)"},
			withPrecision: "numeric(%d,%d)",
		},
	}}
}

func (d *Postgres) Translate(n sqlast.Node, s Section) (string, error) {
	switch node := n.(type) {
	case *sqlast.Func:
		if node.Kind == sqlast.FuncNextValue {
			seq := d.QuoteIdentifier(strings.Split(node.Name, ".")...)
			return pick(n, s, d.name, map[Section]string{Entry: "nextval(" + d.stringLiteral(seq) + ")", Exit: ""})
		}
	case *sqlast.CreateIndex:
		if node.Kind == sqlast.IndexHash && s == Entry {
			return d.indexHead(node) + " USING HASH " + d.indexColumns(node), nil
		}
	}
	return d.ansi.Translate(n, s)
}

func (d *Postgres) Literal(v ir.IRValue) (string, error) {
	if b, ok := v.(ir.IRBytes); ok {
		return "decode('" + hex.EncodeToString(b) + "', 'hex')", nil
	}
	return d.ansi.Literal(v)
}
