package dialect

import (
	"strings"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/sqlast"
)

// MySQL translates for MySQL 5.7 and 8.0.
type MySQL struct {
	ansi
}

// NewMySQL returns the MySQL translator.
func NewMySQL() *MySQL {
	return &MySQL{ansi{
		name: "mysql",
		caps: Capabilities{
			Paging:          PagingLimitOffset,
			Parameters:      ParamPositional,
			Indexes:         IndexBTree | IndexHash | IndexFullText,
			JoinOrderHints:  true,
			RowLocking:      true,
			BooleanLiterals: true,
			StringIndexBase: 1,
		},
		quoteOpen:       "`",
		quoteClose:      "`",
		offsetOnlyLimit: "18446744073709551615",
		funcs: map[sqlast.FuncKind]string{
			sqlast.FuncSubstring:        "SUBSTRING",
			sqlast.FuncPosition:         "LOCATE",
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
				ir.KindBool: "SIGNED", ir.KindInt16: "SIGNED", ir.KindInt32: "SIGNED",
				ir.KindInt64: "SIGNED", ir.KindFloat: "FLOAT", ir.KindDouble: "DOUBLE",
				ir.KindDecimal: "DECIMAL", ir.KindString: "CHAR", ir.KindText: "CHAR",
				ir.KindBinary: "BINARY", ir.KindBlob: "BINARY", ir.KindDateTime: "DATETIME(6)",
				ir.KindDate: "DATE", ir.KindTime: "TIME(6)", ir.KindGUID: "CHAR(36)",
			},
			withLength: map[ir.TypeKind]string{
				ir.KindString: "CHAR(%d)", ir.KindBinary: "BINARY(%d)",
			},
			withPrecision: "DECIMAL(%d,%d)",
		},
	}}
}

func (d *MySQL) Translate(n sqlast.Node, s Section) (string, error) {
	switch node := n.(type) {
	case *sqlast.Select:
		switch {
		case s == HintsEntry && node.ForceJoinOrder:
			return "STRAIGHT_JOIN ", nil
		case s == Lock && node.Lock == sqlast.LockForShare:
			return " LOCK IN SHARE MODE", nil
		}
	case *sqlast.Insert:
		if s == DefaultValues {
			return " () VALUES ()", nil
		}
	case *sqlast.Binary:
		if node.Op == sqlast.OpConcat {
			return pick(n, s, d.name, map[Section]string{Entry: "CONCAT(", Operator: ", ", Exit: ")"})
		}
	case *sqlast.CreateIndex:
		if s == Entry {
			switch node.Kind {
			case sqlast.IndexHash:
				return d.indexHead(node) + " " + d.indexColumns(node) + " USING HASH", nil
			case sqlast.IndexFullText:
				return "CREATE FULLTEXT INDEX " + d.QuoteIdentifier(node.Name) + " ON " +
					d.QuoteIdentifier(node.Table.Schema, node.Table.Name) + " " + d.indexColumns(node), nil
			}
		}
	case *sqlast.DropIndex:
		if s == Entry && node.Table != nil {
			return "DROP INDEX " + d.QuoteIdentifier(node.Name) + " ON " +
				d.QuoteIdentifier(node.Table.Schema, node.Table.Name), nil
		}
	}
	return d.ansi.Translate(n, s)
}

func (d *MySQL) Literal(v ir.IRValue) (string, error) {
	if s, ok := v.(ir.IRString); ok {
		escaped := strings.ReplaceAll(string(s), `\`, `\\`)
		return "'" + strings.ReplaceAll(escaped, "'", "''") + "'", nil
	}
	return d.ansi.Literal(v)
}
