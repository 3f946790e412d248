package dialect

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/sqlast"
)

// SQLServer translates for SQL Server 2017 and later.
type SQLServer struct {
	ansi
}

// NewSQLServer returns the SQL Server translator.
func NewSQLServer() *SQLServer {
	return &SQLServer{ansi{
		name: "sqlserver",
		caps: Capabilities{
			Paging:          PagingOffsetFetch,
			Parameters:      ParamNamed,
			Indexes:         IndexBTree | IndexFiltered,
			SetOperations:   SetIntersect | SetExcept,
			Batches:         true,
			JoinOrderHints:  true,
			Sequences:       true,
			FullOuterJoin:   true,
			StringIndexBase: 1,
		},
		quoteOpen:  "[",
		quoteClose: "]",
		funcs: map[sqlast.FuncKind]string{
			sqlast.FuncSubstring:        "SUBSTRING",
			sqlast.FuncPosition:         "CHARINDEX",
			sqlast.FuncLength:           "LEN",
			sqlast.FuncUpper:            "UPPER",
			sqlast.FuncLower:            "LOWER",
			sqlast.FuncTrim:             "TRIM",
			sqlast.FuncConcat:           "CONCAT",
			sqlast.FuncCoalesce:         "COALESCE",
			sqlast.FuncAbs:              "ABS",
			sqlast.FuncRound:            "ROUND",
			sqlast.FuncCurrentTimestamp: "CURRENT_TIMESTAMP",
			sqlast.FuncCurrentDate:      "CAST(GETDATE() AS date)",
		},
		types: typeNames{
			names: map[ir.TypeKind]string{
				ir.KindBool: "bit", ir.KindInt16: "smallint", ir.KindInt32: "int",
				ir.KindInt64: "bigint", ir.KindFloat: "real", ir.KindDouble: "float",
				ir.KindDecimal: "decimal", ir.KindString: "nvarchar(max)", ir.KindText: "nvarchar(max)",
				ir.KindBinary: "varbinary(max)", ir.KindBlob: "varbinary(max)", ir.KindDateTime: "datetime2",
				ir.KindDate: "date", ir.KindTime: "time", ir.KindGUID: "uniqueidentifier",
			},
			withLength: map[ir.TypeKind]string{
				ir.KindString: "nvarchar(%d)", ir.KindBinary: "varbinary(%d)",
			},
			withPrecision: "decimal(%d,%d)",
		},
	}}
}

func (d *SQLServer) Translate(n sqlast.Node, s Section) (string, error) {
	switch node := n.(type) {
	case *sqlast.Select:
		if s == HintsExit && node.ForceJoinOrder {
			return " OPTION (FORCE ORDER)", nil
		}
	case *sqlast.Binary:
		if node.Op == sqlast.OpConcat && s == Operator {
			return " + ", nil
		}
	case *sqlast.Func:
		switch {
		case node.Kind == sqlast.FuncNextValue:
			seq := d.QuoteIdentifier(strings.Split(node.Name, ".")...)
			return pick(n, s, d.name, map[Section]string{Entry: "NEXT VALUE FOR " + seq, Exit: ""})
		case node.Kind == sqlast.FuncSubstring && len(node.Args) == 2 && s == Exit:
			// SUBSTRING requires a length; take the rest of the string.
			return ", 2147483647)", nil
		}
	case *sqlast.DropIndex:
		if s == Entry && node.Table != nil {
			return "DROP INDEX " + d.QuoteIdentifier(node.Name) + " ON " +
				d.QuoteIdentifier(node.Table.Schema, node.Table.Name), nil
		}
	}
	return d.ansi.Translate(n, s)
}

func (d *SQLServer) Literal(v ir.IRValue) (string, error) {
	switch val := v.(type) {
	case ir.IRString:
		return "N" + d.stringLiteral(string(val)), nil
	case ir.IRTime:
		return "CAST(" + d.stringLiteral(time.Time(val).Format(DateTimeLayout)) + " AS datetime2)", nil
	case ir.IRBytes:
		return "0x" + strings.ToUpper(hex.EncodeToString(val)), nil
	}
	return d.ansi.Literal(v)
}
