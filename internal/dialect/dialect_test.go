package dialect

import (
	"testing"
	"time"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/sqlast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"postgres", "PostgreSQL", "mysql", "sqlite3", "mssql", " sqlserver "} {
		tr, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, tr.Name())
	}

	_, err := Lookup("oracle")
	require.Error(t, err)
	assert.True(t, ErrUnknownDialect.Is(err))
	assert.Contains(t, err.Error(), "mysql, postgres, sqlite, sqlserver")

	assert.Equal(t, []string{"mysql", "postgres", "sqlite", "sqlserver"}, Names())
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		dialect  string
		parts    []string
		expected string
	}{
		{"postgres", []string{"public", "order"}, `"public"."order"`},
		{"postgres", []string{"", "a\"b"}, `"a""b"`},
		{"mysql", []string{"order"}, "`order`"},
		{"mysql", []string{"a`b"}, "`a``b`"},
		{"sqlite", []string{"t"}, `"t"`},
		{"sqlserver", []string{"dbo", "a]b"}, "[dbo].[a]]b]"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, MustLookup(tt.dialect).QuoteIdentifier(tt.parts...))
		})
	}
}

func TestParameterMarker(t *testing.T) {
	assert.Equal(t, "$3", MustLookup("postgres").ParameterMarker(2, "p7"))
	assert.Equal(t, "?", MustLookup("mysql").ParameterMarker(2, "p7"))
	assert.Equal(t, "@p7", MustLookup("sqlite").ParameterMarker(2, "p7"))
	assert.Equal(t, "@p7", MustLookup("sqlserver").ParameterMarker(2, "p7"))
}

func TestLiteral(t *testing.T) {
	ts := ir.IRTime(time.Date(2024, 2, 29, 13, 5, 9, 120000000, time.UTC))
	tests := []struct {
		dialect  string
		value    ir.IRValue
		expected string
	}{
		{"postgres", ir.IRString("it's"), "'it''s'"},
		{"mysql", ir.IRString(`a\'b`), `'a\\''b'`},
		{"sqlserver", ir.IRString("x"), "N'x'"},
		{"postgres", ir.IRInt(-42), "-42"},
		{"postgres", ir.IRBool(true), "TRUE"},
		{"sqlserver", ir.IRBool(true), "1"},
		{"sqlserver", ir.IRBool(false), "0"},
		{"postgres", ir.IRFloat(1.5e-7), "1.5e-07"},
		{"postgres", ir.MustIRDecimal("1234567890.0987654321"), "1234567890.0987654321"},
		{"postgres", ts, "TIMESTAMP '2024-02-29 13:05:09.12'"},
		{"sqlite", ts, "'2024-02-29 13:05:09.12'"},
		{"sqlserver", ts, "CAST('2024-02-29 13:05:09.12' AS datetime2)"},
		{"postgres", ir.IRBytes{0xde, 0xad}, "decode('dead', 'hex')"},
		{"mysql", ir.IRBytes{0xde, 0xad}, "X'DEAD'"},
		{"sqlserver", ir.IRBytes{0xde, 0xad}, "0xDEAD"},
		{"mysql", ir.IRNull{}, "NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.expected, func(t *testing.T) {
			got, err := MustLookup(tt.dialect).Literal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLiteralUnsupported(t *testing.T) {
	_, err := MustLookup("postgres").Literal(ir.IRArray{})
	require.Error(t, err)
	assert.True(t, ErrUnsupported.Is(err))
	assert.Contains(t, err.Error(), "postgres")
}

func TestTypeName(t *testing.T) {
	dec := ir.ColumnType{Kind: ir.KindDecimal, Precision: 28, Scale: 10}
	str := ir.ColumnType{Kind: ir.KindString, Length: 50}
	tests := []struct {
		dialect  string
		typ      ir.ColumnType
		expected string
	}{
		{"postgres", dec, "numeric(28,10)"},
		{"mysql", dec, "DECIMAL(28,10)"},
		{"sqlite", dec, "NUMERIC"},
		{"sqlserver", dec, "decimal(28,10)"},
		{"postgres", str, "varchar(50)"},
		{"sqlserver", str, "nvarchar(50)"},
		{"sqlserver", ir.ColumnType{Kind: ir.KindString}, "nvarchar(max)"},
		{"mysql", ir.ColumnType{Kind: ir.KindInt64}, "SIGNED"},
		{"postgres", ir.ColumnType{Kind: ir.KindGUID}, "uuid"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.expected, func(t *testing.T) {
			got, err := MustLookup(tt.dialect).TypeName(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := MustLookup("postgres").TypeName(ir.ColumnType{})
	assert.True(t, ErrUnsupported.Is(err))
}

func TestCapabilities(t *testing.T) {
	pg := MustLookup("postgres").Capabilities()
	my := MustLookup("mysql").Capabilities()
	lite := MustLookup("sqlite").Capabilities()
	ms := MustLookup("sqlserver").Capabilities()

	assert.Equal(t, PagingLimitOffset, pg.Paging)
	assert.Equal(t, PagingOffsetFetch, ms.Paging)
	assert.True(t, lite.Batches)
	assert.True(t, ms.Batches)
	assert.False(t, pg.Batches)
	assert.False(t, my.Batches)
	assert.True(t, pg.SupportsIndex(sqlast.IndexHash))
	assert.False(t, ms.SupportsIndex(sqlast.IndexHash))
	assert.True(t, my.SupportsIndex(sqlast.IndexFullText))
	assert.False(t, my.SupportsIndex(sqlast.IndexFiltered))
	assert.False(t, my.SupportsSetOp(sqlast.Intersect))
	assert.True(t, my.SupportsSetOp(sqlast.Union))
	assert.Equal(t, "btree,hash,filtered", pg.IndexKindNames())
	for _, c := range []Capabilities{pg, my, lite, ms} {
		assert.Equal(t, 1, c.StringIndexBase)
	}
}

func TestTranslateUnsupported(t *testing.T) {
	a := sqlast.Ref(&sqlast.BaseTable{Name: "a"})
	tests := []struct {
		dialect   string
		node      sqlast.Node
		section   Section
		construct string
	}{
		{"postgres", &sqlast.Batch{}, Entry, "batch"},
		{"mysql", &sqlast.Join{Kind: sqlast.FullOuterJoin, Left: a, Right: a}, Operator, "full outer join"},
		{"mysql", &sqlast.SetOp{Kind: sqlast.Except}, Operator, "except"},
		{"sqlite", &sqlast.Select{Lock: sqlast.LockForUpdate}, Lock, "select for update"},
		{"mysql", &sqlast.CreateSequence{Sequence: &sqlast.Sequence{Name: "s"}}, Entry, "sequences"},
		{"sqlserver", &sqlast.CreateIndex{Kind: sqlast.IndexHash}, Entry, "hash index"},
		{"sqlite", &sqlast.Func{Kind: sqlast.FuncNextValue, Name: "s"}, Entry, "sequences"},
		{"postgres", &sqlast.Select{}, Condition, "select (condition)"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.construct, func(t *testing.T) {
			_, err := MustLookup(tt.dialect).Translate(tt.node, tt.section)
			require.Error(t, err)
			assert.True(t, ErrUnsupported.Is(err))
			assert.Equal(t, tt.construct+" is not supported by "+tt.dialect, err.Error())
		})
	}
}

func TestSequenceDDL(t *testing.T) {
	seq := &sqlast.Sequence{Schema: "app", Name: "order_seq", Descriptor: sqlast.SequenceDescriptor{
		Start: sqlast.Int64(100), Increment: sqlast.Int64(10), Min: sqlast.Int64(1), Max: sqlast.Int64(1000000), Cycle: true,
	}}

	got, err := MustLookup("postgres").Translate(&sqlast.CreateSequence{Sequence: seq}, Entry)
	require.NoError(t, err)
	assert.Equal(t, `CREATE SEQUENCE "app"."order_seq" START WITH 100 INCREMENT BY 10 MINVALUE 1 MAXVALUE 1000000 CYCLE`, got)

	got, err = MustLookup("sqlserver").Translate(&sqlast.AlterSequence{Sequence: &sqlast.Sequence{Name: "s"}, Restart: sqlast.Int64(5)}, Entry)
	require.NoError(t, err)
	assert.Equal(t, "ALTER SEQUENCE [s] RESTART WITH 5", got)
}

func TestIndexDDL(t *testing.T) {
	ix := &sqlast.CreateIndex{
		Name:    "ix_orders_customer",
		Table:   &sqlast.BaseTable{Name: "orders"},
		Kind:    sqlast.IndexHash,
		Columns: []*sqlast.IndexColumn{{Name: "customer"}},
	}

	got, err := MustLookup("postgres").Translate(ix, Entry)
	require.NoError(t, err)
	assert.Equal(t, `CREATE INDEX "ix_orders_customer" ON "orders" USING HASH ("customer")`, got)

	got, err = MustLookup("mysql").Translate(ix, Entry)
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX `ix_orders_customer` ON `orders` (`customer`) USING HASH", got)

	got, err = MustLookup("mysql").Translate(&sqlast.DropIndex{Name: "ix", Table: ix.Table}, Entry)
	require.NoError(t, err)
	assert.Equal(t, "DROP INDEX `ix` ON `orders`", got)
}

func TestPagingSections(t *testing.T) {
	lim := &sqlast.Literal{Value: ir.IRInt(10)}
	offsetOnly := &sqlast.Select{Offset: lim}
	limitOnly := &sqlast.Select{Limit: lim}

	entry := func(d string, sel *sqlast.Select, s Section) string {
		text, err := MustLookup(d).Translate(sel, s)
		require.NoError(t, err)
		return text
	}

	assert.Equal(t, " LIMIT -1 OFFSET ", entry("sqlite", offsetOnly, OffsetEntry))
	assert.Equal(t, " LIMIT 18446744073709551615 OFFSET ", entry("mysql", offsetOnly, OffsetEntry))
	assert.Equal(t, " OFFSET ", entry("postgres", offsetOnly, OffsetEntry))
	assert.Equal(t, " OFFSET 0 ROWS FETCH NEXT ", entry("sqlserver", limitOnly, LimitEntry))
	assert.Equal(t, " ROWS ONLY", entry("sqlserver", limitOnly, LimitExit))
	assert.Equal(t, " ORDER BY (SELECT NULL)", entry("sqlserver", limitOnly, OrderByDefault))
	assert.Equal(t, "", entry("postgres", limitOnly, OrderByDefault))
}

func TestFuncArgsReorder(t *testing.T) {
	needle := &sqlast.Literal{Value: ir.IRString("x")}
	hay := &sqlast.Native{Text: "name"}
	f := &sqlast.Func{Kind: sqlast.FuncPosition, Args: []sqlast.Expression{needle, hay}}

	assert.Equal(t, []sqlast.Expression{hay, needle}, MustLookup("sqlite").FuncArgs(f))
	assert.Equal(t, []sqlast.Expression{needle, hay}, MustLookup("mysql").FuncArgs(f))
}

func TestSectionString(t *testing.T) {
	assert.Equal(t, "default order by", OrderByDefault.String())
	assert.Equal(t, "unknown section", Section(200).String())
}
