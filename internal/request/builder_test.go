package request

import (
	"testing"

	"github.com/google/uuid"
	"github.com/roach88/sqlcore/internal/binding"
	"github.com/roach88/sqlcore/internal/compiler"
	"github.com/roach88/sqlcore/internal/dialect"
	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(name string, opts ...compiler.Option) *PersistRequestBuilder {
	opts = append([]compiler.Option{compiler.WithLogger(testutil.DiscardLogger())}, opts...)
	c := compiler.New(dialect.MustLookup(name), opts...)
	return NewPersistRequestBuilder(c, WithLogger(testutil.DiscardLogger()))
}

func mustTask(t *testing.T, typ *ir.TypeInfo, op Operation, changed, available ir.FieldSet, validate bool) Task {
	t.Helper()
	task, err := NewTask(typ, op, changed, available, validate)
	require.NoError(t, err)
	return task
}

func build(t *testing.T, name string, task Task) []*PersistRequest {
	t.Helper()
	reqs, err := newBuilder(name).Build(task)
	require.NoError(t, err)
	return reqs
}

func statements(t *testing.T, reqs []*PersistRequest) []string {
	t.Helper()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		res, err := r.Compiled()
		require.NoError(t, err)
		out[i], err = res.SQL()
		require.NoError(t, err)
	}
	return out
}

func TestBuild_Insert(t *testing.T) {
	m := testutil.NewModel()

	reqs := build(t, "postgres", mustTask(t, m.Invoice, Insert, ir.FieldSet{}, ir.FieldRange(6), false))
	assert.Equal(t, []string{
		`INSERT INTO "documents" ("id", "version", "title", "body") VALUES ($1, $2, $3, $4)`,
		`INSERT INTO "invoices" ("id", "amount", "stamp") VALUES ($1, $2, $3)`,
	}, statements(t, reqs))
	assert.Equal(t, 4, reqs[0].Bindings().Len())
	assert.Equal(t, 3, reqs[1].Bindings().Len())
	for _, r := range reqs {
		assert.True(t, r.IsPrepared())
		assert.False(t, r.ChecksVersion())
	}
}

func TestBuild_InsertAvailableOnly(t *testing.T) {
	m := testutil.NewModel()
	available := ir.NewFieldSet(testutil.FieldID, testutil.FieldTitle)

	reqs := build(t, "postgres", mustTask(t, m.Document, Insert, ir.FieldSet{}, available, false))
	assert.Equal(t, []string{`INSERT INTO "documents" ("id", "title") VALUES ($1, $2)`}, statements(t, reqs))
}

func TestBuild_InsertAncestorsFirst(t *testing.T) {
	m := testutil.NewModel()
	m.Invoice.Tables = []*ir.TableInfo{m.Invoices, m.Documents}

	reqs := build(t, "postgres", mustTask(t, m.Invoice, Insert, ir.FieldSet{}, ir.NewFieldSet(testutil.FieldID), false))
	assert.Equal(t, []string{
		`INSERT INTO "documents" ("id") VALUES ($1)`,
		`INSERT INTO "invoices" ("id") VALUES ($1)`,
	}, statements(t, reqs))
}

func TestAncestorsFirst_KeepsUnrelatedOrder(t *testing.T) {
	root := &ir.TableInfo{Name: "root"}
	child := &ir.TableInfo{Name: "child", Parent: root}
	other := &ir.TableInfo{Name: "other"}
	grandchild := &ir.TableInfo{Name: "grandchild", Parent: child}

	got := ancestorsFirst([]*ir.TableInfo{grandchild, other, child, root})
	assert.Equal(t, []*ir.TableInfo{other, root, child, grandchild}, got)
}

func TestBuild_UpdateChangedFieldsOnly(t *testing.T) {
	m := testutil.NewModel()
	changed := ir.NewFieldSet(testutil.FieldVersion, testutil.FieldAmount)

	reqs := build(t, "postgres", mustTask(t, m.Invoice, Update, changed, ir.FieldRange(6), false))
	assert.Equal(t, []string{
		`UPDATE "documents" SET "version" = $1 WHERE "id" = $2`,
		`UPDATE "invoices" SET "amount" = $1 WHERE "id" = $2`,
	}, statements(t, reqs))

	reqs = build(t, "postgres", mustTask(t, m.Invoice, Update, ir.NewFieldSet(testutil.FieldTitle), ir.FieldRange(6), false))
	assert.Equal(t, []string{`UPDATE "documents" SET "title" = $1 WHERE "id" = $2`}, statements(t, reqs))
	assert.False(t, reqs[0].ChecksVersion())
}

func TestBuild_RejectsInvalidTask(t *testing.T) {
	m := testutil.NewModel()

	tests := []struct {
		name      string
		task      Task
		wantError string
	}{
		{"no type", Task{Operation: Update}, "invalid persist task: no type"},
		{"validated insert", Task{Type: m.Document, Operation: Insert, Available: ir.FieldRange(4), ValidateVersion: true}, "invalid persist task: version validation requested for insert"},
		{"unknown operation", Task{Type: m.Document, Operation: Operation(5)}, "invalid persist task: unknown operation 5"},
		{"field out of range", Task{Type: m.Document, Operation: Insert, Available: ir.FieldRange(9)}, "invalid persist task: field 8 out of range for Document"},
		{"changed key", Task{Type: m.Invoice, Operation: Update, Changed: ir.NewFieldSet(testutil.FieldID), Available: ir.FieldRange(6)}, "invalid persist task: key field 0 of Invoice cannot change"},
		{"keyless update", Task{Type: keyless(), Operation: Update, Changed: ir.NewFieldSet(1), Available: ir.FieldRange(2)}, "invalid persist task: table audit_log has no key columns"},
		{"keyless delete", Task{Type: keyless(), Operation: Delete, Available: ir.FieldRange(2)}, "invalid persist task: table audit_log has no key columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs, err := newBuilder("postgres").Build(tt.task)
			require.Error(t, err)
			assert.True(t, ErrInvalidTask.Is(err))
			assert.EqualError(t, err, tt.wantError)
			assert.Nil(t, reqs)
		})
	}
}

func TestBuild_KeylessInsert(t *testing.T) {
	reqs := build(t, "postgres", Task{Type: keyless(), Operation: Insert, Available: ir.FieldRange(2)})
	assert.Equal(t, []string{`INSERT INTO "audit_log" ("at", "line") VALUES ($1, $2)`}, statements(t, reqs))
}

func TestBuild_UpdateVersionFilters(t *testing.T) {
	m := testutil.NewModel()
	changed := ir.NewFieldSet(testutil.FieldTitle, testutil.FieldAmount)

	reqs := build(t, "postgres", mustTask(t, m.Invoice, Update, changed, ir.FieldRange(6), true))
	assert.Equal(t, []string{
		`UPDATE "documents" SET "title" = $1 WHERE ("id" = $2 AND "version" = $3)`,
		`UPDATE "invoices" SET "amount" = $1 WHERE ("id" = $2 AND "stamp" = CAST($3 AS numeric(28,10)))`,
	}, statements(t, reqs))
	for _, r := range reqs {
		assert.True(t, r.ChecksVersion())
	}

	res, err := reqs[0].Compiled()
	require.NoError(t, err)
	assert.Equal(t,
		`UPDATE "documents" SET "title" = {param} WHERE ("id" = {param} AND {?"version" IS NULL|"version" = {param}})`,
		res.Dump())
}

func TestBuild_UpdateTouchesVersionedTable(t *testing.T) {
	m := testutil.NewModel()

	reqs := build(t, "postgres", mustTask(t, m.Invoice, Update, ir.NewFieldSet(testutil.FieldTitle), ir.FieldRange(6), true))
	require.Len(t, reqs, 2)
	assert.Equal(t,
		`UPDATE "invoices" SET "stamp" = "stamp" WHERE ("id" = $1 AND "stamp" = CAST($2 AS numeric(28,10)))`,
		statements(t, reqs)[1])
}

func TestBuild_Delete(t *testing.T) {
	m := testutil.NewModel()

	reqs := build(t, "postgres", mustTask(t, m.Invoice, Delete, ir.FieldSet{}, ir.FieldRange(6), false))
	assert.Equal(t, []string{
		`DELETE FROM "invoices" WHERE "id" = $1`,
		`DELETE FROM "documents" WHERE "id" = $1`,
	}, statements(t, reqs))

	reqs = build(t, "postgres", mustTask(t, m.Invoice, Delete, ir.FieldSet{}, ir.FieldRange(6), true))
	assert.Equal(t, []string{
		`DELETE FROM "invoices" WHERE ("id" = $1 AND "stamp" = CAST($2 AS numeric(28,10)))`,
		`DELETE FROM "documents" WHERE ("id" = $1 AND "version" = $2)`,
	}, statements(t, reqs))
}

func TestBuild_Batch(t *testing.T) {
	m := testutil.NewModel()

	reqs := build(t, "sqlite", mustTask(t, m.Invoice, Insert, ir.FieldSet{}, ir.FieldRange(6), false))
	require.Len(t, reqs, 1)
	assert.Equal(t,
		"INSERT INTO \"documents\" (\"id\", \"version\", \"title\", \"body\") VALUES (@p0, @p1, @p2, @p3);\n"+
			"INSERT INTO \"invoices\" (\"id\", \"amount\", \"stamp\") VALUES (@p4, @p5, @p6);",
		statements(t, reqs)[0])

	res, err := reqs[0].Compiled()
	require.NoError(t, err)
	var inSet []any
	for _, b := range reqs[0].Bindings().All() {
		inSet = append(inSet, b)
	}
	assert.Equal(t, inSet, res.Parameters(), "batch bindings are the union of its statements")

	reqs = build(t, "sqlite", mustTask(t, m.Invoice, Delete, ir.FieldSet{}, ir.FieldRange(6), false))
	require.Len(t, reqs, 1)
	assert.Equal(t,
		"DELETE FROM \"invoices\" WHERE \"id\" = @p0;\nDELETE FROM \"documents\" WHERE \"id\" = @p1;",
		statements(t, reqs)[0])
}

func TestBuild_NoBatch(t *testing.T) {
	m := testutil.NewModel()

	reqs := build(t, "sqlite", mustTask(t, m.Invoice, Update, ir.NewFieldSet(testutil.FieldTitle, testutil.FieldAmount), ir.FieldRange(6), true))
	assert.Len(t, reqs, 2, "validated statements run one by one")

	reqs = build(t, "sqlite", mustTask(t, m.Document, Insert, ir.FieldSet{}, ir.FieldRange(4), false))
	assert.Equal(t, []string{`INSERT INTO "documents" ("id", "version", "title", "body") VALUES (@p0, @p1, @p2, @p3)`}, statements(t, reqs))

	reqs = build(t, "postgres", mustTask(t, m.Invoice, Insert, ir.FieldSet{}, ir.FieldRange(6), false))
	assert.Len(t, reqs, 2, "postgres has no batches")
}

func TestBuildContext_KeyBindingCached(t *testing.T) {
	m := testutil.NewModel()
	ctx := &buildContext{keyBindings: make(map[*ir.ColumnInfo]*binding.Binding)}

	id := m.Documents.KeyColumns()[0]
	first := ctx.keyBinding(id)
	assert.Same(t, first, ctx.keyBinding(id))
	assert.NotSame(t, first, ctx.keyBinding(m.Invoices.KeyColumns()[0]))
}

func TestPersistCommand(t *testing.T) {
	m := testutil.NewModel()
	reqs := build(t, "postgres", mustTask(t, m.Invoice, Update,
		ir.NewFieldSet(testutil.FieldTitle, testutil.FieldAmount), ir.FieldRange(6), true))

	state := EntityState{
		Current:  testutil.InvoiceState(1, ir.IRInt(3), "new", "9.50", "1.5"),
		Original: testutil.InvoiceState(1, ir.IRNull{}, "old", "9.50", "1.25"),
	}

	cmd, err := reqs[0].Command(state)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "documents" SET "title" = $1 WHERE ("id" = $2 AND "version" IS NULL)`, cmd.SQL)
	assert.Equal(t, []any{"new", int64(1)}, cmd.Values())
	assert.True(t, cmd.ChecksVersion)
	assert.Equal(t, dialect.ParamOrdinal, cmd.Style)

	cmd, err = reqs[1].Command(state)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "invoices" SET "amount" = $1 WHERE ("id" = $2 AND "stamp" = CAST($3 AS numeric(28,10)))`, cmd.SQL)
	assert.Equal(t, []any{"9.5", int64(1), "1.25"}, cmd.Values())
	assert.Equal(t, []string{"p0", "p1", "p2"}, []string{cmd.Args[0].Name, cmd.Args[1].Name, cmd.Args[2].Name})
}

func TestPersistCommand_Transmission(t *testing.T) {
	m := testutil.NewModel()
	reqs := build(t, "mysql", mustTask(t, m.Document, Insert, ir.FieldSet{}, ir.FieldRange(4), false))

	state := ir.Tuple{ir.IRInt(7), ir.IRInt(1), ir.IRString("t"), ir.IRString("long text")}
	cmd, err := reqs[0].Command(EntityState{Current: state})
	require.NoError(t, err)
	require.Len(t, cmd.Args, 4)
	assert.Equal(t, binding.CharacterLOB, cmd.Args[3].Transmission)
	assert.Equal(t, binding.Regular, cmd.Args[0].Transmission)
	assert.NotEqual(t, uuid.Nil, cmd.ID)
}

func TestPersistCommand_DeferredNaming(t *testing.T) {
	m := testutil.NewModel()
	reqs, err := newBuilder("sqlite", compiler.WithDeferredNaming()).
		Build(mustTask(t, m.Document, Insert, ir.FieldSet{}, ir.NewFieldSet(testutil.FieldID, testutil.FieldTitle), false))
	require.NoError(t, err)

	cmd, err := reqs[0].Command(EntityState{Current: ir.Tuple{ir.IRInt(1), ir.IRNull{}, ir.IRString("x")}})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "documents" ("id", "title") VALUES (@p0, @p1)`, cmd.SQL)
	assert.Equal(t, []any{int64(1), "x"}, cmd.Values())
}

func TestPersistRequest_NotPrepared(t *testing.T) {
	m := testutil.NewModel()
	c := compiler.New(dialect.MustLookup("postgres"), compiler.WithLogger(testutil.DiscardLogger()))
	ctx := &buildContext{task: mustTask(t, m.Document, Delete, ir.FieldSet{}, ir.FieldSet{}, false), keyBindings: map[*ir.ColumnInfo]*binding.Binding{}}
	p := ctx.delete(m.Documents)
	req := NewPersistRequest(c, p.stmt, p.bindings, false)

	_, err := req.Compiled()
	require.Error(t, err)
	assert.True(t, ErrNotPrepared.Is(err))
	_, err = req.Command(EntityState{})
	assert.True(t, ErrNotPrepared.Is(err))

	require.NoError(t, req.Prepare())
	first, err := req.Compiled()
	require.NoError(t, err)
	require.NoError(t, req.Prepare())
	again, err := req.Compiled()
	require.NoError(t, err)
	assert.Same(t, first, again)
}
