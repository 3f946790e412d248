package request

import (
	"testing"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Invalid(t *testing.T) {
	m := testutil.NewModel()
	all := ir.FieldRange(4)

	tests := []struct {
		name      string
		typ       *ir.TypeInfo
		op        Operation
		changed   ir.FieldSet
		validate  bool
		wantError string
	}{
		{"no type", nil, Insert, ir.FieldSet{}, false, "invalid persist task: no type"},
		{"unknown operation", m.Document, Operation(9), ir.FieldSet{}, false, "invalid persist task: unknown operation 9"},
		{"validated insert", m.Document, Insert, ir.FieldSet{}, true, "invalid persist task: version validation requested for insert"},
		{"field out of range", m.Document, Update, ir.NewFieldSet(testutil.FieldAmount), false, "invalid persist task: field 4 out of range for Document"},
		{"changed key", m.Invoice, Update, ir.NewFieldSet(testutil.FieldTitle, testutil.FieldID), false, "invalid persist task: key field 0 of Invoice cannot change"},
		{"keyless update", keyless(), Update, ir.NewFieldSet(1), false, "invalid persist task: table audit_log has no key columns"},
		{"keyless delete", keyless(), Delete, ir.FieldSet{}, false, "invalid persist task: table audit_log has no key columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTask(tt.typ, tt.op, tt.changed, all, tt.validate)
			require.Error(t, err)
			assert.True(t, ErrInvalidTask.Is(err))
			assert.EqualError(t, err, tt.wantError)
		})
	}
}

// keyless returns a type whose only table has no primary key.
func keyless() *ir.TypeInfo {
	log := &ir.TableInfo{Name: "audit_log", Columns: []*ir.ColumnInfo{
		{Name: "at", FieldIndex: 0, Type: ir.ColumnType{Kind: ir.KindInt64}},
		{Name: "line", FieldIndex: 1, Type: ir.ColumnType{Kind: ir.KindText}},
	}}
	return &ir.TypeInfo{Name: "AuditLog", TypeID: 9, Tables: []*ir.TableInfo{log}, FieldCount: 2}
}

func TestNewTask_KeylessInsert(t *testing.T) {
	_, err := NewTask(keyless(), Insert, ir.FieldSet{}, ir.FieldRange(2), false)
	assert.NoError(t, err)
}

func TestNewTask_CopiesFieldSets(t *testing.T) {
	m := testutil.NewModel()
	changed := ir.NewFieldSet(testutil.FieldTitle)

	task, err := NewTask(m.Document, Update, changed, ir.FieldRange(4), false)
	require.NoError(t, err)
	changed.Set(testutil.FieldBody)
	assert.False(t, task.Changed.Has(testutil.FieldBody))
}

func TestTask_EqualAndHash(t *testing.T) {
	m := testutil.NewModel()
	base := mustTask(t, m.Invoice, Update, ir.NewFieldSet(2, 4), ir.FieldRange(6), true)
	same := mustTask(t, m.Invoice, Update, ir.NewFieldSet(4, 2), ir.FieldRange(6), true)

	assert.True(t, base.Equal(same))
	assert.Equal(t, base.Hash(), same.Hash())

	others := []Task{
		mustTask(t, m.Invoice, Update, ir.NewFieldSet(2), ir.FieldRange(6), true),
		mustTask(t, m.Invoice, Update, ir.NewFieldSet(2, 4), ir.FieldRange(6), false),
		mustTask(t, m.Invoice, Delete, ir.NewFieldSet(2, 4), ir.FieldRange(6), true),
		mustTask(t, m.Invoice, Update, ir.NewFieldSet(2, 4), ir.FieldRange(5), true),
		mustTask(t, testutil.NewModel().Invoice, Update, ir.NewFieldSet(2, 4), ir.FieldRange(6), true),
	}
	for _, o := range others {
		assert.False(t, base.Equal(o), o.String())
	}
}

func TestTask_HashFoldsWideFieldSets(t *testing.T) {
	wide := &ir.TypeInfo{Name: "Wide", TypeID: 7, FieldCount: 80}
	a := mustTask(t, wide, Update, ir.NewFieldSet(1, 40), ir.FieldRange(80), false)
	b := mustTask(t, wide, Update, ir.NewFieldSet(1, 70), ir.FieldRange(80), false)

	assert.Equal(t, a.Hash(), b.Hash(), "fields past 31 do not contribute")
	assert.False(t, a.Equal(b))
}

func TestTask_String(t *testing.T) {
	m := testutil.NewModel()
	task := mustTask(t, m.Document, Delete, ir.FieldSet{}, ir.NewFieldSet(0), true)
	assert.Equal(t, "delete Document changed={} available={0} validate", task.String())
}

func TestParseOperation(t *testing.T) {
	for _, op := range []Operation{Insert, Update, Delete} {
		got, err := ParseOperation(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}

	_, err := ParseOperation("upsert")
	assert.EqualError(t, err, `invalid persist task: unknown operation "upsert"`)
	assert.Equal(t, "Operation(7)", Operation(7).String())
}
