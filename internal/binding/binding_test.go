package binding

import (
	"testing"
	"time"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	intType  = ir.ColumnType{Kind: ir.KindInt64}
	decType  = ir.ColumnType{Kind: ir.KindDecimal, Precision: 28, Scale: 10}
	textType = ir.ColumnType{Kind: ir.KindText}
)

func TestNewPersist(t *testing.T) {
	b := NewPersist(MappingFor(decType), 3, VersionFilter)

	require.NotNil(t, b.Ref)
	assert.Same(t, b, b.Ref.Binding)
	assert.True(t, b.IsVersionFilter())
	assert.Nil(t, b.Query)
	assert.Equal(t, Regular, b.Transmission)
	assert.Equal(t, "persist(field 3, version filter, decimal(28,10))", b.String())
}

func TestTransmissionFor(t *testing.T) {
	assert.Equal(t, CharacterLOB, TransmissionFor(textType))
	assert.Equal(t, BinaryLOB, TransmissionFor(ir.ColumnType{Kind: ir.KindBlob}))
	assert.Equal(t, Regular, TransmissionFor(ir.ColumnType{Kind: ir.KindBinary, Length: 16}))
	assert.Equal(t, CharacterLOB, NewPersist(MappingFor(textType), 0, PersistRegular).Transmission)
	assert.Equal(t, "clob", CharacterLOB.String())
}

func TestQueryKind_Inline(t *testing.T) {
	inline := map[QueryKind]bool{
		QueryRegular: false, SmartNull: false, BooleanConstant: true,
		LimitOffset: true, RowFilter: false, TypeIdentifier: true,
	}
	for kind, want := range inline {
		t.Run(kind.String(), func(t *testing.T) {
			assert.Equal(t, want, kind.Inline())
		})
	}
}

func TestBinding_Value(t *testing.T) {
	state := ir.Tuple{ir.IRInt(7), ir.IRString("open")}

	v, err := NewPersist(MappingFor(intType), 1, PersistRegular).Value(state, nil)
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("open"), v)

	v, err = NewPersist(MappingFor(intType), 9, PersistRegular).Value(state, nil)
	require.NoError(t, err)
	assert.True(t, ir.IsNull(v))

	params := NewParameterContext(map[string]ir.IRValue{"status": ir.IRString("paid")})
	q := NewQuery(MappingFor(intType), Param("status"), QueryRegular)
	v, err = q.Value(nil, params)
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("paid"), v)

	_, err = NewQuery(MappingFor(intType), Param("missing"), QueryRegular).Value(nil, params)
	require.Error(t, err)
	assert.True(t, ErrMissingParameter.Is(err))

	_, err = NewQuery(MappingFor(intType), nil, QueryRegular).Value(nil, params)
	assert.True(t, ErrNoAccessor.Is(err))

	v, err = NewQuery(MappingFor(intType), Const(ir.IRInt(5)), LimitOffset).Value(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(5), v)
}

func TestNewRowFilter(t *testing.T) {
	b := NewRowFilter(MappingFor(intType), Param("ids"), 2)
	assert.Equal(t, RowFilter, b.Query.Kind)
	assert.Equal(t, 2, b.Query.RowWidth)
	assert.Equal(t, "query(row filter, int64)", b.String())
}

func TestTypeMapping_Convert(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
	tests := []struct {
		name     string
		typ      ir.ColumnType
		value    ir.IRValue
		expected any
	}{
		{"null", intType, ir.IRNull{}, nil},
		{"int", intType, ir.IRInt(4), int64(4)},
		{"int from string", intType, ir.IRString("42"), int64(42)},
		{"bool from int", ir.ColumnType{Kind: ir.KindBool}, ir.IRInt(1), true},
		{"double", ir.ColumnType{Kind: ir.KindDouble}, ir.IRInt(2), float64(2)},
		{"decimal", decType, ir.MustIRDecimal("12.3400"), "12.34"},
		{"decimal from int", decType, ir.IRInt(12), "12"},
		{"string", ir.ColumnType{Kind: ir.KindString, Length: 10}, ir.IRInt(5), "5"},
		{"datetime is utc", ir.ColumnType{Kind: ir.KindDateTime}, ir.IRTime(ts), ts.UTC()},
		{"blob", ir.ColumnType{Kind: ir.KindBlob}, ir.IRBytes{1, 2}, []byte{1, 2}},
		{"binary from string", ir.ColumnType{Kind: ir.KindBinary}, ir.IRString("ab"), []byte("ab")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MappingFor(tt.typ).Convert(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTypeMapping_ConvertErrors(t *testing.T) {
	_, err := MappingFor(intType).Convert(ir.IRString("forty-two"))
	require.Error(t, err)
	assert.True(t, ErrConversion.Is(err))

	_, err = MappingFor(intType).Convert(ir.IRArray{ir.IRInt(1)})
	assert.True(t, ErrConversion.Is(err))

	_, err = MappingFor(decType).Convert(ir.IRString("1.2.3"))
	assert.True(t, ErrConversion.Is(err))
}

func TestSet(t *testing.T) {
	a := NewPersist(MappingFor(intType), 0, PersistRegular)
	b := NewPersist(MappingFor(intType), 1, PersistRegular)
	c := NewPersist(MappingFor(intType), 2, VersionFilter)

	s := NewSet(a, b, a)
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Add(b))
	assert.True(t, s.Add(c))
	assert.False(t, s.Add(nil))
	assert.Equal(t, []*Binding{a, b, c}, s.All())
	assert.True(t, s.Has(c))

	u := Union(NewSet(c, a), NewSet(b, a))
	assert.Equal(t, []*Binding{c, a, b}, u.All())

	var empty *Set
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Has(a))
	assert.Nil(t, empty.All())

	var zero Set
	assert.True(t, zero.Add(a))
}

func TestParameterContext(t *testing.T) {
	src := map[string]ir.IRValue{"b": ir.IRInt(1), "a": ir.IRInt(2)}
	ctx := NewParameterContext(src)
	src["c"] = ir.IRInt(3)

	assert.Equal(t, []string{"a", "b"}, ctx.Names())
	_, ok := ctx.Get("c")
	assert.False(t, ok)

	var nilCtx *ParameterContext
	_, ok = nilCtx.Get("a")
	assert.False(t, ok)
}
