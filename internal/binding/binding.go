package binding

import (
	"fmt"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/sqlast"
)

// Transmission says how a bound value travels to the driver.
type Transmission uint8

const (
	// Regular values are sent as ordinary parameters.
	Regular Transmission = iota
	// CharacterLOB values are streamed as large text.
	CharacterLOB
	// BinaryLOB values are streamed as large binary data.
	BinaryLOB
)

var transmissionNames = [...]string{Regular: "regular", CharacterLOB: "clob", BinaryLOB: "blob"}

func (t Transmission) String() string { return transmissionNames[t] }

// TransmissionFor returns the transmission a column of type t needs.
func TransmissionFor(t ir.ColumnType) Transmission {
	switch t.Kind {
	case ir.KindText:
		return CharacterLOB
	case ir.KindBlob:
		return BinaryLOB
	}
	return Regular
}

// PersistKind distinguishes the two roles of a persist binding.
type PersistKind uint8

const (
	// PersistRegular binds the new value of a field.
	PersistRegular PersistKind = iota
	// VersionFilter binds the original value of a version field in a
	// WHERE clause. A null original selects the IS NULL form.
	VersionFilter
)

func (k PersistKind) String() string {
	if k == VersionFilter {
		return "version filter"
	}
	return "regular"
}

// QueryKind distinguishes how a query binding reaches the statement.
type QueryKind uint8

const (
	QueryRegular QueryKind = iota
	// SmartNull compares with IS NULL when the value is null.
	SmartNull
	// BooleanConstant is rendered inline as a literal.
	BooleanConstant
	// LimitOffset is rendered inline as an integer.
	LimitOffset
	// RowFilter expands into one parameter per element of a list.
	RowFilter
	// TypeIdentifier is a type discriminator rendered inline.
	TypeIdentifier
)

var queryKindNames = [...]string{
	QueryRegular: "regular", SmartNull: "smart null", BooleanConstant: "boolean constant",
	LimitOffset: "limit/offset", RowFilter: "row filter", TypeIdentifier: "type identifier",
}

func (k QueryKind) String() string { return queryKindNames[k] }

// Inline reports whether values of kind k are spelled in the SQL text
// instead of being sent as parameters.
func (k QueryKind) Inline() bool {
	switch k {
	case BooleanConstant, LimitOffset, TypeIdentifier:
		return true
	}
	return false
}

// Persist is the payload of a binding produced by the persist request
// builder.
type Persist struct {
	FieldIndex int
	Kind       PersistKind
}

// Query is the payload of a binding supplied with a query request.
type Query struct {
	Accessor Accessor
	Kind     QueryKind
	// RowWidth is the number of values per element of a RowFilter list.
	// Zero means one.
	RowWidth int
}

// Binding connects a value source to a parameter position.
//
// Exactly one of Persist and Query is set. Ref is created with the binding
// and points back to it; statements embed Ref so that the compiled
// parameter table is keyed by the binding itself.
type Binding struct {
	Mapping      TypeMapping
	Transmission Transmission
	Ref          *sqlast.ParamRef

	Persist *Persist
	Query   *Query
}

func newBinding(mapping TypeMapping) *Binding {
	b := &Binding{Mapping: mapping, Transmission: TransmissionFor(mapping.Type)}
	b.Ref = &sqlast.ParamRef{Binding: b}
	return b
}

// NewPersist returns a binding for the field at fieldIndex of an entity
// tuple.
func NewPersist(mapping TypeMapping, fieldIndex int, kind PersistKind) *Binding {
	b := newBinding(mapping)
	b.Persist = &Persist{FieldIndex: fieldIndex, Kind: kind}
	return b
}

// NewQuery returns a binding whose value comes from accessor.
func NewQuery(mapping TypeMapping, accessor Accessor, kind QueryKind) *Binding {
	b := newBinding(mapping)
	b.Query = &Query{Accessor: accessor, Kind: kind}
	return b
}

// NewRowFilter returns a RowFilter binding for lists of width-value rows.
func NewRowFilter(mapping TypeMapping, accessor Accessor, width int) *Binding {
	b := NewQuery(mapping, accessor, RowFilter)
	b.Query.RowWidth = width
	return b
}

func (b *Binding) String() string {
	switch {
	case b.Persist != nil:
		return fmt.Sprintf("persist(field %d, %s, %s)", b.Persist.FieldIndex, b.Persist.Kind, b.Mapping.Type)
	case b.Query != nil:
		return fmt.Sprintf("query(%s, %s)", b.Query.Kind, b.Mapping.Type)
	}
	return "binding(" + b.Mapping.Type.String() + ")"
}

// IsVersionFilter reports whether b filters on an original version value.
func (b *Binding) IsVersionFilter() bool {
	return b.Persist != nil && b.Persist.Kind == VersionFilter
}

// Value extracts the raw value of b from an entity tuple (persist
// bindings) or from a parameter context (query bindings).
func (b *Binding) Value(state ir.Tuple, params *ParameterContext) (ir.IRValue, error) {
	switch {
	case b.Persist != nil:
		return state.Get(b.Persist.FieldIndex), nil
	case b.Query != nil:
		if b.Query.Accessor == nil {
			return nil, ErrNoAccessor.New(b)
		}
		return b.Query.Accessor(params)
	}
	return nil, ErrNoAccessor.New(b)
}
