package ir

import (
	"fmt"
	"strings"
)

// TypeKind is the storage class of a column.
type TypeKind int

const (
	KindUnknown TypeKind = iota
	KindBool
	KindInt16
	KindInt32
	KindInt64
	KindFloat
	KindDouble
	KindDecimal
	KindString
	KindText
	KindBinary
	KindBlob
	KindDateTime
	KindDate
	KindTime
	KindGUID
)

var kindNames = map[TypeKind]string{
	KindUnknown:  "unknown",
	KindBool:     "bool",
	KindInt16:    "int16",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindFloat:    "float",
	KindDouble:   "double",
	KindDecimal:  "decimal",
	KindString:   "string",
	KindText:     "text",
	KindBinary:   "binary",
	KindBlob:     "blob",
	KindDateTime: "datetime",
	KindDate:     "date",
	KindTime:     "time",
	KindGUID:     "guid",
}

// String returns the lowercase name used in model files.
func (k TypeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// ParseTypeKind resolves a model-file type name.
func ParseTypeKind(s string) (TypeKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s && k != KindUnknown {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown type %q", s)
}

// HighPrecisionDecimalDigits is the precision above which a decimal value
// is considered high precision. Drivers commonly bind such values with a
// narrower default type, so comparisons against them are cast explicitly.
const HighPrecisionDecimalDigits = 18

// ColumnType describes the exact SQL type of a column.
type ColumnType struct {
	Kind      TypeKind
	Length    int // character/binary length, 0 = unbounded
	Precision int // decimal precision, 0 = dialect default
	Scale     int
}

// String renders the type as in model files, e.g. "decimal(28,10)".
func (t ColumnType) String() string {
	switch {
	case t.Kind == KindDecimal && t.Precision > 0:
		return fmt.Sprintf("%s(%d,%d)", t.Kind, t.Precision, t.Scale)
	case t.Length > 0:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Length)
	default:
		return t.Kind.String()
	}
}

// IsHighPrecisionDecimal reports whether values of this type exceed what
// drivers reliably bind without an explicit cast.
func (t ColumnType) IsHighPrecisionDecimal() bool {
	return t.Kind == KindDecimal && t.Precision > HighPrecisionDecimalDigits
}

// IsLargeObject reports whether values of this type are streamed rather
// than bound inline.
func (t ColumnType) IsLargeObject() bool {
	return t.Kind == KindText || t.Kind == KindBlob
}

// ColumnInfo is one persisted column of a table.
type ColumnInfo struct {
	Name       string
	FieldIndex int // offset into the entity Tuple
	Type       ColumnType
	PrimaryKey bool
	Version    bool
	Nullable   bool
}

// TableInfo is one table of a type's inheritance chain.
type TableInfo struct {
	Name    string
	Schema  string
	Columns []*ColumnInfo
	Parent  *TableInfo // table of the base type, nil for a root table
}

// QualifiedName returns schema.name, or name when no schema is set.
func (t *TableInfo) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// IsAncestorOf reports whether t is a strict ancestor of other.
func (t *TableInfo) IsAncestorOf(other *TableInfo) bool {
	for p := other.Parent; p != nil; p = p.Parent {
		if p == t {
			return true
		}
	}
	return false
}

// KeyColumns returns the primary-key columns in declaration order.
func (t *TableInfo) KeyColumns() []*ColumnInfo {
	var cols []*ColumnInfo
	for _, c := range t.Columns {
		if c.PrimaryKey {
			cols = append(cols, c)
		}
	}
	return cols
}

// VersionColumns returns the optimistic-concurrency columns.
func (t *TableInfo) VersionColumns() []*ColumnInfo {
	var cols []*ColumnInfo
	for _, c := range t.Columns {
		if c.Version {
			cols = append(cols, c)
		}
	}
	return cols
}

// TypeInfo is the persistent shape of one entity type.
type TypeInfo struct {
	Name       string
	TypeID     int64 // discriminator value for polymorphic queries
	Parent     *TypeInfo
	Tables     []*TableInfo // inheritance chain in source order
	FieldCount int          // length of the entity Tuple
}

// Columns returns every column of every table, in table order.
func (t *TypeInfo) Columns() []*ColumnInfo {
	var cols []*ColumnInfo
	for _, tbl := range t.Tables {
		cols = append(cols, tbl.Columns...)
	}
	return cols
}

// IsSubtypeOf reports whether t is other or derives from it.
func (t *TypeInfo) IsSubtypeOf(other *TypeInfo) bool {
	for p := t; p != nil; p = p.Parent {
		if p == other {
			return true
		}
	}
	return false
}

// describe returns the canonical description used by ModelHash.
func (t *TypeInfo) describe() IRObject {
	tables := make(IRArray, 0, len(t.Tables))
	for _, tbl := range t.Tables {
		cols := make(IRArray, 0, len(tbl.Columns))
		for _, c := range tbl.Columns {
			cols = append(cols, IRObject{
				"name":     IRString(c.Name),
				"field":    IRInt(c.FieldIndex),
				"type":     IRString(c.Type.String()),
				"key":      IRBool(c.PrimaryKey),
				"version":  IRBool(c.Version),
				"nullable": IRBool(c.Nullable),
			})
		}
		tables = append(tables, IRObject{
			"name":    IRString(tbl.QualifiedName()),
			"columns": cols,
		})
	}
	obj := IRObject{
		"name":   IRString(t.Name),
		"id":     IRInt(t.TypeID),
		"fields": IRInt(t.FieldCount),
		"tables": tables,
	}
	if t.Parent != nil {
		obj["parent"] = IRString(t.Parent.Name)
	}
	return obj
}
