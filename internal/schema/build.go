package schema

import (
	"fmt"
	"slices"

	"github.com/roach88/sqlcore/internal/ir"
)

// Model is the persistent shape of a set of loaded types.
type Model struct {
	Types  []*ir.TypeInfo
	byName map[string]*ir.TypeInfo
	fields map[*ir.TypeInfo][]string
}

// Type returns the named type.
func (m *Model) Type(name string) (*ir.TypeInfo, bool) {
	t, ok := m.byName[name]
	return t, ok
}

// Names returns the type names in declaration order.
func (m *Model) Names() []string {
	names := make([]string, len(m.Types))
	for i, t := range m.Types {
		names[i] = t.Name
	}
	return names
}

// FieldNames returns the field names of t indexed by field index.
func (m *Model) FieldNames(t *ir.TypeInfo) []string {
	return slices.Clone(m.fields[t])
}

// FieldIndex resolves a field name of t.
func (m *Model) FieldIndex(t *ir.TypeInfo, name string) (int, bool) {
	i := slices.Index(m.fields[t], name)
	return i, i >= 0
}

// Hash fingerprints the model.
func (m *Model) Hash() (string, error) {
	return ir.ModelHash(m.Types)
}

// Build validates types and turns them into a model.
//
// Field indexes are flat per type: inherited fields first, in ancestor
// order, then the type's own fields in declaration order. Every type gets
// one table holding its own fields; a derived table repeats the key
// columns of the root so rows join on the key. Types without an explicit
// type_id are numbered after the largest explicit one, in declaration
// order.
func Build(types []TypeSpec) (*Model, error) {
	if errs := Validate(types); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	specs := make(map[string]*TypeSpec, len(types))
	var nextID int64
	for i := range types {
		specs[types[i].Name] = &types[i]
		nextID = max(nextID, types[i].TypeID)
	}
	ids := make(map[string]int64, len(types))
	for _, spec := range types {
		id := spec.TypeID
		if id == 0 {
			nextID++
			id = nextID
		}
		ids[spec.Name] = id
	}

	m := &Model{
		byName: make(map[string]*ir.TypeInfo, len(types)),
		fields: make(map[*ir.TypeInfo][]string, len(types)),
	}
	var build func(spec *TypeSpec) (*ir.TypeInfo, error)
	build = func(spec *TypeSpec) (*ir.TypeInfo, error) {
		if t, ok := m.byName[spec.Name]; ok {
			return t, nil
		}
		t := &ir.TypeInfo{Name: spec.Name, TypeID: ids[spec.Name]}
		table := &ir.TableInfo{Name: spec.Table, Schema: spec.Schema}
		var names []string

		if spec.Parent != "" {
			parent, err := build(specs[spec.Parent])
			if err != nil {
				return nil, err
			}
			t.Parent = parent
			t.Tables = slices.Clone(parent.Tables)
			names = slices.Clone(m.fields[parent])
			table.Parent = parent.Tables[len(parent.Tables)-1]
			for _, key := range parent.Tables[0].KeyColumns() {
				c := *key
				table.Columns = append(table.Columns, &c)
			}
		}

		for _, f := range spec.Fields {
			typ, err := columnType(f)
			if err != nil {
				return nil, fmt.Errorf("type %s: %w", spec.Name, err)
			}
			table.Columns = append(table.Columns, &ir.ColumnInfo{
				Name:       f.ColumnName(),
				FieldIndex: len(names),
				Type:       typ,
				PrimaryKey: f.Key,
				Version:    f.Version,
				Nullable:   f.Nullable,
			})
			names = append(names, f.Name)
		}

		t.Tables = append(t.Tables, table)
		t.FieldCount = len(names)
		m.byName[spec.Name] = t
		m.fields[t] = names
		return t, nil
	}

	// Parents are built on demand, but Types keeps declaration order.
	for i := range types {
		if _, err := build(&types[i]); err != nil {
			return nil, err
		}
	}
	for _, spec := range types {
		m.Types = append(m.Types, m.byName[spec.Name])
	}
	return m, nil
}

func columnType(f FieldSpec) (ir.ColumnType, error) {
	kind, err := ir.ParseTypeKind(f.Type)
	if err != nil {
		return ir.ColumnType{}, err
	}
	return ir.ColumnType{Kind: kind, Length: f.Length, Precision: f.Precision, Scale: f.Scale}, nil
}

// LoadModel loads and builds the model in dir. Load errors are returned
// as they are; an invalid model returns ValidationErrors.
func LoadModel(dir string) (*Model, error) {
	res, errs := LoadDir(dir, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return Build(res.Types)
}
