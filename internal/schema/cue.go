package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileType reads one type declaration from a CUE value. The type name
// is the last path selector, so v is usually a field of the top-level
// "type" struct:
//
//	type: Invoice: {
//		parent: "Document"
//		table:  "invoices"
//		fields: {
//			amount: {type: "decimal", precision: 18, scale: 2}
//			memo:   "text"
//		}
//	}
//
// A field may be a struct or just its type name.
func CompileType(v cue.Value) (*TypeSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &TypeSpec{Source: positionOf(v.Pos())}
	if sel := v.Path().Selectors(); len(sel) > 0 {
		spec.Name = sel[len(sel)-1].String()
	}

	var err error
	if spec.Table, err = optionalString(v, "table"); err != nil {
		return nil, err
	}
	if spec.Parent, err = optionalString(v, "parent"); err != nil {
		return nil, err
	}
	if spec.Schema, err = optionalString(v, "schema"); err != nil {
		return nil, err
	}
	id, err := optionalInt(v, "type_id")
	if err != nil {
		return nil, err
	}
	spec.TypeID = id

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return spec, nil
	}
	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		f, err := compileField(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Fields = append(spec.Fields, f)
	}
	return spec, nil
}

func compileField(name string, v cue.Value) (FieldSpec, error) {
	f := FieldSpec{Name: name}
	if typ, err := v.String(); err == nil {
		f.Type = typ
		return f, nil
	}
	if v.IncompleteKind() != cue.StructKind {
		return f, &CompileError{
			Field:   "fields." + name,
			Message: fmt.Sprintf("field must be a type name or a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	var err error
	if f.Type, err = optionalString(v, "type"); err != nil {
		return f, err
	}
	if f.Column, err = optionalString(v, "column"); err != nil {
		return f, err
	}
	for path, dst := range map[string]*int{"length": &f.Length, "precision": &f.Precision, "scale": &f.Scale} {
		n, err := optionalInt(v, path)
		if err != nil {
			return f, err
		}
		*dst = int(n)
	}
	for path, dst := range map[string]*bool{"key": &f.Key, "version": &f.Version, "nullable": &f.Nullable} {
		if *dst, err = optionalBool(v, path); err != nil {
			return f, err
		}
	}
	return f, nil
}

func optionalString(v cue.Value, path string) (string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return "", nil
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalInt(v cue.Value, path string) (int64, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return 0, nil
	}
	n, err := val.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}

func optionalBool(v cue.Value, path string) (bool, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return false, nil
	}
	b, err := val.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// CompileError is a malformed CUE declaration.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError keeps the first CUE error with a position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}

func positionOf(pos token.Pos) string {
	if !pos.IsValid() {
		return ""
	}
	return position(pos.Filename(), pos.Line())
}
