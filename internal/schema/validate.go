package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/sqlcore/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrTypeNameInvalid     = "E201" // type name missing or not an identifier
	ErrDuplicateType       = "E202" // type declared twice
	ErrUnknownParent       = "E203" // parent names no declared type
	ErrNoKey               = "E204" // root type without key fields
	ErrInvalidFieldType    = "E205" // unknown type name
	ErrDuplicateField      = "E206" // field or column declared twice in a chain
	ErrInheritanceCycle    = "E207" // type derives from itself
	ErrInvalidDecimal      = "E208" // precision/scale out of range
	ErrDerivedKey          = "E209" // key field declared on a derived type
	ErrTableMissing        = "E210" // table name missing
	ErrInvalidVersionField = "E211" // version field of an unsupported type
	ErrDuplicateTypeID     = "E212" // two types share a discriminator
)

// MaxDecimalPrecision is the largest precision accepted for decimals.
const MaxDecimalPrecision = 38

// ValidationError is one problem found in the model.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Source  string `json:"source,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Source, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is returned by Build when the model is invalid.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a set of type declarations and returns every problem
// found. Inheritance cycles are reported by AnalyzeCycles and included.
func Validate(types []TypeSpec) []ValidationError {
	var errs []ValidationError
	byName := make(map[string]*TypeSpec, len(types))
	ids := make(map[int64]string)

	for i := range types {
		t := &types[i]
		path := fmt.Sprintf("types[%d]", i)
		if !identPattern.MatchString(t.Name) {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("invalid type name %q", t.Name),
				Code:    ErrTypeNameInvalid,
				Source:  t.Source,
			})
		}
		if _, dup := byName[t.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate type name: %q", t.Name),
				Code:    ErrDuplicateType,
				Source:  t.Source,
			})
		} else {
			byName[t.Name] = t
		}
		if strings.TrimSpace(t.Table) == "" {
			errs = append(errs, ValidationError{
				Field:   path + ".table",
				Message: fmt.Sprintf("type %q has no table", t.Name),
				Code:    ErrTableMissing,
				Source:  t.Source,
			})
		}
		if t.TypeID != 0 {
			if other, dup := ids[t.TypeID]; dup {
				errs = append(errs, ValidationError{
					Field:   path + ".type_id",
					Message: fmt.Sprintf("type id %d already used by %q", t.TypeID, other),
					Code:    ErrDuplicateTypeID,
					Source:  t.Source,
				})
			}
			ids[t.TypeID] = t.Name
		}
		for j, f := range t.Fields {
			errs = append(errs, validateField(f, fmt.Sprintf("%s.fields[%d]", path, j), t.Source)...)
		}
	}

	for i := range types {
		t := &types[i]
		path := fmt.Sprintf("types[%d]", i)
		if t.Parent != "" && byName[t.Parent] == nil {
			errs = append(errs, ValidationError{
				Field:   path + ".parent",
				Message: fmt.Sprintf("unknown parent type %q", t.Parent),
				Code:    ErrUnknownParent,
				Source:  t.Source,
			})
		}
	}

	cycles := AnalyzeCycles(types)
	inCycle := make(map[string]bool)
	for _, c := range cycles {
		for _, name := range c.Path {
			inCycle[name] = true
		}
		errs = append(errs, ValidationError{
			Field:   "types",
			Message: c.Message,
			Code:    ErrInheritanceCycle,
		})
	}

	// Chain checks only make sense on well-formed chains.
	for i := range types {
		t := &types[i]
		if inCycle[t.Name] || byName[t.Name] != t {
			continue
		}
		errs = append(errs, validateChain(t, byName, fmt.Sprintf("types[%d]", i))...)
	}
	return errs
}

func validateField(f FieldSpec, path, source string) []ValidationError {
	var errs []ValidationError
	if !identPattern.MatchString(f.Name) {
		errs = append(errs, ValidationError{
			Field:   path + ".name",
			Message: fmt.Sprintf("invalid field name %q", f.Name),
			Code:    ErrInvalidFieldType,
			Source:  source,
		})
	}
	kind, err := ir.ParseTypeKind(f.Type)
	if err != nil {
		errs = append(errs, ValidationError{
			Field:   path + ".type",
			Message: fmt.Sprintf("invalid type %q for field %q", f.Type, f.Name),
			Code:    ErrInvalidFieldType,
			Source:  source,
		})
		return errs
	}
	if kind == ir.KindDecimal {
		if f.Precision < 0 || f.Precision > MaxDecimalPrecision || f.Scale < 0 || f.Scale > f.Precision {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("decimal(%d,%d) out of range for field %q", f.Precision, f.Scale, f.Name),
				Code:    ErrInvalidDecimal,
				Source:  source,
			})
		}
	}
	if f.Version {
		switch kind {
		case ir.KindInt16, ir.KindInt32, ir.KindInt64, ir.KindDecimal, ir.KindDateTime, ir.KindBinary:
		default:
			errs = append(errs, ValidationError{
				Field:   path + ".version",
				Message: fmt.Sprintf("field %q of type %s cannot be a version", f.Name, kind),
				Code:    ErrInvalidVersionField,
				Source:  source,
			})
		}
	}
	return errs
}

// validateChain checks the fields of t against its ancestors.
func validateChain(t *TypeSpec, byName map[string]*TypeSpec, path string) []ValidationError {
	var errs []ValidationError
	root := t
	seen := make(map[string]bool)
	visited := map[string]bool{t.Name: true}
	for p := byName[t.Parent]; p != nil; p = byName[p.Parent] {
		if visited[p.Name] {
			// The chain runs into a cycle reported elsewhere.
			return nil
		}
		visited[p.Name] = true
		root = p
		for _, f := range p.Fields {
			seen[f.Name] = true
		}
	}

	if t.Parent == "" {
		if !hasKey(t) {
			errs = append(errs, ValidationError{
				Field:   path + ".fields",
				Message: fmt.Sprintf("root type %q needs at least one key field", t.Name),
				Code:    ErrNoKey,
				Source:  t.Source,
			})
		}
	} else if root != t {
		for j, f := range t.Fields {
			if f.Key {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.fields[%d].key", path, j),
					Message: fmt.Sprintf("derived type %q inherits its key from %q", t.Name, root.Name),
					Code:    ErrDerivedKey,
					Source:  t.Source,
				})
			}
		}
	}

	columns := make(map[string]bool)
	if root != t {
		for _, f := range root.Fields {
			if f.Key {
				columns[f.ColumnName()] = true
			}
		}
	}
	for j, f := range t.Fields {
		if seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.fields[%d].name", path, j),
				Message: fmt.Sprintf("field %q already declared in the inheritance chain", f.Name),
				Code:    ErrDuplicateField,
				Source:  t.Source,
			})
		}
		seen[f.Name] = true
		if columns[f.ColumnName()] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.fields[%d].column", path, j),
				Message: fmt.Sprintf("column %q declared twice in table %q", f.ColumnName(), t.Table),
				Code:    ErrDuplicateField,
				Source:  t.Source,
			})
		}
		columns[f.ColumnName()] = true
	}
	return errs
}

func hasKey(t *TypeSpec) bool {
	for _, f := range t.Fields {
		if f.Key {
			return true
		}
	}
	return false
}
