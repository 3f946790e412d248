package binding

import (
	"maps"
	"slices"

	"github.com/roach88/sqlcore/internal/ir"
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrMissingParameter is returned by an accessor whose parameter was
	// not supplied.
	ErrMissingParameter = errors.NewKind("parameter %q is not set")

	// ErrNoAccessor is returned when a binding has no value source.
	ErrNoAccessor = errors.NewKind("binding %s has no value source")

	// ErrConversion is returned when a value does not fit its column type.
	ErrConversion = errors.NewKind("cannot convert %s to %s: %s")
)

// ParameterContext holds the named parameter values of one query
// execution.
type ParameterContext struct {
	values map[string]ir.IRValue
}

// NewParameterContext returns a context over a copy of values.
func NewParameterContext(values map[string]ir.IRValue) *ParameterContext {
	return &ParameterContext{values: maps.Clone(values)}
}

// Get returns the value of name.
func (c *ParameterContext) Get(name string) (ir.IRValue, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[name]
	return v, ok
}

// Names returns the parameter names in sorted order.
func (c *ParameterContext) Names() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.values))
}

// Accessor produces the value of a query binding for one execution.
type Accessor func(params *ParameterContext) (ir.IRValue, error)

// Param reads the named parameter.
func Param(name string) Accessor {
	return func(params *ParameterContext) (ir.IRValue, error) {
		v, ok := params.Get(name)
		if !ok {
			return nil, ErrMissingParameter.New(name)
		}
		return v, nil
	}
}

// Const always yields v.
func Const(v ir.IRValue) Accessor {
	return func(*ParameterContext) (ir.IRValue, error) {
		return v, nil
	}
}
