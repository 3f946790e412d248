package request

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/roach88/sqlcore/internal/binding"
	"github.com/roach88/sqlcore/internal/compiler"
	"github.com/roach88/sqlcore/internal/dialect"
	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/output"
	"github.com/spf13/cast"
)

// Arg is one argument of a command, in the order the dialect's parameter
// style expects.
type Arg struct {
	Name         string
	Value        any
	Transmission binding.Transmission
}

// Command is a statement ready to execute: text plus converted arguments.
type Command struct {
	ID            uuid.UUID
	SQL           string
	Args          []Arg
	Style         dialect.ParamStyle
	ChecksVersion bool
}

// Values returns the bare argument values.
func (c *Command) Values() []any {
	values := make([]any, len(c.Args))
	for i, a := range c.Args {
		values[i] = a.Value
	}
	return values
}

func newCommandID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// valueSource yields the raw value of a binding for one execution.
type valueSource func(b *binding.Binding) (ir.IRValue, error)

// renderCommand renders res for one execution. Query bindings decide how
// their values reach the text: inline kinds become literals, RowFilter
// lists expand, SmartNull and version filter bindings with a null value
// activate their variants.
func renderCommand(res *compiler.Result, bindings *binding.Set, source valueSource) (*Command, error) {
	tr := res.Dialect()
	values := make(map[*binding.Binding]ir.IRValue, bindings.Len())
	active := output.NewKeySet()
	for _, b := range bindings.All() {
		v, err := source(b)
		if err != nil {
			return nil, err
		}
		values[b] = v
		if ir.IsNull(v) && (b.IsVersionFilter() || (b.Query != nil && b.Query.Kind == binding.SmartNull)) {
			active.Add(b)
		}
	}

	lookup := func(key any) (*binding.Binding, ir.IRValue, error) {
		b, ok := key.(*binding.Binding)
		if !ok {
			return nil, nil, compiler.ErrMissingValue.New("binding", key)
		}
		v, ok := values[b]
		if !ok {
			return nil, nil, compiler.ErrMissingValue.New("value", b)
		}
		return b, v, nil
	}

	opts := compiler.RenderOptions{
		Active: active,
		Inline: func(key any) (string, error) {
			b, v, err := lookup(key)
			if err != nil {
				return "", err
			}
			return inlineLiteral(tr, b, v)
		},
		Expand: func(key any) (int, int, bool) {
			b, ok := key.(*binding.Binding)
			if !ok || b.Query == nil || b.Query.Kind != binding.RowFilter {
				return 0, 0, false
			}
			rows, _ := values[b].(ir.IRArray)
			return len(rows), max(b.Query.RowWidth, 1), true
		},
	}
	if res.Deferred() {
		order := make(map[*binding.Binding]int, bindings.Len())
		for i, b := range bindings.All() {
			order[b] = i
		}
		opts.Namer = func(key any) (string, error) {
			b, ok := key.(*binding.Binding)
			if !ok {
				return "", compiler.ErrMissingValue.New("binding", key)
			}
			i, ok := order[b]
			if !ok {
				return "", compiler.ErrMissingValue.New("binding", b)
			}
			return "p" + strconv.Itoa(i), nil
		}
	}

	rendered, err := res.Render(opts)
	if err != nil {
		return nil, err
	}

	cmd := &Command{
		ID:    newCommandID(),
		SQL:   rendered.SQL,
		Style: tr.Capabilities().Parameters,
		Args:  make([]Arg, 0, len(rendered.Params)),
	}
	for _, p := range rendered.Params {
		b, v, err := lookup(p.Binding)
		if err != nil {
			return nil, err
		}
		if p.Element >= 0 {
			v = element(v, p.Element, max(b.Query.RowWidth, 1))
		}
		native, err := b.Mapping.Convert(v)
		if err != nil {
			return nil, err
		}
		cmd.Args = append(cmd.Args, Arg{Name: p.Name, Value: native, Transmission: b.Transmission})
	}
	return cmd, nil
}

// element picks value number i of a flattened RowFilter list.
func element(list ir.IRValue, i, width int) ir.IRValue {
	rows, _ := list.(ir.IRArray)
	row := i / width
	if row >= len(rows) {
		return ir.IRNull{}
	}
	if width == 1 {
		return rows[row]
	}
	cols, _ := rows[row].(ir.IRArray)
	return ir.Tuple(cols).Get(i % width)
}

// inlineLiteral spells an inline binding as a dialect literal.
func inlineLiteral(tr dialect.Translator, b *binding.Binding, v ir.IRValue) (string, error) {
	if ir.IsNull(v) {
		return tr.Literal(ir.IRNull{})
	}
	native, err := ir.ToNative(v)
	if err != nil {
		return "", binding.ErrConversion.New(ir.String(v), b.Mapping.Type, err.Error())
	}
	kind := binding.QueryRegular
	if b.Query != nil {
		kind = b.Query.Kind
	}
	switch kind {
	case binding.BooleanConstant:
		flag, err := cast.ToBoolE(native)
		if err != nil {
			return "", binding.ErrConversion.New(ir.String(v), "boolean", err.Error())
		}
		return tr.Literal(ir.IRBool(flag))
	case binding.LimitOffset, binding.TypeIdentifier:
		n, err := cast.ToInt64E(native)
		if err != nil {
			return "", binding.ErrConversion.New(ir.String(v), "integer", err.Error())
		}
		return tr.Literal(ir.IRInt(n))
	}
	return tr.Literal(v)
}
