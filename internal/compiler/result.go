package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlcore/internal/dialect"
	"github.com/roach88/sqlcore/internal/output"
	"github.com/roach88/sqlcore/internal/sqlast"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrMissingValue is returned by Render when a placeholder cannot be
// filled.
var ErrMissingValue = errors.NewKind("no %s for placeholder %v")

// Result is a compiled statement: an immutable output tree plus the names
// of its parameters. It may be rendered any number of times, concurrently.
type Result struct {
	tr       dialect.Translator
	root     *output.Container
	params   []any
	names    map[any]string
	deferred bool
}

// Dialect returns the translator the result was compiled for.
func (r *Result) Dialect() dialect.Translator { return r.tr }

// Root returns the output tree.
func (r *Result) Root() output.Node { return r.root }

// Deferred reports whether parameter names are assigned at render time.
func (r *Result) Deferred() bool { return r.deferred }

// Parameters returns the bindings in order of first appearance.
func (r *Result) Parameters() []any {
	return append([]any(nil), r.params...)
}

// ParameterName returns the compile-time name of binding. It reports false
// for unknown bindings and for every binding of a deferred result.
func (r *Result) ParameterName(binding any) (string, bool) {
	name, ok := r.names[binding]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Dump shows the tree with variants as {?main|alt} and placeholders as
// {param} or {inline}.
func (r *Result) Dump() string {
	return output.Dump(r.root)
}

// SQL renders the result with no active keys and no inline values.
func (r *Result) SQL() (string, error) {
	rendered, err := r.Render(RenderOptions{})
	if err != nil {
		return "", err
	}
	return rendered.SQL, nil
}

// RenderOptions supply what the compile left open.
type RenderOptions struct {
	// Active selects the main branch of every variant whose key it holds.
	Active output.KeySet

	// Namer names parameters of a deferred result.
	Namer func(binding any) (string, error)

	// Inline spells the value of an inline placeholder.
	Inline func(key any) (string, error)

	// Expand reports that binding stands for a list of rows, each width
	// values wide. It is asked once per occurrence.
	Expand func(binding any) (rows, width int, ok bool)
}

// Param is one argument slot of a rendered statement.
type Param struct {
	Binding any
	Name    string
	// Element is the flat index (row*width + column) into an expanded
	// binding, or -1.
	Element int
}

// Rendered is the text of one execution with its argument slots in the
// order the dialect's parameter style consumes them.
type Rendered struct {
	SQL    string
	Params []Param
}

// Render resolves variants and placeholders.
//
// Positional dialects get one Param per occurrence in text order. Named
// and ordinal dialects get one Param per distinct name, in order of first
// occurrence, and repeat the same marker for later occurrences.
func (r *Result) Render(opts RenderOptions) (*Rendered, error) {
	st := &renderState{
		result:   r,
		opts:     opts,
		style:    r.tr.Capabilities().Parameters,
		ordinals: make(map[string]int),
	}
	text, err := output.Render(r.root, opts.Active, output.ResolverFunc(st.resolve))
	if err != nil {
		return nil, err
	}
	return &Rendered{SQL: text, Params: st.params}, nil
}

type renderState struct {
	result   *Result
	opts     RenderOptions
	style    dialect.ParamStyle
	params   []Param
	ordinals map[string]int
}

func (st *renderState) resolve(p *output.Placeholder) (string, error) {
	if p.Kind == output.InlineValue {
		if st.opts.Inline == nil {
			return "", ErrMissingValue.New("inline value", p.Key)
		}
		return st.opts.Inline(p.Key)
	}

	name, err := st.name(p.Key)
	if err != nil {
		return "", err
	}
	if st.opts.Expand != nil {
		if rows, width, ok := st.opts.Expand(p.Key); ok {
			return st.expand(p.Key, name, rows, width)
		}
	}
	return st.marker(p.Key, name, -1), nil
}

func (st *renderState) name(binding any) (string, error) {
	if !st.result.deferred {
		name, ok := st.result.names[binding]
		if !ok {
			return "", ErrMissingValue.New("parameter name", binding)
		}
		return name, nil
	}
	if st.opts.Namer == nil {
		return "", ErrMissingValue.New("parameter name", binding)
	}
	name, err := st.opts.Namer(binding)
	if err != nil {
		return "", fmt.Errorf("naming parameter: %w", err)
	}
	return name, nil
}

func (st *renderState) marker(binding any, name string, element int) string {
	if st.style != dialect.ParamPositional {
		if ordinal, ok := st.ordinals[name]; ok {
			return st.result.tr.ParameterMarker(ordinal, name)
		}
		st.ordinals[name] = len(st.params)
	}
	st.params = append(st.params, Param{Binding: binding, Name: name, Element: element})
	return st.result.tr.ParameterMarker(len(st.params)-1, name)
}

// expand spells a row list for binding, e.g. (@p0_0, @p0_1), or
// ((@p0_0_0, @p0_0_1), (@p0_1_0, @p0_1_1)) when rows are wider than one
// value. An empty list renders (NULL) so that IN matches nothing.
func (st *renderState) expand(binding any, name string, rows, width int) (string, error) {
	row := &sqlast.Row{}
	entry, err := st.result.tr.Translate(row, dialect.Entry)
	if err != nil {
		return "", err
	}
	delim, err := st.result.tr.Translate(row, dialect.Delimiter)
	if err != nil {
		return "", err
	}
	exit, err := st.result.tr.Translate(row, dialect.Exit)
	if err != nil {
		return "", err
	}

	if rows <= 0 {
		null, err := st.result.tr.Translate(&sqlast.Null{}, dialect.Entry)
		if err != nil {
			return "", err
		}
		return entry + null + exit, nil
	}

	items := make([]string, rows)
	for i := range items {
		if width <= 1 {
			items[i] = st.marker(binding, fmt.Sprintf("%s_%d", name, i), i)
			continue
		}
		cols := make([]string, width)
		for j := range cols {
			cols[j] = st.marker(binding, fmt.Sprintf("%s_%d_%d", name, i, j), i*width+j)
		}
		items[i] = entry + strings.Join(cols, delim) + exit
	}
	return entry + strings.Join(items, delim) + exit, nil
}
