package dialect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sqlcore/internal/ir"
	"github.com/roach88/sqlcore/internal/sqlast"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrUnsupported is returned for a construct the dialect cannot express.
// The message names the construct and the dialect.
var ErrUnsupported = errors.NewKind("%s is not supported by %s")

// ErrUnknownDialect is returned by Lookup.
var ErrUnknownDialect = errors.NewKind("unknown dialect %q (known: %s)")

// Translator spells the parts of a statement for one SQL dialect.
//
// All methods are pure and locale-invariant. The compiler owns traversal
// order; a translator only supplies the text for each node section and the
// lexical forms of identifiers, literals, types and parameters.
type Translator interface {
	// Name is the registry name, e.g. "postgres".
	Name() string

	Capabilities() Capabilities

	// Translate returns the text of section s of node n.
	Translate(n sqlast.Node, s Section) (string, error)

	// QuoteIdentifier quotes and joins a possibly qualified name.
	// Empty parts are skipped.
	QuoteIdentifier(parts ...string) string

	// Literal renders a constant inline.
	Literal(v ir.IRValue) (string, error)

	// TypeName renders a column type for CAST.
	TypeName(t ir.ColumnType) (string, error)

	// ParameterMarker spells the parameter at 0-based ordinal position
	// with logical name name (p0, p1, ...).
	ParameterMarker(ordinal int, name string) string

	// FuncArgs returns the arguments of f in the order the dialect
	// expects them.
	FuncArgs(f *sqlast.Func) []sqlast.Expression
}

var registry = map[string]func() Translator{
	"postgres":  func() Translator { return NewPostgres() },
	"mysql":     func() Translator { return NewMySQL() },
	"sqlite":    func() Translator { return NewSQLite() },
	"sqlserver": func() Translator { return NewSQLServer() },
}

var aliases = map[string]string{
	"postgresql": "postgres",
	"pg":         "postgres",
	"sqlite3":    "sqlite",
	"mssql":      "sqlserver",
}

// Lookup returns a translator by name. Names are case-insensitive and a
// few common aliases are accepted ("postgresql", "sqlite3", "mssql").
func Lookup(name string) (Translator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	ctor, ok := registry[key]
	if !ok {
		return nil, ErrUnknownDialect.New(name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// MustLookup is like Lookup but panics on error.
func MustLookup(name string) Translator {
	t, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns the registered dialect names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func unsupported(construct, dialect string) error {
	return ErrUnsupported.New(construct, dialect)
}

func unsupportedSection(n sqlast.Node, s Section, dialect string) error {
	return ErrUnsupported.New(fmt.Sprintf("%s (%s)", sqlast.KindName(n), s), dialect)
}
