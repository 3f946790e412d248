package dialect

import (
	"strings"

	"github.com/roach88/sqlcore/internal/sqlast"
)

// PagingStyle is how a dialect spells LIMIT/OFFSET.
type PagingStyle uint8

const (
	PagingNone        PagingStyle = iota
	PagingLimitOffset             // LIMIT n OFFSET m
	PagingOffsetFetch             // OFFSET m ROWS FETCH NEXT n ROWS ONLY
)

func (p PagingStyle) String() string {
	switch p {
	case PagingLimitOffset:
		return "limit/offset"
	case PagingOffsetFetch:
		return "offset/fetch"
	default:
		return "none"
	}
}

// ParamStyle is how a dialect spells bound parameters.
type ParamStyle uint8

const (
	ParamNamed      ParamStyle = iota // @p0
	ParamOrdinal                      // $1
	ParamPositional                   // ?
)

func (p ParamStyle) String() string {
	switch p {
	case ParamOrdinal:
		return "ordinal"
	case ParamPositional:
		return "positional"
	default:
		return "named"
	}
}

// IndexFeatures is a bit set of supported index kinds.
type IndexFeatures uint8

const (
	IndexBTree IndexFeatures = 1 << iota
	IndexHash
	IndexFullText
	IndexFiltered
)

// SetOpFeatures is a bit set of supported set operations beyond UNION.
type SetOpFeatures uint8

const (
	SetIntersect SetOpFeatures = 1 << iota
	SetExcept
)

// Capabilities describes what a dialect can express. The compiler and the
// translators consult it to choose between equivalent renderings or to
// reject a construct.
type Capabilities struct {
	Paging          PagingStyle
	Parameters      ParamStyle
	Indexes         IndexFeatures
	SetOperations   SetOpFeatures
	Batches         bool // several statements in one command
	JoinOrderHints  bool
	Sequences       bool
	RowLocking      bool
	FullOuterJoin   bool
	BooleanLiterals bool // TRUE/FALSE rather than 1/0
	StringIndexBase int  // first character position of SUBSTRING/POSITION
}

// SupportsIndex reports whether kind can be created.
func (c Capabilities) SupportsIndex(kind sqlast.IndexKind) bool {
	var f IndexFeatures
	switch kind {
	case sqlast.IndexBTree:
		f = IndexBTree
	case sqlast.IndexHash:
		f = IndexHash
	case sqlast.IndexFullText:
		f = IndexFullText
	case sqlast.IndexFiltered:
		f = IndexFiltered
	}
	return f != 0 && c.Indexes&f != 0
}

// SupportsSetOp reports whether kind can be rendered.
func (c Capabilities) SupportsSetOp(kind sqlast.SetOpKind) bool {
	switch kind {
	case sqlast.Union:
		return true
	case sqlast.Intersect:
		return c.SetOperations&SetIntersect != 0
	case sqlast.Except:
		return c.SetOperations&SetExcept != 0
	}
	return false
}

// IndexKindNames lists the supported index kinds, for display.
func (c Capabilities) IndexKindNames() string {
	var names []string
	for _, k := range []sqlast.IndexKind{sqlast.IndexBTree, sqlast.IndexHash, sqlast.IndexFullText, sqlast.IndexFiltered} {
		if c.SupportsIndex(k) {
			names = append(names, k.String())
		}
	}
	return strings.Join(names, ",")
}
