package output

import "strings"

// Node is a sealed interface for the compiled output tree.
// Only Text, Container, Variant and Placeholder implement it.
type Node interface {
	outputNode()
}

// Text is a literal fragment.
type Text struct {
	Value string
}

func (*Text) outputNode() {}

// Options scope how nodes inside a Container were compiled.
type Options uint8

const (
	// OmitTableAlias marks a container whose table references render
	// without an alias and whose column references render unqualified.
	OmitTableAlias Options = 1 << iota
	// DeferredNames marks a container whose parameter placeholders are
	// named by the caller at render time instead of p0, p1, ...
	DeferredNames
)

// Has reports whether every bit of flag is set.
func (o Options) Has(flag Options) bool {
	return o&flag == flag
}

// Container is an ordered sequence of child nodes.
type Container struct {
	Children []Node
	Options  Options
}

func (*Container) outputNode() {}

// NewContainer returns an empty container with the given options.
func NewContainer(opts Options) *Container {
	return &Container{Options: opts}
}

// Append adds child nodes in order. Nil children are skipped.
func (c *Container) Append(nodes ...Node) {
	for _, n := range nodes {
		if n != nil {
			c.Children = append(c.Children, n)
		}
	}
}

// AppendText adds a text fragment, merging it into a preceding Text node.
// Empty strings are ignored.
func (c *Container) AppendText(s string) {
	if s == "" {
		return
	}
	if n := len(c.Children); n > 0 {
		if t, ok := c.Children[n-1].(*Text); ok {
			t.Value += s
			return
		}
	}
	c.Children = append(c.Children, &Text{Value: s})
}

// IsEmpty reports whether the container renders nothing regardless of the
// active keys.
func (c *Container) IsEmpty() bool {
	for _, child := range c.Children {
		switch n := child.(type) {
		case *Text:
			if n.Value != "" {
				return false
			}
		case *Container:
			if !n.IsEmpty() {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Variant holds two alternative renderings selected at render time.
// Main renders when Key is active, Alt otherwise. A nil branch renders
// nothing.
type Variant struct {
	Key  any
	Main *Container
	Alt  *Container
}

func (*Variant) outputNode() {}

// PlaceholderKind distinguishes what fills a Placeholder.
type PlaceholderKind uint8

const (
	// ParameterName is filled with the dialect spelling of a bound
	// parameter.
	ParameterName PlaceholderKind = iota
	// InlineValue is filled with a literal supplied at render time.
	InlineValue
)

// Placeholder is a keyed hole in the compiled text.
type Placeholder struct {
	Kind PlaceholderKind
	Key  any
}

func (*Placeholder) outputNode() {}

// Dump renders a debugging view of the tree with variants and
// placeholders spelled out.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n)
	return sb.String()
}

func dump(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Text:
		sb.WriteString(v.Value)
	case *Container:
		for _, child := range v.Children {
			dump(sb, child)
		}
	case *Variant:
		sb.WriteString("{?")
		if v.Main != nil {
			dump(sb, v.Main)
		}
		sb.WriteString("|")
		if v.Alt != nil {
			dump(sb, v.Alt)
		}
		sb.WriteString("}")
	case *Placeholder:
		if v.Kind == ParameterName {
			sb.WriteString("{param}")
		} else {
			sb.WriteString("{inline}")
		}
	}
}
