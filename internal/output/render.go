package output

import (
	"fmt"
	"strings"
)

// Resolver fills placeholders during Render.
type Resolver interface {
	Resolve(p *Placeholder) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(p *Placeholder) (string, error)

// Resolve calls f(p).
func (f ResolverFunc) Resolve(p *Placeholder) (string, error) {
	return f(p)
}

// Render produces the final text of a compiled tree. Each Variant renders
// its main branch when its key is in active and its alternative otherwise.
// Placeholders are filled by r in document order, so r observes parameters
// in exactly the order they appear in the text.
//
// Render never mutates the tree and may be called concurrently on the same
// tree with different key sets.
func Render(root Node, active KeySet, r Resolver) (string, error) {
	var sb strings.Builder
	if err := render(&sb, root, active, r); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func render(sb *strings.Builder, n Node, active KeySet, r Resolver) error {
	switch v := n.(type) {
	case *Text:
		sb.WriteString(v.Value)
	case *Container:
		for _, child := range v.Children {
			if err := render(sb, child, active, r); err != nil {
				return err
			}
		}
	case *Variant:
		branch := v.Alt
		if active.Has(v.Key) {
			branch = v.Main
		}
		if branch != nil {
			return render(sb, branch, active, r)
		}
	case *Placeholder:
		if r == nil {
			return fmt.Errorf("placeholder without resolver")
		}
		s, err := r.Resolve(v)
		if err != nil {
			return err
		}
		sb.WriteString(s)
	case nil:
	default:
		return fmt.Errorf("unknown output node %T", n)
	}
	return nil
}

// Walk visits every node reachable from root, taking both branches of each
// Variant. It stops early when fn returns false for a node, skipping that
// node's children.
func Walk(root Node, fn func(Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	switch v := root.(type) {
	case *Container:
		for _, child := range v.Children {
			Walk(child, fn)
		}
	case *Variant:
		if v.Main != nil {
			Walk(v.Main, fn)
		}
		if v.Alt != nil {
			Walk(v.Alt, fn)
		}
	}
}
