package compiler

import (
	"strconv"

	"github.com/roach88/sqlcore/internal/sqlast"
)

// aliasAlphabet omits "l", which reads like "1" next to the numeric
// suffixes of later rounds.
const aliasAlphabet = "abcdefghijkmnopqrstuvwxyz"

// AliasProvider hands out table aliases for one compile.
//
// A table keeps the first alias it is given. References renamed away from
// their base table prefer "_" + the reference name; everything else draws
// from the alphabet in order: a, b, ..., z, a1, b1, ...
type AliasProvider struct {
	byTable map[sqlast.Table]string
	taken   map[string]struct{}
	next    int
}

// NewAliasProvider returns an empty provider.
func NewAliasProvider() *AliasProvider {
	return &AliasProvider{
		byTable: make(map[sqlast.Table]string),
		taken:   make(map[string]struct{}),
	}
}

// Alias returns the alias of t, assigning one on first use.
func (p *AliasProvider) Alias(t sqlast.Table) string {
	if name, ok := p.byTable[t]; ok {
		return name
	}
	name := preferredAlias(t)
	if name == "" || p.isTaken(name) {
		name = p.generate()
	}
	p.byTable[t] = name
	p.taken[name] = struct{}{}
	return name
}

// Reserve keeps name from being generated or preferred.
func (p *AliasProvider) Reserve(name string) {
	p.taken[name] = struct{}{}
}

// Len reports how many tables have an alias.
func (p *AliasProvider) Len() int {
	return len(p.byTable)
}

func (p *AliasProvider) isTaken(name string) bool {
	_, ok := p.taken[name]
	return ok
}

func (p *AliasProvider) generate() string {
	for {
		n := p.next
		p.next++
		name := string(aliasAlphabet[n%len(aliasAlphabet)])
		if round := n / len(aliasAlphabet); round > 0 {
			name += strconv.Itoa(round)
		}
		if !p.isTaken(name) {
			return name
		}
	}
}

func preferredAlias(t sqlast.Table) string {
	switch ref := t.(type) {
	case *sqlast.TableRef:
		if ref.Name != "" && ref.Table != nil && ref.Name != ref.Table.Name {
			return "_" + ref.Name
		}
	case *sqlast.QueryRef:
		if ref.Name != "" {
			return "_" + ref.Name
		}
	}
	return ""
}
