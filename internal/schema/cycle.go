package schema

import (
	"fmt"
	"slices"
	"strings"
)

// InheritanceCycle is a set of types that derive from each other.
type InheritanceCycle struct {
	Path    []string `json:"path"` // ["A", "B", "A"]
	Message string   `json:"message"`
}

// AnalyzeCycles finds inheritance cycles among the declared types.
//
// Each type has at most one parent, so every strongly connected component
// of the parent graph with more than one member, or with a self-loop, is
// a cycle. Components are found with Tarjan's algorithm; the result is
// ordered by the first declaration of each cycle's members.
func AnalyzeCycles(types []TypeSpec) []InheritanceCycle {
	graph := make(parentGraph, len(types))
	var order []string
	for _, t := range types {
		if _, ok := graph[t.Name]; ok {
			continue
		}
		order = append(order, t.Name)
		graph[t.Name] = nil
	}
	for _, t := range types {
		if _, declared := graph[t.Parent]; declared && t.Parent != "" && graph[t.Name] == nil {
			graph[t.Name] = []string{t.Parent}
		}
	}

	var cycles []InheritanceCycle
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, sccToCycle(scc, graph, order))
		}
	}
	return cycles
}

// parentGraph maps a type name to its parent's name.
type parentGraph map[string][]string

func hasSelfLoop(node string, graph parentGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC returns the strongly connected components of graph, visiting
// roots in the given order.
func tarjanSCC(graph parentGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// sccToCycle walks the parent links from the earliest declared member
// back to itself.
func sccToCycle(scc []string, graph parentGraph, order []string) InheritanceCycle {
	start := scc[0]
	for _, name := range order {
		if slices.Contains(scc, name) {
			start = name
			break
		}
	}

	path := []string{start}
	for cur := start; ; {
		next := graph[cur][0]
		path = append(path, next)
		if next == start || len(path) > len(scc)+1 {
			break
		}
		cur = next
	}
	return InheritanceCycle{
		Path:    path,
		Message: fmt.Sprintf("inheritance cycle: %s", strings.Join(path, " -> ")),
	}
}
