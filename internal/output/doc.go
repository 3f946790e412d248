// Package output defines the compiled form of a statement: a tree of text
// fragments, scoped containers, variants and placeholders.
//
// The compiler builds the tree once. Render turns it into final text as
// often as needed, choosing variant branches by an active-key set and
// filling placeholders through a Resolver. A compiled tree is never
// mutated after compilation.
package output
