// Package binding describes how runtime values reach statement parameters.
//
// A Binding carries the column type mapping, the transmission mode and the
// sqlast.ParamRef that statements embed. Its payload says where the value
// comes from: a field of the entity tuple for persist requests, or an
// Accessor over a ParameterContext for queries. Binding collections are
// insertion-ordered Sets keyed by identity.
package binding
