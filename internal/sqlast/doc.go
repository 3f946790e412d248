// Package sqlast defines the statement trees handed to the compiler.
//
// The node set is closed. Node, Expression, Statement and Table are sealed
// interfaces implemented only by pointer types in this package, so every
// consumer (compiler, validator, dialect translators) can switch over the
// full set and report anything else as unknown.
//
// Trees are built once and never mutated. Sub-trees may be shared, for
// example one TableRef used by several column references, but a node must
// not be reachable from itself; the compiler rejects such trees before
// emitting any text.
//
// Example:
//
//	orders := sqlast.Ref(&sqlast.BaseTable{Name: "orders"})
//	sel := &sqlast.Select{
//	    Columns: []sqlast.Expression{sqlast.Col(orders, "id")},
//	    From:    orders,
//	    Where:   sqlast.Eq(sqlast.Col(orders, "status"), &sqlast.ParamRef{Binding: b}),
//	}
package sqlast
