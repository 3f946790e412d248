// Package schema loads entity type declarations from CUE and YAML files
// and builds the persistent model the request builder works on.
//
// A declaration names a table, an optional parent type and the persisted
// fields. Build checks the declarations (see the E2xx codes in
// validate.go), rejects inheritance cycles and assigns each type its flat
// field indexes and table chain.
package schema
