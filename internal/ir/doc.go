// Package ir provides the foundational value and model types for sqlcore.
//
// This package contains data definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Contents:
//   - IRValue: the sealed set of values (null, string, int, bool, float,
//     decimal, time, bytes, array, object) used for literals, entity tuples
//     and decoded result rows
//   - Canonical JSON and domain-separated SHA-256 fingerprints, used for
//     caller-supplied cache keys and model hashes
//   - The persistent model handed to the request builders: TypeInfo,
//     TableInfo, ColumnInfo and ColumnType
//   - FieldSet, the bit vector describing changed and available fields
//
// Floats never take part in fingerprints: MarshalCanonical rejects them.
package ir
