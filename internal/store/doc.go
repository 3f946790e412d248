// Package store executes compiled commands over database/sql.
//
// It is the reference consumer of the request package: commands are run
// with their arguments bound in the dialect's parameter style, persist
// requests run in one transaction, and a validated statement that affects
// no rows surfaces as ErrVersionConflict. Open returns a SQLite store;
// New wraps any other connection.
//
// # Database Configuration (Open)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
