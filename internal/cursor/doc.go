// Package cursor lets large query results be consumed one row at a time
// instead of being materialized wholesale.
//
// # Lifecycle
//
//   - Open executes a prepared statement and binds the cursor to it
//   - Next yields rows until io.EOF; further calls keep returning io.EOF
//   - Reset closes the live rows and re-executes with the original arguments
//   - Close releases rows and statement; idempotent; Next/Reset then fail
//     with ErrClosed instead of touching released resources
//
// All wraps a cursor in a range-over-func iterator that guarantees Close on
// every exit path, including an early break.
//
// # Connection discipline
//
// A cursor holds a live statement. On backends with a single connection
// (the SQLite store limits its pool to one) a second query issued while a
// cursor is open waits for that connection, so callers must Close (or drain)
// a cursor before running unrelated queries. The cursor cannot enforce this.
package cursor
