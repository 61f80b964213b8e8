// Package store provides a SQLite bean store: the persistence, association
// and tag-query backend the tagging package is written against.
//
// # Schema
//
//   - One table per bean type, created on first store with a single
//     "id TEXT PRIMARY KEY" column; fields become columns as beans carrying
//     them are stored ("fluid" schema)
//   - Ids are UUIDv7 strings, so id order is creation order
//   - The tag table exists from the start, with a UNIQUE index on title
//     unless WithUniqueTagTitles(false)
//   - Two types are associated through a link table named after the sorted
//     pair ("movie_tag") with one id column per side and a UNIQUE pair
//
// Type and field names must match [a-z][a-z0-9_]*. Values are always bound
// as parameters.
//
// # Events
//
// The store notifies its Observers signal on dispense, open, update,
// after_update, delete, after_delete, associate and unassociate. A listener
// error aborts the operation and is returned unchanged.
//
// # Database Configuration
//
//   - Drivers: github.com/mattn/go-sqlite3 ("sqlite3", default) or
//     modernc.org/sqlite ("sqlite")
//   - WAL mode, synchronous=NORMAL, busy_timeout=5000, foreign_keys=ON
//   - A single pooled connection: an open cursor blocks other queries until
//     it is closed
//
// # Metrics
//
// Operation counts and durations are exported through the default
// Prometheus registry, along with a gauge of open cursors.
package store
