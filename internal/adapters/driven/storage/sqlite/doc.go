// Package sqlite provides a SQLite-based implementation of the refrag storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One database file backs three ports through wrapper types:
//
//   - UserStore: registered users and their provider keys
//   - SideTableStore: rendered tables and pictures keyed by (source, self_ref)
//   - VectorIndex: chunk embeddings, searched by brute-force cosine similarity
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default the database lives at data/refrag.db under ~/.refrag, or under
// $REFRAG_HOME when set. See DefaultPath.
//
// # Thread Safety
//
// All operations are thread-safe. The store runs SQLite in WAL mode and the
// vector index guards its in-memory matrix with a read/write lock.
package sqlite
