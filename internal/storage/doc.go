// Package storage persists the tracker's match history between runs.
//
// Drivers:
//   - "file": a single JSON object {"keyword": ["context", ...]}, replaced
//     atomically on save (temp file + rename)
//   - "sqlite": one row per (keyword, context) in a SQLite database file
//
// Load never fails. A missing or corrupt record is logged and treated as an
// empty history, which may re-notify already-seen matches once.
package storage
