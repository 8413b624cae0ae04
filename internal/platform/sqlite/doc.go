// Package sqlite implements the store interfaces on SQLite through the pure-Go
// modernc.org/sqlite driver. It backs local single-user runs and the store
// tests. SQLite has no row locks, so GetForUpdate is a plain read and the
// version compare-and-swap on update detects lost races.
package sqlite
