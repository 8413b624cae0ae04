// Package testdb opens migrated databases for tests.
//
// OpenSQLite gives every test its own database file under t.TempDir(), so
// tests can run in parallel without sharing state. OpenPostgres connects to
// the server named by DATABASE_URL and skips the test when it is unset.
package testdb
