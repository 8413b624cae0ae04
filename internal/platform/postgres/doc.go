// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver. Review items are locked with
// SELECT ... FOR UPDATE inside transactions and updated with a version
// compare-and-swap.
package postgres
