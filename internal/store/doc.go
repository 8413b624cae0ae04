// Package store defines the persistence contracts for review items, review
// events and the practice question pool, together with the pieces shared by
// every implementation: the DBTX abstraction, transaction handling, the
// error vocabulary and the adapter between persisted rows and the
// scheduler's in-memory state.
package store
