// Package domain contains the core entities of the review engine: the
// per-item scheduling state, the append-only review event, the closed
// enumerations shared by the engine packages and the error taxonomy they
// report through.
//
// Subpackages hold the engine itself. Each is a set of pure functions over
// explicit inputs with no I/O:
//
//   - srs: the SM-2 family scheduler
//   - streak: consecutive-day streak tracking
//   - analytics: retention, mastery tiers, trends and timelines
//   - queue: due-queue building under item and time budgets
//   - practice: stratified sampling of practice sets and exam scoring
package domain
