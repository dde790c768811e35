// Package notification implements per-user notification queues for the
// learning engine: deterministic review reminder generation, a queue
// manager enforcing the pending / delivered / dismissed state machine,
// preference-aware delivery through pluggable channels, and a background
// sweeper that pushes due notifications out on a schedule.
package notification
