// Package task provides the background processing machinery used for
// notification delivery: a bounded in-memory task queue and a worker
// pool that drains it. Delivery tasks are fire and forget; failures are
// logged and reported to an optional error handler but never retried.
package task
