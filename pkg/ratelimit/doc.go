// Package ratelimit provides fixed-window request limiting and
// account-lockout tracking over a pluggable counter store.
//
// The CounterStore abstraction exists so the same limiter can run on an
// in-process map for a single instance or on redis for multi-instance
// deployments with shared, atomic increment-and-check semantics.
//
// Denial is a normal, reportable outcome (HTTP 429). Internal store
// errors fail open: the request is allowed and the error logged, so the
// limiter can never take down the request pipeline.
package ratelimit
