// Package auth provides pluggable authentication for TaskRiser.
//
// Authentication uses a chain-of-responsibility pattern with
// three-outcome voting: each resolver returns Yes (identity found), No
// (credentials invalid), or Abstain (can't handle). Resolvers are tried
// in order; the session resolver runs before the bearer resolver so a
// valid session short-circuits any header check.
//
// Auth is implemented as HTTP middleware. On success the verified
// identity is injected into the request context and handlers never
// re-verify.
package auth
