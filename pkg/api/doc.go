// Package api defines the domain types and the error taxonomy shared by
// the TaskRiser core service and the gateway.
//
// All handler and middleware failures are expressed as *APIError values
// and serialized as a JSON envelope with a stable message field. No raw
// error ever reaches a client.
package api
