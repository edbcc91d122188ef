// Package transport provides the HTTP plumbing shared by the core
// service and the gateway: middleware composition, request ID
// propagation, structured request logging, panic recovery, and the
// mapping from the API error taxonomy to HTTP responses.
package transport
