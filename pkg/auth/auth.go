package auth

import (
	"context"
	"errors"
	"net/http"
)

// Decision represents the three possible outcomes of a resolver.
type Decision int

const (
	// Yes means credentials are valid. The chain stops and the identity is used.
	Yes Decision = iota

	// No means credentials are present but invalid. The chain stops and the
	// request is rejected.
	No

	// Abstain means this resolver cannot handle the credentials type.
	// The chain continues to the next resolver.
	Abstain
)

// Result carries the outcome of an authentication attempt.
type Result struct {
	Decision Decision
	Identity *Identity // populated only when Decision == Yes
	Err      error     // populated only when Decision == No
}

// Identity represents an authenticated hunter.
type Identity struct {
	UserID   int64
	Username string
	Email    string
}

// Resolver examines request credentials and returns a three-outcome vote.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) Result
}

// Sentinel errors.
var (
	ErrNoCredential = errors.New("authentication token required")
	ErrInvalid      = errors.New("invalid or expired token")
)

// Chain evaluates resolvers in order using three-outcome voting.
type Chain struct {
	// Resolvers are evaluated left to right.
	Resolvers []Resolver
}

// Resolve runs the chain. Stops on the first Yes or No. If all abstain,
// no credential was presented and the request is rejected.
func (c *Chain) Resolve(ctx context.Context, r *http.Request) Result {
	for _, res := range c.Resolvers {
		result := res.Resolve(ctx, r)
		if result.Decision != Abstain {
			return result
		}
	}
	return Result{Decision: No, Err: ErrNoCredential}
}
