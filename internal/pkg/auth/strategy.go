package auth

import "time"

// Scope limits what a token holder may do.
type Scope string

const (
	ScopeBuyer    Scope = "buyer"
	ScopeOperator Scope = "operator"
)

// Claims identify the chat actor a request is made for.
type Claims struct {
	ActorID int64
	Scope   Scope
}

type Strategy interface {
	IssueToken(claims Claims) (string, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
