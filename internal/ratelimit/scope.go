package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope names a group of requests sharing the same policy limits.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeRead   Scope = "read"
	ScopeWrite  Scope = "write"
)

// MetadataKey holds an EndpointConfig in huma.Operation.Metadata.
const MetadataKey = "rateLimit"

// EndpointConfig overrides the policy for one operation.
//
// Non-empty Limits replace the policy for the operation and are counted per
// route template, so "/{key}" is one counter per client whatever the key.
// Otherwise Scope, when set, replaces the read/write scope derived from the
// method. Disabled turns limiting off for the operation.
type EndpointConfig struct {
	Scope    Scope
	Limits   []LimitConfig
	Disabled bool
}

// ScopeResolver picks the policy scopes that apply to a request.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// ScopeResolverFunc adapts a function to ScopeResolver.
type ScopeResolverFunc func(ctx huma.Context) []Scope

func (f ScopeResolverFunc) Resolve(ctx huma.Context) []Scope {
	return f(ctx)
}

// MethodScope classifies safe methods as reads and everything else as writes.
func MethodScope(method string) Scope {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ScopeRead
	default:
		return ScopeWrite
	}
}

// NewMethodScopeResolver resolves the global scope plus the method scope.
func NewMethodScopeResolver() ScopeResolverFunc {
	return func(ctx huma.Context) []Scope {
		return []Scope{ScopeGlobal, MethodScope(ctx.Method())}
	}
}

// NewOperationScopeResolver prefers the scope configured on the operation
// and falls back to the method scope.
func NewOperationScopeResolver() ScopeResolverFunc {
	return func(ctx huma.Context) []Scope {
		if cfg := GetEndpointConfig(ctx); cfg != nil && cfg.Scope != "" {
			return []Scope{ScopeGlobal, cfg.Scope}
		}

		return []Scope{ScopeGlobal, MethodScope(ctx.Method())}
	}
}

// GetEndpointConfig returns the operation's EndpointConfig, or nil.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
