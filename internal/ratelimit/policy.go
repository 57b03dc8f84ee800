package ratelimit

import "time"

// LimitConfig allows at most Max requests per sliding Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps each scope to the limits that apply to it. Every limit of
// every resolved scope must pass for a request to be allowed.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// PolicyBuilder assembles a Policy.
type PolicyBuilder struct {
	policy *Policy
}

func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{policy: &Policy{Limits: make(map[Scope][]LimitConfig)}}
}

// AddLimit appends a limit of max requests per window to the scope.
func (b *PolicyBuilder) AddLimit(scope Scope, maxRequests int64, window time.Duration) *PolicyBuilder {
	b.policy.Limits[scope] = append(b.policy.Limits[scope], LimitConfig{Window: window, Max: maxRequests})

	return b
}

func (b *PolicyBuilder) Build() *Policy {
	return b.policy
}

// DefaultPolicy is applied to operations without their own limits.
func DefaultPolicy() *Policy {
	return NewPolicyBuilder().
		AddLimit(ScopeGlobal, 2000, time.Minute).
		AddLimit(ScopeRead, 1000, time.Minute).
		AddLimit(ScopeWrite, 60, time.Minute).
		Build()
}

// ShortenLimits applies to link creation.
func ShortenLimits() []LimitConfig {
	return []LimitConfig{
		{Window: time.Minute, Max: 10},
		{Window: time.Hour, Max: 100},
		{Window: 24 * time.Hour, Max: 500},
	}
}

// RedirectLimits applies to key resolution.
func RedirectLimits() []LimitConfig {
	return []LimitConfig{
		{Window: time.Minute, Max: 1000},
	}
}
