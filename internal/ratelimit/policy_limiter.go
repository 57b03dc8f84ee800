package ratelimit

import (
	"context"
	"fmt"
)

// LimitExceeded contains information about which limit was exceeded.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// PolicyLimiter enforces rate limits based on a policy and resolved scopes.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow checks if a request should be allowed based on the client key and applicable scopes.
// The LimitExceeded return value describes the limit that was hit (nil if allowed).
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	for _, scope := range scopes {
		limits, ok := l.policy.Limits[scope]
		if !ok {
			continue
		}

		if allowed, exceeded, err := l.check(ctx, clientKey+":"+string(scope), scope, limits); !allowed || err != nil {
			return allowed, exceeded, err
		}
	}

	return true, nil, nil
}

// AllowLimits applies endpoint specific limits, tracked per client and route.
func (l *PolicyLimiter) AllowLimits(
	ctx context.Context,
	clientKey, route string,
	limits []LimitConfig,
) (bool, *LimitExceeded, error) {
	return l.check(ctx, clientKey+":custom:"+route, "", limits)
}

func (l *PolicyLimiter) check(
	ctx context.Context,
	prefix string,
	scope Scope,
	limits []LimitConfig,
) (bool, *LimitExceeded, error) {
	for _, limit := range limits {
		// one counter per window so that limits are tracked independently
		key := fmt.Sprintf("%s:%d", prefix, limit.Window.Milliseconds())

		count, allowed, err := NewSlidingWindowLimiter(l.store, limit.Max, limit.Window).Check(ctx, key)
		if err != nil {
			return false, nil, err
		}

		if !allowed {
			return false, &LimitExceeded{Scope: scope, Config: limit, Count: count}, nil
		}
	}

	return true, nil, nil
}
