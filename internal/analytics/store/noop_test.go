package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/cactripplanner/shortlinks/internal/analytics"
	"github.com/cactripplanner/shortlinks/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNoop_SaveShortLinkCreated(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	noop := store.NewNoop(zap.New(core))

	event := &analytics.ShortLinkCreatedEvent{
		Key:       "Xk3pQ9abcdEFGH123456zz",
		TargetURL: "https://example.com",
		Strategy:  "token",
		CreatedAt: time.Now(),
	}

	err := noop.SaveShortLinkCreated(context.Background(), event)

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Xk3pQ9abcdEFGH123456zz", logs.All()[0].ContextMap()["key"])
}

func TestNoop_SaveShortLinkResolved(t *testing.T) {
	noop := store.NewNoop(zap.NewNop())

	event := &analytics.ShortLinkResolvedEvent{
		Key:        "Xk3pQ9abcdEFGH123456zz",
		ResolvedAt: time.Now(),
		ClientIP:   "127.0.0.1",
		UserAgent:  "TestAgent/1.0",
		Referrer:   "https://referrer.com",
	}

	err := noop.SaveShortLinkResolved(context.Background(), event)

	require.NoError(t, err)
}
