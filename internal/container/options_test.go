package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validOptions() *Options {
	return &Options{
		Port:                 8888,
		Storage:              StorageMemory,
		RateLimitStore:       StorageMemory,
		HomepageResultsLimit: 20,
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(o *Options)
		wantErr string
	}{
		{name: "defaults", modify: func(*Options) {}},
		{name: "postgres with cache", modify: func(o *Options) { o.Storage = StoragePostgres; o.Cache = true }},
		{name: "unknown storage", modify: func(o *Options) { o.Storage = "mysql" }, wantErr: "unknown storage"},
		{
			name:    "unknown rate limit store",
			modify:  func(o *Options) { o.RateLimitStore = "postgres" },
			wantErr: "unknown rate limit store",
		},
		{name: "unknown log format", modify: func(o *Options) { o.LogFormat = "xml" }, wantErr: "unknown log format"},
		{
			name:    "zero homepage results",
			modify:  func(o *Options) { o.HomepageResultsLimit = 0 },
			wantErr: "homepage results limit",
		},
		{
			name:    "negative homepage results",
			modify:  func(o *Options) { o.HomepageResultsLimit = -5 },
			wantErr: "homepage results limit",
		},
		{name: "cache over memory", modify: func(o *Options) { o.Cache = true }, wantErr: "cache requires"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.modify(opts)

			err := opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestOptions_PublicBaseURL(t *testing.T) {
	opts := validOptions()
	assert.Equal(t, "http://localhost:8888", opts.PublicBaseURL())

	opts.BaseURL = "https://planner.example.org"
	assert.Equal(t, "https://planner.example.org", opts.PublicBaseURL())
}

func TestOptions_Backends(t *testing.T) {
	opts := validOptions()
	assert.False(t, opts.needsRedis())
	assert.False(t, opts.needsPostgres())

	opts.Events = true
	assert.True(t, opts.needsRedis())

	opts = validOptions()
	opts.Storage = StoragePostgres
	assert.True(t, opts.needsPostgres())
	assert.False(t, opts.needsRedis())
}
