package container

import "fmt"

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Options are read from flags and SERVICE_* environment variables.
type Options struct {
	Port        int    `default:"8888"             help:"Port to listen on"                                        short:"p"`
	BaseURL     string `default:""                 help:"Public base URL of short links (default http://localhost:<port>)"`
	Storage     string `default:"memory"           help:"Link storage backend: memory, postgres or redis"          short:"s"`
	DatabaseURL string `default:""                 help:"PostgreSQL URL (default built from the secrets file)"`
	SecretsFile string `default:"/etc/cac_secrets" help:"YAML secrets file shared with the Django site"`
	RedisAddr   string `default:"localhost:6379"   help:"Redis server address"                                     short:"r"`

	Cache    bool `default:"false" help:"Cache link lookups in Redis"`
	CacheTTL int  `default:"3600"  help:"Cache TTL in seconds"`

	KeyLength      int    `default:"22" help:"Length of generated keys"`
	KeyAlphabet    string `default:""   help:"Key alphabet (default 1-9, A-Z and a-z)"`
	KeyMaxAttempts int    `default:"10" help:"Key collisions tolerated per request"`

	RateLimitStore string `default:"memory"     help:"Rate limit counters: memory or redis"`
	PruneSchedule  string `default:"@every 10m" help:"Cron schedule for pruning in-memory rate limit counters"`

	Events bool `default:"false" help:"Publish analytics events to Redis Streams"`

	LogFormat string `default:"" help:"Log format: console or json (default json in production)"`
	LogFile   string `default:"" help:"Also write JSON logs to this rotated file"`

	MediaURL             string `default:"/media/" help:"Base URL of CMS media files"`
	FacebookAppID        string `default:""        help:"Facebook app id exposed to the homepage"`
	HomepageResultsLimit int    `default:"20"      help:"Number of articles in the articles feed"`
}

// PublicBaseURL returns the base URL used to build short links.
func (o *Options) PublicBaseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// Validate reports unsupported option values.
func (o *Options) Validate() error {
	switch o.Storage {
	case StorageMemory, StoragePostgres, StorageRedis:
	default:
		return fmt.Errorf("unknown storage %q: must be memory, postgres or redis", o.Storage)
	}

	switch o.RateLimitStore {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("unknown rate limit store %q: must be memory or redis", o.RateLimitStore)
	}

	switch o.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q: must be console or json", o.LogFormat)
	}

	if o.HomepageResultsLimit <= 0 {
		return fmt.Errorf("homepage results limit must be positive, got %d", o.HomepageResultsLimit)
	}

	if o.Cache && o.Storage == StorageMemory {
		return fmt.Errorf("cache requires postgres or redis storage")
	}

	return nil
}

func (o *Options) needsRedis() bool {
	return o.Storage == StorageRedis || o.Cache || o.RateLimitStore == StorageRedis || o.Events
}

func (o *Options) needsPostgres() bool {
	return o.Storage == StoragePostgres
}
