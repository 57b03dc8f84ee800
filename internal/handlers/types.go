package handlers

// Strategy selects how a shorten request is deduplicated.
type Strategy string

const (
	// StrategyToken always creates a new key.
	StrategyToken Strategy = "token"
	// StrategyHash reuses the key of an equivalent URL.
	StrategyHash Strategy = "hash"
)

// ShortenRequest is the request body for creating a short link.
type ShortenRequest struct {
	Body struct {
		URL      string   `doc:"The URL to shorten"                  example:"http://example.com/page" json:"url,omitempty"`
		Strategy Strategy `doc:"Deduplication strategy (token|hash)" example:"token"                   json:"strategy,omitempty"`
	}
}

// ShortenResponse is returned for a created (201) or reused (200) link.
type ShortenResponse struct {
	Status   int
	Location string `doc:"The short link" header:"Location"`
	Body     struct {
		Key       string `doc:"The 22 character key" example:"Xk3pQ9bcdEFGH1234567zz"                             json:"key"`
		ShortURL  string `doc:"The full short link"  example:"http://localhost:8888/Xk3pQ9bcdEFGH1234567zz" json:"shortUrl"`
		TargetURL string `doc:"The target URL"       example:"http://example.com/page"                            json:"targetUrl"`
	}
}

// RedirectRequest is the request for resolving a key.
type RedirectRequest struct {
	Key string `doc:"The short link key" example:"Xk3pQ9bcdEFGH1234567zz" path:"key"`
}

// RedirectResponse redirects to the target URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}
