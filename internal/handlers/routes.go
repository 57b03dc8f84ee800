package handlers

import (
	"net/http"

	"github.com/cactripplanner/shortlinks/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the shortlink routes with per-endpoint rate limit configuration.
// Malformed bodies are reported as 400.
func RegisterRoutes(api huma.API, h *ShortLinkHandler) {
	reportValidationAsBadRequest()

	// Stricter limits for writes.
	huma.Register(api, huma.Operation{
		OperationID:   "shorten-link",
		Method:        http.MethodPost,
		Path:          "/shorten/",
		Summary:       "Create short link",
		Description:   "Creates a short link using the specified strategy (token or hash).",
		Tags:          []string{"Shortlinks"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Limits: ratelimit.ShortenLimits()},
		},
	}, h.Shorten)

	huma.Register(api, huma.Operation{
		OperationID:   "dereference-shortened",
		Method:        http.MethodGet,
		Path:          "/{key}",
		Summary:       "Redirect to target URL",
		Description:   "Redirects to the target URL associated with the key.",
		Tags:          []string{"Shortlinks"},
		DefaultStatus: http.StatusFound,
		Errors:        []int{http.StatusNotFound, http.StatusTooManyRequests},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Limits: ratelimit.RedirectLimits()},
		},
	}, h.Redirect)
}

// RegisterContentRoutes registers the read-only CMS routes. They use the
// default read policy.
func RegisterContentRoutes(api huma.API, h *ContentHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "home",
		Method:      http.MethodGet,
		Path:        "/api/home",
		Summary:     "Homepage content",
		Tags:        []string{"Content"},
	}, h.Home)

	huma.Register(api, huma.Operation{
		OperationID: "all-articles",
		Method:      http.MethodGet,
		Path:        "/api/articles",
		Summary:     "Most recent published articles",
		Tags:        []string{"Content"},
	}, h.Articles)

	huma.Register(api, huma.Operation{
		OperationID: "about-faq",
		Method:      http.MethodGet,
		Path:        "/api/about/{slug}",
		Summary:     "About or FAQ page",
		Tags:        []string{"Content"},
		Errors:      []int{http.StatusNotFound},
	}, h.AboutFaq)

	huma.Register(api, huma.Operation{
		OperationID: "community-profile-detail",
		Method:      http.MethodGet,
		Path:        "/api/community-profiles/{slug}",
		Summary:     "Published community profile",
		Tags:        []string{"Content"},
		Errors:      []int{http.StatusNotFound},
	}, h.CommunityProfile)

	huma.Register(api, huma.Operation{
		OperationID: "tips-and-tricks-detail",
		Method:      http.MethodGet,
		Path:        "/api/tips-and-tricks/{slug}",
		Summary:     "Published tips and tricks article",
		Tags:        []string{"Content"},
		Errors:      []int{http.StatusNotFound},
	}, h.TipsAndTricks)
}
