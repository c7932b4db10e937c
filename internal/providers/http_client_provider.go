package providers

import (
	"net/http"
	"shiftwatch/internal/structures"
	"time"
)

// NewHTTPClientProvider returns the client shared by source fetches.
// Webhook delivery builds its own client with the webhook timeout.
func NewHTTPClientProvider(conf *structures.Config) *http.Client {
	timeout := conf.HTTP.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
