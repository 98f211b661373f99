package openai

import (
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// NewClient builds a go-openai client. baseURL may point at a compatible
// gateway; empty keeps the public endpoint.
func NewClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return openai.NewClientWithConfig(cfg)
}
