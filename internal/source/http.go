package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starford/othala/internal/dataset"
	"github.com/starford/othala/internal/models"
)

// MaxPayloadBytes caps the size of a people API response.
const MaxPayloadBytes = 10 << 20

// HTTP fetches people from a remote JSON API.
type HTTP struct {
	url        string
	token      string
	client     *http.Client
	onResponse func(*http.Response)
}

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

// WithToken sends "Authorization: Bearer <token>" with every request.
func WithToken(token string) HTTPOption {
	return func(h *HTTP) {
		h.token = token
	}
}

// WithClient replaces the default HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.client = c
	}
}

// WithResponseHook calls fn with every successful response before its body
// is read.
func WithResponseHook(fn func(*http.Response)) HTTPOption {
	return func(h *HTTP) {
		h.onResponse = fn
	}
}

// NewHTTP creates a Provider for the people API at url.
func NewHTTP(url string, timeout time.Duration, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetPeople issues one GET request and decodes the JSON array it returns.
func (h *HTTP) GetPeople(ctx context.Context) ([]models.Person, error) {
	data, err := h.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	people, err := dataset.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("source: http: %w", err)
	}
	return people, nil
}

// Fetch returns the raw response body of the people API.
func (h *HTTP) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: http: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: http: get %s: %w", h.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("source: http: get %s: unexpected status %d", h.url, resp.StatusCode)
	}
	if h.onResponse != nil {
		h.onResponse(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("source: http: read body: %w", err)
	}
	if len(data) > MaxPayloadBytes {
		return nil, fmt.Errorf("source: http: payload exceeds %d bytes", MaxPayloadBytes)
	}
	return data, nil
}
