package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPEngagement queries a JSON search endpoint for recent posts. The
// endpoint contract is GET {base}/search?q=...&lang=...&limit=... returning
// {"posts": [...]}.
type HTTPEngagement struct {
	client   *http.Client
	baseURL  string
	language string
}

// NewHTTPEngagement creates an engagement fetcher against baseURL.
func NewHTTPEngagement(baseURL, language string, timeout time.Duration) *HTTPEngagement {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEngagement{
		client:   &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		language: language,
	}
}

func (h *HTTPEngagement) Name() string { return "engagement" }

type searchResponse struct {
	Posts []Post `json:"posts"`
}

func (h *HTTPEngagement) Search(ctx context.Context, query string, limit int) ([]Post, error) {
	q := url.Values{}
	q.Set("q", query)
	if h.language != "" {
		q.Set("lang", h.language)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	endpoint := h.baseURL + "/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create engagement request: %w", err)
	}
	req.Header.Set("User-Agent", "newsradar/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch engagement: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engagement status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode engagement response: %w", err)
	}
	return parsed.Posts, nil
}
