package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPTrends queries an interest-over-time endpoint. The contract is
// GET {base}/interest?kw=a,b,c&geo=BR&window=4h returning
// {"series": [0..100, ...]} ordered oldest first.
type HTTPTrends struct {
	client  *http.Client
	baseURL string
	geo     string
}

// NewHTTPTrends creates a trends fetcher against baseURL.
func NewHTTPTrends(baseURL, geo string, timeout time.Duration) *HTTPTrends {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPTrends{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		geo:     geo,
	}
}

func (h *HTTPTrends) Name() string { return "trends" }

type interestResponse struct {
	Series []float64 `json:"series"`
}

func (h *HTTPTrends) InterestOverTime(ctx context.Context, keywords []string, window time.Duration) ([]float64, error) {
	q := url.Values{}
	q.Set("kw", strings.Join(keywords, ","))
	if h.geo != "" {
		q.Set("geo", h.geo)
	}
	q.Set("window", window.String())

	endpoint := h.baseURL + "/interest?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create trends request: %w", err)
	}
	req.Header.Set("User-Agent", "newsradar/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trends: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends status %d", resp.StatusCode)
	}

	var parsed interestResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode trends response: %w", err)
	}
	return parsed.Series, nil
}
