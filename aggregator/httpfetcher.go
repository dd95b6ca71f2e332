package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPFetcher polls the live backend. The http.Client must carry the
// session cookie (use a cookie jar populated at login).
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f *HTTPFetcher) UnreadMessages(ctx context.Context) (int64, error) {
	return f.fetchCount(ctx, "/api/messages/unread-count")
}

func (f *HTTPFetcher) UnreadRequests(ctx context.Context) (int64, error) {
	return f.fetchCount(ctx, "/api/requests/unread-count")
}

func (f *HTTPFetcher) fetchCount(ctx context.Context, path string) (int64, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	var body struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	return body.Count, nil
}
