package ocds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// FeedUnavailableError reports a transport failure or a non-2xx response from
// the OCDS feed. Fatal to the current sync run; safe to retry later.
type FeedUnavailableError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FeedUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed unavailable: %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("feed unavailable: %s: HTTP %d %s", e.URL, e.StatusCode, e.Status)
}

func (e *FeedUnavailableError) Unwrap() error {
	return e.Err
}

// Client fetches pages of OCDS releases from a publisher's list endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// FetchPage requests one page of releases. An empty slice is a normal terminal
// condition for pagination, not an error.
func (c *Client) FetchPage(ctx context.Context, pageNumber, pageSize int) ([]Release, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/releases?%s", c.baseURL, url.Values{
		"PageNumber": []string{strconv.Itoa(pageNumber)},
		"PageSize":   []string{strconv.Itoa(pageSize)},
	}.Encode())

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FeedUnavailableError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FeedUnavailableError{URL: reqURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FeedUnavailableError{URL: reqURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var page releasePage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	return page.Releases, nil
}
