package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "metric-diary/1.0"

// Client is a concurrency-limited HTTP client for the diary backend
// (history provider, prediction provider, rating store, retrain trigger).
type Client struct {
	http *http.Client
	base string
	sem  chan struct{}

	// strategies whose "_<strategy>" suffix is stripped from prediction keys.
	strategies []string
}

// NewClient creates a client for the backend at baseURL.
// At most 8 requests run concurrently; a dashboard refresh issues one
// history fetch per visible parameter.
func NewClient(baseURL string, strategies []string) *Client {
	return &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		base:       baseURL,
		sem:        make(chan struct{}, 8),
		strategies: strategies,
	}
}

// HealthCheck pings the backend to verify connectivity.
func (c *Client) HealthCheck() bool {
	req, err := http.NewRequest("GET", c.base+"/", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// GetJSON fetches a URL and decodes JSON into dst.
func (c *Client) GetJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

// PostJSON sends a JSON body and decodes the response into dst when dst is
// non-nil. Any 2xx status counts as success.
func (c *Client) PostJSON(url string, body interface{}, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider %d: %s", resp.StatusCode, string(raw))
	}
	if dst == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
