package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrVerifyExhausted = errors.New("pool advance not visible after all verification attempts")

// Client talks to the progress endpoints the way the study frontend
// does: fetch, threshold check, advance, then verify the advance landed
// with bounded polling.
type Client struct {
	baseURL  string
	http     *http.Client
	attempts int
	delay    time.Duration
}

func NewClient(baseURL string, attempts int, delay time.Duration) *Client {
	if attempts <= 0 {
		attempts = 5
	}
	if delay <= 0 {
		delay = time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
		attempts: attempts,
		delay:    delay,
	}
}

func (c *Client) Fetch(ctx context.Context, playerID string) (*Progress, error) {
	var out Progress
	if err := c.do(ctx, http.MethodGet, c.progressPath(playerID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ShouldAdvance reports whether every number of the current pool batch is
// completed.
func ShouldAdvance(p *Progress) bool {
	if p == nil || p.PoolSize <= 0 {
		return false
	}
	have := make(map[int]struct{}, len(p.Completed))
	for _, n := range p.Completed {
		have[n] = struct{}{}
	}
	start := p.Pool * p.PoolSize
	for n := start; n < start+p.PoolSize; n++ {
		if _, ok := have[n]; !ok {
			return false
		}
	}
	return true
}

func (c *Client) Advance(ctx context.Context, playerID string) (*Progress, error) {
	var out Progress
	if err := c.do(ctx, http.MethodPost, c.progressPath(playerID)+"/advance", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyAdvance polls until the server reports at least wantPool, giving
// up after the configured attempt count.
func (c *Client) VerifyAdvance(ctx context.Context, playerID string, wantPool int) (*Progress, error) {
	for attempt := 1; attempt <= c.attempts; attempt++ {
		p, err := c.Fetch(ctx, playerID)
		if err == nil && p.Pool >= wantPool {
			return p, nil
		}
		if attempt == c.attempts {
			break
		}
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, ErrVerifyExhausted
}

func (c *Client) progressPath(playerID string) string {
	return c.baseURL + "/api/progress/" + url.PathEscape(playerID)
}

func (c *Client) do(ctx context.Context, method, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("progress request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, dest)
}
