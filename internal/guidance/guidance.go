// Package guidance fetches code-quality hints from an optional external
// service and folds them into the system prompt. A missing or failing
// service never blocks a chat turn.
package guidance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"atelier/internal/config"
	"atelier/internal/logging"
)

const maxEntries = 5

// Client talks to the guidance endpoint.
type Client struct {
	url  string
	http *http.Client
}

// New creates a guidance client. url may be empty; Block then always
// returns "".
func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = config.DefaultGuidanceTimeout
	}
	return &Client{
		url:  strings.TrimRight(strings.TrimSpace(url), "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// entry tolerates both plain strings and {"pattern": ...} objects.
type entry struct {
	text string
}

func (e *entry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.text = s
		return nil
	}
	var obj struct {
		Pattern string `json:"pattern"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.text = obj.Pattern
	return nil
}

type response struct {
	Avoid     []entry `json:"avoid"`
	Encourage []entry `json:"encourage"`
}

// Block returns the prompt section describing patterns to avoid and
// encourage, or "" when the service is unset, unreachable or empty.
func (c *Client) Block(ctx context.Context) string {
	if c == nil || c.url == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/guidance", nil)
	if err != nil {
		logging.Debug("guidance request build failed", "error", err)
		return ""
	}
	resp, err := c.http.Do(req)
	if err != nil {
		logging.Debug("guidance fetch failed", "url", c.url, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Debug("guidance fetch failed", "url", c.url, "status", resp.StatusCode)
		return ""
	}

	var data response
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logging.Debug("guidance decode failed", "error", err)
		return ""
	}

	avoid := entryTexts(data.Avoid)
	encourage := entryTexts(data.Encourage)
	if len(avoid) == 0 && len(encourage) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Code quality guidance:")
	if len(avoid) > 0 {
		fmt.Fprintf(&b, "\nAvoid: %s", strings.Join(avoid, "; "))
	}
	if len(encourage) > 0 {
		fmt.Fprintf(&b, "\nEncourage: %s", strings.Join(encourage, "; "))
	}
	return b.String()
}

func entryTexts(entries []entry) []string {
	var out []string
	for _, e := range entries {
		if e.text == "" {
			continue
		}
		out = append(out, e.text)
		if len(out) == maxEntries {
			break
		}
	}
	return out
}
