// Package backend provides the typed client for the terminal backend:
// REST endpoints for instrument search, user layouts, and AI queries, and
// a websocket quote stream. All wire payloads are validated and normalized
// at this boundary so unchecked shapes never reach the scoring or layout
// logic.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketterm/internal/launchpad"
	"marketterm/internal/suggest"
	"marketterm/internal/util"
)

// Client is the REST client for the terminal backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a backend API client.
func NewClient(baseURL string, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// instrumentPayload is the wire shape of one search result.
type instrumentPayload struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Exchange string  `json:"exchange"`
	Price    float64 `json:"price,omitempty"`
}

type searchResponse struct {
	Items []instrumentPayload `json:"items"`
}

// SearchInstruments queries the instrument master. Results are normalized
// (uppercased symbol/exchange, entries without a symbol dropped) before
// they reach the suggestion engine.
func (c *Client) SearchInstruments(ctx context.Context, query string) ([]suggest.Instrument, error) {
	var resp searchResponse
	endpoint := c.baseURL + "/api/v1/instruments/search?q=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("searching instruments: %w", err)
	}

	out := make([]suggest.Instrument, 0, len(resp.Items))
	for _, item := range resp.Items {
		symbol := strings.ToUpper(strings.TrimSpace(item.Symbol))
		if symbol == "" {
			continue
		}
		out = append(out, suggest.Instrument{
			Symbol:   symbol,
			Name:     strings.TrimSpace(item.Name),
			Exchange: strings.ToUpper(strings.TrimSpace(item.Exchange)),
			Price:    item.Price,
		})
	}
	return out, nil
}

type layoutsPayload struct {
	Items []launchpad.LayoutPreset `json:"items"`
}

// GetLayouts fetches the user's saved Launchpad layouts.
func (c *Client) GetLayouts(ctx context.Context) ([]launchpad.LayoutPreset, error) {
	var resp layoutsPayload
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/user/layouts", &resp); err != nil {
		return nil, fmt.Errorf("fetching layouts: %w", err)
	}
	return resp.Items, nil
}

// PutLayouts replaces the user's saved layouts. Best effort: callers
// treat failures as retryable on the next change.
func (c *Client) PutLayouts(ctx context.Context, items []launchpad.LayoutPreset) error {
	body, err := json.Marshal(layoutsPayload{Items: items})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/v1/user/layouts", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("writing layouts: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("writing layouts: status %d", resp.StatusCode)
	}
	return nil
}

type aiQueryRequest struct {
	Query string `json:"q"`
}

type aiQueryResponse struct {
	Answer string `json:"answer"`
}

// QueryAI dispatches a natural-language query and returns the answer
// text.
func (c *Client) QueryAI(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(aiQueryRequest{Query: query})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/ai/query", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai query: status %d", resp.StatusCode)
	}
	var parsed aiQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ai query: decoding response: %w", err)
	}
	return parsed.Answer, nil
}

// getJSON performs a GET with a short retry, decoding the JSON response
// into dest.
func (c *Client) getJSON(ctx context.Context, endpoint string, dest any) error {
	return util.Retry(ctx, 2, 200*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(dest)
	})
}
