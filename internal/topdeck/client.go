// Package topdeck is the TopDeck.gg API boundary: a rate-limited client,
// the wire payload types, and the weekly range helpers the ETL pipeline
// batches by.
package topdeck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cedhtools/etl/internal/logger"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://topdeck.gg/api/v2"

	// DefaultTimeout bounds a single request. The tournament list endpoint
	// can be slow for large date ranges.
	DefaultTimeout = 5 * time.Minute

	// DefaultMinInterval is the minimum spacing between requests.
	DefaultMinInterval = time.Second

	// maxPlayersPerRequest is the player endpoint's hard limit.
	maxPlayersPerRequest = 15

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 2048
)

// tournamentColumns selects the standing fields the pipeline consumes.
var tournamentColumns = []string{
	"name", "decklist", "wins", "winsSwiss", "winsBracket",
	"draws", "losses", "lossesSwiss", "lossesBracket", "id",
}

// Config holds client settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MinInterval time.Duration
}

// Client is a rate-limited TopDeck API client. Successful responses are
// decoded as a stream from the body so large tournament lists are never
// buffered twice.
type Client struct {
	http    *resty.Client
	limiter *RateLimiter
	timeout time.Duration
}

// NewClient creates a client from config, filling in defaults.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	minInterval := cfg.MinInterval
	if minInterval == 0 {
		minInterval = DefaultMinInterval
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Bodies are decoded as streams, not buffered by resty.
	client.SetDoNotParseResponse(true)

	return &Client{
		http:    client,
		limiter: NewRateLimiter(minInterval),
		timeout: timeout,
	}
}

// FetchWeek lists all tournaments in the half-open [start, end) unix-second
// window, with rounds, tables, and structured decklists included.
func (c *Client) FetchWeek(ctx context.Context, start, end int64) ([]Tournament, error) {
	body := tournamentListRequest{
		Game:    "Magic: The Gathering",
		Format:  "EDH",
		Start:   start,
		End:     end,
		Columns: tournamentColumns,
		Rounds:  true,
		Tables:  []string{"table", "players", "winner"},
		Players: []string{"name", "id", "decklist"},
	}

	var tournaments []Tournament
	err := c.do(ctx, "list tournaments", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().SetContext(ctx).SetBody(body).Post("/tournaments")
	}, &tournaments)
	if err != nil {
		return nil, err
	}

	for i := range tournaments {
		if err := tournaments[i].Validate(); err != nil {
			return nil, err
		}
	}
	return tournaments, nil
}

// FetchTournament fetches a single tournament by TID.
func (c *Client) FetchTournament(ctx context.Context, tid string) (*Tournament, error) {
	var t Tournament
	err := c.do(ctx, "get tournament", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().SetContext(ctx).Get("/tournaments/" + url.PathEscape(tid))
	}, &t)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// FetchPlayers fetches up to 15 player profiles in one call.
func (c *Client) FetchPlayers(ctx context.Context, ids []string) ([]Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > maxPlayersPerRequest {
		return nil, fmt.Errorf("cannot fetch more than %d players at once", maxPlayersPerRequest)
	}

	query := url.Values{"id": ids}
	var players []Player
	err := c.do(ctx, "get players", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().SetContext(ctx).SetQueryParamsFromValues(query).Get("/player")
	}, &players)
	if err != nil {
		return nil, err
	}
	return players, nil
}

// FetchPlayersBatch dedupes ids and fetches them in chunks of 15,
// preserving first-seen order.
func (c *Client) FetchPlayersBatch(ctx context.Context, ids []string) ([]Player, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var players []Player
	for i := 0; i < len(unique); i += maxPlayersPerRequest {
		chunk := unique[i:min(i+maxPlayersPerRequest, len(unique))]
		got, err := c.FetchPlayers(ctx, chunk)
		if err != nil {
			return nil, err
		}
		players = append(players, got...)
	}
	return players, nil
}

// do runs one rate-limited request with the client timeout applied and
// decodes a 2xx body into out as a stream.
func (c *Client) do(ctx context.Context, op string, send func(context.Context) (*resty.Response, error), out interface{}) error {
	c.limiter.Wait()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	resp, err := send(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Service: serviceName, Op: op}
		}
		return fmt.Errorf("%s: %s: %w", serviceName, op, err)
	}

	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		body, _ := io.ReadAll(io.LimitReader(raw, maxErrorBody))
		return &ExternalServiceError{
			Service: serviceName,
			Status:  resp.StatusCode(),
			Body:    string(body),
		}
	}

	if err := json.NewDecoder(raw).Decode(out); err != nil {
		return &ExternalServiceError{
			Service: serviceName,
			Body:    fmt.Sprintf("%s: malformed response: %v", op, err),
		}
	}

	logger.With(logger.Fields{logger.FieldDurationMs: time.Since(started).Milliseconds()}).
		Debug(ctx, "topdeck %s ok", op)
	return nil
}
