// Package catalog is a client for the RAWG game catalog API.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ryanm101/gameshelf/internal/logging"
	"github.com/ryanm101/gameshelf/internal/metrics"
)

// DefaultBaseURL is the public RAWG API root.
const DefaultBaseURL = "https://api.rawg.io/api"

// maxBodySize caps how much of a response is read.
const maxBodySize = 8 << 20

// Options configures an HTTPClient.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client // overrides Timeout when set
}

// HTTPClient implements Client over the RAWG REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a catalog client. Requests are traced with otelhttp.
func NewHTTPClient(opts Options) *HTTPClient {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		}
	}

	return &HTTPClient{baseURL: base, apiKey: opts.APIKey, http: hc}
}

// ListGames fetches one page of games from /games.
func (c *HTTPClient) ListGames(ctx context.Context, opts ListOptions) (*GameListResponse, error) {
	const op = "list games"

	q := url.Values{}
	q.Set("key", c.apiKey)
	page := opts.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	q.Set("page_size", strconv.Itoa(size))
	if opts.Ordering != "" {
		q.Set("ordering", opts.Ordering)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	var resp GameListResponse
	if err := c.get(ctx, op, "/games", q, schemaGameList, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []Game{}
	}
	return &resp, nil
}

// GetGame fetches /games/{id}.
func (c *HTTPClient) GetGame(ctx context.Context, id int64) (*Game, error) {
	const op = "get game"

	q := url.Values{}
	q.Set("key", c.apiKey)

	var g Game
	if err := c.get(ctx, op, "/games/"+strconv.FormatInt(id, 10), q, schemaGame, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *HTTPClient) get(ctx context.Context, op, path string, q url.Values, schema string, v any) (err error) {
	start := time.Now()
	defer func() { metrics.RecordCatalogRequest(op, outcome(err), start) }()

	u := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &RequestError{Op: op, Err: fmt.Errorf("%w: %w", ErrTransport, ctxErr)}
		}
		return &RequestError{Op: op, Err: fmt.Errorf("%w: %v", ErrTransport, redact(err, c.apiKey))}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: ErrStatus}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
	}

	if err := decode(schema, body, v); err != nil {
		return &RequestError{Op: op, Err: err}
	}

	logging.Debug("catalog request", "op", op, "path", path, "duration", time.Since(start))
	return nil
}

// redact strips the API key from errors that embed the request URL.
func redact(err error, key string) error {
	if key == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), key, "REDACTED")
	return fmt.Errorf("%s", msg)
}
