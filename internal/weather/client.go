package weather

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// Client fetches current conditions from weatherapi.com.
type Client struct {
	host       string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns a Client that sends requests to host with apiKey.
// The underlying http.Client has no timeout; callers bound requests with ctx.
func NewClient(host, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		host:       host,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Current builds the request URL for location, fetches it and decodes the
// "current" object. Errors are always an OperationError.
func (c *Client) Current(ctx context.Context, location string) (Reading, error) {
	c.logger.Debug("requesting current weather", "host", c.host, "location", location)

	body, err := c.Fetch(ctx, BuildURL(c.host, c.apiKey, location))
	if err != nil {
		return Reading{}, err
	}

	r, err := Decode(body)
	if err != nil {
		return Reading{}, err
	}

	c.logger.Debug("decoded current weather",
		"temperature_c", r.TemperatureC,
		"feelslike_c", r.FeelsLikeC,
		"condition", r.Condition.Text,
	)
	return r, nil
}

// Fetch issues one GET to rawURL and parses the whole body as generic JSON.
// The status code is not inspected: any syntactically valid JSON body succeeds.
func (c *Client) Fetch(ctx context.Context, rawURL string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wireURL(rawURL), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("close response body", "error", err)
		}
	}()

	c.logger.Debug("weather response", "status", resp.StatusCode, "content_type", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &TransportError{Err: err}
	}
	return v, nil
}
