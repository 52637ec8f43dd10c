package practicum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const maxResponseBodySize = 1 << 20 // 1MB

const (
	defaultMaxIdleConnsPerHost = 2
	defaultIdleConnTimeout     = 90 * time.Second
)

var (
	ErrTransport = errors.New("homework API request failed")
	ErrDecode    = errors.New("failed to parse homework API response")
)

// StatusError is returned for any non-200 answer.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

// TransportError wraps network level failures so they never reach status
// code inspection.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	transport  *http.Transport
	logger     *zap.Logger
}

// NewClient creates a client for the homework statuses endpoint. Every request
// carries "Authorization: OAuth <token>".
func NewClient(endpoint, token string, timeout time.Duration, logger *zap.Logger) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}
	base := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "OAuth"})
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = timeout

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		transport:  transport,
		logger:     logger,
	}
}

// GetStatuses fetches homework statuses changed since from (unix seconds) and
// returns the decoded JSON body as a generic value.
func (c *Client) GetStatuses(ctx context.Context, from int64) (any, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(from, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("homework API request failed", zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: c.endpoint, Code: resp.StatusCode}
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		c.logger.Error("failed to parse homework API response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return body, nil
}

// Close releases idle connections. The oauth2 transport does not forward
// CloseIdleConnections, so the base transport is closed directly.
func (c *Client) Close() {
	if c == nil || c.transport == nil {
		return
	}
	c.transport.CloseIdleConnections()
}
