package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// API defines the portal operations the list core and CLI depend on.
// It is implemented by *Client and can be faked in tests.
type API interface {
	List(ctx context.Context, path string, params ListParams) (ListResponse, error)
	Create(ctx context.Context, path string, payload any) (Record, error)
	Update(ctx context.Context, path, id string, payload any) (Record, error)
	Delete(ctx context.Context, path, id string) error
	Me(ctx context.Context) (Me, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the portal REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	userAgent string
	log       zerolog.Logger
}

const (
	defaultAPIURL    = "http://127.0.0.1:8000/api"
	defaultUserAgent = "khidmat/0.3"
	defaultTimeout   = 30 * time.Second
	defaultRetryMax  = 3
	maxErrorBody     = 64 * 1024
)

// Options configure NewClient.
type Options struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration // per request; zero uses 30s
	RetryMax int           // retries for idempotent reads; negative disables
	Logger   *zerolog.Logger
}

type idempotentKey struct{}

// NewClient builds a Client for the given API root.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "portal").Logger()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retryMax := opts.RetryMax
	switch {
	case retryMax == 0:
		retryMax = defaultRetryMax
	case retryMax < 0:
		retryMax = 0
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = timeout
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 4 * time.Second
	retryClient.Logger = retryLogger{log: logger}
	retryClient.CheckRetry = readsOnlyRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL:   base,
		http:      retryClient.StandardClient(),
		token:     strings.TrimSpace(opts.Token),
		userAgent: defaultUserAgent,
		log:       logger,
	}, nil
}

// Token returns the bearer token attached to requests.
func (c *Client) Token() string {
	if c == nil {
		return ""
	}
	return c.token
}

// List reads one page of a collection.
func (c *Client) List(ctx context.Context, path string, params ListParams) (ListResponse, error) {
	if c == nil {
		return ListResponse{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if params.Page > 0 {
		values.Set("page", strconv.Itoa(params.Page))
	}
	if params.Size > 0 {
		// Older endpoints read per_page, newer ones size.
		values.Set("size", strconv.Itoa(params.Size))
		values.Set("per_page", strconv.Itoa(params.Size))
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		values.Set("search", search)
	}
	if sort := strings.TrimSpace(params.Sort); sort != "" {
		values.Set("sort", sort)
		if dir := strings.TrimSpace(params.Direction); dir != "" {
			values.Set("direction", dir)
		}
	}
	for key, value := range params.Filters {
		if key = strings.TrimSpace(key); key != "" && strings.TrimSpace(value) != "" {
			values.Set(key, strings.TrimSpace(value))
		}
	}

	rel := &url.URL{Path: collectionPath(path), RawQuery: values.Encode()}
	var payload ListResponse
	if err := c.doURL(withIdempotent(ctx), http.MethodGet, rel, nil, &payload); err != nil {
		return ListResponse{}, err
	}
	if payload.Data == nil {
		payload.Data = []Record{}
	}
	return payload, nil
}

// Create posts a new record to a collection.
func (c *Client) Create(ctx context.Context, path string, payload any) (Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var out struct {
		Data Record `json:"data"`
	}
	rel := &url.URL{Path: collectionPath(path)}
	if err := c.doURL(ctx, http.MethodPost, rel, payload, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Update replaces fields on an existing record.
func (c *Client) Update(ctx context.Context, path, id string, payload any) (Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("record id required")
	}
	var out struct {
		Data Record `json:"data"`
	}
	rel := &url.URL{Path: memberPath(path, id)}
	if err := c.doURL(ctx, http.MethodPut, rel, payload, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, path, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("record id required")
	}
	rel := &url.URL{Path: memberPath(path, id)}
	return c.doURL(ctx, http.MethodDelete, rel, nil, nil)
}

// Me fetches the signed-in user with role, permissions and scope flags.
func (c *Client) Me(ctx context.Context) (Me, error) {
	if c == nil {
		return Me{}, fmt.Errorf("client is nil")
	}
	var out struct {
		Data *Me `json:"data"`
		Me
	}
	rel := &url.URL{Path: collectionPath("auth/me")}
	if err := c.doURL(withIdempotent(ctx), http.MethodGet, rel, nil, &out); err != nil {
		return Me{}, err
	}
	if out.Data != nil {
		return *out.Data, nil
	}
	return out.Me, nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body any, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := &APIError{Kind: KindTransport, Method: method, Path: rel.Path, Err: err}
		if IsTimeout(err) {
			apiErr.Message = "request timed out"
		}
		if !errors.Is(err, context.Canceled) {
			c.log.Warn().Str("request_id", requestID).Str("method", method).Str("path", rel.Path).Err(err).Msg("request failed")
		}
		return apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", reqURL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request complete")

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg, fields := parseErrorBody(raw)
		return &APIError{
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Method:  method,
			Path:    rel.Path,
			Message: msg,
			Fields:  fields,
		}
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &APIError{Kind: KindDecode, Status: resp.StatusCode, Method: method, Path: rel.Path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func withIdempotent(ctx context.Context) context.Context {
	return context.WithValue(ctx, idempotentKey{}, true)
}

// readsOnlyRetryPolicy retries reads on the default conditions (transport
// errors, 429, 5xx) and never retries mutations.
func readsOnlyRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ok, _ := ctx.Value(idempotentKey{}).(bool); !ok {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func collectionPath(path string) string {
	return "./" + strings.Trim(strings.TrimSpace(path), "/")
}

func memberPath(path, id string) string {
	return collectionPath(path) + "/" + url.PathEscape(strings.TrimSpace(id))
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	// Relative references resolve against the last path segment, so the
	// base must end in a slash to keep "/api" in front of every endpoint.
	u.Path = strings.TrimSuffix(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// retryLogger adapts zerolog onto retryablehttp.LeveledLogger.
type retryLogger struct {
	log zerolog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Trace().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
