package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"path"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hennalash/go-client/logger"
)

var (
	Version = "dev"
	Commit  = "unknown"
	retry   = 5
)

// DefaultTimeout bounds every outbound request. A request past the deadline
// fails as a network error (status 0) through the same mapping path as
// connectivity failures.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer credential at request-construction time.
// An empty token means the Authorization header is omitted entirely.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource returning a fixed credential.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// Client is a thin wrapper over the booking backend's REST API. It attaches
// the bearer token from its TokenSource to every request and applies the
// global 401 policy via the OnUnauthorized hook.
type Client struct {
	baseURL        string
	tokens         TokenSource
	client         *http.Client
	logger         logger.Logger
	tracer         trace.Tracer
	onUnauthorized func()
	handling401    atomic.Bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger. Defaults to a console logger.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithTokenSource sets the source of the bearer credential.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) { c.tokens = ts }
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// WithOnUnauthorized registers the hook run when any response comes back
// 401. The hook fires at most once at a time: a 401 triggered while the
// hook is already running is dropped, so session teardown cannot loop.
func WithOnUnauthorized(fn func()) ClientOption {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New returns a Client for the given base URL.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		tracer:  otel.Tracer("github.com/hennalash/go-client/api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.NewConsoleLogger()
	}
	return c
}

// Error is the typed failure returned by every Client method. Status 0 means
// no response was received (connectivity failure or timeout).
type Error struct {
	URL      string
	Method   string
	Status   int
	Body     string
	Detail   string
	TheError error
}

func (e *Error) Error() string {
	if e == nil || e.TheError == nil {
		return ""
	}
	return e.TheError.Error()
}

func (e *Error) Unwrap() error {
	return e.TheError
}

func NewError(url, method string, status int, body, detail string, err error) *Error {
	return &Error{
		URL:      url,
		Method:   method,
		Status:   status,
		Body:     body,
		Detail:   detail,
		TheError: err,
	}
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// *Error or no response was received.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// DetailOf returns the server-supplied detail or message field from an
// error response body, if any.
func DetailOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// errorBody is the error shape the backend returns: FastAPI-style detail,
// with a message fallback.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

func (b errorBody) text() string {
	if len(b.Detail) > 0 {
		var s string
		if err := json.Unmarshal(b.Detail, &s); err == nil {
			return s
		}
		// Validation errors arrive as a list of issues; keep the raw JSON.
		return string(b.Detail)
	}
	return b.Message
}

func UserAgent() string {
	gitSHA := Commit
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				gitSHA = setting.Value
			}
		}
	}
	return "HennaLash Go Client/" + Version + " (" + gitSHA + ")"
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
			return true
		} else if msg := err.Error(); strings.Contains(msg, "EOF") {
			return true
		}
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusRequestTimeout, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests:
			return true
		}
	}
	return false
}

func (c *Client) resolve(pathParam string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.Wrap(err, "error parsing base url")
	}
	i := strings.Index(pathParam, "?")
	if i != -1 {
		u.RawQuery = pathParam[i+1:]
		pathParam = pathParam[:i]
	}
	basePath := u.Path
	if pathParam == "" {
		u.Path = basePath
	} else if basePath == "" || basePath == "/" {
		u.Path = pathParam
	} else {
		u.Path = path.Join(basePath, pathParam)
	}
	return u.String(), nil
}

func (c *Client) newRequest(ctx context.Context, method, urlString string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlString, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) handleUnauthorized() {
	if c.onUnauthorized == nil {
		return
	}
	if !c.handling401.CompareAndSwap(false, true) {
		return
	}
	defer c.handling401.Store(false)
	c.onUnauthorized()
}

// Do sends a JSON request and decodes the JSON response into response when
// non-nil. Transient transport failures and 408/429/5xx gateway statuses are
// retried with exponential backoff. Every non-2xx outcome returns an *Error.
func (c *Client) Do(ctx context.Context, method, pathParam string, payload any, response any) error {
	urlString, err := c.resolve(pathParam)
	if err != nil {
		return NewError(c.baseURL, method, 0, "", "", err)
	}

	var body []byte
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return NewError(urlString, method, 0, "", "", errors.Wrap(err, "error marshalling payload"))
		}
	}

	ctx, span := c.tracer.Start(ctx, method+" "+pathParam, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", urlString),
		))
	defer span.End()

	c.logger.Trace("sending request: %s %s", method, urlString)

	req, err := c.newRequest(ctx, method, urlString, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return NewError(urlString, method, 0, "", "", errors.Wrap(err, "error creating request"))
	}

	var resp *http.Response
	for i := range retry {
		isLast := i == retry-1
		var err error
		resp, err = c.client.Do(req)
		if shouldRetry(resp, err) && !isLast {
			c.logger.Trace("client returned retryable error, retrying...")
			if resp != nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			req.GetBody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(body)), nil
			}
			// exponential backoff
			v := 150 * math.Pow(2, float64(i))
			time.Sleep(time.Duration(v) * time.Millisecond)
			continue
		}
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return NewError(urlString, method, 0, "", "", errors.Wrap(err, "error sending request"))
		}
		break
	}
	defer resp.Body.Close()
	c.logger.Debug("response status: %s", resp.Status)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return NewError(urlString, method, resp.StatusCode, "", "", errors.Wrap(err, "error reading response body"))
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
	}

	if resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		var detail string
		if strings.Contains(resp.Header.Get("content-type"), "application/json") {
			var eb errorBody
			if err := json.Unmarshal(respBody, &eb); err == nil {
				detail = eb.text()
			}
		}
		return NewError(urlString, method, resp.StatusCode, string(respBody), detail,
			errors.Newf("request failed with status (%s)", resp.Status))
	}

	if response != nil {
		if err := json.Unmarshal(respBody, &response); err != nil {
			return NewError(urlString, method, resp.StatusCode, string(respBody), "", errors.Wrap(err, "error JSON decoding response"))
		}
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, response any) error {
	return c.Do(ctx, http.MethodGet, path, nil, response)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, payload, response any) error {
	return c.Do(ctx, http.MethodPost, path, payload, response)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, payload, response any) error {
	return c.Do(ctx, http.MethodPut, path, payload, response)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Head issues a single HEAD request with no retry and no body handling.
// Used by the keep-alive pinger, whose failures must stay cheap and silent.
func (c *Client) Head(ctx context.Context, pathParam string) error {
	urlString, err := c.resolve(pathParam)
	if err != nil {
		return NewError(c.baseURL, http.MethodHead, 0, "", "", err)
	}
	req, err := c.newRequest(ctx, http.MethodHead, urlString, nil)
	if err != nil {
		return NewError(urlString, http.MethodHead, 0, "", "", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return NewError(urlString, http.MethodHead, 0, "", "", errors.Wrap(err, "error sending request"))
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
	}
	if resp.StatusCode > 299 {
		return NewError(urlString, http.MethodHead, resp.StatusCode, "", "", errors.Newf("request failed with status (%s)", resp.Status))
	}
	return nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}
