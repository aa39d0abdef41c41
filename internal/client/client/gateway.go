package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// TokenSource yields the current access token, or "" when signed out.
type TokenSource interface {
	AccessToken() string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) AccessToken() string { return f() }

// Request is one call issued through the Gateway. Path is resolved against
// the gateway base URL unless it is already absolute. Exactly one of JSON or
// Body should be set for requests that carry a payload.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	JSON        any
	Body        []byte
	ContentType string
}

// GatewayOptions configures NewGateway.
type GatewayOptions struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second; zero disables throttling.
	RateLimit float64
	Tokens    TokenSource
	Trace     *TraceLog
	Logger    logging.Logger
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Gateway is the single place outbound HTTP happens.
type Gateway struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	trace   *TraceLog
	logger  logging.Logger
}

func NewGateway(opts GatewayOptions) (*Gateway, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	g := &Gateway{
		baseURL: base,
		http:    hc,
		tokens:  opts.Tokens,
		trace:   opts.Trace,
		logger:  opts.Logger,
	}
	if g.tokens == nil {
		g.tokens = TokenFunc(func() string { return "" })
	}
	if g.trace == nil {
		g.trace = NewTraceLog(DefaultTraceCapacity)
	}
	if g.logger == nil {
		g.logger = logging.Discard()
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return g, nil
}

// Trace exposes the request log.
func (g *Gateway) Trace() *TraceLog { return g.trace }

func (g *Gateway) resolve(path string, q url.Values) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	var u *url.URL
	if ref.IsAbs() {
		u = ref
	} else {
		u = g.baseURL.ResolveReference(&url.URL{Path: strings.TrimLeft(ref.Path, "/"), RawQuery: ref.RawQuery})
	}
	if len(q) > 0 {
		merged := u.Query()
		for k, vs := range q {
			for _, v := range vs {
				merged.Add(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}

// Do issues req and decodes a 2xx JSON body into out (when out is non-nil).
func (g *Gateway) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target, err := g.resolve(req.Path, req.Query)
	if err != nil {
		return err
	}

	var body io.Reader
	contentType := req.ContentType
	switch {
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		if contentType == "" {
			contentType = "application/json"
		}
	case req.Body != nil:
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if tok := g.tokens.AccessToken(); tok != "" {
		httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	id := uuid.New()
	httpReq.Header.Set(common.TraceIDHeaderName, id.String())
	start := time.Now()
	g.trace.add(TraceEntry{
		ID:        id,
		Method:    method,
		URL:       target,
		Data:      req.JSON,
		Params:    map[string][]string(req.Query),
		Timestamp: start,
	})

	status, err := g.roundTrip(ctx, httpReq, out)
	elapsed := time.Since(start)
	g.trace.complete(id, status, elapsed, err)

	if err != nil {
		g.logger.Debug(ctx, "request failed", "method", method, "url", target, "status", status, "error", err)
		return err
	}
	g.logger.Debug(ctx, "request done", "method", method, "url", target, "status", status, "duration", elapsed)
	return nil
}

func (g *Gateway) roundTrip(ctx context.Context, req *http.Request, out any) (int, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	resp, err := g.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func decodeAPIError(status int, raw []byte) error {
	apiErr := &APIError{Status: status}
	var body struct {
		Message string              `json:"message"`
		Error   string              `json:"error"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		apiErr.Fields = body.Errors
	}
	return apiErr
}

// IsUnavailable reports whether err is a transport-level failure.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
