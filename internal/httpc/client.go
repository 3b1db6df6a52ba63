package httpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/common"
	"github.com/go-resty/resty/v2"
)

// Param is one key-value pair; slices of Param keep source ordering.
type Param struct {
	Key   string
	Value string
}

// Request is a single prepared HTTP call. The body, if any, is already
// fully encoded (JSON/text, form-urlencoded or multipart) so retries can
// replay it.
type Request struct {
	Method      string
	Path        string
	Query       []Param
	Headers     []Param
	ContentType string
	Body        []byte
}

// Response is the transport snapshot handed back to the engine. Header
// names are lowercased; multi-valued headers are comma-joined. JSON holds
// the decoded body when the body is valid JSON, nil otherwise.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	JSON       any               `json:"json"`

	URL      string        `json:"-"`
	Method   string        `json:"-"`
	Duration time.Duration `json:"-"`
}

// Client wraps a configured resty client for one API endpoint.
type Client struct {
	rc     *resty.Client
	logger *common.Logger
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	return &Client{
		rc:     cfg.New(),
		logger: common.GetLogger().WithComponent("httpc"),
	}
}

// Send performs one HTTP call and returns the response snapshot. Transient
// failures are retried internally per the client's retry policy; the error
// returned here is final. HTTP error statuses are not errors at this layer.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	r := c.rc.R().SetContext(ctx)

	for _, h := range req.Headers {
		r.SetHeader(h.Key, h.Value)
	}
	if req.ContentType != "" {
		r.SetHeader("Content-Type", req.ContentType)
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	// Query goes into the URL itself; resty's query-param map would
	// re-encode it in sorted order.
	u := req.Path
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + encodeQuery(req.Query)
	}

	c.logger.Debug("sending request", "method", req.Method, "path", req.Path, "query_count", len(req.Query))
	if c.logger.Level() == common.LogLevelDebug && len(req.Headers) > 0 {
		m := c.logger.GetMasker()
		if m == nil {
			m = common.GetGlobalMasker()
		}
		hdrs := make(map[string]string, len(req.Headers))
		for _, h := range req.Headers {
			hdrs[h.Key] = h.Value
		}
		c.logger.Debug("request headers", "headers", m.MaskHeaders(hdrs))
	}

	resp, err := execByMethod(r, req.Method, u)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(req.Method), req.Path, err)
	}

	out := snapshot(resp)
	c.logger.Debug("received response", "method", req.Method, "path", req.Path,
		"status_code", out.StatusCode, "duration", out.Duration)
	return out, nil
}

// snapshot converts a resty response into the engine-facing form.
func snapshot(resp *resty.Response) *Response {
	body := resp.Body()

	out := &Response{
		StatusCode: resp.StatusCode(),
		Headers:    lowerHeaders(resp.Header()),
		Body:       string(body),
		Duration:   resp.Time(),
		Method:     resp.Request.Method,
	}
	if resp.Request.RawRequest != nil && resp.Request.RawRequest.URL != nil {
		out.URL = resp.Request.RawRequest.URL.String()
	} else {
		out.URL = resp.Request.URL
	}

	var js any
	if len(body) > 0 && json.Unmarshal(body, &js) == nil {
		out.JSON = js
	}
	return out
}

// lowerHeaders flattens an http.Header into a lowercase-keyed map.
func lowerHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		out[strings.ToLower(k)] = strings.Join(vals, ", ")
	}
	return out
}

// encodeQuery encodes query parameters preserving their source order.
func encodeQuery(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
