package testclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/kbukum/httptestkit/errors"
	"github.com/kbukum/httptestkit/logger"
	"github.com/kbukum/httptestkit/observability"
	"github.com/kbukum/httptestkit/version"
)

// Headers that a request carries at most once. Setting them replaces any
// earlier value.
var singletonHeaders = map[string]bool{
	"Host":           true,
	"Content-Type":   true,
	"Content-Length": true,
	"Authorization":  true,
	"User-Agent":     true,
}

// RequestBuilder accumulates the parts of one request. Setters chain and
// record the first build error, which Send returns. A builder is not safe
// for concurrent use and can be sent once.
type RequestBuilder struct {
	client *TestClient
	method string
	path   string
	header http.Header
	query  url.Values
	host   string

	body        io.Reader
	contentType string

	err  error
	sent bool
}

func newRequestBuilder(c *TestClient, method, path string) *RequestBuilder {
	b := &RequestBuilder{
		client: c,
		method: method,
		path:   path,
		header: make(http.Header),
		query:  make(url.Values),
	}
	if method == "" || !httpguts.ValidHeaderFieldName(method) {
		b.fail(errors.InvalidRequest("invalid method").WithDetail("method", method))
	}
	return b
}

func (b *RequestBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Header adds a header. Repeated names produce repeated header lines,
// except for Host, Content-Type, Content-Length, Authorization and
// User-Agent, which are replaced.
func (b *RequestBuilder) Header(name, value string) *RequestBuilder {
	if !httpguts.ValidHeaderFieldName(name) {
		b.fail(errors.InvalidRequest("invalid header name").WithDetail("header", name))
		return b
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		b.fail(errors.InvalidRequest("invalid header value").WithDetail("header", name))
		return b
	}
	key := http.CanonicalHeaderKey(name)
	switch {
	case key == "Host":
		b.host = value
	case singletonHeaders[key]:
		b.header.Set(key, value)
	default:
		b.header.Add(key, value)
	}
	return b
}

// Headers adds every header in h.
func (b *RequestBuilder) Headers(h http.Header) *RequestBuilder {
	for name, values := range h {
		for _, v := range values {
			b.Header(name, v)
		}
	}
	return b
}

// Query adds a query parameter. It is appended after any query already
// present in the path, which is sent unchanged.
func (b *RequestBuilder) Query(key, value string) *RequestBuilder {
	b.query.Add(key, value)
	return b
}

// Host overrides the Host header sent with the request.
func (b *RequestBuilder) Host(host string) *RequestBuilder {
	return b.Header("Host", host)
}

// Body sets a raw byte body.
func (b *RequestBuilder) Body(data []byte) *RequestBuilder {
	b.body = bytes.NewReader(data)
	b.contentType = ""
	return b
}

// BodyString sets a raw string body.
func (b *RequestBuilder) BodyString(s string) *RequestBuilder {
	b.body = strings.NewReader(s)
	b.contentType = ""
	return b
}

// BodyReader streams the body from r. The request is sent with chunked
// transfer encoding unless r is a *bytes.Reader, *bytes.Buffer or
// *strings.Reader.
func (b *RequestBuilder) BodyReader(r io.Reader) *RequestBuilder {
	b.body = r
	b.contentType = ""
	return b
}

// JSON serializes v as the body and sends Content-Type application/json
// unless a Content-Type header was set explicitly.
func (b *RequestBuilder) JSON(v any) *RequestBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.fail(errors.InvalidRequest("unable to encode JSON body").WithCause(err))
		return b
	}
	b.body = bytes.NewReader(data)
	b.contentType = "application/json"
	return b
}

// Form sets a URL-encoded form body.
func (b *RequestBuilder) Form(values url.Values) *RequestBuilder {
	b.body = strings.NewReader(values.Encode())
	b.contentType = "application/x-www-form-urlencoded"
	return b
}

// Multipart sets a multipart/form-data body.
func (b *RequestBuilder) Multipart(m *MultipartBody) *RequestBuilder {
	body, contentType, err := m.encode()
	if err != nil {
		b.fail(errors.InvalidRequest("unable to encode multipart body").WithCause(err))
		return b
	}
	b.body = body
	b.contentType = contentType
	return b
}

// BearerToken sets an Authorization: Bearer header.
func (b *RequestBuilder) BearerToken(token string) *RequestBuilder {
	return b.Header("Authorization", "Bearer "+token)
}

// BasicAuth sets an Authorization: Basic header.
func (b *RequestBuilder) BasicAuth(username, password string) *RequestBuilder {
	cred := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return b.Header("Authorization", "Basic "+cred)
}

// Send dispatches the request and waits for the response status and
// headers. The body is left unread on the returned TestResponse.
func (b *RequestBuilder) Send(ctx context.Context) (*TestResponse, error) {
	if b.sent {
		return nil, errors.InvalidRequest("request builder already sent").WithCause(errors.ErrRequestSent)
	}
	b.sent = true
	if b.err != nil {
		return nil, b.err
	}

	req, err := b.build(ctx)
	if err != nil {
		return nil, err
	}
	target := req.URL.String()
	c := b.client

	ctx, span := observability.StartClientSpan(ctx, c.tracer, b.method, target, c.Port())
	req = req.WithContext(ctx)
	if !c.cfg.DisablePropagation {
		observability.InjectHeaders(ctx, req.Header)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		dispatchErr := errors.DispatchFailed(b.method, target, err)
		observability.EndClientSpan(span, 0, dispatchErr)
		c.log.WithError(err).Debug("Request failed", logger.Fields(
			logger.FieldMethod, b.method,
			logger.FieldURL, target,
		))
		return nil, dispatchErr
	}
	observability.EndClientSpan(span, resp.StatusCode, nil)
	c.log.Debug("Request sent", logger.MergeWithDuration(logger.Fields(
		logger.FieldMethod, b.method,
		logger.FieldURL, target,
		logger.FieldStatus, resp.StatusCode,
	), time.Since(start)))

	return newTestResponse(resp), nil
}

// resolveTarget appends path to base verbatim, so "//x" stays on the test
// server. Only targets with an explicit http or https scheme leave it.
func resolveTarget(base *url.URL, path string) (*url.URL, error) {
	if hasHTTPScheme(path) {
		return url.Parse(path)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return url.Parse(strings.TrimSuffix(base.String(), "/") + path)
}

func hasHTTPScheme(s string) bool {
	scheme, _, ok := strings.Cut(s, "://")
	return ok && (strings.EqualFold(scheme, "http") || strings.EqualFold(scheme, "https"))
}

func (b *RequestBuilder) build(ctx context.Context) (*http.Request, error) {
	base := b.client.base()
	if base == nil {
		return nil, errors.InvalidRequest("client is not started")
	}
	u, err := resolveTarget(base, b.path)
	if err != nil {
		return nil, errors.InvalidRequest("invalid path").WithDetail("path", b.path).WithCause(err)
	}
	if len(b.query) > 0 {
		if u.RawQuery != "" {
			u.RawQuery += "&"
		}
		u.RawQuery += b.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, b.method, u.String(), b.body)
	if err != nil {
		return nil, errors.InvalidRequest("unable to build request").WithCause(err)
	}
	req.Header = b.header.Clone()
	if b.contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", b.contentType)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", version.UserAgent())
	}
	if b.host != "" {
		req.Host = b.host
	}
	return req, nil
}
