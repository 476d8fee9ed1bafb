package testclient

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/httptestkit/component"
	"github.com/kbukum/httptestkit/config"
	"github.com/kbukum/httptestkit/errors"
	"github.com/kbukum/httptestkit/logger"
	"github.com/kbukum/httptestkit/observability"
	"github.com/kbukum/httptestkit/server"
	"github.com/kbukum/httptestkit/testutil"
)

const componentName = "test-client"

var _ testutil.TestComponent = (*TestClient)(nil)
var _ component.Describable = (*TestClient)(nil)

// TestClient owns a running test server and an HTTP client pointed at it.
// It is safe for concurrent use; each RequestBuilder it returns is not.
type TestClient struct {
	cfg       config.Config
	log       *logger.Logger
	transport http.RoundTripper
	tp        trace.TracerProvider
	tracer    trace.Tracer

	server     *server.Handle
	httpClient *http.Client
	jar        *resettableJar

	mu      sync.RWMutex
	baseURL *url.URL
}

// Option configures a TestClient.
type Option func(*TestClient)

// WithConfig replaces the client configuration, including settings made by
// earlier options.
func WithConfig(cfg config.Config) Option {
	return func(c *TestClient) { c.cfg = cfg }
}

// WithLogger sets the logger. Defaults to the logger described by the
// configuration's logging section.
func WithLogger(log *logger.Logger) Option {
	return func(c *TestClient) { c.log = log }
}

// WithTrace enables the "Listening on <addr>" notice when the server binds.
func WithTrace() Option {
	return func(c *TestClient) { c.cfg.Trace = true }
}

// WithCookies enables a cookie jar that stores cookies across requests.
func WithCookies() Option {
	return func(c *TestClient) { c.cfg.Cookies = true }
}

// WithFollowRedirects makes the client follow 3xx responses. By default
// redirects are returned to the caller as-is.
func WithFollowRedirects() Option {
	return func(c *TestClient) { c.cfg.FollowRedirects = true }
}

// WithTransport sets the round tripper used to dispatch requests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *TestClient) { c.transport = rt }
}

// WithTracerProvider sets the provider request spans are recorded with.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *TestClient) { c.tp = tp }
}

// New creates a TestClient for service and starts its server. The server
// is listening when New returns.
func New(service http.Handler, opts ...Option) (*TestClient, error) {
	c := NewUnstarted(service, opts...)
	if err := c.Start(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// NewT creates and starts a TestClient, failing tb if the server cannot be
// started, and closes it when the test ends.
func NewT(tb testing.TB, service http.Handler, opts ...Option) *TestClient {
	tb.Helper()
	c := NewUnstarted(service, opts...)
	testutil.T(tb).Setup(c)
	return c
}

// NewUnstarted creates a TestClient without binding its server. Call Start
// before sending requests.
func NewUnstarted(service http.Handler, opts ...Option) *TestClient {
	c := &TestClient{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg.ApplyDefaults()
	if c.log == nil {
		c.log = c.cfg.NewLogger()
	}
	if c.transport == nil {
		c.transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	c.tracer = observability.Tracer(c.tp)

	c.server = server.New(service, c.cfg.ServerConfig(), c.log)
	c.httpClient = &http.Client{Transport: c.transport}
	if c.cfg.Cookies {
		c.jar = newResettableJar()
		c.httpClient.Jar = c.jar
	}
	if !c.cfg.FollowRedirects {
		c.httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	c.log = c.log.WithComponent("testclient").WithFields(logger.Fields(logger.FieldServerID, c.server.ID().String()))
	return c
}

// Name returns the component name.
func (c *TestClient) Name() string { return componentName }

// Start validates the configuration and starts the server.
func (c *TestClient) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if err := c.server.Start(ctx); err != nil {
		return err
	}
	base, err := url.Parse(c.server.URL())
	if err != nil {
		return errors.InvalidConfig("server returned an unusable URL").WithCause(err)
	}
	c.mu.Lock()
	c.baseURL = base
	c.mu.Unlock()
	return nil
}

// Stop shuts the server down abruptly and drops idle client connections.
func (c *TestClient) Stop(ctx context.Context) error {
	err := c.server.Stop(ctx)
	c.httpClient.CloseIdleConnections()
	return err
}

// Close stops the client. Requests sent afterwards fail with a DispatchError.
func (c *TestClient) Close() error {
	return c.Stop(context.Background())
}

// Reset clears stored cookies and idle connections so the next test starts
// from a clean client. The server keeps running. It is safe to call while
// requests are in flight.
func (c *TestClient) Reset(_ context.Context) error {
	if c.jar != nil {
		c.jar.reset()
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

// Health reports the health of the underlying server.
func (c *TestClient) Health(ctx context.Context) component.Health {
	h := c.server.Health(ctx)
	h.Name = componentName
	return h
}

// Describe returns a one-line summary of the client.
func (c *TestClient) Describe() component.Description {
	return component.Description{
		Name:    "Test Client",
		Type:    "client",
		Details: c.BaseURL(),
		Port:    c.Port(),
	}
}

// BaseURL returns http://host:port of the server, or "" before Start.
func (c *TestClient) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// Port returns the server's OS-assigned port, or 0 before Start.
func (c *TestClient) Port() int {
	return c.server.Port()
}

// Server returns the server handle.
func (c *TestClient) Server() *server.Handle {
	return c.server
}

// HTTPClient returns the underlying *http.Client for advanced use cases.
func (c *TestClient) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *TestClient) base() *url.URL {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Get starts a GET request for path.
func (c *TestClient) Get(path string) *RequestBuilder { return c.Method(http.MethodGet, path) }

// Head starts a HEAD request for path.
func (c *TestClient) Head(path string) *RequestBuilder { return c.Method(http.MethodHead, path) }

// Post starts a POST request for path.
func (c *TestClient) Post(path string) *RequestBuilder { return c.Method(http.MethodPost, path) }

// Put starts a PUT request for path.
func (c *TestClient) Put(path string) *RequestBuilder { return c.Method(http.MethodPut, path) }

// Patch starts a PATCH request for path.
func (c *TestClient) Patch(path string) *RequestBuilder { return c.Method(http.MethodPatch, path) }

// Delete starts a DELETE request for path.
func (c *TestClient) Delete(path string) *RequestBuilder { return c.Method(http.MethodDelete, path) }

// Options starts an OPTIONS request for path.
func (c *TestClient) Options(path string) *RequestBuilder { return c.Method(http.MethodOptions, path) }

// Method starts a request with an arbitrary method. Path is appended to
// BaseURL as-is; only http:// and https:// URLs are sent elsewhere.
func (c *TestClient) Method(method, path string) *RequestBuilder {
	return newRequestBuilder(c, method, path)
}
