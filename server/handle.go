package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/httptestkit/component"
	"github.com/kbukum/httptestkit/errors"
	"github.com/kbukum/httptestkit/logger"
)

const componentName = "test-server"

var _ component.Component = (*Handle)(nil)
var _ component.Describable = (*Handle)(nil)

type state int

const (
	stateNew state = iota
	stateRunning
	stateStopped
)

// Handle owns one ephemeral server instance: its listening socket and the
// goroutine serving from it.
type Handle struct {
	id      uuid.UUID
	service http.Handler
	config  Config
	log     *logger.Logger

	mu       sync.Mutex
	state    state
	srv      *http.Server
	addr     *net.TCPAddr
	cancel   context.CancelFunc
	serveErr error
	done     chan struct{}
}

// New creates an unstarted Handle for service. A nil log discards output.
func New(service http.Handler, cfg Config, log *logger.Logger) *Handle {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	id := uuid.New()
	return &Handle{
		id:      id,
		service: service,
		config:  cfg,
		log:     log.WithComponent("server").WithFields(logger.Fields(logger.FieldServerID, id.String())),
		done:    make(chan struct{}),
	}
}

// Spawn creates a Handle and starts it.
func Spawn(service http.Handler, cfg Config, log *logger.Logger) (*Handle, error) {
	h := New(service, cfg, log)
	if err := h.Start(context.Background()); err != nil {
		return nil, err
	}
	return h, nil
}

// Name returns the component name.
func (h *Handle) Name() string { return componentName }

// ID returns the unique id of this server instance.
func (h *Handle) ID() uuid.UUID { return h.id }

// Start binds Host:0 and begins serving in a background goroutine. It
// returns once the listener is bound, so the port is ready.
func (h *Handle) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != stateNew {
		return errors.InvalidConfig("server already started").WithDetail(logger.FieldServerID, h.id.String())
	}
	if h.service == nil {
		return errors.InvalidConfig("service must not be nil")
	}
	if err := h.config.Validate(); err != nil {
		return err
	}

	bindAddr := net.JoinHostPort(h.config.Host, "0")
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", bindAddr)
	if err != nil {
		return errors.BindFailed(bindAddr, err)
	}
	h.addr = listener.Addr().(*net.TCPAddr)

	handler := h.service
	if !h.config.DisableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	// Handlers see a request context that is cancelled on Stop.
	baseCtx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.srv = &http.Server{
		Handler:     handler,
		ErrorLog:    h.log.StdLogger(zerolog.WarnLevel),
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	h.state = stateRunning

	go h.serve(h.srv, listener)

	if h.config.Trace {
		h.log.Info("Listening on "+h.addr.String(), logger.Fields(
			logger.FieldAddr, h.addr.String(),
			logger.FieldPort, h.addr.Port,
		))
	}
	return nil
}

func (h *Handle) serve(srv *http.Server, listener net.Listener) {
	defer close(h.done)
	err := srv.Serve(listener)
	if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		h.log.WithError(err).Error("Server error")
		h.mu.Lock()
		h.serveErr = err
		h.mu.Unlock()
	}
}

// Stop closes the listener and all open connections without draining
// in-flight requests, then waits for the serve goroutine to exit or ctx to
// end. Calling Stop more than once, or before Start, is a no-op.
func (h *Handle) Stop(ctx context.Context) error {
	h.mu.Lock()
	switch h.state {
	case stateNew:
		h.state = stateStopped
		close(h.done)
		h.mu.Unlock()
		return nil
	case stateStopped:
		h.mu.Unlock()
		return nil
	}
	h.state = stateStopped
	h.cancel()
	closeErr := h.srv.Close()
	h.mu.Unlock()

	select {
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	h.log.Debug("Server stopped", logger.Fields(logger.FieldAddr, h.addr.String()))
	if closeErr != nil {
		return fmt.Errorf("server %s close: %w", h.id, closeErr)
	}
	return nil
}

// Close stops the server. It is the usual way to release a Handle:
//
//	defer h.Close()
func (h *Handle) Close() error {
	return h.Stop(context.Background())
}

// Done returns a channel that is closed once the server has stopped serving.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the error that ended the serve loop, if it ended abnormally.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.serveErr
}

// Port returns the OS-assigned port, or 0 if the server was never started.
func (h *Handle) Port() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.addr == nil {
		return 0
	}
	return h.addr.Port
}

// Addr returns the bound host:port, or "" if the server was never started.
func (h *Handle) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.addr == nil {
		return ""
	}
	return net.JoinHostPort(h.addr.IP.String(), strconv.Itoa(h.addr.Port))
}

// URL returns the base URL (http://host:port), or "" if the server was
// never started.
func (h *Handle) URL() string {
	addr := h.Addr()
	if addr == "" {
		return ""
	}
	return "http://" + addr
}

// Health reports whether the server is currently serving.
func (h *Handle) Health(_ context.Context) component.Health {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.state == stateRunning && h.serveErr == nil:
		return component.Health{Name: componentName, Status: component.StatusHealthy, Message: h.addr.String()}
	case h.state == stateNew:
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not started"}
	case h.serveErr != nil:
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: h.serveErr.Error()}
	default:
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "stopped"}
	}
}

// Describe returns a one-line summary of the server.
func (h *Handle) Describe() component.Description {
	details := h.Addr()
	if !h.config.DisableH2C {
		details += " h2c"
	}
	return component.Description{
		Name:    "Test Server",
		Type:    "server",
		Details: details,
		Port:    h.Port(),
	}
}
