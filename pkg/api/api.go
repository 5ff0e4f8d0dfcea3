// Package api provides the HTTP API server implementation for backupnotify.
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// HealthPath is the unauthenticated liveness endpoint.
const HealthPath = "/health"

// Server timeouts.
const (
	serverReadTimeout  = 10 * time.Second
	serverWriteTimeout = 0 // Notify requests may wait through the whole retry budget.
	serverIdleTimeout  = 60 * time.Second
	shutdownTimeout    = 5 * time.Second
)

// serverMaxHeaderShift sets the maximum header size to 1 MiB.
const serverMaxHeaderShift = 20

// bearerPrefix precedes the token in the Authorization header.
const bearerPrefix = "Bearer "

// errEmptyToken indicates the API was started without a token.
var errEmptyToken = errors.New("api token is empty or unset")

// API represents the HTTP API server for backupnotify.
type API struct {
	Token       string
	Addr        string         // Listen address, see GetAPIAddr.
	hasHandlers bool           // Whether any authenticated path was registered.
	mux         *http.ServeMux // Custom mux to avoid global collisions
	server      HTTPServer     // Optional injected server for testing
}

// New is a factory function creating a new API instance with the health endpoint registered.
// The server parameter is optional and allows dependency injection for testing.
func New(token, addr string, server ...HTTPServer) *API {
	var injectedServer HTTPServer
	if len(server) > 0 {
		injectedServer = server[0]
	}

	api := &API{
		Token:  token,
		Addr:   addr,
		mux:    http.NewServeMux(),
		server: injectedServer,
	}

	api.mux.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})

	logrus.WithField("addr", api.Addr).Debug("Initialized new API instance")

	return api
}

// RegisterFunc registers an authenticated HTTP handler function for the given path.
func (a *API) RegisterFunc(path string, handler func(http.ResponseWriter, *http.Request)) {
	a.mux.Handle(path, a.RequireToken(handler))
	a.hasHandlers = true
}

// RegisterHandler registers an authenticated HTTP handler for the given path.
func (a *API) RegisterHandler(path string, handler http.Handler) {
	a.mux.Handle(path, a.RequireToken(handler.ServeHTTP))
	a.hasHandlers = true
}

// Handler returns the routing handler, including the health endpoint.
func (a *API) Handler() http.Handler {
	return a.mux
}

// Start starts the HTTP API server.
// If blocking is true, it runs in the foreground and blocks until ctx is cancelled.
// If blocking is false, it runs in the background and shuts down when ctx is cancelled.
//
// Returns:
//   - error: errEmptyToken if no token is configured, or a server error in blocking mode.
func (a *API) Start(ctx context.Context, blocking bool) error {
	if !a.hasHandlers {
		logrus.Info("No handlers registered, skipping API start")

		return nil
	}

	if a.Token == "" {
		return errEmptyToken
	}

	server := a.server
	if server == nil {
		server = &http.Server{
			Addr:              a.Addr,
			Handler:           a.mux,
			ReadTimeout:       serverReadTimeout,
			ReadHeaderTimeout: serverReadTimeout,
			WriteTimeout:      serverWriteTimeout,
			IdleTimeout:       serverIdleTimeout,
			MaxHeaderBytes:    1 << serverMaxHeaderShift,
			BaseContext:       func(_ net.Listener) context.Context { return ctx },
		}
	}

	logrus.WithField("addr", a.Addr).Info("Starting HTTP API server")

	if blocking {
		return RunHTTPServer(ctx, server)
	}

	go func() {
		if err := RunHTTPServer(ctx, server); err != nil {
			logrus.WithError(err).Error("HTTP server failed")
		}
	}()

	return nil
}

// RequireToken wraps a handler function with bearer token authentication.
func (a *API) RequireToken(handler func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, bearerPrefix) || !a.validToken(strings.TrimPrefix(auth, bearerPrefix)) {
			logrus.WithFields(logrus.Fields{
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			}).Debug("Rejected unauthenticated API request")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)

			return
		}

		handler(w, r)
	}
}

// validToken compares the presented token in constant time.
func (a *API) validToken(presented string) bool {
	return a.Token != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(a.Token)) == 1
}

// HTTPServer interface for RunHTTPServer.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// RunHTTPServer starts the HTTP server and handles graceful shutdown.
//
// Returns:
//   - error: The ListenAndServe error if the server stops on its own, or a shutdown error; nil after a
//     clean shutdown.
func RunHTTPServer(ctx context.Context, server HTTPServer) error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logrus.Debug("HTTP API server stopped")

		return nil
	}
}

// GetAPIAddr builds the listen address from the host and port flags.
// An empty host listens on all interfaces.
func GetAPIAddr(host, port string) string {
	return net.JoinHostPort(host, port)
}
