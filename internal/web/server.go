// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"phone-scan/internal/config"
	"phone-scan/internal/observability"
	"phone-scan/internal/suppressions"
	"phone-scan/internal/version"

	// Import formatters to register them
	_ "phone-scan/internal/formatters/csv"
	_ "phone-scan/internal/formatters/json"
	_ "phone-scan/internal/formatters/junit"
	_ "phone-scan/internal/formatters/sarif"
	_ "phone-scan/internal/formatters/text"
	_ "phone-scan/internal/formatters/yaml"
)

// portAttempts is how many consecutive ports Start tries
const portAttempts = 10

// Options configures a WebServer
type Options struct {
	Port               int
	Settings           config.Settings // Defaults for requests that omit a parameter
	SuppressionManager *suppressions.SuppressionManager
	Observer           *observability.StandardObserver
	Log                io.Writer // Startup messages; defaults to stdout
}

// WebServer serves the extraction API
type WebServer struct {
	opts   Options
	mux    *http.ServeMux
	server *http.Server
}

// NewWebServer creates a new web server instance
func NewWebServer(opts Options) *WebServer {
	if opts.Log == nil {
		opts.Log = os.Stdout
	}
	ws := &WebServer{
		opts: opts,
		mux:  http.NewServeMux(),
	}
	ws.setupRoutes()
	return ws
}

// Handler returns the HTTP handler with every route installed
func (ws *WebServer) Handler() http.Handler {
	return ws.withServerHeader(ws.mux)
}

func (ws *WebServer) setupRoutes() {
	ws.mux.HandleFunc("/health", ws.handleHealth)
	ws.mux.HandleFunc("/formats", ws.handleFormats)
	ws.mux.HandleFunc("/extract", ws.handleExtract)
	ws.mux.HandleFunc("/scan", ws.handleScan)
	ws.mux.HandleFunc("/suppressions", ws.handleSuppressions)
}

func (ws *WebServer) withServerHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", version.UserAgent())
		next.ServeHTTP(w, r)
	})
}

// createSecureServer builds an http.Server with timeouts on every phase
func (ws *WebServer) createSecureServer() *http.Server {
	return &http.Server{
		Handler: ws.Handler(),
		// Timeout for reading request headers (prevents slow header attacks)
		ReadHeaderTimeout: 15 * time.Second,
		// Timeout for reading entire request
		ReadTimeout: 30 * time.Second,
		// Timeout for writing response
		WriteTimeout: 30 * time.Second,
		// Timeout for idle connections
		IdleTimeout: 60 * time.Second,
	}
}

// listen binds the configured port, moving to the next port when it is busy
func (ws *WebServer) listen() (net.Listener, error) {
	var lastError error
	for i := 0; i < portAttempts; i++ {
		port := ws.opts.Port + i
		listener, err := net.Listen("tcp", ":"+strconv.Itoa(port))
		if err == nil {
			return listener, nil
		}
		lastError = err
		if i == 0 {
			fmt.Fprintf(ws.opts.Log, "Port %d is not available, trying alternative ports...\n", port)
		}
	}
	return nil, fmt.Errorf("could not find an available port in range %d-%d: %w\n"+
		"Troubleshooting: try a specific port with --port <number>",
		ws.opts.Port, ws.opts.Port+portAttempts-1, lastError)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (ws *WebServer) Start(ctx context.Context) error {
	listener, err := ws.listen()
	if err != nil {
		return err
	}

	ws.server = ws.createSecureServer()
	port := listener.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(ws.opts.Log, "Phone Scan API started on port %d\n", port)
	fmt.Fprintf(ws.opts.Log, "Local: http://localhost:%d\n", port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- ws.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ws.server.Shutdown(shutdownCtx)
	}
}

// Stop stops the web server immediately
func (ws *WebServer) Stop() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}
