// Package httpapi implements the submit/query HTTP surface (C6): the
// authenticated collector and query endpoints a remote subscriber ships
// batches to, and the CLI's --url mode queries against.
package httpapi

import (
	"context"
	"net/http"
)

// Server wraps net/http's server with the lifecycle the daemon drives.
type Server struct {
	httpServer *http.Server
}

// New builds a Server bound to addr, serving handler.
func New(addr string, handler http.Handler) *Server {
	return &Server{httpServer: &http.Server{Addr: addr, Handler: handler}}
}

// ListenAndServe starts serving; it blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
