package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/keyfold/keyfold-server/internal/model"
)

var _ model.Server = (*HTTPServer)(nil)

// HTTPServer serves the REST API over a pluggable security layer.
type HTTPServer struct {
	srv  *http.Server
	addr string
}

// NewHTTPServer wraps handler into a server bound to addr.
func NewHTTPServer(handler http.Handler, addr string) *HTTPServer {
	return &HTTPServer{
		srv:  &http.Server{Handler: handler},
		addr: addr,
	}
}

// Start opens the listener through the security layer and serves until the
// server is stopped.
func (s *HTTPServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop shuts the server down gracefully, honoring ctx's deadline.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *HTTPServer) Address() string {
	return s.addr
}
