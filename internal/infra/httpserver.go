package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer owns the API listener. Timeouts come from Config so slow
// donation or queue requests cannot hold connections open indefinitely.
type HTTPServer struct {
	srv *http.Server
}

func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       cfg.HTTPReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.HTTPWriteTimeout,
			IdleTimeout:       cfg.HTTPIdleTimeout,
		},
	}
}

// Start blocks serving requests until the listener closes. The caller is
// expected to run it in its own goroutine and treat http.ErrServerClosed
// as a clean exit.
func (s *HTTPServer) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires. In-flight donation
// settlements finish; claims held by requests that are cut off are picked
// up later by the lease reaper.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
