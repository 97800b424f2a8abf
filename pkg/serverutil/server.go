package serverutil

import (
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/sqlshift/sqlshift/internal/logger"
	"go.ytsaurus.tech/library/go/core/log"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// Server exposes the pprof handlers on a dedicated listener, so profiles of
// a stuck copy run never depend on the metrics endpoint being healthy.
type Server struct {
	listener net.Listener
	logger   log.Logger
}

func NewServer(network, address string, logger log.Logger) (*Server, error) {
	listener, err := net.Listen(network, address)
	if err != nil {
		return nil, xerrors.Errorf("listen %s %s: %w", network, address, err)
	}

	return &Server{
		listener: listener,
		logger:   logger,
	}, nil
}

func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return http.Serve(s.listener, mux)
}

func (s *Server) Close() error {
	return s.listener.Close()
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// RunPprof serves profiling endpoints on port 8080 until the process exits.
func RunPprof() {
	server, err := NewServer("tcp", ":8080", logger.Log)
	if err != nil {
		logger.Log.Error("unable to start pprof server", log.Error(err))
		return
	}
	if err := server.Serve(); err != nil {
		logger.Log.Error("pprof server stopped", log.Error(err))
	}
}

// RunHealthCheckOnPort answers liveness probes for orchestrated deployments.
func RunHealthCheckOnPort(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ok"))
	})
	if err := http.ListenAndServe(fmt.Sprintf(":%v", port), mux); err != nil {
		logger.Log.Error("health check server stopped", log.Error(err))
	}
}
