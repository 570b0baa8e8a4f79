package apiserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

const gracefulShutdownTimeout = 30 * time.Second

// Server is a read-only HTTP API over consensus. It also exposes the
// prometheus metrics.
type Server struct {
	consensus  externalapi.Consensus
	router     *mux.Router
	httpServer *http.Server
}

// NewServer creates an HTTP API server for consensus listening on listenAddress
func NewServer(listenAddress string, consensus externalapi.Consensus) *Server {
	s := &Server{consensus: consensus}

	router := mux.NewRouter()
	router.Use(recoveryMiddleware)
	router.Use(loggingMiddleware)
	router.Use(metricsMiddleware)
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.NewRoute().Subrouter()
	api.Use(setJSONMiddleware)
	s.addRoutes(api)

	s.router = router
	s.httpServer = &http.Server{
		Addr:    listenAddress,
		Handler: router,
	}
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts serving in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.Wrapf(err, "error listening on %s", s.httpServer.Addr)
	}
	spawn("apiserver.Start", func() {
		err := s.httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP API server stopped: %s", err)
		}
	})
	log.Infof("HTTP API listening on %s", listener.Addr())
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return errors.Wrap(err, "error shutting down the HTTP API server")
	}
	return nil
}
