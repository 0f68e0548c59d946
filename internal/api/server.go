package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohamedkhairy/pricepulse/internal/market"
	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

// Server is the HTTP query surface
type Server struct {
	httpServer *http.Server
	router     *mux.Router
}

// NewServer wires the router over the gateway and engine stats source
func NewServer(port int, gateway market.Gateway, stats func() interface{}) *Server {
	router := mux.NewRouter()

	marketHandler := NewMarketHandler(gateway)
	statsHandler := NewStatsHandler(stats)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods(http.MethodGet)
	v1.HandleFunc("/price/{symbol}", marketHandler.GetPrice).Methods(http.MethodGet)
	v1.HandleFunc("/indicators/{symbol}", marketHandler.GetIndicators).Methods(http.MethodGet)
	v1.HandleFunc("/market/movers", marketHandler.GetTopMovers).Methods(http.MethodGet)
	v1.HandleFunc("/news", marketHandler.GetNews).Methods(http.MethodGet)

	handler := ChainMiddleware(
		RecoveryMiddleware(),
		LoggingMiddleware(),
	)(router)

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Router exposes the route table, used by tests
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start() error {
	logger.Info("API server listening",
		logger.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve API: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
