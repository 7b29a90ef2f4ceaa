// Package server exposes the lottery over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lotto/domain/entities"
	"lotto/domain/interfaces"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// LotteryAPI is the application surface served over HTTP
type LotteryAPI interface {
	GetCurrentDraw(ctx context.Context) (*interfaces.DrawStatus, error)
	Purchase(ctx context.Context, userID int64, numbers []int) (*interfaces.PurchaseResult, error)
	ListTickets(ctx context.Context, userID int64, page, pageSize int) (*entities.TicketPage, error)
	ClaimPrize(ctx context.Context, ticketID, userID int64) (*interfaces.ClaimResult, error)
	QuickPick() ([]int, error)
	EnsureUser(ctx context.Context, externalID int64, username string) (*interfaces.EnsureUserResult, error)
	GetUser(ctx context.Context, userID int64) (*entities.User, error)
	Deposit(ctx context.Context, userID, amount int64) (*entities.User, error)
	TriggerDraw(ctx context.Context) (*interfaces.SettlementResult, error)
	CreateNextDraw(ctx context.Context) (*entities.Draw, bool, error)
}

// Options configures the router
type Options struct {
	AdminToken  string
	CORSOrigins []string
	Registry    *prometheus.Registry // nil creates a private registry
}

// NewRouter builds the gin engine with every route and middleware
func NewRouter(api LotteryAPI, opts Options) *gin.Engine {
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	metrics := newHTTPMetrics(registry)

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger())
	router.Use(gin.Recovery())
	router.Use(metrics.middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = opts.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", adminTokenHeader}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	h := newHandler(api)
	h.RegisterRoutes(router.Group("/api"), opts.AdminToken)

	return router
}

// Server owns the HTTP listener
type Server struct {
	httpServer *http.Server
}

// New creates a server listening on port
func New(port int, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		log.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
