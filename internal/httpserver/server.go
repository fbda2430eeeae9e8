package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/breachwatch/breachwatch/internal/cache"
	"github.com/breachwatch/breachwatch/internal/model"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Aggregator is the narrow pipeline contract required by the HTTP API.
type Aggregator interface {
	Aggregate(ctx context.Context) (model.Envelope, error)
}

// Server exposes the aggregated breach data over HTTP.
type Server struct {
	addr       string
	aggregator Aggregator
	cache      *cache.Cache
	server     *http.Server
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewServer creates the API server fronting the given pipeline and cache.
func NewServer(addr string, aggregator Aggregator, c *cache.Cache) *Server {
	if addr == "" {
		addr = "0.0.0.0:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:       addr,
		aggregator: aggregator,
		cache:      c,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default()) // all origins

	s.registerRoutes(r)

	s.server = &http.Server{
		Handler:           r,
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Cache misses run the full scrape pipeline inline, so writes
		// must outlive every per-source timeout and settle delay.
		WriteTimeout: 5 * time.Minute,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/api/breach-data", s.handleBreachData)
	r.GET("/health", s.handleHealth)
}

func (s *Server) handleBreachData(c *gin.Context) {
	// The rebuild runs on the server context, not the request context:
	// concurrent callers share one in-flight rebuild, and one caller
	// hanging up must not cancel the build the others are waiting on.
	env, err := s.cache.GetOrBuild(func() (model.Envelope, error) {
		return s.aggregator.Aggregate(s.ctx)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, env)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
