// Package server exposes one paper trading session over HTTP: a JSON API
// under /api/v1 and a websocket event stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/papertrader/session"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const basePath = "/api/v1"

var (
	errRateLimited = errors.New("order rate limit exceeded")
	errTickIgnored = errors.New("tick ignored: session is not running")
	errBadPrice    = errors.New("price must be positive")
)

type Handler struct {
	router  *gin.Engine
	session *session.Controller
	hub     *Hub
	orders  *rate.Limiter
	log     logrus.FieldLogger

	// the feed loop outlives the request that started it
	base context.Context
}

type Option func(*Handler)

func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithOrderLimit throttles POST /orders. perSecond <= 0 disables the limit.
func WithOrderLimit(perSecond float64, burst int) Option {
	return func(h *Handler) {
		if perSecond <= 0 {
			h.orders = nil
			return
		}
		h.orders = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithBaseContext sets the context sessions are started with.
func WithBaseContext(ctx context.Context) Option {
	return func(h *Handler) { h.base = ctx }
}

// NewHandler wires routes for s and subscribes the websocket hub to it.
// Call Hub().Run to deliver events.
func NewHandler(s *session.Controller, opts ...Option) *Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{
		router:  router,
		session: s,
		log:     logrus.StandardLogger(),
		base:    context.Background(),
	}
	for _, o := range opts {
		o(h)
	}
	h.hub = NewHub(h.log)
	s.Subscribe(h.hub)

	router.Use(h.requestLogger())
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) Hub() *Hub { return h.hub }

func (h *Handler) registerRoutes() {
	api := h.router.Group(basePath)
	{
		sess := api.Group("/session")
		{
			sess.GET("", h.getSession)
			sess.POST("/start", h.startSession)
			sess.POST("/pause", h.pauseSession)
			sess.POST("/reset", h.resetSession)
		}

		api.POST("/orders", h.submitOrder)
		api.POST("/ticks", h.postTick)

		api.GET("/positions", h.getPositions)
		api.GET("/trades", h.getTrades)
		api.GET("/quotes", h.getQuotes)
		api.GET("/quotes/:symbol", h.getQuote)
		api.GET("/history/:symbol", h.getHistory)
		api.GET("/indicators/:symbol", h.getIndicators)

		api.GET("/ws", func(c *gin.Context) { h.hub.ServeWS(c.Writer, c.Request) })
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}

// ListenAndServe serves h on addr and runs the hub until ctx is done, then
// shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, h *Handler) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go h.hub.Run(hubCtx)

	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		h.log.WithField("addr", addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	h.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
