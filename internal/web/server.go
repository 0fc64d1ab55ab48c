package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wardrobeassistant/wardrobe/internal/events"
	"github.com/wardrobeassistant/wardrobe/internal/service"
)

const requestIDKey = "request_id"

type Server struct {
	service         *service.CatalogService
	broker          *events.Broker
	engine          *gin.Engine
	upgrader        *websocket.Upgrader
	logger          *zap.Logger
	maxPictureBytes int64
}

// Options tunes a Server. A nil CORSOrigins leaves cross-origin requests
// unanswered.
type Options struct {
	MaxPictureBytes int64
	CORSOrigins     []string
}

func NewServer(svc *service.CatalogService, broker *events.Broker, logger *zap.Logger, opts Options) *Server {
	engine := gin.New()
	engine.MaxMultipartMemory = opts.MaxPictureBytes
	engine.Use(gin.Recovery(), requestLogger(logger), securityHeaders())
	if len(opts.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
			ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}))
	}

	s := &Server{
		service:         svc,
		broker:          broker,
		engine:          engine,
		upgrader:        newUpgrader(opts.CORSOrigins),
		logger:          logger,
		maxPictureBytes: opts.MaxPictureBytes,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	categories := s.engine.Group("/categories")
	categories.GET("", s.handleListCategories)
	categories.POST("", s.handleCreateCategory)
	categories.POST("/seed", s.handleSeedCategories)
	categories.GET("/:id", s.handleGetCategory)
	categories.PUT("/:id", s.handleUpdateCategory)
	categories.DELETE("/:id", s.handleDeleteCategory)
	categories.GET("/:id/items", s.handleListCategoryItems)

	items := s.engine.Group("/items")
	items.POST("", s.handleCreateItem)
	items.GET("/:id", s.handleGetItem)
	items.PUT("/:id", s.handleUpdateItem)
	items.DELETE("/:id", s.handleDeleteItem)
	items.GET("/:id/picture", s.handleGetItemPicture)

	s.engine.GET("/events", s.handleEvents)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", zap.String("addr", addr))
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

const shutdownTimeout = 10 * time.Second
