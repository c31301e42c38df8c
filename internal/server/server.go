// Package server exposes hide, reveal and capacity over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Addr           string
	AllowedOrigins []string
	MaxUploadMB    int
	Framing        stego.Framing
	Channels       int
}

type Server struct {
	addr      string
	framing   stego.Framing
	channels  int
	maxUpload int64
	logger    zerolog.Logger
	router    *gin.Engine
}

func New(cfg Config, logger zerolog.Logger) *Server {
	s := &Server{
		addr:      cfg.Addr,
		framing:   cfg.Framing,
		channels:  cfg.Channels,
		maxUpload: int64(cfg.MaxUploadMB) << 20,
		logger:    logger,
	}
	if s.framing == nil {
		s.framing = stego.DefaultFraming
	}
	if s.channels == 0 {
		s.channels = stego.RGB
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 32 << 20
	}

	router := gin.New()
	router.MaxMultipartMemory = s.maxUpload
	router.Use(gin.Recovery(), requestLogger(logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	corsConfig.ExposeHeaders = []string{"X-Stego-PSNR", "X-Stego-Capacity", "X-Stego-Required", "X-Stego-Framing", "Content-Disposition"}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api/v1")
	{
		api.GET("/health", s.healthCheck)

		st := api.Group("/stego")
		{
			st.POST("/hide", s.hide)
			st.POST("/reveal", s.reveal)
			st.POST("/capacity", s.capacity)
		}
	}

	s.router = router
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// requestLogger logs one line per request through zerolog.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := logger.Info()
		if status >= http.StatusInternalServerError {
			ev = logger.Error()
		} else if status >= http.StatusBadRequest {
			ev = logger.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request")
	}
}
