package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func NewRouter(logger logrus.FieldLogger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(JSONRecovery(logger))
	router.Use(LoggingMiddleware(logger))
	router.Use(JSONErrorHandler(logger))

	return router
}

type Server struct {
	Router *gin.Engine

	server http.Server
	logger logrus.FieldLogger
}

func NewServer(address string, port int, logger logrus.FieldLogger) *Server {
	router := NewRouter(logger)

	return &Server{
		Router: router,
		server: http.Server{
			Addr:              fmt.Sprintf("%s:%d", address, port),
			ReadHeaderTimeout: ReadHeaderTimeout,
			Handler:           router,
		},
		logger: logger,
	}
}

func (s *Server) Addr() string {
	return s.server.Addr
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting server")

	go func() {
		<-ctx.Done()
		s.server.Shutdown(context.WithoutCancel(ctx)) //nolint:errcheck
	}()

	err := s.server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	s.logger.Info("Server stopped")

	return nil
}
