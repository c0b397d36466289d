package infoserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/internal/httpserver"
)

const address = "127.0.0.1"

type HealthChecker interface {
	HealthCheck() map[string]error
}

// Server exposes the state of a run over HTTP.
type Server struct {
	*httpserver.Server

	status core.StatusProvider
	health HealthChecker
}

func NewServer(port int, status core.StatusProvider, health HealthChecker, logger logrus.FieldLogger) *Server {
	logger = logger.WithField("component", "infoserver.Server")

	srv := &Server{
		Server: httpserver.NewServer(address, port, logger),
		status: status,
		health: health,
	}

	srv.Router.GET("/status", srv.StatusHandler)
	srv.Router.GET("/healthz", srv.HealthHandler)
	srv.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return srv
}

func (s *Server) StatusHandler(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.status.Status())
}

func (s *Server) HealthHandler(c *gin.Context) {
	failed := lo.MapValues(
		lo.PickBy(s.health.HealthCheck(), func(_ string, err error) bool { return err != nil }),
		func(err error, _ string) string { return err.Error() },
	)

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "errors": failed})

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Run(ctx context.Context) error {
	return s.Server.Run(ctx) //nolint:wrapcheck
}
