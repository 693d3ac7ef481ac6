package control

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lemonbar/manager/internal/bar"
)

// Server exposes a small control-plane API over a running scheduler.
// Reads are served from the scheduler's published snapshot; writes are
// funnelled through the injection source, so every state change still
// happens on the scheduler goroutine.
type Server struct {
	sched  *bar.Scheduler
	events *bar.Source
	logger *zap.Logger
	http   *http.Server
}

func NewServer(sched *bar.Scheduler, events *bar.Source, logger *zap.Logger) *Server {
	return &Server{sched: sched, events: events, logger: logger}
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	engine.Use(cors.New(config))

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/status", s.getStatus)
		v1.POST("/events", s.postEvent)
		v1.POST("/modules/:name/invalidate", s.invalidateModule)
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return engine
}

func (s *Server) getStatus(c *gin.Context) {
	snap := s.sched.Status()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no iteration completed yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

type eventRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) postEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.events.Push(req.Name) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "event backlog full"})
		return
	}
	s.logger.Info("event injected", zap.String("event", req.Name))
	c.JSON(http.StatusAccepted, gin.H{"queued": req.Name})
}

func (s *Server) invalidateModule(c *gin.Context) {
	name := c.Param("name")
	if !s.events.Push("invalidate " + name) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "event backlog full"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"invalidated": name})
}

// Serve blocks on the listener until Shutdown is called.
func (s *Server) Serve(port int) error {
	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Router(),
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
