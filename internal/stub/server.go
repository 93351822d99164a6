// Package stub is an in-memory development server speaking the
// PearlData REST contract. The client SDK's integration tests run
// against it, and `pearld-stub` serves it on a local port so the CLI
// works without a real backend.
package stub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pearldata/pearlctl/internal/app/models"
)

// Config carries the stub's runtime settings.
type Config struct {
	Port      string
	JWTSecret string
	TokenTTL  time.Duration
}

// Server is the stub instance: one dataset, one JWT secret, one router.
type Server struct {
	cfg     Config
	mem     *memory
	logger  zerolog.Logger
	metrics *metrics
	reg     *prometheus.Registry
	http    *http.Server
}

// New creates a seeded stub server.
func New(cfg Config, logger zerolog.Logger) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:     cfg,
		mem:     newMemory(),
		logger:  logger,
		metrics: newMetrics(reg),
		reg:     reg,
	}
	s.mem.Seed(time.Now())
	return s
}

// Router builds the gin engine with the full endpoint surface mounted
// under /api. Tests host this directly with httptest.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.metrics.middleware())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", s.handleLogin)
	auth.POST("/signup", s.handleSignup)

	admin := api.Group("/admin", s.requireAuth(), s.requireRole(models.RoleAdmin))
	admin.GET("/users", s.handleListUsers)
	admin.GET("/users/search", s.handleSearchUsers)
	admin.GET("/users/:id", s.handleGetUser)
	admin.POST("/users", s.handleCreateUser)
	admin.POST("/users/:role", s.handleCreateUserWithRole)
	admin.PUT("/users/:id", s.handleUpdateUser)
	admin.DELETE("/users/:id", s.handleDeleteUser)
	admin.GET("/dashboard-stats", s.handleAdminStats)

	faculty := api.Group("/faculty", s.requireAuth(), s.requireRole(models.RoleFaculty))
	faculty.GET("/events", s.handleFacultyEvents)
	faculty.POST("/events", s.handleCreateEvent)
	faculty.PUT("/events/:id", s.handleUpdateEvent)
	faculty.DELETE("/events/:id", s.handleDeleteEvent)
	faculty.GET("/students", s.handleFacultyStudents)
	faculty.GET("/attendance/event/:eventId", s.handleAttendanceByEvent)
	faculty.POST("/attendance/enhanced", s.handleMarkAttendance)
	faculty.GET("/dashboard-stats", s.handleFacultyStats)
	faculty.GET("/analytics/summary", s.handleAnalyticsSummary)
	faculty.GET("/analytics/students", s.handleStudentAnalytics)
	faculty.GET("/analytics/students/:studentId/attendance", s.handleStudentAttendanceDetails)

	student := api.Group("/student", s.requireAuth(), s.requireRole(models.RoleStudent))
	student.GET("/profile", s.handleStudentProfile)
	student.PUT("/profile", s.handleUpdateStudentProfile)
	student.GET("/dashboard-stats", s.handleStudentStats)
	student.GET("/attendance", s.handleStudentAttendance)
	student.GET("/events", s.handleStudentEvents)
	student.GET("/progress", s.handleStudentProgress)
	student.GET("/notifications", s.handleNotifications)
	student.GET("/notifications/recent", s.handleRecentNotifications)
	student.PUT("/notifications/:id/read", s.handleMarkNotificationRead)
	student.DELETE("/notifications/:id", s.handleDeleteNotification)

	return r
}

// Run starts the HTTP server and blocks until an OS signal or a listen
// error, then shuts down gracefully.
func (s *Server) Run() error {
	s.http = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("Stub server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, shutting down")
	}

	return s.Shutdown(context.Background())
}

// Shutdown stops the HTTP server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown error")
		return err
	}
	s.logger.Info().Msg("Stub server stopped")
	return nil
}
