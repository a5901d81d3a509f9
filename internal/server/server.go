package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"setado/internal/models"
	"setado/internal/settings"
)

// Store is the task persistence the API is served from.
type Store interface {
	CreateProject(ctx context.Context, name, description string) (models.Project, error)
	ListProjects(ctx context.Context, includeArchived bool) ([]models.Project, error)
	ArchiveProject(ctx context.Context, id int64) error
	DeleteProject(ctx context.Context, id int64) error

	CreateTask(ctx context.Context, projectID int64, title string, priority int, due *time.Time) (models.Task, error)
	ListTasks(ctx context.Context, projectID int64, includeDeleted bool) ([]models.Task, error)
	ListTasksDue(ctx context.Context, projectID *int64) ([]models.Task, error)
	ListTasksCompleted(ctx context.Context, projectID *int64) ([]models.Task, error)
	CompleteTask(ctx context.Context, id int64) error
	UncompleteTask(ctx context.Context, id int64) error
	DeleteTask(ctx context.Context, id int64) error
	UpdateTask(ctx context.Context, id int64, u models.TaskUpdate) error
}

// Settings is the preference store exposed under /api/settings.
type Settings interface {
	Get() settings.Settings
	Update(u settings.Update) (settings.Settings, error)
}

// Server provides the JSON API over the task store.
type Server struct {
	engine   *gin.Engine
	store    Store
	settings Settings
	logger   *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(store Store, prefs Settings, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:   router,
		store:    store,
		settings: prefs,
		logger:   logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.POST(":id/archive", s.handleArchiveProject)
			projects.DELETE(":id", s.handleDeleteProject)
			projects.GET(":id/tasks", s.handleListTasks)
			projects.POST(":id/tasks", s.handleCreateTask)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("/due", s.handleListDue)
			tasks.GET("/completed", s.handleListCompleted)
			tasks.POST("/:id/complete", s.handleCompleteTask)
			tasks.POST("/:id/uncomplete", s.handleUncompleteTask)
			tasks.PATCH("/:id", s.handleUpdateTask)
			tasks.DELETE("/:id", s.handleDeleteTask)
		}

		api.GET("/settings", s.handleGetSettings)
		api.PATCH("/settings", s.handleUpdateSettings)
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// parseProjectFilter reads the optional ?project= query parameter.
func parseProjectFilter(c *gin.Context) (*int64, bool) {
	raw, present := c.GetQuery("project")
	if !present || raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project filter"})
		return nil, false
	}
	return &id, true
}

// statusFor maps rejected input to 400 and everything else to 500.
func statusFor(err error) int {
	if models.IsValidation(err) || errors.Is(err, settings.ErrInvalid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
