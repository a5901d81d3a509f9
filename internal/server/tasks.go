package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"setado/internal/models"
)

type createTaskRequest struct {
	Title    string  `json:"title"`
	Priority *int    `json:"priority"`
	DueDate  *string `json:"due_date"`
}

// optionalDate tells an absent due_date apart from an explicit null.
type optionalDate struct {
	set   bool
	value *string
}

func (d *optionalDate) UnmarshalJSON(b []byte) error {
	d.set = true
	if bytes.Equal(b, []byte("null")) {
		d.value = nil
		return nil
	}
	return json.Unmarshal(b, &d.value)
}

type updateTaskRequest struct {
	Title        *string      `json:"title"`
	Priority     *int         `json:"priority"`
	DueDate      optionalDate `json:"due_date"`
	ClearDueDate bool         `json:"clear_due_date"`
	IsCompleted  *bool        `json:"is_completed"`
	IsDeleted    *bool        `json:"is_deleted"`
}

func (r updateTaskRequest) toUpdate() (models.TaskUpdate, error) {
	u := models.TaskUpdate{
		Title:        r.Title,
		Priority:     r.Priority,
		ClearDueDate: r.ClearDueDate,
		IsCompleted:  r.IsCompleted,
		IsDeleted:    r.IsDeleted,
	}
	if r.DueDate.set && r.DueDate.value == nil {
		u.ClearDueDate = true
		return u, nil
	}
	due, err := parseDue(r.DueDate.value)
	if err != nil {
		return models.TaskUpdate{}, err
	}
	u.DueDate = due
	return u, nil
}

func parseDue(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := models.ParseDueDate(*v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// handleListTasks fetches tasks for a project; ?deleted=true includes
// soft-deleted ones.
func (s *Server) handleListTasks(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	includeDeleted, _ := strconv.ParseBool(c.Query("deleted"))

	tasks, err := s.store.ListTasks(c.Request.Context(), projectID, includeDeleted)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

// handleCreateTask adds a task to a project. A missing priority takes the
// configured default.
func (s *Server) handleCreateTask(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	priority := s.settings.Get().DefaultPriority
	if req.Priority != nil {
		priority = *req.Priority
	}
	due, err := parseDue(req.DueDate)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), projectID, req.Title, priority, due)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

func (s *Server) handleListDue(c *gin.Context) {
	projectID, ok := parseProjectFilter(c)
	if !ok {
		return
	}

	tasks, err := s.store.ListTasksDue(c.Request.Context(), projectID)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) handleListCompleted(c *gin.Context) {
	projectID, ok := parseProjectFilter(c)
	if !ok {
		return
	}

	tasks, err := s.store.ListTasksCompleted(c.Request.Context(), projectID)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.CompleteTask(c.Request.Context(), id); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "completed"})
}

func (s *Server) handleUncompleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.UncompleteTask(c.Request.Context(), id); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "reopened"})
}

// handleUpdateTask applies a partial update. Fields left out of the body are
// not touched; "due_date": null clears the date like clear_due_date does.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	update, err := req.toUpdate()
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}

	if err := s.store.UpdateTask(c.Request.Context(), id, update); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "updated"})
}

// handleDeleteTask soft-deletes a task.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), id); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
