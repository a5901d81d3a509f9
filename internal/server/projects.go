package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handleListProjects returns active projects, or all of them with ?archived=true.
func (s *Server) handleListProjects(c *gin.Context) {
	includeArchived, _ := strconv.ParseBool(c.Query("archived"))

	projects, err := s.store.ListProjects(c.Request.Context(), includeArchived)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	project, err := s.store.CreateProject(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"project": project})
}

func (s *Server) handleArchiveProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.ArchiveProject(c.Request.Context(), id); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "archived"})
}

// handleDeleteProject removes a project and all related tasks.
func (s *Server) handleDeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteProject(c.Request.Context(), id); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
