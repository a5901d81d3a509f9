package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"setado/internal/settings"
)

type settingsRequest struct {
	DatabasePath    *string `json:"database_path"`
	BackupPath      *string `json:"backup_path"`
	FrameCount      *int    `json:"frame_count"`
	DefaultPriority *int    `json:"default_priority"`
	Theme           *string `json:"theme"`
	FrameProjects   []int64 `json:"frame_projects"`
	BackupRetention *int    `json:"backup_retention"`
}

func (s *Server) handleGetSettings(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"settings": s.settings.Get()})
}

// handleUpdateSettings changes the supplied keys and saves them. Path
// changes take effect on the next start.
func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	updated, err := s.settings.Update(settings.Update{
		DatabasePath:    req.DatabasePath,
		BackupPath:      req.BackupPath,
		FrameCount:      req.FrameCount,
		DefaultPriority: req.DefaultPriority,
		Theme:           req.Theme,
		FrameProjects:   req.FrameProjects,
		BackupRetention: req.BackupRetention,
	})
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"settings": updated})
}
