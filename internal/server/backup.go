package server

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

func (s *Server) downloadBackup(c *gin.Context) {
	path, err := s.backupSvc.Snapshot(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

// restoreBackup accepts a multipart upload under the "file" field. On
// success the process shuts down; the client sees the connection close
// and retries against the restarted instance.
func (s *Server) restoreBackup(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer file.Close()

	if err := s.backupSvc.Restore(c.Request.Context(), file); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "restoring"})
}
