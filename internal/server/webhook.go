package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxWebhookBodyBytes = 1 << 20

// IngestWebhook receives signed provider events. The body is read raw and
// handed to the reconciler unmodified; signatures are computed over these
// bytes, never a re-serialized payload.
// POST /webhooks/:provider
func (s *Server) IngestWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		invalidRequest(c, "unreadable payload")
		return
	}

	if err := s.webhookSvc.IngestWebhook(c.Request.Context(), c.Param("provider"), payload, c.Request.Header); err != nil {
		s.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
