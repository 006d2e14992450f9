package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

func (h *handlers) chat(c *gin.Context) {
	if h.deps.ChatSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat unavailable"})
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	c.JSON(http.StatusOK, h.deps.ChatSvc.Reply(c.Request.Context(), sessionFrom(c), strings.TrimSpace(req.Message)))
}
