package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health 处理 GET /api/health。
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
