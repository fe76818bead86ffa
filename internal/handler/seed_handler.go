package handler

import (
	"net/http"

	"faqbot-go/internal/service"
	"faqbot-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SeedHandler 处理 FAQ 索引的初始化填充请求。
type SeedHandler struct {
	seedService service.SeedService
}

// NewSeedHandler 创建一个新的 SeedHandler。
func NewSeedHandler(seedService service.SeedService) *SeedHandler {
	return &SeedHandler{seedService: seedService}
}

// Seed 处理 POST /api/seed。
func (h *SeedHandler) Seed(c *gin.Context) {
	count, err := h.seedService.Seed(c.Request.Context())
	if err != nil {
		log.Errorf("[SeedHandler] FAQ 索引填充失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed FAQ index"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}
