// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strings"

	"faqbot-go/internal/config"
	"faqbot-go/internal/service"
	"faqbot-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ChatHandler 负责处理聊天与历史查询请求。
type ChatHandler struct {
	chatService service.ChatService
	sessionCfg  config.SessionConfig
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, sessionCfg config.SessionConfig) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		sessionCfg:  sessionCfg,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat 处理 POST /api/chat：解析消息、解析会话、下发 SSE 流。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message required"})
		return
	}

	cookieID, _ := c.Cookie(h.sessionCfg.CookieName)
	session, isNew := h.chatService.ResolveSession(c.Request.Context(), cookieID)

	// 新会话在响应头中建立 Cookie，必须在写入流之前完成
	if isNew {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.sessionCfg.CookieName, session.ID, h.sessionCfg.TTLSeconds, "/", "", false, true)
	}

	// 流式响应头：透传生成服务的 event-stream 格式，禁止缓存
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	err := h.chatService.StreamResponse(c.Request.Context(), session, req.Message, c.Writer, c.Writer)
	if err != nil {
		log.Errorf("处理流式响应失败: %v", err)
		// 流已开始后无法再改写状态码，只能在未写入任何字节时返回错误负载
		if !c.Writer.Written() {
			c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed"})
		}
		return
	}
}

// History 处理 GET /api/history：返回当前会话的完整消息序列。
func (h *ChatHandler) History(c *gin.Context) {
	cookieID, _ := c.Cookie(h.sessionCfg.CookieName)
	messages := h.chatService.History(c.Request.Context(), cookieID)
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
