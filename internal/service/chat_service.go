package service

import (
	"context"
	"io"
	"net/http"
	"strings"

	"faqbot-go/internal/config"
	"faqbot-go/internal/model"
	"faqbot-go/internal/repository"
	"faqbot-go/pkg/llm"
	"faqbot-go/pkg/log"
)

// 提示词只带最近 10 条消息，限制 prompt 大小的简单近期窗口策略。
const historyWindow = 10

// defaultRules 是未配置时的系统提示。
const defaultRules = "You are a friendly customer support assistant. " +
	"Answer the user's question concisely. When the provided FAQ context is relevant, " +
	"base your answer on it; if you don't know the answer, say so honestly."

// ChatService 定义了聊天编排的接口。
type ChatService interface {
	// ResolveSession 根据 Cookie 中的标识解析会话。标识缺失或查找未命中时
	// 新建一个空会话，第二个返回值表示是否为新建（决定响应是否下发 Cookie）。
	ResolveSession(ctx context.Context, cookieID string) (*model.Session, bool)
	// StreamResponse 执行完整的 RAG 流程并把生成服务的流原样写入 w。
	StreamResponse(ctx context.Context, session *model.Session, message string, w io.Writer, flusher http.Flusher) error
	// History 返回会话的完整消息序列；会话不存在时返回空序列。
	History(ctx context.Context, cookieID string) []model.ChatMessage
}

type chatService struct {
	retrievalService RetrievalService
	llmClient        llm.Client
	sessionRepo      repository.SessionRepository
	prompt           config.LLMPromptConfig
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(retrievalService RetrievalService, llmClient llm.Client, sessionRepo repository.SessionRepository, prompt config.LLMPromptConfig) ChatService {
	return &chatService{
		retrievalService: retrievalService,
		llmClient:        llmClient,
		sessionRepo:      sessionRepo,
		prompt:           prompt,
	}
}

// ResolveSession 读取已有会话或新建一个。
func (s *chatService) ResolveSession(ctx context.Context, cookieID string) (*model.Session, bool) {
	if cookieID != "" {
		session, err := s.sessionRepo.Get(ctx, cookieID)
		if err != nil {
			log.Warnf("Failed to load session %s, starting fresh: %v", cookieID, err)
		}
		if session != nil {
			return session, false
		}
	}
	return model.NewSession(s.sessionRepo.NewSessionID()), true
}

// StreamResponse 协调 RAG 流程并流式传输生成结果。
func (s *chatService) StreamResponse(ctx context.Context, session *model.Session, message string, w io.Writer, flusher http.Flusher) error {
	// 1. 追加用户消息（只改内存副本，落盘在流结束后统一进行）
	session.Append("user", strings.TrimSpace(message))

	// 2. 检索 FAQ 上下文，尽力而为；用原始输入保持语义检索能力
	contextText := s.retrievalService.Retrieve(ctx, message)

	// 3. 组装 prompt：一条 system 消息 + 最近的历史窗口
	messages := s.composeMessages(contextText, session)

	// 4. 流式调用生成服务，relay 负责转发与回答拼接
	relay := NewStreamRelay(w, flusher, s.sessionRepo, session)
	if err := s.llmClient.StreamChat(ctx, messages, relay); err != nil {
		return err
	}

	// 5. 流结束：非空回答合并回会话并持久化
	relay.Finish()
	return nil
}

// composeMessages 构建发送给生成服务的消息列表。
func (s *chatService) composeMessages(contextText string, session *model.Session) []llm.Message {
	rules := s.prompt.Rules
	if rules == "" {
		rules = defaultRules
	}
	heading := s.prompt.ContextHeading
	if heading == "" {
		heading = "Context:"
	}

	var sys strings.Builder
	sys.WriteString(rules)
	if contextText != "" {
		sys.WriteString("\n\n")
		sys.WriteString(heading)
		sys.WriteString("\n")
		sys.WriteString(contextText)
	}

	window := session.Window(historyWindow)
	messages := make([]llm.Message, 0, len(window)+1)
	messages = append(messages, llm.Message{Role: "system", Content: sys.String()})
	for _, m := range window {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

// History 读取会话历史，缺失或读取失败都视为空历史。
func (s *chatService) History(ctx context.Context, cookieID string) []model.ChatMessage {
	if cookieID == "" {
		return []model.ChatMessage{}
	}
	session, err := s.sessionRepo.Get(ctx, cookieID)
	if err != nil {
		log.Warnf("Failed to load session history %s: %v", cookieID, err)
		return []model.ChatMessage{}
	}
	if session == nil || session.Messages == nil {
		return []model.ChatMessage{}
	}
	return session.Messages
}
