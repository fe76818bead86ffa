// Package model 包含了应用的数据模型定义。
package model

import (
	"fmt"
	"time"
)

// ChatMessage 代表会话中的单条消息。
type ChatMessage struct {
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session 代表存储在 Redis 中的一次完整会话记录。
// 消息按插入顺序保存，单次请求内只追加、不修改。
type Session struct {
	ID        string        `json:"id"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewSession 创建一个新的空会话。
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Messages:  []ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append 在会话末尾追加一条消息并更新时间戳。
func (s *Session) Append(role, content string) {
	s.Messages = append(s.Messages, ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

// Window 返回最近 n 条消息（不足 n 条时返回全部），保持时间顺序。
func (s *Session) Window(n int) []ChatMessage {
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// Validate 在存储边界校验持久化记录，拦截畸形数据。
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is empty")
	}
	for i, m := range s.Messages {
		switch m.Role {
		case "user", "assistant", "system":
		default:
			return fmt.Errorf("message %d has invalid role %q", i, m.Role)
		}
	}
	return nil
}
