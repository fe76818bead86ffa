// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"faqbot-go/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// SessionRepository 定义了会话记录的操作接口。
type SessionRepository interface {
	// Get 按 ID 读取会话；不存在时返回 (nil, nil)，不视为错误。
	Get(ctx context.Context, id string) (*model.Session, error)
	// Put 整体覆盖写入会话记录，并重置固定过期时间。
	Put(ctx context.Context, session *model.Session) error
	// NewSessionID 生成一个不可猜测的全新会话标识。
	NewSessionID() string
}

type redisSessionRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
func NewSessionRepository(redisClient *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{redisClient: redisClient, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Get 从 Redis 读取会话记录。
func (r *redisSessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	jsonData, err := r.redisClient.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, nil // 会话不存在或已过期
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var session model.Session
	if err := json.Unmarshal([]byte(jsonData), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("malformed persisted session: %w", err)
	}
	return &session, nil
}

// Put 在 Redis 中覆盖写入会话记录。旧记录被整体替换，不做合并。
func (r *redisSessionRepository) Put(ctx context.Context, session *model.Session) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.redisClient.Set(ctx, sessionKey(session.ID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

// NewSessionID 生成会话标识。该标识同时是会话唯一的访问凭证，
// 必须不可猜测，uuid v4 由 crypto/rand 填充。
func (r *redisSessionRepository) NewSessionID() string {
	return uuid.NewString()
}
