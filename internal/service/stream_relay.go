package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"faqbot-go/internal/model"
	"faqbot-go/internal/repository"
	"faqbot-go/pkg/log"
)

// doneSentinel 是生成服务流式输出中的终止哨兵。
const doneSentinel = "[DONE]"

// StreamRelay 包装 HTTP 响应 writer：把生成服务的字节流原样转发给调用方，
// 同时按行解析流内容、拼接出完整回答，并在流结束时把回答合并回会话记录。
// 解析只做观察，从不过滤或改写转发的字节。
type StreamRelay struct {
	dest        io.Writer
	flusher     http.Flusher
	sessionRepo repository.SessionRepository
	session     *model.Session

	buf      []byte
	answer   strings.Builder
	done     bool
	finished bool
}

// NewStreamRelay 创建一个绑定到指定会话的 StreamRelay。flusher 可以为 nil。
func NewStreamRelay(dest io.Writer, flusher http.Flusher, sessionRepo repository.SessionRepository, session *model.Session) *StreamRelay {
	return &StreamRelay{
		dest:        dest,
		flusher:     flusher,
		sessionRepo: sessionRepo,
		session:     session,
	}
}

// Write 转发一个字节分块并观察其内容。分块边界是任意的：
// 一条记录可能跨越多个分块，多条记录也可能挤在同一个分块里。
func (r *StreamRelay) Write(p []byte) (int, error) {
	n, err := r.dest.Write(p)
	if err != nil {
		return n, err
	}
	if r.flusher != nil {
		r.flusher.Flush()
	}

	r.buf = append(r.buf, p...)
	for {
		i := bytes.IndexByte(r.buf, '\n')
		if i < 0 {
			break
		}
		line := r.buf[:i]
		r.buf = r.buf[i+1:]
		r.observeLine(line)
	}
	return n, nil
}

// observeLine 解析一条完整记录。无法解析的行静默跳过。
func (r *StreamRelay) observeLine(line []byte) {
	s := strings.TrimSpace(string(line))
	// 上游可能带 SSE 风格的 data: 前缀
	s = strings.TrimSpace(strings.TrimPrefix(s, "data:"))
	if s == "" || r.done {
		return
	}
	if s == doneSentinel {
		r.done = true
		return
	}
	var record struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal([]byte(s), &record); err != nil {
		return
	}
	r.answer.WriteString(record.Response)
}

// Finish 在上游流结束后执行唯一一次收尾：若拼接出的回答非空，
// 则追加一条 assistant 消息并整体持久化会话；回答为空时不产生写入。
// 多次调用只有第一次生效。
func (r *StreamRelay) Finish() {
	if r.finished {
		return
	}
	r.finished = true

	// 最后一条记录可能没有结尾换行，流结束时把残余缓冲当作完整行处理
	if len(r.buf) > 0 {
		r.observeLine(r.buf)
		r.buf = nil
	}

	fullAnswer := r.answer.String()
	if fullAnswer == "" {
		return
	}

	r.session.Append("assistant", fullAnswer)
	// 使用后台上下文：即使原始请求已被取消，也保存成功生成的答案
	if err := r.sessionRepo.Put(context.Background(), r.session); err != nil {
		// 只记录错误，不影响已经发出的流式响应
		log.Errorf("Failed to save session %s: %v", r.session.ID, err)
	}
}
