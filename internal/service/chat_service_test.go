package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"faqbot-go/internal/config"
	"faqbot-go/internal/model"
	"faqbot-go/pkg/llm"

	"github.com/stretchr/testify/require"
)

type fakeRetrieval struct {
	contextText string
	lastQuery   string
}

func (f *fakeRetrieval) Retrieve(_ context.Context, query string) string {
	f.lastQuery = query
	return f.contextText
}

type fakeLLMClient struct {
	gotMessages []llm.Message
	stream      string
	err         error
}

func (f *fakeLLMClient) StreamChat(_ context.Context, messages []llm.Message, w io.Writer) error {
	f.gotMessages = messages
	if f.err != nil {
		return f.err
	}
	// 按小分块写出，模拟传输层的任意切分
	data := []byte(f.stream)
	for len(data) > 0 {
		n := 7
		if n > len(data) {
			n = len(data)
		}
		if _, err := w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func newChatServiceForTest(retrieval RetrievalService, llmClient llm.Client, repo *fakeSessionRepo) ChatService {
	return NewChatService(retrieval, llmClient, repo, config.LLMPromptConfig{})
}

func TestResolveSessionMintsNewWhenNoCookie(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newChatServiceForTest(&fakeRetrieval{}, &fakeLLMClient{}, repo)

	session, isNew := svc.ResolveSession(context.Background(), "")
	require.True(t, isNew)
	require.Equal(t, "fresh-session-id", session.ID)
	require.Empty(t, session.Messages)
}

func TestResolveSessionReturnsExisting(t *testing.T) {
	existing := model.NewSession("known")
	existing.Append("user", "earlier")
	repo := &fakeSessionRepo{sessions: map[string]*model.Session{"known": existing}}
	svc := newChatServiceForTest(&fakeRetrieval{}, &fakeLLMClient{}, repo)

	session, isNew := svc.ResolveSession(context.Background(), "known")
	require.False(t, isNew)
	require.Equal(t, "known", session.ID)
	require.Len(t, session.Messages, 1)
}

func TestResolveSessionMintsNewOnLookupMiss(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newChatServiceForTest(&fakeRetrieval{}, &fakeLLMClient{}, repo)

	session, isNew := svc.ResolveSession(context.Background(), "expired-id")
	require.True(t, isNew)
	require.NotEqual(t, "expired-id", session.ID)
}

func TestStreamResponsePromptWindow(t *testing.T) {
	repo := &fakeSessionRepo{}
	llmClient := &fakeLLMClient{stream: "[DONE]\n"}
	svc := newChatServiceForTest(&fakeRetrieval{}, llmClient, repo)

	session := model.NewSession("s1")
	for i := 1; i <= 14; i++ {
		role := "user"
		if i%2 == 0 {
			role = "assistant"
		}
		session.Append(role, fmt.Sprintf("m%d", i))
	}

	var out bytes.Buffer
	err := svc.StreamResponse(context.Background(), session, "latest question", &out, nil)
	require.NoError(t, err)

	// prompt = 1 条 system + 最近 10 条
	require.Len(t, llmClient.gotMessages, 11)
	require.Equal(t, "system", llmClient.gotMessages[0].Role)
	// 窗口内最旧的一条：追加后共 15 条，取第 6 条
	require.Equal(t, "m6", llmClient.gotMessages[1].Content)
	// 最新追加的用户消息在窗口末尾
	last := llmClient.gotMessages[len(llmClient.gotMessages)-1]
	require.Equal(t, "user", last.Role)
	require.Equal(t, "latest question", last.Content)
}

func TestStreamResponseSystemMessageWithContext(t *testing.T) {
	repo := &fakeSessionRepo{}
	retrieval := &fakeRetrieval{contextText: "Q: How do I reset my password?\nA: Use the reset link."}
	llmClient := &fakeLLMClient{stream: "[DONE]\n"}
	svc := newChatServiceForTest(retrieval, llmClient, repo)

	session := model.NewSession("s1")
	var out bytes.Buffer
	require.NoError(t, svc.StreamResponse(context.Background(), session, "  reset password  ", &out, nil))

	sys := llmClient.gotMessages[0].Content
	require.Contains(t, sys, "Context:\nQ: How do I reset my password?")
	// 检索用原始输入，消息记录用修剪后的文本
	require.Equal(t, "  reset password  ", retrieval.lastQuery)
	require.Equal(t, "reset password", session.Messages[0].Content)
}

func TestStreamResponseSystemMessageWithoutContext(t *testing.T) {
	repo := &fakeSessionRepo{}
	llmClient := &fakeLLMClient{stream: "[DONE]\n"}
	svc := newChatServiceForTest(&fakeRetrieval{contextText: ""}, llmClient, repo)

	session := model.NewSession("s1")
	var out bytes.Buffer
	require.NoError(t, svc.StreamResponse(context.Background(), session, "hi", &out, nil))

	require.NotContains(t, llmClient.gotMessages[0].Content, "Context:")
}

func TestStreamResponsePersistsAssistantTurn(t *testing.T) {
	repo := &fakeSessionRepo{}
	stream := "{\"response\":\"Hello\"}\n{\"response\":\" world\"}\n[DONE]\n"
	llmClient := &fakeLLMClient{stream: stream}
	svc := newChatServiceForTest(&fakeRetrieval{}, llmClient, repo)

	session := model.NewSession("s1")
	var out bytes.Buffer
	require.NoError(t, svc.StreamResponse(context.Background(), session, "hi", &out, nil))

	// 透传不变式：输出与上游字节一致
	require.Equal(t, stream, out.String())

	require.NotNil(t, repo.saved)
	require.Len(t, repo.saved.Messages, 2)
	require.Equal(t, "user", repo.saved.Messages[0].Role)
	require.Equal(t, "assistant", repo.saved.Messages[1].Role)
	require.Equal(t, "Hello world", repo.saved.Messages[1].Content)
}

func TestStreamResponsePreservesTurnOrder(t *testing.T) {
	repo := &fakeSessionRepo{}
	llmClient := &fakeLLMClient{stream: "{\"response\":\"second answer\"}\n[DONE]\n"}
	svc := newChatServiceForTest(&fakeRetrieval{}, llmClient, repo)

	session := model.NewSession("s1")
	session.Append("user", "first question")
	session.Append("assistant", "first answer")

	var out bytes.Buffer
	require.NoError(t, svc.StreamResponse(context.Background(), session, "second question", &out, nil))

	contents := make([]string, 0, len(repo.saved.Messages))
	for _, m := range repo.saved.Messages {
		contents = append(contents, m.Content)
	}
	require.Equal(t, []string{"first question", "first answer", "second question", "second answer"}, contents)
}

func TestStreamResponsePropagatesGenerationFailure(t *testing.T) {
	repo := &fakeSessionRepo{}
	llmClient := &fakeLLMClient{err: fmt.Errorf("upstream exploded")}
	svc := newChatServiceForTest(&fakeRetrieval{}, llmClient, repo)

	session := model.NewSession("s1")
	var out bytes.Buffer
	err := svc.StreamResponse(context.Background(), session, "hi", &out, nil)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "upstream exploded"))
	require.Equal(t, 0, repo.putCalls, "failed generation must not persist")
}

func TestHistoryEmptyWithoutSession(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newChatServiceForTest(&fakeRetrieval{}, &fakeLLMClient{}, repo)

	messages := svc.History(context.Background(), "")
	require.NotNil(t, messages)
	require.Empty(t, messages)

	messages = svc.History(context.Background(), "unknown")
	require.NotNil(t, messages)
	require.Empty(t, messages)
}
