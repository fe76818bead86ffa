package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"

	"faqbot-go/internal/model"

	"github.com/stretchr/testify/require"
)

var testFAQEntries = []model.FAQEntry{
	{ID: "faq-1", Question: "How do I create an account?", Answer: "Sign up with your email."},
	{ID: "faq-2", Question: "Can I get a refund?", Answer: "Yes, within 14 days."},
}

func TestSeedIndexesAllEntries(t *testing.T) {
	var mu sync.Mutex
	indexed := map[string]model.FaqDocument{}

	esClient := newTestESClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var doc model.FaqDocument
		require.NoError(t, json.Unmarshal(body, &doc))
		mu.Lock()
		indexed[r.URL.Path] = doc
		mu.Unlock()
		fmt.Fprint(w, `{"result":"created"}`)
	})

	emb := &fakeEmbeddingClient{vectors: [][]float32{{0.1, 0.2}, {0.3, 0.4}}}
	svc := NewSeedService(emb, esClient, "faq_entries", testFAQEntries)

	count, err := svc.Seed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// 批量向量化：一次调用带上全部问题
	require.Equal(t, []string{testFAQEntries[0].Question, testFAQEntries[1].Question}, emb.lastInput)

	doc, ok := indexed["/faq_entries/_doc/faq-2"]
	require.True(t, ok, "entries are indexed under their stable IDs")
	require.Equal(t, "Can I get a refund?", doc.Question)
	require.Equal(t, "Yes, within 14 days.", doc.Answer)
	require.Equal(t, []float32{0.3, 0.4}, doc.Vector)
}

func TestSeedFailsOnEmbeddingError(t *testing.T) {
	called := false
	esClient := newTestESClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	emb := &fakeEmbeddingClient{err: fmt.Errorf("quota exceeded")}
	svc := NewSeedService(emb, esClient, "faq_entries", testFAQEntries)

	count, err := svc.Seed(context.Background())
	require.Error(t, err)
	require.Equal(t, 0, count)
	require.False(t, called)
}

func TestSeedFailsOnVectorCountMismatch(t *testing.T) {
	esClient := newTestESClient(t, func(w http.ResponseWriter, r *http.Request) {})
	emb := &fakeEmbeddingClient{vectors: [][]float32{{0.1}}}
	svc := NewSeedService(emb, esClient, "faq_entries", testFAQEntries)

	_, err := svc.Seed(context.Background())
	require.Error(t, err)
}

func TestSeedEmptyDataset(t *testing.T) {
	esClient := newTestESClient(t, func(w http.ResponseWriter, r *http.Request) {})
	svc := NewSeedService(&fakeEmbeddingClient{}, esClient, "faq_entries", nil)

	count, err := svc.Seed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
