package service

import (
	"context"
	"fmt"

	"faqbot-go/internal/model"
	"faqbot-go/pkg/embedding"
	"faqbot-go/pkg/es"
	"faqbot-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
)

// SeedService 定义了 FAQ 索引的初始化填充操作。
type SeedService interface {
	// Seed 将内置的 FAQ 数据集向量化并写入相似度索引，返回写入条数。
	// 文档 ID 固定，重复执行等价于覆盖，幂等。
	Seed(ctx context.Context) (int, error)
}

type seedService struct {
	embeddingClient embedding.Client
	esClient        *elasticsearch.Client
	indexName       string
	entries         []model.FAQEntry
}

// NewSeedService 创建一个新的 SeedService 实例。
func NewSeedService(embeddingClient embedding.Client, esClient *elasticsearch.Client, indexName string, entries []model.FAQEntry) SeedService {
	return &seedService{
		embeddingClient: embeddingClient,
		esClient:        esClient,
		indexName:       indexName,
		entries:         entries,
	}
}

// Seed 批量向量化所有问题后逐条写入索引。
func (s *seedService) Seed(ctx context.Context) (int, error) {
	if len(s.entries) == 0 {
		return 0, nil
	}

	questions := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		questions = append(questions, e.Question)
	}

	vectors, err := s.embeddingClient.CreateEmbeddings(ctx, questions)
	if err != nil {
		return 0, fmt.Errorf("failed to embed faq questions: %w", err)
	}
	if len(vectors) != len(s.entries) {
		return 0, fmt.Errorf("embedding count mismatch: got %d vectors for %d questions", len(vectors), len(s.entries))
	}

	count := 0
	for i, e := range s.entries {
		doc := model.FaqDocument{
			Question: e.Question,
			Answer:   e.Answer,
			Vector:   vectors[i],
		}
		if err := es.IndexDocument(ctx, s.esClient, s.indexName, e.ID, doc); err != nil {
			return count, fmt.Errorf("failed to index faq entry %s: %w", e.ID, err)
		}
		count++
	}

	log.Infof("[SeedService] FAQ 索引填充完成, 共写入 %d 条", count)
	return count, nil
}
