// Package service 包含了应用的业务逻辑层。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"faqbot-go/internal/model"
	"faqbot-go/pkg/embedding"
	"faqbot-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
)

// 每次检索取相似度最高的 3 条 FAQ。
const retrievalTopK = 3

// RetrievalService 接口定义了检索操作。
type RetrievalService interface {
	// Retrieve 将用户问题向量化并在 FAQ 索引中检索，返回格式化后的上下文块。
	// 检索是尽力而为的：任何一步失败都返回空字符串，绝不阻断聊天请求。
	Retrieve(ctx context.Context, query string) string
}

type retrievalService struct {
	embeddingClient embedding.Client
	esClient        *elasticsearch.Client
	indexName       string
}

// NewRetrievalService 创建一个新的 RetrievalService 实例。
func NewRetrievalService(embeddingClient embedding.Client, esClient *elasticsearch.Client, indexName string) RetrievalService {
	return &retrievalService{
		embeddingClient: embeddingClient,
		esClient:        esClient,
		indexName:       indexName,
	}
}

// Retrieve 执行向量化 + kNN 检索并组装上下文文本。
func (s *retrievalService) Retrieve(ctx context.Context, query string) string {
	vectors, err := s.embeddingClient.CreateEmbeddings(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		log.Warnf("[RetrievalService] 向量化查询失败，本轮不带检索上下文: %v", err)
		return ""
	}
	queryVector := vectors[0]

	esQuery := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   queryVector,
			"k":              retrievalTopK,
			"num_candidates": retrievalTopK * 10,
		},
		"size":    retrievalTopK,
		"_source": []string{"question", "answer"},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		log.Errorf("[RetrievalService] 序列化 Elasticsearch 查询失败: %v", err)
		return ""
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.indexName),
		s.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		log.Warnf("[RetrievalService] 向 Elasticsearch 发送搜索请求失败: %v", err)
		return ""
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Warnf("[RetrievalService] Elasticsearch 返回错误, status: %s", res.Status())
		return ""
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.FaqDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		log.Warnf("[RetrievalService] 解析 Elasticsearch 响应失败: %v", err)
		return ""
	}

	if len(esResponse.Hits.Hits) == 0 {
		return ""
	}

	// 每条命中渲染成两行 Q/A，条目之间空一行
	blocks := make([]string, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		if hit.Source.Question == "" && hit.Source.Answer == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", hit.Source.Question, hit.Source.Answer))
	}
	return strings.Join(blocks, "\n\n")
}
