package model

// FAQEntry 是内置种子数据中的一条问答对。
type FAQEntry struct {
	ID       string
	Question string
	Answer   string
}

// FaqDocument 代表存储在 Elasticsearch 中的 FAQ 文档结构。
type FaqDocument struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Vector   []float32 `json:"vector"` // 问题文本的向量表示
}
