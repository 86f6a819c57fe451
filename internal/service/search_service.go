// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"art-gallery-go/internal/model"
	"art-gallery-go/pkg/es"
	"art-gallery-go/pkg/log"
)

// SearchIndexer 定义了作品文档的索引维护操作。
// 索引是对浏览/搜索的加速，所有调用都是尽力而为：索引失败只记日志，
// 绝不影响元数据操作的结果。
type SearchIndexer interface {
	IndexArtwork(ctx context.Context, doc model.ArtworkDocument)
	RemoveArtwork(ctx context.Context, artworkID uint)
}

// SearchService 接口定义了面向访客的作品搜索操作。
type SearchService interface {
	SearchIndexer
	Search(ctx context.Context, query string, topK int) ([]model.ArtworkSearchResult, error)
}

// searchService 是基于 Elasticsearch 的 SearchService 实现。
type searchService struct {
	indexName string
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(indexName string) SearchService {
	return &searchService{indexName: indexName}
}

// IndexArtwork 将作品文档写入索引（尽力而为）。
func (s *searchService) IndexArtwork(ctx context.Context, doc model.ArtworkDocument) {
	if err := es.IndexArtwork(ctx, s.indexName, doc); err != nil {
		log.Warnf("[SearchService] 索引作品失败: artworkID=%d, error: %v", doc.ArtworkID, err)
	}
}

// RemoveArtwork 从索引中删除作品文档（尽力而为）。
func (s *searchService) RemoveArtwork(ctx context.Context, artworkID uint) {
	if err := es.DeleteArtwork(ctx, s.indexName, artworkID); err != nil {
		log.Warnf("[SearchService] 删除作品索引失败: artworkID=%d, error: %v", artworkID, err)
	}
}

// Search 在索引中按标题/作者/分类检索公开作品。
func (s *searchService) Search(ctx context.Context, query string, topK int) ([]model.ArtworkSearchResult, error) {
	log.Infof("[SearchService] 开始搜索作品, query: '%s', topK: %d", query, topK)
	if topK <= 0 {
		topK = 20
	}
	return es.SearchArtworks(ctx, s.indexName, query, topK)
}
