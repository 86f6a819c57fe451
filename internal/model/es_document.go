// Package model 定义了与数据库表对应的 Go 结构体。
package model

// ArtworkDocument 定义了存储在 Elasticsearch 中的作品文档结构。
type ArtworkDocument struct {
	ArtworkID uint    `json:"artwork_id"`
	GalleryID uint    `json:"gallery_id"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	IsPublic  bool    `json:"is_public"`
}

// ArtworkSearchResult 定义了返回给前端的搜索结果结构。
type ArtworkSearchResult struct {
	ArtworkID uint    `json:"artworkId"`
	GalleryID uint    `json:"galleryId"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Score     float64 `json:"score"`
}
