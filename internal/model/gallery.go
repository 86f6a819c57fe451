// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Gallery 定义了 galleries 表的 ORM 模型。
// ArtworkCount 是派生字段：它必须始终等于 artworks 表中 gallery_id 匹配的行数，
// 只能由仓储层在增删作品时基于权威计数重算，任何调用方都不得直接增减。
type Gallery struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"type:varchar(100);not null" json:"name"`
	OwnerID         uint      `gorm:"not null;index" json:"ownerId"`
	Description     string    `gorm:"type:text" json:"description"`
	ArtworkCount    int       `gorm:"not null;default:0" json:"artworkCount"`
	TotalViews      int64     `gorm:"not null;default:0" json:"totalViews"`
	TotalLikes      int64     `gorm:"not null;default:0" json:"totalLikes"`
	Thumbnail       string    `gorm:"type:varchar(500)" json:"thumbnail"`
	IsPublic        bool      `gorm:"not null;default:true" json:"isPublic"`
	HasAdultContent bool      `gorm:"not null;default:false" json:"hasAdultContent"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Gallery) TableName() string {
	return "galleries"
}
