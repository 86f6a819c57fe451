// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Artwork 定义了 artworks 表的 ORM 模型。
// Image 保存外部图片 URL 或存储路径；FileName 仅在图片以文件形式上传时存在，
// 此时它对应存储后端中的一条 StorageFile 记录。
type Artwork struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string    `gorm:"type:varchar(200);not null" json:"title"`
	Artist          string    `gorm:"type:varchar(100)" json:"artist"`
	ArtistID        uint      `gorm:"not null;index" json:"artistId"`
	Price           float64   `gorm:"not null" json:"price"`
	Image           string    `gorm:"type:varchar(500)" json:"image"`
	Description     string    `gorm:"type:text" json:"description"`
	Category        string    `gorm:"type:varchar(50)" json:"category"`
	Likes           int64     `gorm:"not null;default:0" json:"likes"`
	Views           int64     `gorm:"not null;default:0" json:"views"`
	Sales           int64     `gorm:"not null;default:0" json:"sales"`
	HasAdultContent bool      `gorm:"not null;default:false" json:"hasAdultContent"`
	FileName        string    `gorm:"type:varchar(255)" json:"fileName,omitempty"`
	GalleryID       uint      `gorm:"not null;index" json:"galleryId"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Artwork) TableName() string {
	return "artworks"
}

// HasFile 报告该作品的图片是否为文件上传（而不是外部 URL）。
func (a *Artwork) HasFile() bool {
	return a.FileName != ""
}
