// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// User 定义了 users 表的 ORM 模型。
// HasGallery/GalleryID 记录用户是否已拥有画廊；一个用户最多只能拥有一个画廊，
// 该约束由编排服务在创建画廊时检查，而不是由数据库 schema 保证。
type User struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password   string    `gorm:"type:varchar(100);not null" json:"-"`
	Email      string    `gorm:"type:varchar(100)" json:"email"`
	HasGallery bool      `gorm:"not null;default:false" json:"hasGallery"`
	GalleryID  *uint     `gorm:"default:null" json:"galleryId,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}
