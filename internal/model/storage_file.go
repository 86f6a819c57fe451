// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// StorageFile 定义了 storage_files 表的 ORM 模型。
// 它由存储后端维护，记录每个已上传文件的元数据；其生命周期跟随所属的作品。
type StorageFile struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	GalleryID    uint      `gorm:"not null;index" json:"galleryId"`
	FolderKey    string    `gorm:"type:varchar(150);not null" json:"folderKey"`
	FileName     string    `gorm:"type:varchar(255);not null;index" json:"fileName"`
	OriginalName string    `gorm:"type:varchar(255)" json:"originalName"`
	Size         int64     `gorm:"not null" json:"size"`
	MimeType     string    `gorm:"type:varchar(50)" json:"mimeType"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploadedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (StorageFile) TableName() string {
	return "storage_files"
}
