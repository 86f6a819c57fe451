// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"errors"

	"art-gallery-go/internal/model"

	"gorm.io/gorm"
)

// FileRepository 接口定义了存储文件记录的持久化操作。
// 这些记录由存储后端维护，与实体仓储共用同一个数据库。
type FileRepository interface {
	Create(record *model.StorageFile) error
	Find(galleryID uint, fileName string) (*model.StorageFile, error)
	Delete(galleryID uint, fileName string) error
	FindByGallery(galleryID uint) ([]model.StorageFile, error)
	DeleteByGallery(galleryID uint) error
	Stats() (totalFiles int64, totalSize int64, galleryCount int64, err error)
}

// fileRepository 是 FileRepository 接口的 GORM 实现。
type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建一个新的 FileRepository 实例。
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

// Create 在数据库中创建一条新的文件记录。
func (r *fileRepository) Create(record *model.StorageFile) error {
	return r.db.Create(record).Error
}

// Find 根据画廊 ID 和文件名查找文件记录。
// 记录不存在时返回 gorm.ErrRecordNotFound。
func (r *fileRepository) Find(galleryID uint, fileName string) (*model.StorageFile, error) {
	var record model.StorageFile
	err := r.db.Where("gallery_id = ? AND file_name = ?", galleryID, fileName).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete 删除一条文件记录；记录不存在不视为错误（幂等）。
func (r *fileRepository) Delete(galleryID uint, fileName string) error {
	err := r.db.Where("gallery_id = ? AND file_name = ?", galleryID, fileName).
		Delete(&model.StorageFile{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// FindByGallery 枚举指定画廊的所有文件记录。
func (r *fileRepository) FindByGallery(galleryID uint) ([]model.StorageFile, error) {
	var records []model.StorageFile
	err := r.db.Where("gallery_id = ?", galleryID).Find(&records).Error
	return records, err
}

// DeleteByGallery 删除指定画廊的所有文件记录。
func (r *fileRepository) DeleteByGallery(galleryID uint) error {
	return r.db.Where("gallery_id = ?", galleryID).Delete(&model.StorageFile{}).Error
}

// Stats 聚合所有文件记录，返回总文件数、总字节数以及持有文件的画廊数。
func (r *fileRepository) Stats() (int64, int64, int64, error) {
	var totalFiles int64
	if err := r.db.Model(&model.StorageFile{}).Count(&totalFiles).Error; err != nil {
		return 0, 0, 0, err
	}

	var totalSize int64
	err := r.db.Model(&model.StorageFile{}).
		Select("COALESCE(SUM(size), 0)").Scan(&totalSize).Error
	if err != nil {
		return 0, 0, 0, err
	}

	var galleryCount int64
	err = r.db.Model(&model.StorageFile{}).
		Distinct("gallery_id").Count(&galleryCount).Error
	if err != nil {
		return 0, 0, 0, err
	}

	return totalFiles, totalSize, galleryCount, nil
}
