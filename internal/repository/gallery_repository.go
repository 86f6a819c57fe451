// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"art-gallery-go/internal/model"

	"gorm.io/gorm"
)

// GalleryRepository 接口定义了画廊数据的持久化操作。
type GalleryRepository interface {
	Create(gallery *model.Gallery) error
	FindByID(id uint) (*model.Gallery, error)
	FindByOwner(ownerID uint) (*model.Gallery, error)
	FindPublicWithPagination(offset, limit int) ([]model.Gallery, int64, error)
	Update(gallery *model.Gallery) error
	Delete(id uint) error
}

// galleryRepository 是 GalleryRepository 接口的 GORM 实现。
type galleryRepository struct {
	db *gorm.DB
}

// NewGalleryRepository 创建一个新的 GalleryRepository 实例。
func NewGalleryRepository(db *gorm.DB) GalleryRepository {
	return &galleryRepository{db: db}
}

// Create 在数据库中创建一条新的画廊记录。
func (r *galleryRepository) Create(gallery *model.Gallery) error {
	return r.db.Create(gallery).Error
}

// FindByID 根据画廊 ID 查找画廊。
func (r *galleryRepository) FindByID(id uint) (*model.Gallery, error) {
	var gallery model.Gallery
	err := r.db.First(&gallery, id).Error
	if err != nil {
		return nil, err
	}
	return &gallery, nil
}

// FindByOwner 查找指定用户拥有的画廊。
func (r *galleryRepository) FindByOwner(ownerID uint) (*model.Gallery, error) {
	var gallery model.Gallery
	err := r.db.Where("owner_id = ?", ownerID).First(&gallery).Error
	if err != nil {
		return nil, err
	}
	return &gallery, nil
}

// FindPublicWithPagination 分页检索公开画廊。
// 它返回画廊列表、总记录数和可能发生的错误。
func (r *galleryRepository) FindPublicWithPagination(offset, limit int) ([]model.Gallery, int64, error) {
	var galleries []model.Gallery
	var total int64

	db := r.db.Model(&model.Gallery{}).Where("is_public = ?", true)

	// 首先计算总记录数
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 然后根据偏移量和限制获取当前页的数据
	err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&galleries).Error
	if err != nil {
		return nil, 0, err
	}

	return galleries, total, nil
}

// Update 更新数据库中一条已存在的画廊记录。
func (r *galleryRepository) Update(gallery *model.Gallery) error {
	return r.db.Save(gallery).Error
}

// Delete 删除一条画廊记录。
func (r *galleryRepository) Delete(id uint) error {
	return r.db.Delete(&model.Gallery{}, id).Error
}
