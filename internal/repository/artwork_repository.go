// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"
	"fmt"

	"art-gallery-go/internal/apperr"
	"art-gallery-go/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// MaxArtworksPerGallery 是单个画廊允许持有的作品数量上限。
const MaxArtworksPerGallery = 6

// ArtworkRepository 接口定义了作品数据的持久化操作。
// galleries.artwork_count 是派生计数，只允许在这里基于权威行数重算，
// 调用方不得直接增减该字段（盲目自增在并发下会产生计数漂移）。
type ArtworkRepository interface {
	// Add 在一个事务内检查配额、插入作品并重算画廊计数。
	// 画廊已满时返回 QuotaExceededError，且不产生任何变更。
	Add(artwork *model.Artwork) error
	// Remove 删除作品并重算所属画廊的计数与成人内容标记。
	Remove(id uint) error
	FindByID(id uint) (*model.Artwork, error)
	FindByGallery(galleryID uint) ([]model.Artwork, error)
	CountByGallery(galleryID uint) (int64, error)
	// DeleteByGallery 删除画廊的全部作品行（级联删除的一步）。
	DeleteByGallery(galleryID uint) error
	// RecomputeAdultFlag 将画廊的成人内容标记重算为其所有作品标记的 OR。
	RecomputeAdultFlag(galleryID uint) error

	// IncrementViews 单调递增作品与所属画廊的浏览计数。
	IncrementViews(id uint) error
	// MarkLiked 在 Redis 中记录访客对作品的点赞，返回是否为首次点赞。
	MarkLiked(ctx context.Context, artworkID uint, visitorID string) (bool, error)
	// IncrementLikes 单调递增作品与所属画廊的点赞计数。
	IncrementLikes(id uint) error
}

// artworkRepository 是 ArtworkRepository 接口的 GORM+Redis 实现。
type artworkRepository struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewArtworkRepository 创建一个新的 ArtworkRepository 实例。
func NewArtworkRepository(db *gorm.DB, redisClient *redis.Client) ArtworkRepository {
	return &artworkRepository{db: db, redisClient: redisClient}
}

// likesKey generates the redis key holding the set of visitors who liked an artwork.
func (r *artworkRepository) likesKey(artworkID uint) string {
	return fmt.Sprintf("likes:artwork:%d", artworkID)
}

// Add 插入作品并维护画廊计数，整个过程在一个事务内完成。
func (r *artworkRepository) Add(artwork *model.Artwork) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Artwork{}).
			Where("gallery_id = ?", artwork.GalleryID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count >= MaxArtworksPerGallery {
			return &apperr.QuotaExceededError{GalleryID: artwork.GalleryID, Limit: MaxArtworksPerGallery}
		}

		if err := tx.Create(artwork).Error; err != nil {
			return err
		}

		return recountGallery(tx, artwork.GalleryID)
	})
}

// Remove 删除作品行并重算所属画廊的派生字段。
func (r *artworkRepository) Remove(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var artwork model.Artwork
		if err := tx.First(&artwork, id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&model.Artwork{}, id).Error; err != nil {
			return err
		}

		if err := recountGallery(tx, artwork.GalleryID); err != nil {
			return err
		}
		return recomputeAdultFlag(tx, artwork.GalleryID)
	})
}

// FindByID 根据作品 ID 查找作品。
func (r *artworkRepository) FindByID(id uint) (*model.Artwork, error) {
	var artwork model.Artwork
	err := r.db.First(&artwork, id).Error
	if err != nil {
		return nil, err
	}
	return &artwork, nil
}

// FindByGallery 查找指定画廊的所有作品。
func (r *artworkRepository) FindByGallery(galleryID uint) ([]model.Artwork, error) {
	var artworks []model.Artwork
	err := r.db.Where("gallery_id = ?", galleryID).Order("created_at asc").Find(&artworks).Error
	return artworks, err
}

// CountByGallery 返回指定画廊的权威作品行数。
func (r *artworkRepository) CountByGallery(galleryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Artwork{}).Where("gallery_id = ?", galleryID).Count(&count).Error
	return count, err
}

// DeleteByGallery 删除画廊的全部作品行并将计数归零。
func (r *artworkRepository) DeleteByGallery(galleryID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gallery_id = ?", galleryID).Delete(&model.Artwork{}).Error; err != nil {
			return err
		}
		// 画廊行可能已在级联后续步骤中删除，这里的重算忽略不存在的画廊
		return recountGallery(tx, galleryID)
	})
}

// RecomputeAdultFlag 将画廊的成人内容标记重算为其作品标记的 OR。
func (r *artworkRepository) RecomputeAdultFlag(galleryID uint) error {
	return recomputeAdultFlag(r.db, galleryID)
}

// IncrementViews 单调递增作品与所属画廊的浏览计数。
func (r *artworkRepository) IncrementViews(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var artwork model.Artwork
		if err := tx.First(&artwork, id).Error; err != nil {
			return err
		}
		err := tx.Model(&model.Artwork{}).Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + 1")).Error
		if err != nil {
			return err
		}
		return tx.Model(&model.Gallery{}).Where("id = ?", artwork.GalleryID).
			UpdateColumn("total_views", gorm.Expr("total_views + 1")).Error
	})
}

// MarkLiked 通过 Redis 集合对点赞去重：同一访客对同一作品只算一次。
func (r *artworkRepository) MarkLiked(ctx context.Context, artworkID uint, visitorID string) (bool, error) {
	added, err := r.redisClient.SAdd(ctx, r.likesKey(artworkID), visitorID).Result()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

// IncrementLikes 单调递增作品与所属画廊的点赞计数。
func (r *artworkRepository) IncrementLikes(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var artwork model.Artwork
		if err := tx.First(&artwork, id).Error; err != nil {
			return err
		}
		err := tx.Model(&model.Artwork{}).Where("id = ?", id).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error
		if err != nil {
			return err
		}
		return tx.Model(&model.Gallery{}).Where("id = ?", artwork.GalleryID).
			UpdateColumn("total_likes", gorm.Expr("total_likes + 1")).Error
	})
}

// recountGallery 从 artworks 表读出权威行数并写回画廊的派生计数。
func recountGallery(tx *gorm.DB, galleryID uint) error {
	var count int64
	err := tx.Model(&model.Artwork{}).Where("gallery_id = ?", galleryID).Count(&count).Error
	if err != nil {
		return err
	}
	return tx.Model(&model.Gallery{}).Where("id = ?", galleryID).
		UpdateColumn("artwork_count", count).Error
}

// recomputeAdultFlag 将画廊成人内容标记重算为其作品标记的 OR。
func recomputeAdultFlag(tx *gorm.DB, galleryID uint) error {
	var adultCount int64
	err := tx.Model(&model.Artwork{}).
		Where("gallery_id = ? AND has_adult_content = ?", galleryID, true).
		Count(&adultCount).Error
	if err != nil {
		return err
	}
	return tx.Model(&model.Gallery{}).Where("id = ?", galleryID).
		UpdateColumn("has_adult_content", adultCount > 0).Error
}
