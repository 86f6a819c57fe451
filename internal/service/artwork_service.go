// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"io"

	"art-gallery-go/internal/apperr"
	"art-gallery-go/internal/model"
	"art-gallery-go/internal/repository"
	"art-gallery-go/internal/storage"
	"art-gallery-go/pkg/log"

	"gorm.io/gorm"
)

// ErrNotOwner 表示调用者不是目标画廊的所有者。
var ErrNotOwner = errors.New("没有权限操作该画廊")

// MaxArtworkPrice 是单件作品允许的最高价格。
const MaxArtworkPrice = 10000

// AddArtworkInput 是添加作品操作的输入。
// File 与 ImageURL 二选一：File 非空表示图片以文件形式上传。
type AddArtworkInput struct {
	Title           string
	Artist          string
	Description     string
	Category        string
	Price           float64
	HasAdultContent bool

	ImageURL string

	File             io.Reader
	FileSize         int64
	FileMimeType     string
	FileOriginalName string
}

// RemoveArtworkResult 是删除作品操作的结果。
// Success 指元数据的一致性；FileFailures 是未能删除的文件名，仅供清理工具参考。
type RemoveArtworkResult struct {
	Success      bool     `json:"success"`
	FileFailures []string `json:"fileFailures"`
}

// ArtworkService 接口定义了作品相关的业务操作。
type ArtworkService interface {
	AddArtwork(ctx context.Context, callerID, galleryID uint, input AddArtworkInput) (*model.Artwork, error)
	RemoveArtwork(ctx context.Context, callerID, artworkID uint) (*RemoveArtworkResult, error)
	GetArtwork(id uint) (*model.Artwork, error)
	LikeArtwork(ctx context.Context, artworkID uint, visitorID string) (liked bool, err error)
	ViewArtwork(artworkID uint) error
}

type artworkService struct {
	galleryRepo repository.GalleryRepository
	artworkRepo repository.ArtworkRepository
	backend     storage.Backend
	locks       *GalleryLocks
	indexer     SearchIndexer // 可为 nil，索引是尽力而为的
}

// NewArtworkService 创建一个新的 ArtworkService 实例。
func NewArtworkService(galleryRepo repository.GalleryRepository, artworkRepo repository.ArtworkRepository, backend storage.Backend, locks *GalleryLocks, indexer SearchIndexer) ArtworkService {
	return &artworkService{
		galleryRepo: galleryRepo,
		artworkRepo: artworkRepo,
		backend:     backend,
		locks:       locks,
		indexer:     indexer,
	}
}

// AddArtwork 向画廊添加一件作品。
// 顺序：字段校验 → （文件时）校验并上传 → 带配额检查的插入 → 重算画廊标记。
// 配额拒绝发生在上传之后时，会执行补偿删除以避免产生无主 blob。
func (s *artworkService) AddArtwork(ctx context.Context, callerID, galleryID uint, input AddArtworkInput) (*model.Artwork, error) {
	log.Infof("[AddArtwork] 开始添加作品, galleryID: %d, title: %s", galleryID, input.Title)

	if err := validateArtworkInput(&input); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(galleryID)
	defer unlock()

	gallery, err := s.galleryRepo.FindByID(galleryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "画廊", ID: galleryID}
		}
		return nil, err
	}
	if gallery.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	// 文件上传：校验失败或后端失败都在任何元数据变更之前发生
	image := input.ImageURL
	uploadedFileName := ""
	if input.File != nil {
		folderKey := storage.GalleryFolderKey(gallery.Name, gallery.ID)
		result, err := s.backend.Upload(ctx, input.File, input.FileSize, input.FileMimeType, folderKey, gallery.ID, input.FileOriginalName)
		if err != nil {
			return nil, err
		}
		image = result.Path
		uploadedFileName = result.FileName
	}

	artwork := &model.Artwork{
		Title:           input.Title,
		Artist:          input.Artist,
		ArtistID:        callerID,
		Price:           input.Price,
		Image:           image,
		Description:     input.Description,
		Category:        input.Category,
		HasAdultContent: input.HasAdultContent,
		FileName:        uploadedFileName,
		GalleryID:       gallery.ID,
	}

	if err := s.artworkRepo.Add(artwork); err != nil {
		// 插入被拒（通常是配额已满）：若刚上传过文件，补偿删除它
		if uploadedFileName != "" {
			if delErr := s.backend.DeleteFile(ctx, gallery.ID, uploadedFileName); delErr != nil {
				log.Warnf("[AddArtwork] 补偿删除上传文件失败: galleryID=%d, file=%s, error: %v", gallery.ID, uploadedFileName, delErr)
			}
		}
		return nil, err
	}

	// 画廊成人内容标记 = 其所有作品标记的 OR
	if err := s.artworkRepo.RecomputeAdultFlag(gallery.ID); err != nil {
		log.Warnf("[AddArtwork] 重算成人内容标记失败: galleryID=%d, error: %v", gallery.ID, err)
	}

	if s.indexer != nil {
		s.indexer.IndexArtwork(ctx, model.ArtworkDocument{
			ArtworkID: artwork.ID,
			GalleryID: gallery.ID,
			Title:     artwork.Title,
			Artist:    artwork.Artist,
			Category:  artwork.Category,
			Price:     artwork.Price,
			Image:     artwork.Image,
			IsPublic:  gallery.IsPublic,
		})
	}

	log.Infof("[AddArtwork] 作品添加成功, artworkID: %d, galleryID: %d", artwork.ID, gallery.ID)
	return artwork, nil
}

// RemoveArtwork 删除单件作品：先尽力删除后备文件（失败不阻断），再删除元数据行。
func (s *artworkService) RemoveArtwork(ctx context.Context, callerID, artworkID uint) (*RemoveArtworkResult, error) {
	artwork, err := s.artworkRepo.FindByID(artworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "作品", ID: artworkID}
		}
		return nil, err
	}

	unlock := s.locks.Lock(artwork.GalleryID)
	defer unlock()

	// 画廊行缺失时视为孤儿作品，允许清理；其他查询错误必须先行返回，
	// 避免在未确认归属的情况下删除后备文件
	gallery, err := s.galleryRepo.FindByID(artwork.GalleryID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else if gallery.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	result := &RemoveArtworkResult{Success: true, FileFailures: []string{}}

	// 文件删除失败不会阻断元数据清理，只记入失败列表
	if artwork.HasFile() {
		if err := deleteFileWithRetry(ctx, s.backend, artwork.GalleryID, artwork.FileName); err != nil {
			log.Warnf("[RemoveArtwork] 删除作品文件失败: artworkID=%d, file=%s, error: %v", artworkID, artwork.FileName, err)
			result.FileFailures = append(result.FileFailures, artwork.FileName)
		}
	}

	if err := s.artworkRepo.Remove(artworkID); err != nil {
		return nil, err
	}

	if s.indexer != nil {
		s.indexer.RemoveArtwork(ctx, artworkID)
	}

	log.Infof("[RemoveArtwork] 作品删除成功, artworkID: %d, 文件失败数: %d", artworkID, len(result.FileFailures))
	return result, nil
}

// GetArtwork 根据 ID 获取作品。
func (s *artworkService) GetArtwork(id uint) (*model.Artwork, error) {
	artwork, err := s.artworkRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "作品", ID: id}
		}
		return nil, err
	}
	return artwork, nil
}

// LikeArtwork 记录一次访客点赞。同一访客对同一作品的重复点赞不计数。
func (s *artworkService) LikeArtwork(ctx context.Context, artworkID uint, visitorID string) (bool, error) {
	if visitorID == "" {
		return false, apperr.NewValidation("visitorId", "缺少访客标识")
	}
	if _, err := s.artworkRepo.FindByID(artworkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, &apperr.NotFoundError{Entity: "作品", ID: artworkID}
		}
		return false, err
	}

	first, err := s.artworkRepo.MarkLiked(ctx, artworkID, visitorID)
	if err != nil {
		return false, err
	}
	if !first {
		return false, nil
	}
	return true, s.artworkRepo.IncrementLikes(artworkID)
}

// ViewArtwork 记录一次作品浏览（单调递增）。
func (s *artworkService) ViewArtwork(artworkID uint) error {
	err := s.artworkRepo.IncrementViews(artworkID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperr.NotFoundError{Entity: "作品", ID: artworkID}
	}
	return err
}

// validateArtworkInput 校验添加作品的必填字段；拒绝没有任何副作用。
func validateArtworkInput(input *AddArtworkInput) error {
	if input.Title == "" {
		return apperr.NewValidation("title", "标题不能为空")
	}
	if input.Price <= 0 || input.Price > MaxArtworkPrice {
		return apperr.NewValidation("price", "价格必须大于 0 且不超过 10000")
	}
	hasFile := input.File != nil
	hasURL := input.ImageURL != ""
	if hasFile == hasURL {
		return apperr.NewValidation("image", "必须且只能提供文件或图片 URL 其中之一")
	}
	return nil
}
