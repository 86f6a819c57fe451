// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"sync"

	"art-gallery-go/internal/apperr"
	"art-gallery-go/internal/model"
	"art-gallery-go/internal/repository"
	"art-gallery-go/internal/storage"
	"art-gallery-go/pkg/log"
	"art-gallery-go/pkg/tasks"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// CleanupPublisher 定义了遗留文件清理任务的发布能力。
// 通过接口解耦业务层与具体的消息队列实现。
type CleanupPublisher interface {
	PublishCleanupTask(task tasks.FileCleanupTask) error
}

// DeleteGalleryResult 是级联删除的结果。
// Success 指元数据的一致性：只要画廊及其作品行都已删除、所有者标记已复位，
// 它就为 true；FileFailures 列出未能删除的文件，仅供清理工具重试。
type DeleteGalleryResult struct {
	Success      bool     `json:"success"`
	FileFailures []string `json:"fileFailures"`
}

// UpdateGalleryInput 是编辑画廊的输入；nil 字段表示不修改。
type UpdateGalleryInput struct {
	Name        *string
	Description *string
	Thumbnail   *string
	IsPublic    *bool
}

// GalleryService 接口定义了画廊相关的业务操作，
// 其中 DeleteGallery 是跨实体与存储的级联删除编排。
type GalleryService interface {
	CreateGallery(ownerID uint, name, description string, isPublic bool) (*model.Gallery, error)
	GetGallery(id uint) (*model.Gallery, []model.Artwork, error)
	ListPublicGalleries(offset, limit int) ([]model.Gallery, int64, error)
	UpdateGallery(callerID, galleryID uint, input UpdateGalleryInput) (*model.Gallery, error)
	DeleteGallery(ctx context.Context, callerID, galleryID uint) (*DeleteGalleryResult, error)
	DeleteGalleryFolder(ctx context.Context, callerID, galleryID uint, galleryName string) (*storage.CleanupReport, error)
	StorageStats(ctx context.Context) (*storage.StorageStats, error)
}

type galleryService struct {
	userRepo      repository.UserRepository
	galleryRepo   repository.GalleryRepository
	artworkRepo   repository.ArtworkRepository
	backend       storage.Backend
	locks         *GalleryLocks
	indexer       SearchIndexer    // 可为 nil
	cleanup       CleanupPublisher // 可为 nil
	deleteWorkers int
}

// NewGalleryService 创建一个新的 GalleryService 实例。
func NewGalleryService(userRepo repository.UserRepository, galleryRepo repository.GalleryRepository, artworkRepo repository.ArtworkRepository, backend storage.Backend, locks *GalleryLocks, indexer SearchIndexer, cleanup CleanupPublisher, deleteWorkers int) GalleryService {
	if deleteWorkers <= 0 {
		deleteWorkers = 4
	}
	return &galleryService{
		userRepo:      userRepo,
		galleryRepo:   galleryRepo,
		artworkRepo:   artworkRepo,
		backend:       backend,
		locks:         locks,
		indexer:       indexer,
		cleanup:       cleanup,
		deleteWorkers: deleteWorkers,
	}
}

// CreateGallery 为用户创建画廊。一个用户最多拥有一个画廊，
// 已拥有画廊的用户会收到 DuplicateOwnerError。
func (s *galleryService) CreateGallery(ownerID uint, name, description string, isPublic bool) (*model.Gallery, error) {
	log.Infof("[CreateGallery] 开始创建画廊, ownerID: %d, name: %s", ownerID, name)

	if name == "" {
		return nil, apperr.NewValidation("name", "画廊名不能为空")
	}

	owner, err := s.userRepo.FindByID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "用户", ID: ownerID}
		}
		return nil, err
	}
	if owner.HasGallery {
		return nil, &apperr.DuplicateOwnerError{UserID: ownerID}
	}

	gallery := &model.Gallery{
		Name:        name,
		OwnerID:     ownerID,
		Description: description,
		IsPublic:    isPublic,
	}
	if err := s.galleryRepo.Create(gallery); err != nil {
		return nil, err
	}

	if err := s.userRepo.SetGallery(ownerID, &gallery.ID); err != nil {
		return nil, err
	}

	log.Infof("[CreateGallery] 画廊创建成功, galleryID: %d, folderKey: %s", gallery.ID, storage.GalleryFolderKey(gallery.Name, gallery.ID))
	return gallery, nil
}

// GetGallery 获取画廊及其全部作品。
func (s *galleryService) GetGallery(id uint) (*model.Gallery, []model.Artwork, error) {
	gallery, err := s.galleryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &apperr.NotFoundError{Entity: "画廊", ID: id}
		}
		return nil, nil, err
	}
	artworks, err := s.artworkRepo.FindByGallery(id)
	if err != nil {
		return nil, nil, err
	}
	return gallery, artworks, nil
}

// ListPublicGalleries 分页列出公开画廊。
func (s *galleryService) ListPublicGalleries(offset, limit int) ([]model.Gallery, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.galleryRepo.FindPublicWithPagination(offset, limit)
}

// UpdateGallery 编辑画廊的可变字段。
func (s *galleryService) UpdateGallery(callerID, galleryID uint, input UpdateGalleryInput) (*model.Gallery, error) {
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

	if input.Name != nil && *input.Name != "" {
		gallery.Name = *input.Name
	}
	if input.Description != nil {
		gallery.Description = *input.Description
	}
	if input.Thumbnail != nil {
		gallery.Thumbnail = *input.Thumbnail
	}
	if input.IsPublic != nil {
		gallery.IsPublic = *input.IsPublic
	}

	if err := s.galleryRepo.Update(gallery); err != nil {
		return nil, err
	}
	return gallery, nil
}

// DeleteGallery 执行级联删除，固定顺序：
//  1. 取画廊（不存在则 NotFound）
//  2. 取全部作品
//  3. 并发删除各作品的后备文件；失败只收集，绝不中止
//  4. 扫除画廊目录下残留的、不归属任何已知作品的文件
//  5. 删除全部作品行
//  6. 删除画廊行
//  7. 复位所有者的画廊标记
//
// 元数据一致性优先于存储零泄漏：残留的 blob 上报后交清理工具处理。
// 每一步都幂等，进程在级联中途崩溃后重试是安全的。
func (s *galleryService) DeleteGallery(ctx context.Context, callerID, galleryID uint) (*DeleteGalleryResult, error) {
	log.Infof("[DeleteGallery] 开始级联删除画廊, galleryID: %d", galleryID)

	unlock := s.locks.Lock(galleryID)
	defer unlock()

	// 1. 取画廊
	gallery, err := s.galleryRepo.FindByID(galleryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "画廊", ID: galleryID}
		}
		return nil, err
	}
	if callerID != 0 && gallery.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	// 2. 取全部作品
	artworks, err := s.artworkRepo.FindByGallery(galleryID)
	if err != nil {
		return nil, err
	}

	folderKey := storage.GalleryFolderKey(gallery.Name, gallery.ID)
	result := &DeleteGalleryResult{Success: true, FileFailures: []string{}}

	// 3. 并发删除作品文件，失败只收集。
	// 聚合的失败列表必须在元数据删除之前产出。
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deleteWorkers)
	for _, a := range artworks {
		if !a.HasFile() {
			continue
		}
		fileName := a.FileName
		g.Go(func() error {
			if err := deleteFileWithRetry(gctx, s.backend, galleryID, fileName); err != nil {
				log.Warnf("[DeleteGallery] 删除作品文件失败: galleryID=%d, file=%s, error: %v", galleryID, fileName, err)
				mu.Lock()
				result.FileFailures = append(result.FileFailures, fileName)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	// 4. 扫除残留文件
	report, err := s.backend.DeleteGalleryFiles(ctx, galleryID, folderKey)
	if err != nil {
		log.Warnf("[DeleteGallery] 画廊目录扫除失败: galleryID=%d, error: %v", galleryID, err)
	} else {
		result.FileFailures = mergeFailures(result.FileFailures, report.Failures)
	}

	// 5. 删除作品行
	if err := s.artworkRepo.DeleteByGallery(galleryID); err != nil {
		return nil, err
	}
	if s.indexer != nil {
		for _, a := range artworks {
			s.indexer.RemoveArtwork(ctx, a.ID)
		}
	}

	// 6. 删除画廊行
	if err := s.galleryRepo.Delete(galleryID); err != nil {
		return nil, err
	}

	// 7. 复位所有者标记
	if err := s.userRepo.SetGallery(gallery.OwnerID, nil); err != nil {
		return nil, err
	}

	// 遗留文件交给后台清理工具重试
	if len(result.FileFailures) > 0 && s.cleanup != nil {
		task := tasks.FileCleanupTask{
			GalleryID: galleryID,
			FolderKey: folderKey,
			FileNames: result.FileFailures,
		}
		if err := s.cleanup.PublishCleanupTask(task); err != nil {
			log.Warnf("[DeleteGallery] 发布文件清理任务失败: galleryID=%d, error: %v", galleryID, err)
		}
	}

	log.Infof("[DeleteGallery] 级联删除完成, galleryID: %d, 文件失败数: %d", galleryID, len(result.FileFailures))
	return result, nil
}

// DeleteGalleryFolder 清理画廊存储目录（不触碰实体元数据）。
// 对应运维场景：画廊行已删除但存储目录仍有残留。
func (s *galleryService) DeleteGalleryFolder(ctx context.Context, callerID, galleryID uint, galleryName string) (*storage.CleanupReport, error) {
	// 画廊行尚在时校验归属；行缺失属于正常的残留清理场景，
	// 其他查询错误直接返回，不做任何存储操作
	gallery, err := s.galleryRepo.FindByID(galleryID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		if gallery.OwnerID != callerID {
			return nil, ErrNotOwner
		}
		galleryName = gallery.Name
	}
	folderKey := storage.GalleryFolderKey(galleryName, galleryID)
	return s.backend.DeleteGalleryFiles(ctx, galleryID, folderKey)
}

// StorageStats 返回存储后端的聚合统计。
func (s *galleryService) StorageStats(ctx context.Context) (*storage.StorageStats, error) {
	return s.backend.Stats(ctx)
}

// mergeFailures 合并两个失败列表并去重。
func mergeFailures(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	out := a
	for _, name := range a {
		seen[name] = struct{}{}
	}
	for _, name := range b {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
