package storage

import (
	"context"
	"io"
	"path"
	"time"

	"art-gallery-go/internal/apperr"
	"art-gallery-go/internal/config"
	"art-gallery-go/internal/repository"
	"art-gallery-go/pkg/log"

	"github.com/minio/minio-go/v7"
)

// UploadResult 描述一次成功上传的结果。
type UploadResult struct {
	Path     string `json:"filePath"`
	FileName string `json:"fileName"`
}

// CleanupReport 描述一次画廊级清理的结果：成功删除的数量与失败的文件名列表。
// 清理是尽力而为的，单个文件失败不会中止整个清理。
type CleanupReport struct {
	Removed  int      `json:"removed"`
	Failures []string `json:"failures"`
}

// StorageStats 聚合所有文件记录的统计信息。
type StorageStats struct {
	TotalFiles   int64 `json:"totalFiles"`
	TotalSize    int64 `json:"totalSize"`
	GalleryCount int64 `json:"galleriesCount"`
}

// Backend 接口定义了持久化 blob 存储的契约。
// 本地模拟实现与 MinIO 实现都必须满足同一契约，由配置选择其一。
type Backend interface {
	// Upload 校验并持久化文件内容，同时记录一条 StorageFile。
	// 校验或写入失败时不产生任何元数据变更。
	Upload(ctx context.Context, data io.Reader, size int64, mimeType, folderKey string, galleryID uint, originalName string) (*UploadResult, error)
	// DeleteFile 删除单个文件及其记录；文件不存在不视为错误（幂等）。
	DeleteFile(ctx context.Context, galleryID uint, fileName string) error
	// DeleteGalleryFiles 枚举画廊的全部文件记录并逐一尝试删除，
	// 返回报告而不是在首个失败处中止。
	DeleteGalleryFiles(ctx context.Context, galleryID uint, folderKey string) (*CleanupReport, error)
	// Stats 返回所有文件记录的聚合统计。
	Stats(ctx context.Context) (*StorageStats, error)
}

// NewBackend 根据配置选择存储后端实现。
func NewBackend(cfg config.StorageConfig, minioCfg config.MinIOConfig, client *minio.Client, files repository.FileRepository) Backend {
	base := backendBase{cfg: cfg, files: files, validator: NewValidator(cfg)}
	if cfg.Backend == "minio" {
		log.Infof("使用 MinIO 存储后端, bucket: %s", minioCfg.BucketName)
		return &minioBackend{backendBase: base, client: client, bucket: minioCfg.BucketName}
	}
	log.Infof("使用本地存储后端, root: %s", cfg.LocalRoot)
	return &localBackend{backendBase: base, root: cfg.LocalRoot}
}

// backendBase 持有两种实现共享的校验、命名与记录维护逻辑。
type backendBase struct {
	cfg       config.StorageConfig
	files     repository.FileRepository
	validator *Validator
}

// objectPath 计算文件的存储路径 {baseUploadPath}/{folderKey}/{fileName}。
func (b *backendBase) objectPath(folderKey, fileName string) string {
	return path.Join(b.cfg.BaseUploadPath, folderKey, fileName)
}

// opCtx 为单次后端调用套上配置的超时；超时会作为 StorageError 对外暴露。
func (b *backendBase) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(b.cfg.OperationTimeout)*time.Second)
}

// stats 返回聚合统计，两种实现共用。
func (b *backendBase) stats() (*StorageStats, error) {
	totalFiles, totalSize, galleryCount, err := b.files.Stats()
	if err != nil {
		return nil, apperr.NewStorage("stats", err)
	}
	return &StorageStats{
		TotalFiles:   totalFiles,
		TotalSize:    totalSize,
		GalleryCount: galleryCount,
	}, nil
}

// sweep 枚举画廊的文件记录并用给定的删除函数逐一清理。
// deleteBlob 负责删除底层 blob；记录在 blob 删除成功后移除。
func (b *backendBase) sweep(galleryID uint, deleteBlob func(folderKey, fileName string) error) (*CleanupReport, error) {
	records, err := b.files.FindByGallery(galleryID)
	if err != nil {
		return nil, apperr.NewStorage("deleteGalleryFiles", err)
	}

	report := &CleanupReport{Failures: []string{}}
	for _, rec := range records {
		if err := deleteBlob(rec.FolderKey, rec.FileName); err != nil {
			log.Warnf("清理画廊文件失败: galleryID=%d, file=%s, error: %v", galleryID, rec.FileName, err)
			report.Failures = append(report.Failures, rec.FileName)
			continue
		}
		if err := b.files.Delete(galleryID, rec.FileName); err != nil {
			log.Warnf("删除文件记录失败: galleryID=%d, file=%s, error: %v", galleryID, rec.FileName, err)
			report.Failures = append(report.Failures, rec.FileName)
			continue
		}
		report.Removed++
	}
	return report, nil
}
