package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"art-gallery-go/internal/apperr"
	"art-gallery-go/internal/model"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
)

// minioBackend 是 Backend 的 MinIO 实现，作品文件作为对象存入配置的桶中。
// 对象键与本地实现的路径规则一致：{baseUploadPath}/{folderKey}/{fileName}。
type minioBackend struct {
	backendBase
	client *minio.Client
	bucket string
}

// objectKey MinIO 对象键不带前导斜杠。
func (b *minioBackend) objectKey(folderKey, fileName string) string {
	return strings.TrimPrefix(b.objectPath(folderKey, fileName), "/")
}

// Upload 校验并将文件上传到 MinIO，同时记录 StorageFile。
func (b *minioBackend) Upload(ctx context.Context, data io.Reader, size int64, mimeType, folderKey string, galleryID uint, originalName string) (*UploadResult, error) {
	if err := b.validator.Validate(mimeType, size); err != nil {
		return nil, err
	}

	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	fileName := GenerateFileName(originalName, galleryID)
	key := b.objectKey(folderKey, fileName)

	_, err := b.client.PutObject(ctx, b.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return nil, apperr.NewStorage("upload", err)
	}

	record := &model.StorageFile{
		GalleryID:    galleryID,
		FolderKey:    folderKey,
		FileName:     fileName,
		OriginalName: originalName,
		Size:         size,
		MimeType:     mimeType,
	}
	if err := b.files.Create(record); err != nil {
		// 记录写入失败时回删对象，避免产生无主 blob
		_ = b.client.RemoveObject(context.Background(), b.bucket, key, minio.RemoveObjectOptions{})
		return nil, apperr.NewStorage("upload", err)
	}

	return &UploadResult{Path: b.objectPath(folderKey, fileName), FileName: fileName}, nil
}

// DeleteFile 删除单个对象及其记录；对象或记录不存在均视为成功。
func (b *minioBackend) DeleteFile(ctx context.Context, galleryID uint, fileName string) error {
	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	record, err := b.files.Find(galleryID, fileName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperr.NewStorage("deleteFile", err)
	}

	// MinIO 的 RemoveObject 对不存在的对象同样返回成功
	key := b.objectKey(record.FolderKey, fileName)
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return apperr.NewStorage("deleteFile", err)
	}
	if err := b.files.Delete(galleryID, fileName); err != nil {
		return apperr.NewStorage("deleteFile", err)
	}
	return nil
}

// DeleteGalleryFiles 清理画廊的全部对象，返回逐文件的结果报告。
func (b *minioBackend) DeleteGalleryFiles(ctx context.Context, galleryID uint, folderKey string) (*CleanupReport, error) {
	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	return b.sweep(galleryID, func(folderKey, fileName string) error {
		key := b.objectKey(folderKey, fileName)
		return b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{})
	})
}

// Stats 返回所有文件记录的聚合统计。
func (b *minioBackend) Stats(_ context.Context) (*StorageStats, error) {
	return b.stats()
}
