package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"art-gallery-go/internal/apperr"
	"art-gallery-go/internal/model"

	"gorm.io/gorm"
)

// localBackend 是 Backend 的本地磁盘实现，用于开发环境与本地模拟。
// blob 落在 {root}{baseUploadPath}/{folderKey}/{fileName}。
type localBackend struct {
	backendBase
	root string
}

// diskPath 将对象路径映射到本地磁盘上的绝对路径。
func (b *localBackend) diskPath(folderKey, fileName string) string {
	return filepath.Join(b.root, filepath.FromSlash(b.objectPath(folderKey, fileName)))
}

// Upload 校验并将文件写入本地磁盘，同时记录 StorageFile。
func (b *localBackend) Upload(ctx context.Context, data io.Reader, size int64, mimeType, folderKey string, galleryID uint, originalName string) (*UploadResult, error) {
	if err := b.validator.Validate(mimeType, size); err != nil {
		return nil, err
	}

	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	fileName := GenerateFileName(originalName, galleryID)
	dst := b.diskPath(folderKey, fileName)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, apperr.NewStorage("upload", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return nil, apperr.NewStorage("upload", err)
	}
	written, err := io.Copy(f, data)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = os.Remove(dst) // 写入失败不留半截文件
		return nil, apperr.NewStorage("upload", err)
	}

	record := &model.StorageFile{
		GalleryID:    galleryID,
		FolderKey:    folderKey,
		FileName:     fileName,
		OriginalName: originalName,
		Size:         written,
		MimeType:     mimeType,
	}
	if err := b.files.Create(record); err != nil {
		_ = os.Remove(dst)
		return nil, apperr.NewStorage("upload", err)
	}

	return &UploadResult{Path: b.objectPath(folderKey, fileName), FileName: fileName}, nil
}

// DeleteFile 删除单个文件及其记录；文件或记录不存在均视为成功。
func (b *localBackend) DeleteFile(ctx context.Context, galleryID uint, fileName string) error {
	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	record, err := b.files.Find(galleryID, fileName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperr.NewStorage("deleteFile", err)
	}

	if err := ctx.Err(); err != nil {
		return apperr.NewStorage("deleteFile", err)
	}
	if err := b.removeBlob(record.FolderKey, fileName); err != nil {
		return apperr.NewStorage("deleteFile", err)
	}
	if err := b.files.Delete(galleryID, fileName); err != nil {
		return apperr.NewStorage("deleteFile", err)
	}
	return nil
}

// DeleteGalleryFiles 清理画廊的全部文件，返回逐文件的结果报告。
func (b *localBackend) DeleteGalleryFiles(ctx context.Context, galleryID uint, folderKey string) (*CleanupReport, error) {
	ctx, cancel := b.opCtx(ctx)
	defer cancel()

	report, err := b.sweep(galleryID, func(folderKey, fileName string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return b.removeBlob(folderKey, fileName)
	})
	if err != nil {
		return nil, err
	}

	// 清理后尝试移除空目录；失败无关紧要
	_ = os.Remove(filepath.Join(b.root, filepath.FromSlash(b.cfg.BaseUploadPath), folderKey))
	return report, nil
}

// Stats 返回所有文件记录的聚合统计。
func (b *localBackend) Stats(_ context.Context) (*StorageStats, error) {
	return b.stats()
}

// removeBlob 删除磁盘上的 blob；文件不存在视为成功。
func (b *localBackend) removeBlob(folderKey, fileName string) error {
	err := os.Remove(b.diskPath(folderKey, fileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
