package service

import (
	"context"
	"time"

	"art-gallery-go/internal/storage"
	"art-gallery-go/pkg/log"
)

const (
	deleteRetryAttempts  = 3
	deleteRetryBaseDelay = 250 * time.Millisecond
)

// deleteFileWithRetry 删除单个文件，对瞬时的存储故障做有界的指数退避重试。
// 重试耗尽后返回最后一次错误，由调用方记入失败列表。
func deleteFileWithRetry(ctx context.Context, backend storage.Backend, galleryID uint, fileName string) error {
	var lastErr error
	delay := deleteRetryBaseDelay
	for attempt := 1; attempt <= deleteRetryAttempts; attempt++ {
		lastErr = backend.DeleteFile(ctx, galleryID, fileName)
		if lastErr == nil {
			return nil
		}
		if attempt == deleteRetryAttempts {
			break
		}
		log.Warnf("删除文件失败，准备重试: galleryID=%d, file=%s, attempt=%d, error: %v", galleryID, fileName, attempt, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}
