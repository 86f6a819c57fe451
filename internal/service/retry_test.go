package service

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// flakyBackend 让 DeleteFile 先失败 failures 次再成功。
type flakyBackend struct {
	*fakeBackend
	mu       sync.Mutex
	failures int
	attempts int
}

func (b *flakyBackend) DeleteFile(ctx context.Context, galleryID uint, fileName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts++
	if b.attempts <= b.failures {
		return errors.New("暂时性故障")
	}
	return b.fakeBackend.DeleteFile(ctx, galleryID, fileName)
}

func TestDeleteFileWithRetryEventualSuccess(t *testing.T) {
	backend := &flakyBackend{fakeBackend: newFakeBackend(), failures: 2}
	backend.addFile(1, "f1.png")

	if err := deleteFileWithRetry(context.Background(), backend, 1, "f1.png"); err != nil {
		t.Fatalf("第三次尝试应成功: %v", err)
	}
	if backend.attempts != 3 {
		t.Errorf("attempts = %d, want 3", backend.attempts)
	}
}

func TestDeleteFileWithRetryExhausted(t *testing.T) {
	backend := &flakyBackend{fakeBackend: newFakeBackend(), failures: 99}

	if err := deleteFileWithRetry(context.Background(), backend, 1, "f1.png"); err == nil {
		t.Fatal("重试次数耗尽后应返回错误")
	}
	if backend.attempts != deleteRetryAttempts {
		t.Errorf("attempts = %d, want %d", backend.attempts, deleteRetryAttempts)
	}
}

func TestDeleteFileWithRetryContextCanceled(t *testing.T) {
	backend := &flakyBackend{fakeBackend: newFakeBackend(), failures: 99}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := deleteFileWithRetry(ctx, backend, 1, "f1.png")
	if err == nil {
		t.Fatal("已取消的上下文应返回错误")
	}
	if backend.attempts >= deleteRetryAttempts {
		t.Errorf("取消后不应跑满全部重试, attempts = %d", backend.attempts)
	}
}
