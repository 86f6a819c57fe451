package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"art-gallery-go/internal/model"
	"art-gallery-go/internal/repository"
	"art-gallery-go/internal/storage"
	"art-gallery-go/pkg/tasks"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeBackend 是 storage.Backend 的内存实现，可对指定文件注入删除失败。
type fakeBackend struct {
	mu         sync.Mutex
	seq        int
	files      map[uint]map[string]bool // galleryID -> fileName -> 存在
	failDelete map[string]bool          // 注入的删除失败
	uploads    int
	deleted    []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		files:      make(map[uint]map[string]bool),
		failDelete: make(map[string]bool),
	}
}

// addFile 直接登记一个已存在的文件（绕过上传）。
func (f *fakeBackend) addFile(galleryID uint, fileName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files[galleryID] == nil {
		f.files[galleryID] = make(map[string]bool)
	}
	f.files[galleryID][fileName] = true
}

func (f *fakeBackend) Upload(_ context.Context, _ io.Reader, _ int64, _, _ string, galleryID uint, _ string) (*storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	f.seq++
	fileName := fmt.Sprintf("upload-%d.png", f.seq)
	if f.files[galleryID] == nil {
		f.files[galleryID] = make(map[string]bool)
	}
	f.files[galleryID][fileName] = true
	return &storage.UploadResult{Path: "/uploads/galleries/test/" + fileName, FileName: fileName}, nil
}

func (f *fakeBackend) DeleteFile(_ context.Context, galleryID uint, fileName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete[fileName] {
		return fmt.Errorf("注入的删除失败: %s", fileName)
	}
	delete(f.files[galleryID], fileName)
	f.deleted = append(f.deleted, fileName)
	return nil
}

func (f *fakeBackend) DeleteGalleryFiles(_ context.Context, galleryID uint, _ string) (*storage.CleanupReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report := &storage.CleanupReport{Failures: []string{}}
	for fileName := range f.files[galleryID] {
		if f.failDelete[fileName] {
			report.Failures = append(report.Failures, fileName)
			continue
		}
		delete(f.files[galleryID], fileName)
		f.deleted = append(f.deleted, fileName)
		report.Removed++
	}
	return report, nil
}

func (f *fakeBackend) Stats(_ context.Context) (*storage.StorageStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &storage.StorageStats{}
	for _, gallery := range f.files {
		if len(gallery) == 0 {
			continue
		}
		stats.GalleryCount++
		for range gallery {
			stats.TotalFiles++
		}
	}
	return stats, nil
}

// fakePublisher 记录发布的清理任务。
type fakePublisher struct {
	mu    sync.Mutex
	tasks []tasks.FileCleanupTask
}

func (p *fakePublisher) PublishCleanupTask(task tasks.FileCleanupTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return nil
}

// fixture 把 sqlite 内存库、仓储和伪造的存储后端组装成可测试的服务栈。
type fixture struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	galleryRepo repository.GalleryRepository
	artworkRepo repository.ArtworkRepository
	backend     *fakeBackend
	publisher   *fakePublisher
	artworks    ArtworkService
	galleries   GalleryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Gallery{}, &model.Artwork{}, &model.StorageFile{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	f := &fixture{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		galleryRepo: repository.NewGalleryRepository(db),
		artworkRepo: repository.NewArtworkRepository(db, nil),
		backend:     newFakeBackend(),
		publisher:   &fakePublisher{},
	}
	locks := NewGalleryLocks()
	f.artworks = NewArtworkService(f.galleryRepo, f.artworkRepo, f.backend, locks, nil)
	f.galleries = NewGalleryService(f.userRepo, f.galleryRepo, f.artworkRepo, f.backend, locks, nil, f.publisher, 4)
	return f
}

func (f *fixture) seedUser(t *testing.T, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Password: "x"}
	if err := f.userRepo.Create(user); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return user
}

func (f *fixture) seedGallery(t *testing.T, owner *model.User, name string) *model.Gallery {
	t.Helper()
	gallery, err := f.galleries.CreateGallery(owner.ID, name, "", true)
	if err != nil {
		t.Fatalf("创建画廊失败: %v", err)
	}
	return gallery
}
