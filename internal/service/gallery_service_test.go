package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"art-gallery-go/internal/apperr"
	"art-gallery-go/internal/model"
	"art-gallery-go/internal/repository"
	"art-gallery-go/internal/storage"
)

func TestCreateGallerySingleOwnership(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "u1")

	gallery, err := f.galleries.CreateGallery(owner.ID, "My Art!!", "个人画廊", true)
	if err != nil {
		t.Fatalf("创建画廊失败: %v", err)
	}

	user, _ := f.userRepo.FindByID(owner.ID)
	if !user.HasGallery || user.GalleryID == nil || *user.GalleryID != gallery.ID {
		t.Errorf("创建后 hasGallery=%v galleryID=%v", user.HasGallery, user.GalleryID)
	}

	// 同一用户的第二个画廊必须被拒绝
	_, err = f.galleries.CreateGallery(owner.ID, "Second", "", true)
	var dupErr *apperr.DuplicateOwnerError
	if !errors.As(err, &dupErr) {
		t.Fatalf("期望 DuplicateOwnerError, got %v", err)
	}
}

func TestCreateGalleryUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.galleries.CreateGallery(99, "Ghost", "", true)
	var notFoundErr *apperr.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("期望 NotFoundError, got %v", err)
	}
}

func TestDeleteGalleryCascade(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "u1")
	gallery := f.seedGallery(t, owner, "My Art!!")

	// 三件文件作品 + 一件 URL 作品
	var fileArtworks []*model.Artwork
	for i := 0; i < 3; i++ {
		a, err := f.artworks.AddArtwork(context.Background(), owner.ID, gallery.ID, AddArtworkInput{
			Title: "文件作品", Price: 10,
			File: strings.NewReader("x"), FileSize: 1, FileMimeType: "image/png", FileOriginalName: "x.png",
		})
		if err != nil {
			t.Fatalf("添加作品失败: %v", err)
		}
		fileArtworks = append(fileArtworks, a)
	}
	if _, err := f.artworks.AddArtwork(context.Background(), owner.ID, gallery.ID, AddArtworkInput{
		Title: "链接作品", Price: 10, ImageURL: "https://img.example/a.png",
	}); err != nil {
		t.Fatalf("添加作品失败: %v", err)
	}

	// 注入第三件作品的文件删除失败
	failing := fileArtworks[2].FileName
	f.backend.failDelete[failing] = true

	result, err := f.galleries.DeleteGallery(context.Background(), owner.ID, gallery.ID)
	if err != nil {
		t.Fatalf("级联删除失败: %v", err)
	}

	// 元数据一致性优先：文件失败不阻止删除
	if !result.Success {
		t.Error("Success 应为 true")
	}
	if len(result.FileFailures) != 1 || result.FileFailures[0] != failing {
		t.Errorf("FileFailures = %v, want [%s]", result.FileFailures, failing)
	}

	// 画廊与作品行都已删除
	if _, _, err := f.galleries.GetGallery(gallery.ID); err == nil {
		t.Error("画廊应已删除")
	}
	artworks, _ := f.artworkRepo.FindByGallery(gallery.ID)
	if len(artworks) != 0 {
		t.Errorf("画廊仍有 %d 件作品", len(artworks))
	}

	// 所有者标记复位，允许重新创建画廊
	user, _ := f.userRepo.FindByID(owner.ID)
	if user.HasGallery || user.GalleryID != nil {
		t.Errorf("删除后 hasGallery=%v galleryID=%v", user.HasGallery, user.GalleryID)
	}
	if _, err := f.galleries.CreateGallery(owner.ID, "重建", "", true); err != nil {
		t.Errorf("删除后应允许重新创建画廊: %v", err)
	}

	// 遗留文件已发布清理任务
	if len(f.publisher.tasks) != 1 {
		t.Fatalf("清理任务数 = %d, want 1", len(f.publisher.tasks))
	}
	task := f.publisher.tasks[0]
	if task.GalleryID != gallery.ID {
		t.Errorf("任务 galleryID = %d, want %d", task.GalleryID, gallery.ID)
	}
	if len(task.FileNames) != 1 || task.FileNames[0] != failing {
		t.Errorf("任务文件列表 = %v, want [%s]", task.FileNames, failing)
	}
	if task.FolderKey != "my-art-"+strconv.FormatUint(uint64(gallery.ID), 10) {
		t.Errorf("任务 folderKey = %q", task.FolderKey)
	}
}

func TestDeleteGalleryAllFilesRemoved(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "u1")
	gallery := f.seedGallery(t, owner, "My Gallery")

	for i := 0; i < 2; i++ {
		if _, err := f.artworks.AddArtwork(context.Background(), owner.ID, gallery.ID, AddArtworkInput{
			Title: "作品", Price: 10,
			File: strings.NewReader("x"), FileSize: 1, FileMimeType: "image/png", FileOriginalName: "x.png",
		}); err != nil {
			t.Fatalf("添加作品失败: %v", err)
		}
	}

	result, err := f.galleries.DeleteGallery(context.Background(), owner.ID, gallery.ID)
	if err != nil {
		t.Fatalf("级联删除失败: %v", err)
	}
	if len(result.FileFailures) != 0 {
		t.Errorf("FileFailures = %v, want 空", result.FileFailures)
	}
	if len(f.backend.files[gallery.ID]) != 0 {
		t.Errorf("仍残留 %d 个文件", len(f.backend.files[gallery.ID]))
	}
	// 全部成功时不应发布清理任务
	if len(f.publisher.tasks) != 0 {
		t.Errorf("不应发布清理任务, got %d", len(f.publisher.tasks))
	}
}

func TestDeleteGalleryNotFound(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "u1")

	_, err := f.galleries.DeleteGallery(context.Background(), owner.ID, 99)
	var notFoundErr *apperr.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("期望 NotFoundError, got %v", err)
	}
}

func TestDeleteGalleryNotOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "u1")
	stranger := f.seedUser(t, "u2")
	gallery := f.seedGallery(t, owner, "My Gallery")

	_, err := f.galleries.DeleteGallery(context.Background(), stranger.ID, gallery.ID)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("期望 ErrNotOwner, got %v", err)
	}

	// 被拒绝的删除不产生任何变更
	if _, _, err := f.galleries.GetGallery(gallery.ID); err != nil {
		t.Errorf("画廊不应被删除: %v", err)
	}
}

// 完整生命周期：建画廊 → 加满 6 件 → 第 7 件被拒 → 级联删除后可重建。
func TestGalleryLifecycle(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "u1")

	gallery, err := f.galleries.CreateGallery(owner.ID, "My Art!!", "desc", true)
	if err != nil {
		t.Fatalf("创建画廊失败: %v", err)
	}
	if gallery.ArtworkCount != 0 {
		t.Errorf("新画廊 artworkCount = %d, want 0", gallery.ArtworkCount)
	}
	wantFolder := "my-art-" + strconv.FormatUint(uint64(gallery.ID), 10)
	if got := storage.GalleryFolderKey(gallery.Name, gallery.ID); got != wantFolder {
		t.Errorf("folderKey = %q, want %q", got, wantFolder)
	}

	for i := 0; i < repository.MaxArtworksPerGallery; i++ {
		if _, err := f.artworks.AddArtwork(context.Background(), owner.ID, gallery.ID, AddArtworkInput{
			Title: "作品", Price: 10, ImageURL: "https://img.example/a.png",
		}); err != nil {
			t.Fatalf("第 %d 件作品添加失败: %v", i+1, err)
		}
	}
	var g model.Gallery
	f.db.First(&g, gallery.ID)
	if g.ArtworkCount != repository.MaxArtworksPerGallery {
		t.Errorf("artworkCount = %d, want %d", g.ArtworkCount, repository.MaxArtworksPerGallery)
	}

	_, err = f.artworks.AddArtwork(context.Background(), owner.ID, gallery.ID, AddArtworkInput{
		Title: "第七件", Price: 10, ImageURL: "https://img.example/a.png",
	})
	var quotaErr *apperr.QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("期望 QuotaExceededError, got %v", err)
	}

	if _, err := f.galleries.DeleteGallery(context.Background(), owner.ID, gallery.ID); err != nil {
		t.Fatalf("级联删除失败: %v", err)
	}
	artworks, _ := f.artworkRepo.FindByGallery(gallery.ID)
	if len(artworks) != 0 {
		t.Errorf("删除后仍有 %d 件作品", len(artworks))
	}
	user, _ := f.userRepo.FindByID(owner.ID)
	if user.HasGallery {
		t.Error("删除后 hasGallery 应为 false")
	}
}

func TestUpdateGallery(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "u1")
	gallery := f.seedGallery(t, owner, "My Gallery")

	newName := "改名后"
	isPublic := false
	updated, err := f.galleries.UpdateGallery(owner.ID, gallery.ID, UpdateGalleryInput{
		Name:     &newName,
		IsPublic: &isPublic,
	})
	if err != nil {
		t.Fatalf("更新画廊失败: %v", err)
	}
	if updated.Name != newName || updated.IsPublic {
		t.Errorf("更新结果不符: name=%q isPublic=%v", updated.Name, updated.IsPublic)
	}
	// 未提供的字段保持不变
	if updated.Description != gallery.Description {
		t.Errorf("描述不应改变")
	}
}

func TestListPublicGalleries(t *testing.T) {
	f := newFixture(t)
	u1 := f.seedUser(t, "u1")
	u2 := f.seedUser(t, "u2")

	f.seedGallery(t, u1, "公开画廊")
	if _, err := f.galleries.CreateGallery(u2.ID, "私密画廊", "", false); err != nil {
		t.Fatalf("创建画廊失败: %v", err)
	}

	galleries, total, err := f.galleries.ListPublicGalleries(0, 20)
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if total != 1 || len(galleries) != 1 {
		t.Fatalf("total=%d len=%d, want 1/1", total, len(galleries))
	}
	if galleries[0].Name != "公开画廊" {
		t.Errorf("列表内容不符: %q", galleries[0].Name)
	}
}

func TestDeleteGalleryFolderNotOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "u1")
	stranger := f.seedUser(t, "u2")
	gallery := f.seedGallery(t, owner, "My Art!!")
	f.backend.addFile(gallery.ID, "a.png")

	if _, err := f.galleries.DeleteGalleryFolder(context.Background(), stranger.ID, gallery.ID, ""); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
	if !f.backend.files[gallery.ID]["a.png"] {
		t.Error("非所有者不应触发任何文件删除")
	}
}

// 画廊归属查询失败时必须中止清理，不能在归属未确认的情况下动存储。
func TestDeleteGalleryFolderGalleryLookupError(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "u1")
	stranger := f.seedUser(t, "u2")
	gallery := f.seedGallery(t, owner, "My Art!!")
	f.backend.addFile(gallery.ID, "a.png")

	if err := f.db.Migrator().DropTable(&model.Gallery{}); err != nil {
		t.Fatalf("删除表失败: %v", err)
	}

	if _, err := f.galleries.DeleteGalleryFolder(context.Background(), stranger.ID, gallery.ID, ""); err == nil {
		t.Fatal("画廊查询失败时应返回错误")
	} else if errors.Is(err, ErrNotOwner) {
		t.Fatalf("应返回底层查询错误而非权限错误: %v", err)
	}

	if len(f.backend.deleted) != 0 {
		t.Errorf("查询失败后不应删除任何文件: %v", f.backend.deleted)
	}
}

// 画廊行已删除但目录仍有残留时，清理应照常进行。
func TestDeleteGalleryFolderOrphan(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, "u1")
	gallery := f.seedGallery(t, owner, "My Art!!")
	f.backend.addFile(gallery.ID, "a.png")
	f.backend.addFile(gallery.ID, "b.png")

	if err := f.db.Unscoped().Delete(&model.Gallery{}, gallery.ID).Error; err != nil {
		t.Fatalf("删除画廊行失败: %v", err)
	}

	report, err := f.galleries.DeleteGalleryFolder(context.Background(), owner.ID, gallery.ID, gallery.Name)
	if err != nil {
		t.Fatalf("残留目录清理应成功: %v", err)
	}
	if report.Removed != 2 {
		t.Errorf("Removed = %d, want 2", report.Removed)
	}
}
