// Package storage 实现了作品文件的存储后端：
// 本地磁盘与 MinIO 两种实现共享同一套命名、校验与路径规则。
package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// SlugifyGalleryName 将人类可读的画廊名转换为确定性的文件夹 slug：
// 小写化，所有 [a-z0-9] 之外的字符替换为 "-"，连续的 "-" 合并，去掉首尾的 "-"。
// 结果只用于生成可读的存储目录名，不作为唯一标识。
func SlugifyGalleryName(name string) string {
	s := strings.ToLower(name)
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// GalleryFolderKey 计算画廊的存储文件夹名。
// 两个不同的画廊名可能 slugify 出相同的 slug（"My Gallery" 和 "My!!Gallery"
// 都得到 "my-gallery"），因此在 slug 后追加全局唯一的画廊 ID 来保证目录唯一。
func GalleryFolderKey(name string, galleryID uint) string {
	slug := SlugifyGalleryName(name)
	if slug == "" {
		return fmt.Sprintf("gallery-%d", galleryID)
	}
	return fmt.Sprintf("%s-%d", slug, galleryID)
}

// GenerateFileName 生成防碰撞的存储文件名：
// {galleryID}-{毫秒时间戳}-{随机后缀}.{扩展名}。
// galleryID 全局唯一，因此即使两个画廊拥有相同 slug，生成的文件名也不会冲突。
func GenerateFileName(originalName string, galleryID uint) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext == "" {
		ext = "bin"
	}
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d-%d-%s.%s", galleryID, time.Now().UnixMilli(), suffix, ext)
}
