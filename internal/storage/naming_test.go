package storage

import (
	"regexp"
	"strings"
	"testing"
)

func TestSlugifyGalleryName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"简单小写", "gallery", "gallery"},
		{"大写转小写", "MyGallery", "mygallery"},
		{"空格替换为连字符", "My Art Gallery", "my-art-gallery"},
		{"特殊字符替换", "My Art!!", "my-art"},
		{"连续特殊字符合并", "a!!!b###c", "a-b-c"},
		{"首尾连字符去除", "  hello  ", "hello"},
		{"中文等非 ASCII 字符替换", "我的画廊", ""},
		{"数字保留", "gallery 2024", "gallery-2024"},
		{"空字符串", "", ""},
		{"纯特殊字符", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SlugifyGalleryName(tt.in)
			if got != tt.want {
				t.Errorf("SlugifyGalleryName(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// slug 必须是确定性且幂等的
			if again := SlugifyGalleryName(tt.in); again != got {
				t.Errorf("SlugifyGalleryName(%q) 不是确定性的: %q != %q", tt.in, again, got)
			}
			if reslug := SlugifyGalleryName(got); reslug != got {
				t.Errorf("SlugifyGalleryName 不是幂等的: slugify(%q) = %q", got, reslug)
			}
		})
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugifyGalleryNameShape(t *testing.T) {
	inputs := []string{"My Art!!", "Gallery #42", "  A  B  C  ", "UPPER lower 123", "--x--"}
	for _, in := range inputs {
		got := SlugifyGalleryName(in)
		if got == "" {
			continue
		}
		if !slugPattern.MatchString(got) {
			t.Errorf("SlugifyGalleryName(%q) = %q, 不符合 slug 形态", in, got)
		}
	}
}

func TestGalleryFolderKey(t *testing.T) {
	tests := []struct {
		name      string
		gallery   string
		galleryID uint
		want      string
	}{
		{"普通画廊名", "My Art!!", 7, "my-art-7"},
		{"slug 为空时退化", "我的画廊", 3, "gallery-3"},
		{"空画廊名退化", "", 12, "gallery-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GalleryFolderKey(tt.gallery, tt.galleryID)
			if got != tt.want {
				t.Errorf("GalleryFolderKey(%q, %d) = %q, want %q", tt.gallery, tt.galleryID, got, tt.want)
			}
		})
	}
}

// 两个画廊名 slug 相同，但文件夹名必须因画廊 ID 而不同。
func TestGalleryFolderKeyCollision(t *testing.T) {
	k1 := GalleryFolderKey("My Gallery", 1)
	k2 := GalleryFolderKey("My!!Gallery", 2)
	if SlugifyGalleryName("My Gallery") != SlugifyGalleryName("My!!Gallery") {
		t.Fatal("前置条件不成立：两个画廊名应 slugify 出相同的 slug")
	}
	if k1 == k2 {
		t.Errorf("不同画廊的文件夹名冲突: %q", k1)
	}
}

var fileNamePattern = regexp.MustCompile(`^\d+-\d+-[0-9a-f]+\.[a-z0-9]+$`)

func TestGenerateFileName(t *testing.T) {
	tests := []struct {
		name     string
		original string
		wantExt  string
	}{
		{"常规扩展名", "photo.png", ".png"},
		{"大写扩展名转小写", "PHOTO.JPG", ".jpg"},
		{"无扩展名时用 bin", "noext", ".bin"},
		{"多个点取最后一段", "a.b.jpeg", ".jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateFileName(tt.original, 42)
			if !strings.HasSuffix(got, tt.wantExt) {
				t.Errorf("GenerateFileName(%q) = %q, 期望扩展名 %q", tt.original, got, tt.wantExt)
			}
			if !fileNamePattern.MatchString(got) {
				t.Errorf("GenerateFileName(%q) = %q, 不符合命名格式", tt.original, got)
			}
			if !strings.HasPrefix(got, "42-") {
				t.Errorf("GenerateFileName(%q) = %q, 期望以画廊 ID 开头", tt.original, got)
			}
		})
	}
}

func TestGenerateFileNameUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		name := GenerateFileName("photo.png", 1)
		if _, dup := seen[name]; dup {
			t.Fatalf("生成的文件名重复: %s", name)
		}
		seen[name] = struct{}{}
	}
}
