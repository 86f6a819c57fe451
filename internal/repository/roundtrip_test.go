package repository

import (
	"encoding/json"
	"reflect"
	"sort"
	"testing"

	"art-gallery-go/internal/model"

	"gorm.io/gorm"
)

// 四个集合经 JSON 导出再导入后，实体集合必须逐项相等（与顺序无关）。
func TestCollectionsRoundTrip(t *testing.T) {
	src := newTestDB(t)

	galleryID := uint(1)
	seed := []interface{}{
		&model.User{Username: "u1", Password: "x", HasGallery: true, GalleryID: &galleryID},
		&model.User{Username: "u2", Password: "y"},
		&model.Gallery{Name: "画廊一", OwnerID: 1, ArtworkCount: 2, IsPublic: true},
		&model.Artwork{Title: "作品一", GalleryID: 1, Price: 10},
		&model.Artwork{Title: "作品二", GalleryID: 1, Price: 20, FileName: "f1.png"},
		&model.StorageFile{GalleryID: 1, FolderKey: "a-1", FileName: "f1.png", Size: 9},
	}
	for _, row := range seed {
		if err := src.Create(row).Error; err != nil {
			t.Fatalf("写入种子数据失败: %v", err)
		}
	}

	dst := newTestDB(t)

	roundTrip(t, src, dst, &[]model.User{})
	roundTrip(t, src, dst, &[]model.Gallery{})
	roundTrip(t, src, dst, &[]model.Artwork{})
	roundTrip(t, src, dst, &[]model.StorageFile{})

	assertSameJSON(t, src, dst, &[]model.User{}, sortByID)
	assertSameJSON(t, src, dst, &[]model.Gallery{}, sortByID)
	assertSameJSON(t, src, dst, &[]model.Artwork{}, sortByID)
	assertSameJSON(t, src, dst, &[]model.StorageFile{}, sortByID)
}

// roundTrip 把一个集合从 src 导出为 JSON，再导入 dst。
func roundTrip(t *testing.T, src, dst *gorm.DB, collection interface{}) {
	t.Helper()
	if err := src.Find(collection).Error; err != nil {
		t.Fatalf("导出集合失败: %v", err)
	}
	exported, err := json.Marshal(collection)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	imported := reflect.New(reflect.TypeOf(collection).Elem()).Interface()
	if err := json.Unmarshal(exported, imported); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	rows := reflect.ValueOf(imported).Elem()
	for i := 0; i < rows.Len(); i++ {
		row := rows.Index(i).Addr().Interface()
		if err := dst.Create(row).Error; err != nil {
			t.Fatalf("导入集合失败: %v", err)
		}
	}
}

// assertSameJSON 用 JSON 形态比较两个库中的同一集合（与顺序无关）。
func assertSameJSON(t *testing.T, src, dst *gorm.DB, collection interface{}, normalize func([]map[string]interface{})) {
	t.Helper()
	want := dumpJSON(t, src, collection)
	got := dumpJSON(t, dst, collection)
	normalize(want)
	normalize(got)
	if !reflect.DeepEqual(want, got) {
		t.Errorf("往返后集合不相等:\nwant %v\ngot  %v", want, got)
	}
}

func dumpJSON(t *testing.T, db *gorm.DB, collection interface{}) []map[string]interface{} {
	t.Helper()
	fresh := reflect.New(reflect.TypeOf(collection).Elem()).Interface()
	if err := db.Find(fresh).Error; err != nil {
		t.Fatalf("读取集合失败: %v", err)
	}
	raw, err := json.Marshal(fresh)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	return out
}

func sortByID(rows []map[string]interface{}) {
	sort.Slice(rows, func(i, j int) bool {
		a, _ := rows[i]["id"].(float64)
		b, _ := rows[j]["id"].(float64)
		return a < b
	})
}
