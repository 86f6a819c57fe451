// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// FileCleanupTask 描述一次级联删除后遗留的待清理文件。
// 由编排服务在级联删除出现文件删除失败时发布，由后台消费者重试删除。
type FileCleanupTask struct {
	GalleryID uint     `json:"gallery_id"`
	FolderKey string   `json:"folder_key"`
	FileNames []string `json:"file_names"`
}
