// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"art-gallery-go/internal/apperr"
	"art-gallery-go/internal/service"
	"art-gallery-go/internal/storage"
	"art-gallery-go/pkg/log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StorageHandler 负责处理直接面向存储后端的 API 请求。
type StorageHandler struct {
	backend        storage.Backend
	galleryService service.GalleryService
}

// NewStorageHandler 创建一个新的 StorageHandler 实例。
func NewStorageHandler(backend storage.Backend, galleryService service.GalleryService) *StorageHandler {
	return &StorageHandler{backend: backend, galleryService: galleryService}
}

// UploadFile 处理向画廊目录上传图片文件的请求。
// 文件名由服务端生成，业务方只需提供画廊 ID 与原始文件。
func (h *StorageHandler) UploadFile(c *gin.Context) {
	galleryID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	gallery, _, err := h.galleryService.GetGallery(galleryID)
	if err != nil {
		writeError(c, "UploadFile", err)
		return
	}
	if gallery.OwnerID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrNotOwner.Error()})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未能获取上传的文件"})
		return
	}
	defer file.Close()

	folderKey := storage.GalleryFolderKey(gallery.Name, gallery.ID)
	result, err := h.backend.Upload(c.Request.Context(), file, header.Size, header.Header.Get("Content-Type"), folderKey, galleryID, header.Filename)
	if err != nil {
		writeError(c, "UploadFile", err)
		return
	}

	log.Infof("UploadFile: 文件上传成功, galleryID: %d, file: %s", galleryID, result.FileName)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "文件上传成功",
		"data":    result,
	})
}

// DeleteFile 处理删除画廊目录下单个文件的请求。删除不存在的文件视为成功。
func (h *StorageHandler) DeleteFile(c *gin.Context) {
	galleryID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	fileName := c.Param("fileName")
	if fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 fileName 参数"})
		return
	}

	gallery, _, err := h.galleryService.GetGallery(galleryID)
	if err != nil {
		var notFoundErr *apperr.NotFoundError
		// 画廊行已不存在时仍允许清理残留文件
		if !errors.As(err, &notFoundErr) && !errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, "DeleteFile", err)
			return
		}
	} else if gallery.OwnerID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrNotOwner.Error()})
		return
	}

	if err := h.backend.DeleteFile(c.Request.Context(), galleryID, fileName); err != nil {
		writeError(c, "DeleteFile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "文件删除成功"})
}

// DeleteGalleryFolder 处理清空画廊存储目录的请求（不触碰实体元数据）。
func (h *StorageHandler) DeleteGalleryFolder(c *gin.Context) {
	galleryID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	report, err := h.galleryService.DeleteGalleryFolder(c.Request.Context(), currentUserID(c), galleryID, c.Query("galleryName"))
	if err != nil {
		writeError(c, "DeleteGalleryFolder", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "画廊目录清理完成",
		"data": gin.H{
			"removed":  report.Removed,
			"failures": report.Failures,
		},
	})
}

// GetStorageStats 处理获取存储聚合统计的请求。
func (h *StorageHandler) GetStorageStats(c *gin.Context) {
	stats, err := h.galleryService.StorageStats(c.Request.Context())
	if err != nil {
		writeError(c, "GetStorageStats", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": stats, "message": "success"})
}
