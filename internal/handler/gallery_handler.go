// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"art-gallery-go/internal/service"
	"art-gallery-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// GalleryHandler 负责处理所有与画廊相关的 API 请求。
type GalleryHandler struct {
	galleryService service.GalleryService
}

// NewGalleryHandler 创建一个新的 GalleryHandler 实例。
func NewGalleryHandler(galleryService service.GalleryService) *GalleryHandler {
	return &GalleryHandler{galleryService: galleryService}
}

// CreateGalleryRequest 定义了创建画廊 API 的请求体结构。
type CreateGalleryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"isPublic"`
}

// CreateGallery 处理创建画廊的请求。每个用户最多拥有一个画廊。
func (h *GalleryHandler) CreateGallery(c *gin.Context) {
	var req CreateGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求负载：画廊名不能为空"})
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	gallery, err := h.galleryService.CreateGallery(currentUserID(c), req.Name, req.Description, isPublic)
	if err != nil {
		writeError(c, "CreateGallery", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "画廊创建成功",
		"data":    gallery,
	})
}

// GetGallery 处理获取画廊详情（含作品列表）的请求。
func (h *GalleryHandler) GetGallery(c *gin.Context) {
	galleryID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	gallery, artworks, err := h.galleryService.GetGallery(galleryID)
	if err != nil {
		writeError(c, "GetGallery", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"gallery":  gallery,
			"artworks": artworks,
		},
	})
}

// ListGalleries 处理分页列出公开画廊的请求。
func (h *GalleryHandler) ListGalleries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}

	galleries, total, err := h.galleryService.ListPublicGalleries((page-1)*pageSize, pageSize)
	if err != nil {
		writeError(c, "ListGalleries", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"galleries": galleries,
			"total":     total,
			"page":      page,
		},
	})
}

// UpdateGalleryRequest 定义了编辑画廊 API 的请求体结构。
// 指针字段为 nil 表示不修改。
type UpdateGalleryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
	IsPublic    *bool   `json:"isPublic"`
}

// UpdateGallery 处理编辑画廊的请求。
func (h *GalleryHandler) UpdateGallery(c *gin.Context) {
	galleryID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req UpdateGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求负载"})
		return
	}

	gallery, err := h.galleryService.UpdateGallery(currentUserID(c), galleryID, service.UpdateGalleryInput{
		Name:        req.Name,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(c, "UpdateGallery", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "画廊更新成功",
		"data":    gallery,
	})
}

// DeleteGallery 处理级联删除画廊的请求。
// 文件删除失败不会阻止元数据的删除，失败文件列表随响应返回。
func (h *GalleryHandler) DeleteGallery(c *gin.Context) {
	galleryID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	result, err := h.galleryService.DeleteGallery(c.Request.Context(), currentUserID(c), galleryID)
	if err != nil {
		writeError(c, "DeleteGallery", err)
		return
	}

	if len(result.FileFailures) > 0 {
		log.Warnf("DeleteGallery: 画廊 %d 已删除，但 %d 个文件删除失败", galleryID, len(result.FileFailures))
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "画廊删除成功",
		"data":    result,
	})
}

// parseIDParam 解析路径中的数字 ID 参数，非法时直接写出 400。
func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 " + name + " 参数"})
		return 0, errors.New("无效的路径参数")
	}
	return uint(id), nil
}
