// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strconv"

	"art-gallery-go/internal/service"
	"art-gallery-go/pkg/log"
	"art-gallery-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// ArtworkHandler 负责处理所有与作品相关的 API 请求。
type ArtworkHandler struct {
	artworkService service.ArtworkService
	searchService  service.SearchService
}

// NewArtworkHandler 创建一个新的 ArtworkHandler 实例。
func NewArtworkHandler(artworkService service.ArtworkService, searchService service.SearchService) *ArtworkHandler {
	return &ArtworkHandler{artworkService: artworkService, searchService: searchService}
}

// addArtworkRequest 是 JSON 方式添加作品的请求体。
type addArtworkRequest struct {
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Price           float64 `json:"price"`
	HasAdultContent bool    `json:"hasAdultContent"`
	ImageURL        string  `json:"imageUrl"`
}

// AddArtwork 处理向画廊添加作品的请求。
// 接受 multipart/form-data（可选的 file 字段携带图片）或 JSON 请求体（imageUrl 引用外部图片）；
// 文件与 imageUrl 二者必须恰好提供其一。
func (h *ArtworkHandler) AddArtwork(c *gin.Context) {
	galleryID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if c.ContentType() == "application/json" {
		var req addArtworkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
			return
		}
		h.addArtwork(c, galleryID, service.AddArtworkInput{
			Title:           req.Title,
			Artist:          req.Artist,
			Description:     req.Description,
			Category:        req.Category,
			Price:           req.Price,
			HasAdultContent: req.HasAdultContent,
			ImageURL:        req.ImageURL,
		})
		return
	}

	price, err := strconv.ParseFloat(c.DefaultPostForm("price", "0"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的价格"})
		return
	}
	hasAdultContent, _ := strconv.ParseBool(c.PostForm("hasAdultContent"))

	input := service.AddArtworkInput{
		Title:           c.PostForm("title"),
		Artist:          c.PostForm("artist"),
		Description:     c.PostForm("description"),
		Category:        c.PostForm("category"),
		Price:           price,
		HasAdultContent: hasAdultContent,
		ImageURL:        c.PostForm("imageUrl"),
	}

	// 可选的图片文件
	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		input.File = file
		input.FileSize = header.Size
		input.FileMimeType = header.Header.Get("Content-Type")
		input.FileOriginalName = header.Filename
	}

	h.addArtwork(c, galleryID, input)
}

func (h *ArtworkHandler) addArtwork(c *gin.Context, galleryID uint, input service.AddArtworkInput) {
	artwork, err := h.artworkService.AddArtwork(c.Request.Context(), currentUserID(c), galleryID, input)
	if err != nil {
		writeError(c, "AddArtwork", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "作品添加成功",
		"data":    artwork,
	})
}

// GetArtwork 处理获取作品详情的请求。
func (h *ArtworkHandler) GetArtwork(c *gin.Context) {
	artworkID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	artwork, err := h.artworkService.GetArtwork(artworkID)
	if err != nil {
		writeError(c, "GetArtwork", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": artwork, "message": "success"})
}

// RemoveArtwork 处理删除单件作品的请求。
// 文件删除失败不会阻止作品行的删除，失败文件列表随响应返回。
func (h *ArtworkHandler) RemoveArtwork(c *gin.Context) {
	artworkID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	result, err := h.artworkService.RemoveArtwork(c.Request.Context(), currentUserID(c), artworkID)
	if err != nil {
		writeError(c, "RemoveArtwork", err)
		return
	}

	if len(result.FileFailures) > 0 {
		log.Warnf("RemoveArtwork: 作品 %d 已删除，但文件删除失败: %v", artworkID, result.FileFailures)
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "作品删除成功",
		"data":    result,
	})
}

// LikeArtwork 处理访客点赞的请求。同一访客重复点赞不计数。
func (h *ArtworkHandler) LikeArtwork(c *gin.Context) {
	artworkID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	// 登录用户以用户 ID 为访客标识，匿名访客退化为客户端 IP
	visitorID := c.ClientIP()
	if claimsValue, exists := c.Get("claims"); exists {
		if userClaims, ok := claimsValue.(*token.CustomClaims); ok {
			visitorID = "user:" + strconv.FormatUint(uint64(userClaims.UserID), 10)
		}
	}

	liked, err := h.artworkService.LikeArtwork(c.Request.Context(), artworkID, visitorID)
	if err != nil {
		writeError(c, "LikeArtwork", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"counted": liked},
	})
}

// ViewArtwork 记录一次作品浏览。
func (h *ArtworkHandler) ViewArtwork(c *gin.Context) {
	artworkID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := h.artworkService.ViewArtwork(artworkID); err != nil {
		writeError(c, "ViewArtwork", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success"})
}

// SearchArtworks 处理作品全文检索的请求。
func (h *ArtworkHandler) SearchArtworks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 q 参数"})
		return
	}
	topK, _ := strconv.Atoi(c.DefaultQuery("topK", "20"))

	results, err := h.searchService.Search(c.Request.Context(), query, topK)
	if err != nil {
		log.Errorf("SearchArtworks: 检索失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "检索服务暂时不可用"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"results": results, "total": len(results)},
	})
}
