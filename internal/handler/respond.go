// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"art-gallery-go/internal/apperr"
	"art-gallery-go/internal/service"
	"art-gallery-go/pkg/log"
	"art-gallery-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// writeError 将业务错误映射为对应的 HTTP 状态码并写出响应。
func writeError(c *gin.Context, op string, err error) {
	var (
		validationErr *apperr.ValidationError
		notFoundErr   *apperr.NotFoundError
		quotaErr      *apperr.QuotaExceededError
		duplicateErr  *apperr.DuplicateOwnerError
		storageErr    *apperr.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &quotaErr):
		c.JSON(http.StatusConflict, gin.H{"error": quotaErr.Error()})
	case errors.As(err, &duplicateErr):
		c.JSON(http.StatusConflict, gin.H{"error": duplicateErr.Error()})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrNotOwner.Error()})
	case errors.As(err, &storageErr):
		log.Errorf("%s: 存储后端错误: %v", op, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "存储后端暂时不可用"})
	default:
		log.Errorf("%s: 服务器内部错误: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
	}
}

// currentUserID 从上下文中取出 AuthMiddleware 注入的用户 ID。
func currentUserID(c *gin.Context) uint {
	claims := c.MustGet("claims").(*token.CustomClaims)
	return claims.UserID
}
