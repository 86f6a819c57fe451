package storage

import (
	"fmt"

	"art-gallery-go/internal/apperr"
	"art-gallery-go/internal/config"
)

// Validator 在文件进入存储之前执行策略检查（MIME 类型与大小上限）。
// 校验失败没有任何副作用。
type Validator struct {
	maxSize int64
	allowed map[string]struct{}
}

// NewValidator 根据存储策略配置创建一个 Validator。
func NewValidator(cfg config.StorageConfig) *Validator {
	allowed := make(map[string]struct{}, len(cfg.AllowedMimeTypes))
	for _, m := range cfg.AllowedMimeTypes {
		allowed[m] = struct{}{}
	}
	return &Validator{maxSize: cfg.MaxFileSize, allowed: allowed}
}

// Validate 检查 MIME 类型与文件大小；不满足策略时返回 ValidationError。
func (v *Validator) Validate(mimeType string, size int64) error {
	if _, ok := v.allowed[mimeType]; !ok {
		return apperr.NewValidation("mimeType", fmt.Sprintf("不支持的文件类型 %q", mimeType))
	}
	if size > v.maxSize {
		return apperr.NewValidation("size", fmt.Sprintf("文件大小 %d 超过上限 %d", size, v.maxSize))
	}
	if size <= 0 {
		return apperr.NewValidation("size", "文件内容为空")
	}
	return nil
}
