// Package apperr 定义了业务层的错误分类。
// 处理器通过 errors.As 将这些错误映射为对应的 HTTP 状态码；
// 任何错误类型都不会直接跨越 HTTP 边界，对外只返回序列化的结果对象。
package apperr

import "fmt"

// ValidationError 表示请求在发生任何副作用之前就被策略检查拒绝
// （非法 MIME 类型、超出大小上限、缺少必填字段等）。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("校验失败: %s", e.Reason)
	}
	return fmt.Sprintf("校验失败: %s: %s", e.Field, e.Reason)
}

// NewValidation 创建一个 ValidationError。
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError 表示引用的画廊/作品/用户不存在。
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s 不存在: id=%d", e.Entity, e.ID)
}

// QuotaExceededError 表示向已满（6 件作品）的画廊添加作品被拒绝。
type QuotaExceededError struct {
	GalleryID uint
	Limit     int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("画廊 %d 的作品数量已达上限 %d", e.GalleryID, e.Limit)
}

// DuplicateOwnerError 表示用户尝试创建第二个画廊。
type DuplicateOwnerError struct {
	UserID uint
}

func (e *DuplicateOwnerError) Error() string {
	return fmt.Sprintf("用户 %d 已拥有画廊", e.UserID)
}

// StorageError 表示存储后端的上传/删除操作失败（包括超时）。
// 在级联删除中它会被降级为警告，元数据清理仍会继续。
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("存储操作 %s 失败: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorage 将底层错误包装为 StorageError。
func NewStorage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
