package diag

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// 诊断错误
// ============================================================================

// Error 一条带错误码的后端诊断
// 后端的所有致命错误都立即中止编译，没有降级或重试路径。
type Error struct {
	Code    string   // 错误码（E3xxx）
	Message string   // 详细描述
	Notes   []string // 附加提示（如已知标签列表）
}

// Errorf 创建带错误码的诊断
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithNote 追加一条提示
func (e *Error) WithNote(format string, args ...interface{}) *Error {
	e.Notes = append(e.Notes, fmt.Sprintf(format, args...))
	return e
}

// Error 实现 error 接口
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "error[%s]: %s", e.Code, e.Message)
	for _, note := range e.Notes {
		fmt.Fprintf(&sb, "\n  note: %s", note)
	}
	return sb.String()
}

// IsCode 检查错误（或其包装链）是否携带指定错误码
func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
