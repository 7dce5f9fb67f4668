package diag

import (
	"errors"
	"fmt"
	"io"
)

// ============================================================================
// 诊断报告
// ============================================================================

// Report 把错误格式化写入 w
//
// 携带错误码的诊断输出 级别[错误码]: 简述: 详细描述，
// 提示行以 note 级别缩进跟随；其余错误按普通 error 行输出。
func Report(w io.Writer, err error) {
	var e *Error
	if !errors.As(err, &e) {
		fmt.Fprintf(w, "%s: %v\n", LevelError, err)
		return
	}
	fmt.Fprintf(w, "%s[%s]: %s: %s\n", LevelError, e.Code, CodeMessage(e.Code), e.Message)
	for _, note := range e.Notes {
		fmt.Fprintf(w, "  %s: %s\n", LevelNote, note)
	}
}
