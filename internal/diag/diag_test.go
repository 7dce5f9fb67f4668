// diag_test.go - 诊断系统测试

package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrorFormat 错误码、描述与提示的组合格式
func TestErrorFormat(t *testing.T) {
	err := Errorf(E3001, "undefined local label %q", "loop").
		WithNote("known labels: [%s]", "done start")

	msg := err.Error()
	assert.Contains(t, msg, "error[E3001]")
	assert.Contains(t, msg, `"loop"`)
	assert.Contains(t, msg, "note: known labels")
}

// TestIsCode 包装链上的错误码识别
func TestIsCode(t *testing.T) {
	err := Errorf(E3202, "base not set")
	assert.True(t, IsCode(err, E3202))
	assert.False(t, IsCode(err, E3201))

	wrapped := fmt.Errorf("apply relocations: %w", err)
	assert.True(t, IsCode(wrapped, E3202))

	assert.False(t, IsCode(errors.New("plain"), E3202))
}

// TestLevelString 诊断级别名称
func TestLevelString(t *testing.T) {
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "note", LevelNote.String())
	assert.Equal(t, "unknown", Level(99).String())
}

// TestCodeMessage 错误码简述
func TestCodeMessage(t *testing.T) {
	assert.Equal(t, "undefined global label", CodeMessage(E3002))
	assert.Equal(t, "relocation out of bounds", CodeMessage(E3201))
	assert.Equal(t, "unknown error", CodeMessage("E9999"))
}

// TestReport 诊断报告格式：级别[码]: 简述: 描述 + 缩进提示行
func TestReport(t *testing.T) {
	var sb strings.Builder
	err := Errorf(E3002, "undefined global label %q in scope %q", "helpr", "<global>").
		WithNote("known labels: [helper main]")
	Report(&sb, err)

	out := sb.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `error[E3002]: undefined global label: undefined global label "helpr" in scope "<global>"`, lines[0])
	assert.Equal(t, "  note: known labels: [helper main]", lines[1])
}

// TestReportWrapped 包装后的诊断仍按错误码格式报告
func TestReportWrapped(t *testing.T) {
	var sb strings.Builder
	wrapped := fmt.Errorf("resolve global labels: %w", Errorf(E3003, "offset too far"))
	Report(&sb, wrapped)
	assert.Contains(t, sb.String(), "error[E3003]: jump offset overflow: offset too far")
}

// TestReportPlain 普通错误降级为单行 error
func TestReportPlain(t *testing.T) {
	var sb strings.Builder
	Report(&sb, errors.New("boom"))
	assert.Equal(t, "error: boom\n", sb.String())
}
