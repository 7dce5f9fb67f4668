// labels_test.go - 两级标签解析器测试

package emit

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlang/lumen/internal/diag"
)

// fillJump 追加一条带占位符的无条件跳转（E9 + 4 字节占位）
func fillJump(buf *CodeBuffer) int {
	return buf.Append(0xE9, 0, 0, 0, 0)
}

// TestLocalJumpRoundTrip 标签在位置 10，位置 0 的 5 字节跳转
// 解析后位移字段应为 10 - (0+5) = 5。
func TestLocalJumpRoundTrip(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()

	r.EnterScope("f")
	pos := fillJump(buf) // 位置 0
	require.Equal(t, 0, pos)
	r.AddJump(pos, "L1", 5, ScopeLocal)

	buf.Append(0x90, 0x90, 0x90, 0x90, 0x90) // 填充到位置 10
	require.NoError(t, r.MarkLabel("L1", 10, ScopeLocal))

	require.NoError(t, r.ExitScope(buf))

	field := int32(binary.LittleEndian.Uint32(buf.Bytes()[1:5]))
	assert.Equal(t, int32(5), field)
}

// TestConditionalJumpPatch 6 字节条件跳转的位移字段在操作码 2 字节之后
func TestConditionalJumpPatch(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()

	r.EnterScope("f")
	require.NoError(t, r.MarkLabel("top", 0, ScopeLocal))
	buf.Append(0x90, 0x90)
	pos := buf.Append(0x0F, 0x84, 0, 0, 0, 0) // je top，位置 2
	r.AddJump(pos, "top", 6, ScopeLocal)
	require.NoError(t, r.ExitScope(buf))

	// 0 - (2+6) = -8
	field := int32(binary.LittleEndian.Uint32(buf.Bytes()[pos+2:]))
	assert.Equal(t, int32(-8), field)
}

// TestUndefinedLocalLabel 作用域退出时引用未标记的标签是致命错误
func TestUndefinedLocalLabel(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()

	r.EnterScope("broken")
	r.AddJump(fillJump(buf), "missing", 5, ScopeLocal)

	err := r.ExitScope(buf)
	require.Error(t, err)
	assert.True(t, diag.IsCode(err, diag.E3001))
	assert.Contains(t, err.Error(), "missing")
	assert.Contains(t, err.Error(), "broken")
}

// TestLabelNameReuseAcrossScopes 不同函数可以各自定义同名标签
func TestLabelNameReuseAcrossScopes(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()

	r.EnterScope("f1")
	require.NoError(t, r.MarkLabel("skip", 0, ScopeLocal))
	r.AddJump(fillJump(buf), "skip", 5, ScopeLocal)
	require.NoError(t, r.ExitScope(buf))

	r.EnterScope("f2")
	require.NoError(t, r.MarkLabel("skip", buf.Len(), ScopeLocal))
	r.AddJump(fillJump(buf), "skip", 5, ScopeLocal)
	require.NoError(t, r.ExitScope(buf))
}

// TestDuplicateLabel 同一作用域内重名是致命错误
func TestDuplicateLabel(t *testing.T) {
	r := NewLabelResolver()
	r.EnterScope("f")
	require.NoError(t, r.MarkLabel("x", 0, ScopeLocal))
	err := r.MarkLabel("x", 8, ScopeLocal)
	require.Error(t, err)
	assert.True(t, diag.IsCode(err, diag.E3004))
}

// TestOffsetOverflow 偏移超出有符号 32 位范围是致命错误
func TestOffsetOverflow(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()

	r.EnterScope("f")
	r.AddJump(fillJump(buf), "far", 5, ScopeLocal)
	require.NoError(t, r.MarkLabel("far", math.MaxInt32+16, ScopeLocal))

	err := r.ExitScope(buf)
	require.Error(t, err)
	assert.True(t, diag.IsCode(err, diag.E3003))
}

// TestGlobalResolution 全局跳转推迟到终态解析
func TestGlobalResolution(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()

	pos := fillJump(buf)
	r.AddJump(pos, "main", 5, ScopeGlobal)
	buf.Append(0x90, 0x90, 0x90)
	require.NoError(t, r.MarkLabel("main", 8, ScopeGlobal))

	require.NoError(t, r.ResolveAll(buf))
	field := int32(binary.LittleEndian.Uint32(buf.Bytes()[pos+1:]))
	assert.Equal(t, int32(3), field) // 8 - (0+5)
}

// TestUndefinedGlobalLabel 终态解析失败时附带全部已知标签名
func TestUndefinedGlobalLabel(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()

	require.NoError(t, r.MarkLabel("main", 0, ScopeGlobal))
	require.NoError(t, r.MarkLabel("helper", 16, ScopeGlobal))
	r.AddJump(fillJump(buf), "helpr", 5, ScopeGlobal) // 拼写错误

	err := r.ResolveAll(buf)
	require.Error(t, err)
	assert.True(t, diag.IsCode(err, diag.E3002))
	assert.Contains(t, err.Error(), "helpr")
	assert.Contains(t, err.Error(), "main")
	assert.Contains(t, err.Error(), "helper")
}

// TestUnifiedFallback 作用域之外登记的标签进入后备表，全局解析可见
func TestUnifiedFallback(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()

	// 没有打开任何局部作用域
	require.NoError(t, r.MarkLabel("stray", 0, ScopeLocal))
	r.AddJump(fillJump(buf), "stray", 5, ScopeGlobal)

	require.NoError(t, r.ResolveAll(buf))
	field := int32(binary.LittleEndian.Uint32(buf.Bytes()[1:5]))
	assert.Equal(t, int32(-5), field)
}

// TestScopeStateErrors 作用域状态机的非法转换
func TestScopeStateErrors(t *testing.T) {
	buf := NewCodeBuffer()

	r := NewLabelResolver()
	err := r.ExitScope(buf)
	require.Error(t, err)
	assert.True(t, diag.IsCode(err, diag.E3005))

	r = NewLabelResolver()
	require.NoError(t, r.ResolveAll(buf))
	err = r.ResolveAll(buf)
	require.Error(t, err)
	assert.True(t, diag.IsCode(err, diag.E3005))

	r = NewLabelResolver()
	r.EnterScope("open")
	err = r.ResolveAll(buf)
	require.Error(t, err)
	assert.True(t, diag.IsCode(err, diag.E3005))
}

// TestLeaFixup RIP 相对位移从占位符之后算起
func TestLeaFixup(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()

	r.EnterScope("f")
	buf.Append(0x48, 0x8D, 0x3D)         // lea rdi, [rip+...]
	fixupPos := buf.Append(0, 0, 0, 0)   // 位移字段在位置 3
	r.AddLeaFixup(fixupPos, "target", ScopeLocal)
	buf.Append(0x90, 0x90, 0x90, 0x90, 0x90)
	require.NoError(t, r.MarkLabel("target", 12, ScopeLocal))
	require.NoError(t, r.ExitScope(buf))

	// 12 - (3+4) = 5
	field := int32(binary.LittleEndian.Uint32(buf.Bytes()[fixupPos:]))
	assert.Equal(t, int32(5), field)
}

// TestInScope 作用域开闭状态决定局部标签的落点
func TestInScope(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()
	assert.False(t, r.InScope())

	r.EnterScope("f")
	assert.True(t, r.InScope())
	assert.Equal(t, "f", r.CurrentScope())

	require.NoError(t, r.ExitScope(buf))
	assert.False(t, r.InScope())
	assert.Equal(t, "", r.CurrentScope())
}

// TestCreateUniqueLabel 合成标签互不相同
func TestCreateUniqueLabel(t *testing.T) {
	r := NewLabelResolver()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := r.CreateUniqueLabel()
		assert.False(t, seen[name], "duplicate synthetic label %q", name)
		seen[name] = true
	}
}

// TestNestedScopes 嵌套作用域各自独立解析
func TestNestedScopes(t *testing.T) {
	buf := NewCodeBuffer()
	r := NewLabelResolver()

	r.EnterScope("outer")
	require.NoError(t, r.MarkLabel("a", 0, ScopeLocal))

	r.EnterScope("inner")
	r.AddJump(fillJump(buf), "b", 5, ScopeLocal)
	require.NoError(t, r.MarkLabel("b", buf.Len(), ScopeLocal))
	require.NoError(t, r.ExitScope(buf))

	// 内层帧已丢弃，外层的 a 仍可解析
	r.AddJump(fillJump(buf), "a", 5, ScopeLocal)
	require.NoError(t, r.ExitScope(buf))
}
