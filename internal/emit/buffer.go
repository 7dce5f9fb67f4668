// Package emit 实现 Lumen 后端的代码发射引擎
//
// 本包包含机器码缓冲区、数据段、两级标签解析器、重定位表
// 以及把它们组合在一起的 Emitter。指令的字节编码由
// internal/encoder 完成，本包只负责缓冲区所有权与符号解析。
package emit

import (
	"encoding/binary"

	"github.com/lumenlang/lumen/internal/diag"
)

// ============================================================================
// 代码缓冲区
// ============================================================================

// CodeBuffer 可增长的机器码缓冲区
//
// 发射阶段只在尾部追加；解析阶段对已写入的占位字段做
// 等长覆写。缓冲区由 Emitter 独占持有，单线程访问。
type CodeBuffer struct {
	code []byte
}

// NewCodeBuffer 创建代码缓冲区
func NewCodeBuffer() *CodeBuffer {
	return &CodeBuffer{
		code: make([]byte, 0, 4096),
	}
}

// Append 追加字节，返回写入起始位置
func (b *CodeBuffer) Append(bytes ...byte) int {
	pos := len(b.code)
	b.code = append(b.code, bytes...)
	return pos
}

// Len 返回当前代码长度
func (b *CodeBuffer) Len() int {
	return len(b.code)
}

// Bytes 返回缓冲区内容
func (b *CodeBuffer) Bytes() []byte {
	return b.code
}

// PutU32 在 pos 处覆写 32 位值（小端序）
func (b *CodeBuffer) PutU32(pos int, v uint32) error {
	if pos < 0 || pos+4 > len(b.code) {
		return diag.Errorf(diag.E3201, "patch position %d out of buffer bounds (len %d)", pos, len(b.code))
	}
	binary.LittleEndian.PutUint32(b.code[pos:], v)
	return nil
}

// PutU64 在 pos 处覆写 64 位值（小端序）
func (b *CodeBuffer) PutU64(pos int, v uint64) error {
	if pos < 0 || pos+8 > len(b.code) {
		return diag.Errorf(diag.E3201, "patch position %d out of buffer bounds (len %d)", pos, len(b.code))
	}
	binary.LittleEndian.PutUint64(b.code[pos:], v)
	return nil
}
