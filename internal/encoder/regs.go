// Package encoder 实现 x86-64 指令编码器
//
// 每个（助记符, 操作数形态）对应一个方法，向代码缓冲区追加
// 精确的字节序列并返回指令起始位置。编码器不认识符号标签，
// 跳转/取址的占位符由调用方通过返回的位置到解析器登记。
//
// x86-64 指令编码格式：
// [前缀] [REX] [操作码] [ModR/M] [SIB] [位移] [立即数]
//
// REX 前缀：用于扩展寄存器和操作数大小
// - REX.W: 64 位操作数
// - REX.R: 扩展 ModR/M.reg 字段
// - REX.X: 扩展 SIB.index 字段
// - REX.B: 扩展 ModR/M.r/m 或 SIB.base 字段
package encoder

import (
	"github.com/lumenlang/lumen/internal/diag"
)

// ============================================================================
// x86-64 寄存器定义
// ============================================================================

// Reg x86-64 通用寄存器（64 位）
type Reg int

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	// RegNone 无寄存器
	RegNone Reg = -1
)

var regNames = []string{
	"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

// String 返回寄存器名称
func (r Reg) String() string {
	if r >= 0 && int(r) < len(regNames) {
		return regNames[r]
	}
	return "???"
}

// IsExtended 检查是否是扩展寄存器（需要 REX 前缀位）
func (r Reg) IsExtended() bool {
	return r >= R8 && r <= R15
}

// LowBits 获取寄存器编码的低 3 位
func (r Reg) LowBits() byte {
	return byte(r) & 0x7
}

// RegByName 按名称查找寄存器
// 未知的寄存器名是致命错误，不允许静默忽略。
func RegByName(name string) (Reg, error) {
	for i, n := range regNames {
		if n == name {
			return Reg(i), nil
		}
	}
	return RegNone, diag.Errorf(diag.E3101, "unsupported register name %q", name).
		WithNote("supported registers: %v", regNames)
}
