package encoder

import (
	"encoding/binary"
	"math/big"

	"github.com/lumenlang/lumen/internal/emit"
)

// ============================================================================
// x86-64 汇编器
// ============================================================================

// Assembler x86-64 指令编码器
//
// 向共享的代码缓冲区追加字节。每条指令的写入是原子的：
// 字节序列先在本地组装完整，再一次性追加到缓冲区。
type Assembler struct {
	buf *emit.CodeBuffer
}

// New 创建汇编器，写入指定缓冲区
func New(buf *emit.CodeBuffer) *Assembler {
	return &Assembler{buf: buf}
}

// Buffer 返回底层代码缓冲区
func (a *Assembler) Buffer() *emit.CodeBuffer {
	return a.buf
}

// Position 返回下一条指令将写入的位置
func (a *Assembler) Position() int {
	return a.buf.Len()
}

// ============================================================================
// 指令组装
// ============================================================================

// inst 单条指令的本地组装缓冲
// x86-64 指令最长 15 字节，16 字节定长数组足够。
type inst struct {
	b [16]byte
	n int
}

func (i *inst) put(bytes ...byte) {
	i.n += copy(i.b[i.n:], bytes)
}

func (i *inst) putU32(v uint32) {
	binary.LittleEndian.PutUint32(i.b[i.n:], v)
	i.n += 4
}

func (i *inst) putU64(v uint64) {
	binary.LittleEndian.PutUint64(i.b[i.n:], v)
	i.n += 8
}

// commit 把组装好的指令一次性追加到缓冲区，返回起始位置
func (a *Assembler) commit(i *inst) int {
	return a.buf.Append(i.b[:i.n]...)
}

// ============================================================================
// 编码基元
// ============================================================================

// rex 构造 REX 前缀
// w: 64 位操作数
// r: 扩展 ModR/M.reg
// x: 扩展 SIB.index
// b: 扩展 ModR/M.r/m 或 SIB.base
func rex(w, r, x, b bool) byte {
	var v byte = 0x40
	if w {
		v |= 0x08
	}
	if r {
		v |= 0x04
	}
	if x {
		v |= 0x02
	}
	if b {
		v |= 0x01
	}
	return v
}

// modrm 构造 ModR/M 字节
// mod: 寻址模式 (0-3)
// reg: 寄存器操作数或操作码扩展
// rm: 寄存器/内存操作数
func modrm(mod, reg, rm byte) byte {
	return (mod << 6) | ((reg & 0x7) << 3) | (rm & 0x7)
}

// putMemOperand 组装 [base+offset] 内存操作数
//
// 位移大小按值选择：偏移为 0 且基址不是 RBP/R13 时省略位移；
// [-128,127] 用 8 位位移；其余用 32 位位移。
// RSP/R12 作基址必须带 SIB 字节（ModR/M 的 rm=100 被 SIB 占用）；
// RBP/R13 的零位移编码被架构保留给 RIP 相对寻址，即使逻辑偏移
// 为 0 也必须显式给出位移字节。
func putMemOperand(i *inst, reg byte, base Reg, offset int32) {
	baseCode := base.LowBits()
	needSIB := base == RSP || base == R12
	forceDisp := base == RBP || base == R13

	switch {
	case offset == 0 && !forceDisp:
		if needSIB {
			i.put(modrm(0, reg, 4))
			i.put(0x24) // SIB: scale=0, index=none, base=rsp/r12
		} else {
			i.put(modrm(0, reg, baseCode))
		}
	case offset >= -128 && offset <= 127:
		if needSIB {
			i.put(modrm(1, reg, 4))
			i.put(0x24)
		} else {
			i.put(modrm(1, reg, baseCode))
		}
		i.put(byte(offset))
	default:
		if needSIB {
			i.put(modrm(2, reg, 4))
			i.put(0x24)
		} else {
			i.put(modrm(2, reg, baseCode))
		}
		i.putU32(uint32(offset))
	}
}

// ============================================================================
// 立即数截断
// ============================================================================

// imm64Mask 2^64 - 1
var imm64Mask = new(big.Int).SetUint64(^uint64(0))

// TruncateImm64 把任意精度整数按模 2^64 截断为 64 位立即数
//
// 超出无符号 64 位范围的值不报错而是环绕；负值转换为其
// 二进制补码位模式。与目标机的二进制补码语义一致。
func TruncateImm64(v *big.Int) uint64 {
	t := new(big.Int).And(v, imm64Mask)
	return t.Uint64()
}
