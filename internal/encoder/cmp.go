package encoder

// ============================================================================
// 比较与条件设置指令
// ============================================================================

// CmpRegReg 比较: cmp left, right
func (a *Assembler) CmpRegReg(left, right Reg) int {
	i := &inst{}
	i.put(rex(true, right.IsExtended(), false, left.IsExtended()))
	i.put(0x39)
	i.put(modrm(3, right.LowBits(), left.LowBits()))
	return a.commit(i)
}

// CmpRegImm32 比较立即数: cmp reg, imm
func (a *Assembler) CmpRegImm32(reg Reg, imm int32) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	if imm >= -128 && imm <= 127 {
		i.put(0x83)
		i.put(modrm(3, 7, reg.LowBits()))
		i.put(byte(imm))
	} else {
		i.put(0x81)
		i.put(modrm(3, 7, reg.LowBits()))
		i.putU32(uint32(imm))
	}
	return a.commit(i)
}

// TestRegReg 测试: test reg1, reg2
func (a *Assembler) TestRegReg(reg1, reg2 Reg) int {
	i := &inst{}
	i.put(rex(true, reg2.IsExtended(), false, reg1.IsExtended()))
	i.put(0x85)
	i.put(modrm(3, reg2.LowBits(), reg1.LowBits()))
	return a.commit(i)
}

// ============================================================================
// SETcc 条件设置
// ============================================================================

// Cond setcc/jcc 共用的条件码
type Cond int

const (
	CondE  Cond = iota // 等于 (ZF=1)
	CondNE             // 不等于 (ZF=0)
	CondL              // 有符号小于 (SF!=OF)
	CondLE             // 有符号小于等于
	CondG              // 有符号大于
	CondGE             // 有符号大于等于
	CondB              // 无符号小于 (CF=1)
	CondBE             // 无符号小于等于
	CondA              // 无符号大于
	CondAE             // 无符号大于等于
	CondS              // 符号为负 (SF=1)
	CondNS             // 符号为正 (SF=0)
)

// ccBits 条件码在 0F 9x/0F 8x 操作码中的低 4 位
var ccBits = [...]byte{
	CondE:  0x4,
	CondNE: 0x5,
	CondL:  0xC,
	CondLE: 0xE,
	CondG:  0xF,
	CondGE: 0xD,
	CondB:  0x2,
	CondBE: 0x6,
	CondA:  0x7,
	CondAE: 0x3,
	CondS:  0x8,
	CondNS: 0x9,
}

// SetCond 条件设置: setcc reg(8-bit)
func (a *Assembler) SetCond(cond Cond, reg Reg) int {
	i := &inst{}
	if reg.IsExtended() {
		i.put(rex(false, false, false, true))
	}
	i.put(0x0F, 0x90|ccBits[cond])
	i.put(modrm(3, 0, reg.LowBits()))
	return a.commit(i)
}

// SetE 设置等于: sete reg
func (a *Assembler) SetE(reg Reg) int { return a.SetCond(CondE, reg) }

// SetNE 设置不等于: setne reg
func (a *Assembler) SetNE(reg Reg) int { return a.SetCond(CondNE, reg) }

// SetL 设置小于: setl reg
func (a *Assembler) SetL(reg Reg) int { return a.SetCond(CondL, reg) }

// SetLE 设置小于等于: setle reg
func (a *Assembler) SetLE(reg Reg) int { return a.SetCond(CondLE, reg) }

// SetG 设置大于: setg reg
func (a *Assembler) SetG(reg Reg) int { return a.SetCond(CondG, reg) }

// SetGE 设置大于等于: setge reg
func (a *Assembler) SetGE(reg Reg) int { return a.SetCond(CondGE, reg) }
