package encoder

// ============================================================================
// 算术指令
// ============================================================================

// AddRegReg 寄存器加法: add dst, src
func (a *Assembler) AddRegReg(dst, src Reg) int {
	i := &inst{}
	i.put(rex(true, src.IsExtended(), false, dst.IsExtended()))
	i.put(0x01)
	i.put(modrm(3, src.LowBits(), dst.LowBits()))
	return a.commit(i)
}

// AddRegImm32 立即数加法: add reg, imm
// [-128,127] 选用 imm8 形式（83 /0），否则 imm32（81 /0）。
func (a *Assembler) AddRegImm32(reg Reg, imm int32) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	if imm >= -128 && imm <= 127 {
		i.put(0x83)
		i.put(modrm(3, 0, reg.LowBits()))
		i.put(byte(imm))
	} else {
		i.put(0x81)
		i.put(modrm(3, 0, reg.LowBits()))
		i.putU32(uint32(imm))
	}
	return a.commit(i)
}

// SubRegReg 寄存器减法: sub dst, src
func (a *Assembler) SubRegReg(dst, src Reg) int {
	i := &inst{}
	i.put(rex(true, src.IsExtended(), false, dst.IsExtended()))
	i.put(0x29)
	i.put(modrm(3, src.LowBits(), dst.LowBits()))
	return a.commit(i)
}

// SubRegImm32 立即数减法: sub reg, imm
// 每个助记符只保留一种规范编码：小立即数用 83 /5 ib。
func (a *Assembler) SubRegImm32(reg Reg, imm int32) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	if imm >= -128 && imm <= 127 {
		i.put(0x83)
		i.put(modrm(3, 5, reg.LowBits()))
		i.put(byte(imm))
	} else {
		i.put(0x81)
		i.put(modrm(3, 5, reg.LowBits()))
		i.putU32(uint32(imm))
	}
	return a.commit(i)
}

// IMulRegReg 有符号乘法: imul dst, src
func (a *Assembler) IMulRegReg(dst, src Reg) int {
	i := &inst{}
	i.put(rex(true, dst.IsExtended(), false, src.IsExtended()))
	i.put(0x0F, 0xAF)
	i.put(modrm(3, dst.LowBits(), src.LowBits()))
	return a.commit(i)
}

// IMulRegImm32 立即数乘法: imul dst, src, imm
func (a *Assembler) IMulRegImm32(dst, src Reg, imm int32) int {
	i := &inst{}
	i.put(rex(true, dst.IsExtended(), false, src.IsExtended()))
	if imm >= -128 && imm <= 127 {
		i.put(0x6B)
		i.put(modrm(3, dst.LowBits(), src.LowBits()))
		i.put(byte(imm))
	} else {
		i.put(0x69)
		i.put(modrm(3, dst.LowBits(), src.LowBits()))
		i.putU32(uint32(imm))
	}
	return a.commit(i)
}

// Neg 取负: neg reg
func (a *Assembler) Neg(reg Reg) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	i.put(0xF7)
	i.put(modrm(3, 3, reg.LowBits()))
	return a.commit(i)
}

// CQO 符号扩展 RAX -> RDX:RAX，有符号除法前置
func (a *Assembler) CQO() int {
	i := &inst{}
	i.put(0x48, 0x99)
	return a.commit(i)
}

// IDivReg 有符号除法: idiv reg (RDX:RAX / reg -> RAX, 余数 -> RDX)
// 调用方须先用 CQO 完成符号扩展。
func (a *Assembler) IDivReg(reg Reg) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	i.put(0xF7)
	i.put(modrm(3, 7, reg.LowBits()))
	return a.commit(i)
}

// DivReg 无符号除法: div reg (RDX:RAX / reg -> RAX, 余数 -> RDX)
// 与 IDivReg 是不同的操作码扩展（/6 与 /7），不互为别名。
// 调用方须先将 RDX 清零。
func (a *Assembler) DivReg(reg Reg) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	i.put(0xF7)
	i.put(modrm(3, 6, reg.LowBits()))
	return a.commit(i)
}
