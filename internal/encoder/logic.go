package encoder

// ============================================================================
// 位运算与移位指令
// ============================================================================

// AndRegReg 位与: and dst, src
func (a *Assembler) AndRegReg(dst, src Reg) int {
	i := &inst{}
	i.put(rex(true, src.IsExtended(), false, dst.IsExtended()))
	i.put(0x21)
	i.put(modrm(3, src.LowBits(), dst.LowBits()))
	return a.commit(i)
}

// OrRegReg 位或: or dst, src
func (a *Assembler) OrRegReg(dst, src Reg) int {
	i := &inst{}
	i.put(rex(true, src.IsExtended(), false, dst.IsExtended()))
	i.put(0x09)
	i.put(modrm(3, src.LowBits(), dst.LowBits()))
	return a.commit(i)
}

// XorRegReg 位异或: xor dst, src
func (a *Assembler) XorRegReg(dst, src Reg) int {
	i := &inst{}
	i.put(rex(true, src.IsExtended(), false, dst.IsExtended()))
	i.put(0x31)
	i.put(modrm(3, src.LowBits(), dst.LowBits()))
	return a.commit(i)
}

// NotReg 位非: not reg
func (a *Assembler) NotReg(reg Reg) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	i.put(0xF7)
	i.put(modrm(3, 2, reg.LowBits()))
	return a.commit(i)
}

// ShlRegCL 左移: shl reg, cl
func (a *Assembler) ShlRegCL(reg Reg) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	i.put(0xD3)
	i.put(modrm(3, 4, reg.LowBits()))
	return a.commit(i)
}

// ShlRegImm 左移立即数: shl reg, imm
func (a *Assembler) ShlRegImm(reg Reg, imm byte) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	if imm == 1 {
		i.put(0xD1)
		i.put(modrm(3, 4, reg.LowBits()))
	} else {
		i.put(0xC1)
		i.put(modrm(3, 4, reg.LowBits()))
		i.put(imm)
	}
	return a.commit(i)
}

// ShrRegCL 逻辑右移: shr reg, cl
func (a *Assembler) ShrRegCL(reg Reg) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	i.put(0xD3)
	i.put(modrm(3, 5, reg.LowBits()))
	return a.commit(i)
}

// ShrRegImm 逻辑右移立即数: shr reg, imm
func (a *Assembler) ShrRegImm(reg Reg, imm byte) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	if imm == 1 {
		i.put(0xD1)
		i.put(modrm(3, 5, reg.LowBits()))
	} else {
		i.put(0xC1)
		i.put(modrm(3, 5, reg.LowBits()))
		i.put(imm)
	}
	return a.commit(i)
}

// SarRegCL 算术右移: sar reg, cl
func (a *Assembler) SarRegCL(reg Reg) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	i.put(0xD3)
	i.put(modrm(3, 7, reg.LowBits()))
	return a.commit(i)
}

// SarRegImm 算术右移立即数: sar reg, imm
func (a *Assembler) SarRegImm(reg Reg, imm byte) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	if imm == 1 {
		i.put(0xD1)
		i.put(modrm(3, 7, reg.LowBits()))
	} else {
		i.put(0xC1)
		i.put(modrm(3, 7, reg.LowBits()))
		i.put(imm)
	}
	return a.commit(i)
}
