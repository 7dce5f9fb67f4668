package encoder

// ============================================================================
// 数据移动指令
// ============================================================================

// MovRegReg 寄存器到寄存器: mov dst, src
func (a *Assembler) MovRegReg(dst, src Reg) int {
	i := &inst{}
	i.put(rex(true, src.IsExtended(), false, dst.IsExtended()))
	i.put(0x89)
	i.put(modrm(3, src.LowBits(), dst.LowBits()))
	return a.commit(i)
}

// MovRegImm64 加载 64 位立即数: mov reg, imm64
// 立即数字段位于指令起始 +2 处（REX + 操作码之后），
// 调用方据此登记绝对地址重定位。
func (a *Assembler) MovRegImm64(reg Reg, imm uint64) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	i.put(0xB8 + reg.LowBits())
	i.putU64(imm)
	return a.commit(i)
}

// MovRegImmSigned 加载有符号值，负值按补码位模式写入
func (a *Assembler) MovRegImmSigned(reg Reg, v int64) int {
	return a.MovRegImm64(reg, uint64(v))
}

// MovRegImm32 加载 32 位立即数（符号扩展到 64 位）: mov reg, imm32
func (a *Assembler) MovRegImm32(reg Reg, imm int32) int {
	i := &inst{}
	i.put(rex(true, false, false, reg.IsExtended()))
	i.put(0xC7)
	i.put(modrm(3, 0, reg.LowBits()))
	i.putU32(uint32(imm))
	return a.commit(i)
}

// MovRegMem 从内存加载: mov reg, [base+offset]
func (a *Assembler) MovRegMem(dst Reg, base Reg, offset int32) int {
	i := &inst{}
	i.put(rex(true, dst.IsExtended(), false, base.IsExtended()))
	i.put(0x8B)
	putMemOperand(i, dst.LowBits(), base, offset)
	return a.commit(i)
}

// MovMemReg 存储到内存: mov [base+offset], reg
func (a *Assembler) MovMemReg(base Reg, offset int32, src Reg) int {
	i := &inst{}
	i.put(rex(true, src.IsExtended(), false, base.IsExtended()))
	i.put(0x89)
	putMemOperand(i, src.LowBits(), base, offset)
	return a.commit(i)
}

// LeaRIP RIP 相对取址: lea reg, [rip+disp32]
//
// 位移字段写入 4 字节占位符。返回 (指令起始位置, 位移字段位置)，
// 调用方用后者登记 lea 修正。
func (a *Assembler) LeaRIP(dst Reg) (pos, fixupPos int) {
	i := &inst{}
	i.put(rex(true, dst.IsExtended(), false, false))
	i.put(0x8D)
	i.put(modrm(0, dst.LowBits(), 5)) // mod=00 rm=101: RIP 相对
	dispAt := i.n
	i.putU32(0) // 占位符
	pos = a.commit(i)
	return pos, pos + dispAt
}

// MovzxReg8 零扩展 8 位到 64 位: movzx dst, src(8-bit)
func (a *Assembler) MovzxReg8(dst, src Reg) int {
	i := &inst{}
	i.put(rex(true, dst.IsExtended(), false, src.IsExtended()))
	i.put(0x0F, 0xB6)
	i.put(modrm(3, dst.LowBits(), src.LowBits()))
	return a.commit(i)
}
