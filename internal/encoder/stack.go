package encoder

// ============================================================================
// 栈操作指令
// ============================================================================

// Push 压栈: push reg
func (a *Assembler) Push(reg Reg) int {
	i := &inst{}
	if reg.IsExtended() {
		i.put(rex(false, false, false, true))
	}
	i.put(0x50 + reg.LowBits())
	return a.commit(i)
}

// Pop 出栈: pop reg
func (a *Assembler) Pop(reg Reg) int {
	i := &inst{}
	if reg.IsExtended() {
		i.put(rex(false, false, false, true))
	}
	i.put(0x58 + reg.LowBits())
	return a.commit(i)
}
