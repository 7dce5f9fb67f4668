package encoder

// ============================================================================
// 跳转与调用指令
// ============================================================================

// JumpKind 封闭的跳转类别集合
//
// 跳转一律用 32 位位移形式发射，从不使用 8 位短形式：
// 无条件跳转/调用 5 字节，条件跳转 6 字节。牺牲代码密度
// 换取统一、简单的回填算术。
type JumpKind int

const (
	JumpAlways         JumpKind = iota // jmp
	JumpEqual                          // je
	JumpNotEqual                       // jne
	JumpLess                           // jl
	JumpLessOrEqual                    // jle
	JumpGreater                        // jg
	JumpGreaterOrEqual                 // jge
	JumpBelow                          // jb（无符号）
	JumpBelowOrEqual                   // jbe
	JumpAbove                          // ja
	JumpAboveOrEqual                   // jae
	JumpSign                           // js
	JumpNotSign                        // jns
)

// jumpConds JumpKind 到条件码的映射（JumpAlways 除外）
var jumpConds = [...]Cond{
	JumpEqual:          CondE,
	JumpNotEqual:       CondNE,
	JumpLess:           CondL,
	JumpLessOrEqual:    CondLE,
	JumpGreater:        CondG,
	JumpGreaterOrEqual: CondGE,
	JumpBelow:          CondB,
	JumpBelowOrEqual:   CondBE,
	JumpAbove:          CondA,
	JumpAboveOrEqual:   CondAE,
	JumpSign:           CondS,
	JumpNotSign:        CondNS,
}

func (k JumpKind) String() string {
	names := [...]string{
		"jmp", "je", "jne", "jl", "jle", "jg", "jge",
		"jb", "jbe", "ja", "jae", "js", "jns",
	}
	if k >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "j??"
}

// Jump 发射跳转指令，位移字段为 4 字节占位符
//
// 返回 (指令起始位置, 指令长度)。调用方用两者到标签解析器
// 登记待解析跳转；位移字段始终是指令的最后 4 个字节。
func (a *Assembler) Jump(kind JumpKind) (pos, size int) {
	i := &inst{}
	if kind == JumpAlways {
		i.put(0xE9)
	} else {
		i.put(0x0F, 0x80|ccBits[jumpConds[kind]])
	}
	i.putU32(0) // 占位符
	return a.commit(i), i.n
}

// CallRel 相对调用: call rel32，位移为占位符
// 返回 (指令起始位置, 指令长度 5)。
func (a *Assembler) CallRel() (pos, size int) {
	i := &inst{}
	i.put(0xE8)
	i.putU32(0) // 占位符
	return a.commit(i), i.n
}

// CallReg 间接调用: call reg
func (a *Assembler) CallReg(reg Reg) int {
	i := &inst{}
	if reg.IsExtended() {
		i.put(rex(false, false, false, true))
	}
	i.put(0xFF)
	i.put(modrm(3, 2, reg.LowBits()))
	return a.commit(i)
}

// JmpReg 间接跳转: jmp reg
func (a *Assembler) JmpReg(reg Reg) int {
	i := &inst{}
	if reg.IsExtended() {
		i.put(rex(false, false, false, true))
	}
	i.put(0xFF)
	i.put(modrm(3, 4, reg.LowBits()))
	return a.commit(i)
}

// Ret 返回
func (a *Assembler) Ret() int {
	i := &inst{}
	i.put(0xC3)
	return a.commit(i)
}

// Syscall 系统调用
func (a *Assembler) Syscall() int {
	i := &inst{}
	i.put(0x0F, 0x05)
	return a.commit(i)
}

// Nop 空操作
func (a *Assembler) Nop() int {
	i := &inst{}
	i.put(0x90)
	return a.commit(i)
}
