// Package codegen 把树形 IR 翻译成 x86-64 指令流
//
// 生成器按程序顺序驱动编码器，为每个函数打开一个局部标签
// 作用域（函数发射完毕即触发局部解析），跨函数的调用走全局
// 标签，推迟到整个程序发射完成后统一解析。
package codegen

import (
	"github.com/lumenlang/lumen/internal/diag"
	"github.com/lumenlang/lumen/internal/emit"
	"github.com/lumenlang/lumen/internal/encoder"
	"github.com/lumenlang/lumen/internal/ir"
)

// retLabel 每个函数的局部出口标签
// 名字在不同函数的作用域里可以重复，互不干扰。
const retLabel = ".ret"

// argRegs SysV 参数寄存器顺序
var argRegs = []encoder.Reg{
	encoder.RDI, encoder.RSI, encoder.RDX,
	encoder.RCX, encoder.R8, encoder.R9,
}

// Generator IR 到指令流的生成器
type Generator struct {
	em  *emit.Emitter
	asm *encoder.Assembler

	// 当前函数状态
	fn     *ir.Func
	locals map[string]int32 // 局部变量 -> rbp 偏移（负值）
}

// New 创建生成器
func New(em *emit.Emitter) *Generator {
	return &Generator{
		em:  em,
		asm: encoder.New(em.Buffer()),
	}
}

// Generate 发射整个模块
//
// 先发射 _start 入口（调用 main，再以其返回值执行 exit 系统
// 调用），然后逐个函数发射。全局解析（ResolveAll）留给下游
// 构建器在布局完成后执行。
func (g *Generator) Generate(mod *ir.Module) error {
	if err := g.genStart(); err != nil {
		return err
	}
	for _, fn := range mod.Funcs {
		if err := g.genFunc(fn); err != nil {
			return err
		}
	}
	return nil
}

// genStart 程序入口：call main; mov rdi, rax; exit 系统调用
func (g *Generator) genStart() error {
	if err := g.em.MarkLabel("_start", emit.ScopeGlobal); err != nil {
		return err
	}
	pos, size := g.asm.CallRel()
	g.em.AddJump(pos, "main", size, emit.ScopeGlobal)
	g.asm.MovRegReg(encoder.RDI, encoder.RAX)
	g.asm.MovRegImm32(encoder.RAX, 60) // sys_exit
	g.asm.Syscall()
	return nil
}

// ============================================================================
// 函数
// ============================================================================

func (g *Generator) genFunc(fn *ir.Func) error {
	g.fn = fn
	g.em.EnterScope(fn.Name)
	if err := g.em.MarkLabel(fn.Name, emit.ScopeGlobal); err != nil {
		return err
	}

	if len(fn.Params) > len(argRegs) {
		return diag.Errorf(diag.E3302, "function %q: more than %d parameters not supported",
			fn.Name, len(argRegs))
	}

	frameSize, err := g.assignSlots(fn)
	if err != nil {
		return err
	}

	// 序言
	g.asm.Push(encoder.RBP)
	g.asm.MovRegReg(encoder.RBP, encoder.RSP)
	if frameSize > 0 {
		g.asm.SubRegImm32(encoder.RSP, frameSize)
	}

	// 参数落栈
	for i, name := range fn.Params {
		g.asm.MovMemReg(encoder.RBP, g.locals[name], argRegs[i])
	}

	for _, stmt := range fn.Body {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}

	// 隐式 return 0
	g.asm.MovRegImm32(encoder.RAX, 0)

	// 共享出口
	if err := g.em.MarkLabel(retLabel, emit.ScopeLocal); err != nil {
		return err
	}
	g.asm.MovRegReg(encoder.RSP, encoder.RBP)
	g.asm.Pop(encoder.RBP)
	g.asm.Ret()

	// 作用域退出即解析全部局部引用；之后该帧不复存在
	return g.em.ExitScope()
}

// assignSlots 给参数和全部 let 声明分配栈槽，返回对齐后的帧大小
func (g *Generator) assignSlots(fn *ir.Func) (int32, error) {
	g.locals = make(map[string]int32)
	slot := int32(0)
	declare := func(name string) error {
		if _, exists := g.locals[name]; exists {
			return diag.Errorf(diag.E3301, "function %q: variable %q declared twice", fn.Name, name)
		}
		slot -= 8
		g.locals[name] = slot
		return nil
	}
	for _, p := range fn.Params {
		if err := declare(p); err != nil {
			return 0, err
		}
	}
	if err := walkLets(fn.Body, declare); err != nil {
		return 0, err
	}
	frame := -slot
	if rem := frame % 16; rem != 0 {
		frame += 16 - rem
	}
	return frame, nil
}

// walkLets 递归收集语句树中的 let 声明
func walkLets(stmts []ir.Stmt, declare func(string) error) error {
	for _, s := range stmts {
		switch s := s.(type) {
		case *ir.LetStmt:
			if err := declare(s.Name); err != nil {
				return err
			}
		case *ir.IfStmt:
			if err := walkLets(s.Then, declare); err != nil {
				return err
			}
			if err := walkLets(s.Else, declare); err != nil {
				return err
			}
		case *ir.WhileStmt:
			if err := walkLets(s.Body, declare); err != nil {
				return err
			}
		}
	}
	return nil
}

// ============================================================================
// 语句
// ============================================================================

func (g *Generator) genStmt(stmt ir.Stmt) error {
	switch s := stmt.(type) {
	case *ir.LetStmt:
		return g.genStore(s.Name, s.Value)
	case *ir.AssignStmt:
		return g.genStore(s.Name, s.Value)
	case *ir.IfStmt:
		return g.genIf(s)
	case *ir.WhileStmt:
		return g.genWhile(s)
	case *ir.ReturnStmt:
		return g.genReturn(s)
	case *ir.PrintStmt:
		return g.genPrint(s)
	case *ir.ExprStmt:
		return g.genExpr(s.X)
	default:
		return diag.Errorf(diag.E3302, "unsupported statement %T", stmt)
	}
}

func (g *Generator) genStore(name string, value ir.Expr) error {
	off, ok := g.locals[name]
	if !ok {
		return diag.Errorf(diag.E3301, "function %q: assignment to undeclared variable %q",
			g.fn.Name, name)
	}
	if err := g.genExpr(value); err != nil {
		return err
	}
	g.asm.MovMemReg(encoder.RBP, off, encoder.RAX)
	return nil
}

func (g *Generator) genIf(s *ir.IfStmt) error {
	elseL := g.em.Labels().CreateUniqueLabel()
	endL := g.em.Labels().CreateUniqueLabel()

	if err := g.genCondJumpFalse(s.Cond, elseL); err != nil {
		return err
	}
	for _, st := range s.Then {
		if err := g.genStmt(st); err != nil {
			return err
		}
	}
	if len(s.Else) > 0 {
		g.jump(encoder.JumpAlways, endL)
	}
	if err := g.em.MarkLabel(elseL, emit.ScopeLocal); err != nil {
		return err
	}
	for _, st := range s.Else {
		if err := g.genStmt(st); err != nil {
			return err
		}
	}
	if len(s.Else) > 0 {
		return g.em.MarkLabel(endL, emit.ScopeLocal)
	}
	return nil
}

func (g *Generator) genWhile(s *ir.WhileStmt) error {
	headL := g.em.Labels().CreateUniqueLabel()
	endL := g.em.Labels().CreateUniqueLabel()

	if err := g.em.MarkLabel(headL, emit.ScopeLocal); err != nil {
		return err
	}
	if err := g.genCondJumpFalse(s.Cond, endL); err != nil {
		return err
	}
	for _, st := range s.Body {
		if err := g.genStmt(st); err != nil {
			return err
		}
	}
	g.jump(encoder.JumpAlways, headL)
	return g.em.MarkLabel(endL, emit.ScopeLocal)
}

// genCondJumpFalse 求值条件，为假（零）时跳到 target
//
// 条件本身是比较表达式时直接融合成反向条件跳转，省去
// setcc/movzx 的 0/1 物化；其余表达式按零值测试。
func (g *Generator) genCondJumpFalse(cond ir.Expr, target string) error {
	if e, ok := cond.(*ir.BinaryExpr); ok && e.Op.IsComparison() {
		if err := g.genOperands(e); err != nil {
			return err
		}
		g.asm.CmpRegReg(encoder.RAX, encoder.RCX)
		g.jump(inverseJump(e.Op), target)
		return nil
	}
	if err := g.genExpr(cond); err != nil {
		return err
	}
	g.asm.TestRegReg(encoder.RAX, encoder.RAX)
	g.jump(encoder.JumpEqual, target)
	return nil
}

// inverseJump 比较运算符取反后的跳转类别
func inverseJump(op ir.Op) encoder.JumpKind {
	switch op {
	case ir.OpEq:
		return encoder.JumpNotEqual
	case ir.OpNe:
		return encoder.JumpEqual
	case ir.OpLt:
		return encoder.JumpGreaterOrEqual
	case ir.OpLe:
		return encoder.JumpGreater
	case ir.OpGt:
		return encoder.JumpLessOrEqual
	default:
		return encoder.JumpLess
	}
}

func (g *Generator) genReturn(s *ir.ReturnStmt) error {
	if s.Value != nil {
		if err := g.genExpr(s.Value); err != nil {
			return err
		}
	} else {
		g.asm.MovRegImm32(encoder.RAX, 0)
	}
	g.jump(encoder.JumpAlways, retLabel)
	return nil
}

// genPrint 输出字符串字面量：write(1, addr, len)
//
// 字符串驻留进数据段；地址以 movabs 占位符发射，位置登记到
// 重定位表，由外部布局阶段回填绝对地址。
func (g *Generator) genPrint(s *ir.PrintStmt) error {
	lit, ok := s.Value.(*ir.StrLit)
	if !ok {
		return diag.Errorf(diag.E3302, "print expects a string literal, got %T", s.Value)
	}
	off := g.em.InternString(lit.Value)

	pos := g.asm.MovRegImm64(encoder.RSI, uint64(off))
	g.em.RecordReloc(pos+2, off) // 立即数字段在 REX+操作码之后
	g.asm.MovRegImm32(encoder.RDX, int32(len(lit.Value)))
	g.asm.MovRegImm32(encoder.RDI, 1) // stdout
	g.asm.MovRegImm32(encoder.RAX, 1) // sys_write
	g.asm.Syscall()
	return nil
}

// jump 发射跳转并登记局部待解析项
func (g *Generator) jump(kind encoder.JumpKind, target string) {
	pos, size := g.asm.Jump(kind)
	g.em.AddJump(pos, target, size, emit.ScopeLocal)
}

// ============================================================================
// 表达式（结果留在 RAX）
// ============================================================================

func (g *Generator) genExpr(expr ir.Expr) error {
	switch e := expr.(type) {
	case *ir.IntLit:
		g.asm.MovRegImm64(encoder.RAX, e.Value)
		return nil
	case *ir.StrLit:
		return diag.Errorf(diag.E3302, "string literal only allowed in print")
	case *ir.LocalRef:
		off, ok := g.locals[e.Name]
		if !ok {
			return diag.Errorf(diag.E3301, "function %q: undefined variable %q", g.fn.Name, e.Name)
		}
		g.asm.MovRegMem(encoder.RAX, encoder.RBP, off)
		return nil
	case *ir.UnaryExpr:
		return g.genUnary(e)
	case *ir.BinaryExpr:
		return g.genBinary(e)
	case *ir.CallExpr:
		return g.genCall(e)
	default:
		return diag.Errorf(diag.E3302, "unsupported expression %T", expr)
	}
}

func (g *Generator) genUnary(e *ir.UnaryExpr) error {
	if err := g.genExpr(e.X); err != nil {
		return err
	}
	switch e.Op {
	case ir.OpNeg:
		g.asm.Neg(encoder.RAX)
	case ir.OpNot:
		g.asm.NotReg(encoder.RAX)
	default:
		return diag.Errorf(diag.E3302, "unsupported unary operator %s", e.Op)
	}
	return nil
}

// genOperands 左值压栈，右值求入 RCX，左值弹回 RAX
func (g *Generator) genOperands(e *ir.BinaryExpr) error {
	if err := g.genExpr(e.Left); err != nil {
		return err
	}
	g.asm.Push(encoder.RAX)
	if err := g.genExpr(e.Right); err != nil {
		return err
	}
	g.asm.MovRegReg(encoder.RCX, encoder.RAX)
	g.asm.Pop(encoder.RAX)
	return nil
}

func (g *Generator) genBinary(e *ir.BinaryExpr) error {
	if err := g.genOperands(e); err != nil {
		return err
	}

	switch e.Op {
	case ir.OpAdd:
		g.asm.AddRegReg(encoder.RAX, encoder.RCX)
	case ir.OpSub:
		g.asm.SubRegReg(encoder.RAX, encoder.RCX)
	case ir.OpMul:
		g.asm.IMulRegReg(encoder.RAX, encoder.RCX)
	case ir.OpDiv:
		g.asm.CQO()
		g.asm.IDivReg(encoder.RCX)
	case ir.OpMod:
		g.asm.CQO()
		g.asm.IDivReg(encoder.RCX)
		g.asm.MovRegReg(encoder.RAX, encoder.RDX)
	case ir.OpAnd:
		g.asm.AndRegReg(encoder.RAX, encoder.RCX)
	case ir.OpOr:
		g.asm.OrRegReg(encoder.RAX, encoder.RCX)
	case ir.OpXor:
		g.asm.XorRegReg(encoder.RAX, encoder.RCX)
	case ir.OpShl:
		g.asm.ShlRegCL(encoder.RAX)
	case ir.OpShr:
		// 语言整数有符号，右移取算术形式
		g.asm.SarRegCL(encoder.RAX)
	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		g.asm.CmpRegReg(encoder.RAX, encoder.RCX)
		g.asm.SetCond(compareCond(e.Op), encoder.RAX)
		g.asm.MovzxReg8(encoder.RAX, encoder.RAX)
	default:
		return diag.Errorf(diag.E3302, "unsupported binary operator %s", e.Op)
	}
	return nil
}

func compareCond(op ir.Op) encoder.Cond {
	switch op {
	case ir.OpEq:
		return encoder.CondE
	case ir.OpNe:
		return encoder.CondNE
	case ir.OpLt:
		return encoder.CondL
	case ir.OpLe:
		return encoder.CondLE
	case ir.OpGt:
		return encoder.CondG
	default:
		return encoder.CondGE
	}
}

func (g *Generator) genCall(e *ir.CallExpr) error {
	if len(e.Args) > len(argRegs) {
		return diag.Errorf(diag.E3302, "call to %q: more than %d arguments not supported",
			e.Name, len(argRegs))
	}
	for _, arg := range e.Args {
		if err := g.genExpr(arg); err != nil {
			return err
		}
		g.asm.Push(encoder.RAX)
	}
	for i := len(e.Args) - 1; i >= 0; i-- {
		g.asm.Pop(argRegs[i])
	}
	// 跨函数引用走全局标签，终态解析时统一回填
	pos, size := g.asm.CallRel()
	g.em.AddJump(pos, e.Name, size, emit.ScopeGlobal)
	return nil
}
