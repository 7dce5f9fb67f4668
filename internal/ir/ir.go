// Package ir 定义 Lumen 后端消费的树形中间表示
//
// 前端（词法/语法分析）在别处完成，后端只认这棵树：
// 模块由函数组成，函数体是语句树，表达式是子树。
package ir

import (
	"fmt"
	"strings"
)

// ============================================================================
// 运算符
// ============================================================================

// Op 运算符
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpNeg // 一元取负
	OpNot // 一元位非
)

var opNames = [...]string{
	"add", "sub", "mul", "div", "mod",
	"and", "or", "xor", "shl", "shr",
	"eq", "ne", "lt", "le", "gt", "ge",
	"neg", "not",
}

func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return "op?"
}

// IsComparison 是否是比较运算符
func (op Op) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

// ============================================================================
// 模块与函数
// ============================================================================

// Module 一个编译单元
type Module struct {
	Funcs []*Func
}

// Func 一个函数定义
type Func struct {
	Name   string
	Params []string
	Body   []Stmt
}

// Lookup 按名称查找函数
func (m *Module) Lookup(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ============================================================================
// 语句
// ============================================================================

// Stmt 语句节点
type Stmt interface {
	stmtNode()
	String() string
}

// LetStmt 声明并初始化局部变量
type LetStmt struct {
	Name  string
	Value Expr
}

// AssignStmt 给已声明的局部变量赋值
type AssignStmt struct {
	Name  string
	Value Expr
}

// IfStmt 条件分支，Else 可为空
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// WhileStmt 循环
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

// ReturnStmt 返回，Value 为 nil 时返回 0
type ReturnStmt struct {
	Value Expr
}

// PrintStmt 输出字符串字面量
type PrintStmt struct {
	Value Expr
}

// ExprStmt 作为语句出现的表达式（如调用）
type ExprStmt struct {
	X Expr
}

func (*LetStmt) stmtNode()    {}
func (*AssignStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}
func (*PrintStmt) stmtNode()  {}
func (*ExprStmt) stmtNode()   {}

func (s *LetStmt) String() string    { return fmt.Sprintf("(let %s %s)", s.Name, s.Value) }
func (s *AssignStmt) String() string { return fmt.Sprintf("(assign %s %s)", s.Name, s.Value) }
func (s *IfStmt) String() string {
	if len(s.Else) == 0 {
		return fmt.Sprintf("(if %s (then %s))", s.Cond, stmtList(s.Then))
	}
	return fmt.Sprintf("(if %s (then %s) (else %s))", s.Cond, stmtList(s.Then), stmtList(s.Else))
}
func (s *WhileStmt) String() string { return fmt.Sprintf("(while %s %s)", s.Cond, stmtList(s.Body)) }
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "(return)"
	}
	return fmt.Sprintf("(return %s)", s.Value)
}
func (s *PrintStmt) String() string { return fmt.Sprintf("(print %s)", s.Value) }
func (s *ExprStmt) String() string  { return s.X.String() }

func stmtList(stmts []Stmt) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// ============================================================================
// 表达式
// ============================================================================

// Expr 表达式节点
type Expr interface {
	exprNode()
	String() string
}

// IntLit 整数字面量
// 值已按模 2^64 截断为补码位模式。
type IntLit struct {
	Value uint64
}

// StrLit 字符串字面量
type StrLit struct {
	Value string
}

// LocalRef 局部变量引用
type LocalRef struct {
	Name string
}

// UnaryExpr 一元运算
type UnaryExpr struct {
	Op Op
	X  Expr
}

// BinaryExpr 二元运算
type BinaryExpr struct {
	Op    Op
	Left  Expr
	Right Expr
}

// CallExpr 函数调用
type CallExpr struct {
	Name string
	Args []Expr
}

func (*IntLit) exprNode()     {}
func (*StrLit) exprNode()     {}
func (*LocalRef) exprNode()   {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}

func (e *IntLit) String() string   { return fmt.Sprintf("%d", e.Value) }
func (e *StrLit) String() string   { return fmt.Sprintf("%q", e.Value) }
func (e *LocalRef) String() string { return e.Name }
func (e *UnaryExpr) String() string {
	return fmt.Sprintf("(%s %s)", e.Op, e.X)
}
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op, e.Left, e.Right)
}
func (e *CallExpr) String() string {
	parts := make([]string, 0, len(e.Args)+2)
	parts = append(parts, "call", e.Name)
	for _, arg := range e.Args {
		parts = append(parts, arg.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Print 打印整个模块（调试用）
func Print(m *Module) string {
	var sb strings.Builder
	sb.WriteString("(module\n")
	for _, f := range m.Funcs {
		fmt.Fprintf(&sb, "  (func %s (param %s)\n", f.Name, strings.Join(f.Params, " "))
		for _, s := range f.Body {
			fmt.Fprintf(&sb, "    %s\n", s)
		}
		sb.WriteString("  )\n")
	}
	sb.WriteString(")\n")
	return sb.String()
}
