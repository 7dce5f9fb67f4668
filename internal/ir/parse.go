package ir

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/lumenlang/lumen/internal/encoder"
)

// ============================================================================
// 文本 IR 加载器
// ============================================================================
//
// .lir 文件是模块的 S 表达式形式，供驱动程序和测试使用：
//
//   (module
//     (func main (param)
//       (let x 10)
//       (while (lt x 20)
//         (assign x (add x 1)))
//       (print "done\n")
//       (return x)))
//
// 分号到行尾是注释。

// sexpr 一个 S 表达式节点：原子、字符串或列表
type sexpr struct {
	atom   string
	str    string
	isStr  bool
	list   []*sexpr
	isList bool
	line   int
}

// ParseModule 从文本解析模块
func ParseModule(src, filename string) (*Module, error) {
	p := &reader{src: src, filename: filename, line: 1}
	node, err := p.read()
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, p.errf(1, "empty input")
	}
	return p.buildModule(node)
}

// reader S 表达式读取器
type reader struct {
	src      string
	pos      int
	line     int
	filename string
}

func (p *reader) errf(line int, format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d: %s", p.filename, line, fmt.Sprintf(format, args...))
}

func (p *reader) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == ';':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

// read 读取下一个 S 表达式，输入耗尽返回 nil
func (p *reader) read() (*sexpr, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, nil
	}
	line := p.line
	c := p.src[p.pos]
	switch {
	case c == '(':
		p.pos++
		node := &sexpr{isList: true, line: line}
		for {
			p.skipSpace()
			if p.pos >= len(p.src) {
				return nil, p.errf(line, "unclosed '('")
			}
			if p.src[p.pos] == ')' {
				p.pos++
				return node, nil
			}
			child, err := p.read()
			if err != nil {
				return nil, err
			}
			node.list = append(node.list, child)
		}
	case c == ')':
		return nil, p.errf(line, "unexpected ')'")
	case c == '"':
		return p.readString(line)
	default:
		start := p.pos
		for p.pos < len(p.src) && !strings.ContainsRune(" \t\r\n();\"", rune(p.src[p.pos])) {
			p.pos++
		}
		return &sexpr{atom: p.src[start:p.pos], line: line}, nil
	}
}

func (p *reader) readString(line int) (*sexpr, error) {
	p.pos++ // 跳过开引号
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return &sexpr{isStr: true, str: sb.String(), line: line}, nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return nil, p.errf(line, "unterminated escape in string")
			}
			switch p.src[p.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case '0':
				sb.WriteByte(0)
			default:
				return nil, p.errf(line, "unknown escape \\%c", p.src[p.pos])
			}
			p.pos++
		case '\n':
			return nil, p.errf(line, "unterminated string literal")
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return nil, p.errf(line, "unterminated string literal")
}

// ============================================================================
// S 表达式到 IR 的转换
// ============================================================================

func (p *reader) buildModule(node *sexpr) (*Module, error) {
	if !node.isList || len(node.list) == 0 || node.list[0].atom != "module" {
		return nil, p.errf(node.line, "expected (module ...)")
	}
	mod := &Module{}
	for _, fn := range node.list[1:] {
		f, err := p.buildFunc(fn)
		if err != nil {
			return nil, err
		}
		if mod.Lookup(f.Name) != nil {
			return nil, p.errf(fn.line, "function %q defined twice", f.Name)
		}
		mod.Funcs = append(mod.Funcs, f)
	}
	if mod.Lookup("main") == nil {
		return nil, p.errf(node.line, "module has no main function")
	}
	return mod, nil
}

func (p *reader) buildFunc(node *sexpr) (*Func, error) {
	if !node.isList || len(node.list) < 2 || node.list[0].atom != "func" {
		return nil, p.errf(node.line, "expected (func name ...)")
	}
	if node.list[1].atom == "" {
		return nil, p.errf(node.line, "function name must be a symbol")
	}
	f := &Func{Name: node.list[1].atom}

	body := node.list[2:]
	// 可选的 (param a b c)
	if len(body) > 0 && body[0].isList && len(body[0].list) > 0 && body[0].list[0].atom == "param" {
		for _, prm := range body[0].list[1:] {
			if prm.atom == "" {
				return nil, p.errf(prm.line, "parameter name must be a symbol")
			}
			f.Params = append(f.Params, prm.atom)
		}
		body = body[1:]
	}
	for _, sn := range body {
		s, err := p.buildStmt(sn)
		if err != nil {
			return nil, err
		}
		f.Body = append(f.Body, s)
	}
	return f, nil
}

func (p *reader) buildBlock(nodes []*sexpr) ([]Stmt, error) {
	var stmts []Stmt
	for _, n := range nodes {
		s, err := p.buildStmt(n)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *reader) buildStmt(node *sexpr) (Stmt, error) {
	if !node.isList || len(node.list) == 0 {
		return nil, p.errf(node.line, "expected statement form")
	}
	head := node.list[0].atom
	args := node.list[1:]
	switch head {
	case "let", "assign":
		if len(args) != 2 || args[0].atom == "" {
			return nil, p.errf(node.line, "expected (%s name expr)", head)
		}
		value, err := p.buildExpr(args[1])
		if err != nil {
			return nil, err
		}
		if head == "let" {
			return &LetStmt{Name: args[0].atom, Value: value}, nil
		}
		return &AssignStmt{Name: args[0].atom, Value: value}, nil
	case "if":
		if len(args) < 2 || len(args) > 3 {
			return nil, p.errf(node.line, "expected (if cond (then ...) (else ...)?)")
		}
		cond, err := p.buildExpr(args[0])
		if err != nil {
			return nil, err
		}
		then, err := p.buildClause(args[1], "then")
		if err != nil {
			return nil, err
		}
		stmt := &IfStmt{Cond: cond, Then: then}
		if len(args) == 3 {
			els, err := p.buildClause(args[2], "else")
			if err != nil {
				return nil, err
			}
			stmt.Else = els
		}
		return stmt, nil
	case "while":
		if len(args) < 1 {
			return nil, p.errf(node.line, "expected (while cond stmts...)")
		}
		cond, err := p.buildExpr(args[0])
		if err != nil {
			return nil, err
		}
		body, err := p.buildBlock(args[1:])
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body}, nil
	case "return":
		if len(args) == 0 {
			return &ReturnStmt{}, nil
		}
		if len(args) != 1 {
			return nil, p.errf(node.line, "expected (return expr?)")
		}
		value, err := p.buildExpr(args[0])
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: value}, nil
	case "print":
		if len(args) != 1 {
			return nil, p.errf(node.line, "expected (print expr)")
		}
		value, err := p.buildExpr(args[0])
		if err != nil {
			return nil, err
		}
		return &PrintStmt{Value: value}, nil
	case "call":
		x, err := p.buildExpr(node)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: x}, nil
	default:
		return nil, p.errf(node.line, "unknown statement form %q", head)
	}
}

func (p *reader) buildClause(node *sexpr, keyword string) ([]Stmt, error) {
	if !node.isList || len(node.list) == 0 || node.list[0].atom != keyword {
		return nil, p.errf(node.line, "expected (%s stmts...)", keyword)
	}
	return p.buildBlock(node.list[1:])
}

var binOps = map[string]Op{
	"add": OpAdd, "sub": OpSub, "mul": OpMul, "div": OpDiv, "mod": OpMod,
	"and": OpAnd, "or": OpOr, "xor": OpXor, "shl": OpShl, "shr": OpShr,
	"eq": OpEq, "ne": OpNe, "lt": OpLt, "le": OpLe, "gt": OpGt, "ge": OpGe,
}

var unOps = map[string]Op{
	"neg": OpNeg, "not": OpNot,
}

func (p *reader) buildExpr(node *sexpr) (Expr, error) {
	switch {
	case node.isStr:
		return &StrLit{Value: node.str}, nil
	case !node.isList:
		if isIntLit(node.atom) {
			v, ok := new(big.Int).SetString(node.atom, 0)
			if !ok {
				return nil, p.errf(node.line, "malformed integer literal %q", node.atom)
			}
			// 超出 64 位的字面量按模 2^64 环绕，与目标机补码语义一致
			return &IntLit{Value: encoder.TruncateImm64(v)}, nil
		}
		return &LocalRef{Name: node.atom}, nil
	case len(node.list) == 0:
		return nil, p.errf(node.line, "empty expression")
	}

	head := node.list[0].atom
	args := node.list[1:]
	if op, ok := binOps[head]; ok {
		if len(args) != 2 {
			return nil, p.errf(node.line, "operator %q takes two operands", head)
		}
		left, err := p.buildExpr(args[0])
		if err != nil {
			return nil, err
		}
		right, err := p.buildExpr(args[1])
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op, Left: left, Right: right}, nil
	}
	if op, ok := unOps[head]; ok {
		if len(args) != 1 {
			return nil, p.errf(node.line, "operator %q takes one operand", head)
		}
		x, err := p.buildExpr(args[0])
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, X: x}, nil
	}
	if head == "call" {
		if len(args) < 1 || args[0].atom == "" {
			return nil, p.errf(node.line, "expected (call name args...)")
		}
		call := &CallExpr{Name: args[0].atom}
		for _, an := range args[1:] {
			arg, err := p.buildExpr(an)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		return call, nil
	}
	return nil, p.errf(node.line, "unknown expression form %q", head)
}

func isIntLit(atom string) bool {
	if atom == "" {
		return false
	}
	if atom[0] == '-' || atom[0] == '+' {
		return len(atom) > 1 && atom[1] >= '0' && atom[1] <= '9'
	}
	return atom[0] >= '0' && atom[0] <= '9'
}
