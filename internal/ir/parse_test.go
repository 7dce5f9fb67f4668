// parse_test.go - 文本 IR 加载器测试

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseModule 解析一个覆盖全部语句形式的模块
func TestParseModule(t *testing.T) {
	src := `
; 注释到行尾
(module
  (func main (param)
    (let x 10)
    (while (lt x 20)
      (assign x (add x 1)))
    (if (eq x 20)
      (then (print "ok\n"))
      (else (print "bad\n")))
    (call helper x 2)
    (return x))
  (func helper (param a b)
    (return (mul a b))))
`
	mod, err := ParseModule(src, "test.lir")
	require.NoError(t, err)
	require.Len(t, mod.Funcs, 2)

	main := mod.Lookup("main")
	require.NotNil(t, main)
	assert.Empty(t, main.Params)
	require.Len(t, main.Body, 5)

	let, ok := main.Body[0].(*LetStmt)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)
	lit, ok := let.Value.(*IntLit)
	require.True(t, ok)
	assert.Equal(t, uint64(10), lit.Value)

	loop, ok := main.Body[1].(*WhileStmt)
	require.True(t, ok)
	cond, ok := loop.Cond.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpLt, cond.Op)
	require.Len(t, loop.Body, 1)

	branch, ok := main.Body[2].(*IfStmt)
	require.True(t, ok)
	require.Len(t, branch.Then, 1)
	require.Len(t, branch.Else, 1)
	pr, ok := branch.Then[0].(*PrintStmt)
	require.True(t, ok)
	str, ok := pr.Value.(*StrLit)
	require.True(t, ok)
	assert.Equal(t, "ok\n", str.Value)

	es, ok := main.Body[3].(*ExprStmt)
	require.True(t, ok)
	call, ok := es.X.(*CallExpr)
	require.True(t, ok)
	assert.Equal(t, "helper", call.Name)
	assert.Len(t, call.Args, 2)

	helper := mod.Lookup("helper")
	require.NotNil(t, helper)
	assert.Equal(t, []string{"a", "b"}, helper.Params)
}

// TestParseNegativeLiteral 负数字面量按补码落入 64 位
func TestParseNegativeLiteral(t *testing.T) {
	mod, err := ParseModule(`(module (func main (return -1)))`, "neg.lir")
	require.NoError(t, err)
	ret := mod.Funcs[0].Body[0].(*ReturnStmt)
	lit := ret.Value.(*IntLit)
	assert.Equal(t, ^uint64(0), lit.Value)
}

// TestParseOversizedLiteral 超出 64 位的字面量按模 2^64 环绕
func TestParseOversizedLiteral(t *testing.T) {
	// 2^64 + 4
	mod, err := ParseModule(`(module (func main (return 18446744073709551620)))`, "big.lir")
	require.NoError(t, err)
	ret := mod.Funcs[0].Body[0].(*ReturnStmt)
	lit := ret.Value.(*IntLit)
	assert.Equal(t, uint64(4), lit.Value)
}

// TestParseHexLiteral 前缀 0x 按十六进制解析
func TestParseHexLiteral(t *testing.T) {
	mod, err := ParseModule(`(module (func main (return 0xff)))`, "hex.lir")
	require.NoError(t, err)
	ret := mod.Funcs[0].Body[0].(*ReturnStmt)
	lit := ret.Value.(*IntLit)
	assert.Equal(t, uint64(255), lit.Value)
}

// TestParseErrors 各类格式错误都带文件名和行号
func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"空输入", "", "empty input"},
		{"缺少 main", `(module (func f (return 0)))`, "no main function"},
		{"重复定义", `(module (func main) (func main))`, "defined twice"},
		{"未闭合括号", `(module (func main`, "unclosed '('"},
		{"多余右括号", `)`, "unexpected ')'"},
		{"未终止字符串", `(module (func main (print "abc)))`, "unterminated string"},
		{"非法转义", `(module (func main (print "a\q")))`, `unknown escape`},
		{"未知语句", `(module (func main (frob x)))`, "unknown statement form"},
		{"未知表达式", `(module (func main (return (frob x))))`, "unknown expression form"},
		{"操作数个数", `(module (func main (return (add 1))))`, "takes two operands"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseModule(tc.src, "bad.lir")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.Contains(t, err.Error(), "bad.lir:")
		})
	}
}

// TestParseStringEscapes 字符串转义序列
func TestParseStringEscapes(t *testing.T) {
	mod, err := ParseModule(`(module (func main (print "a\n\t\"\\\0b")))`, "esc.lir")
	require.NoError(t, err)
	pr := mod.Funcs[0].Body[0].(*PrintStmt)
	str := pr.Value.(*StrLit)
	assert.Equal(t, "a\n\t\"\\\x00b", str.Value)
}
