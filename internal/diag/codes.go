// Package diag 提供 Lumen 编译器后端的诊断系统
package diag

// ============================================================================
// 诊断级别
// ============================================================================

// Level 诊断级别
type Level int

const (
	LevelError Level = iota // 错误（致命，终止编译）
	LevelNote               // 提示
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelNote:
		return "note"
	default:
		return "unknown"
	}
}

// ============================================================================
// 后端错误码 (E3xxx)
// ============================================================================

// 后端错误码常量
const (
	// E3001-E3099: 标签解析错误
	E3001 = "E3001" // 未定义的局部标签
	E3002 = "E3002" // 未定义的全局标签
	E3003 = "E3003" // 跳转偏移超出 32 位有符号范围
	E3004 = "E3004" // 标签重复定义
	E3005 = "E3005" // 作用域状态错误（未匹配的进入/退出、重复终态解析）

	// E3100-E3199: 指令编码错误
	E3101 = "E3101" // 不支持的寄存器名
	E3102 = "E3102" // 不支持的操作数组合

	// E3200-E3299: 重定位错误
	E3201 = "E3201" // 重定位代码偏移越界
	E3202 = "E3202" // 基地址未设置即执行重定位

	// E3300-E3399: 代码生成错误
	E3301 = "E3301" // 未定义的局部变量
	E3302 = "E3302" // 不支持的 IR 结构
)

// codeMessages 错误码简述
var codeMessages = map[string]string{
	E3001: "undefined local label",
	E3002: "undefined global label",
	E3003: "jump offset overflow",
	E3004: "duplicate label",
	E3005: "invalid scope state",
	E3101: "unsupported register",
	E3102: "unsupported operand combination",
	E3201: "relocation out of bounds",
	E3202: "base address not set",
	E3301: "undefined local variable",
	E3302: "unsupported IR construct",
}

// CodeMessage 返回错误码的简述
func CodeMessage(code string) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return "unknown error"
}
