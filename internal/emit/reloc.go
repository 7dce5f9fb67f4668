package emit

import (
	"github.com/lumenlang/lumen/internal/diag"
)

// ============================================================================
// 重定位表
// ============================================================================

// Relocation 一条待回填的绝对地址
//
// 代码中 CodeOffset 处有一个 8 字节占位符，指向数据段中
// DataOffset 处的内容。数据段的加载基地址由外部布局阶段
// 决定，之后才能把占位符改写为最终地址。
type Relocation struct {
	CodeOffset int // 占位符在代码缓冲区中的位置
	DataOffset int // 目标在数据段中的偏移
}

// RelocTable 重定位表
//
// 与相对跳转不同，这里记录的是指向数据段的绝对地址。
// Apply 只能在外部布局阶段通过 SetBaseAddresses 固定基地址
// 之后执行，且只执行一次。
type RelocTable struct {
	entries  []Relocation
	codeBase uint64
	dataBase uint64
	baseSet  bool
}

// NewRelocTable 创建重定位表
func NewRelocTable() *RelocTable {
	return &RelocTable{}
}

// Record 登记一条重定位
func (t *RelocTable) Record(codeOffset, dataOffset int) {
	t.entries = append(t.entries, Relocation{
		CodeOffset: codeOffset,
		DataOffset: dataOffset,
	})
}

// Entries 返回当前待处理的重定位列表（供外部构建器检视）
func (t *RelocTable) Entries() []Relocation {
	return t.entries
}

// SetBaseAddresses 由外部布局阶段设置代码段和数据段的加载基地址
func (t *RelocTable) SetBaseAddresses(codeBase, dataBase uint64) {
	t.codeBase = codeBase
	t.dataBase = dataBase
	t.baseSet = true
}

// CodeBase 返回代码段基地址
func (t *RelocTable) CodeBase() uint64 {
	return t.codeBase
}

// DataBase 返回数据段基地址
func (t *RelocTable) DataBase() uint64 {
	return t.dataBase
}

// Apply 回填所有重定位
//
// staticSize 为静态数据段的声明大小。DataOffset 落在静态段
// 之外的条目来自运行期分配，由生成的代码在运行时填写，这里
// 跳过而不报错。CodeOffset 越界则是致命错误。
// 成功后清空待处理列表，保证不会被应用第二次。
func (t *RelocTable) Apply(buf *CodeBuffer, staticSize int) error {
	if !t.baseSet {
		return diag.Errorf(diag.E3202, "relocation apply before base addresses are set")
	}
	for _, e := range t.entries {
		if e.DataOffset < 0 || e.DataOffset >= staticSize {
			// 非静态可解析的地址，运行期填写
			continue
		}
		if e.CodeOffset < 0 || e.CodeOffset+8 > buf.Len() {
			return diag.Errorf(diag.E3201, "relocation code offset %d out of buffer bounds (len %d)",
				e.CodeOffset, buf.Len())
		}
		final := t.dataBase + uint64(e.DataOffset)
		if err := buf.PutU64(e.CodeOffset, final); err != nil {
			return err
		}
	}
	t.entries = nil
	return nil
}
