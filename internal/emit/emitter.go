package emit

// ============================================================================
// 发射器（组合根）
// ============================================================================

// Emitter 后端的组合根
//
// 独占持有代码缓冲区、数据段、标签解析器和重定位表，并把
// 它们暴露给外部的 AST 指令生成器。没有任何隐藏的全局状态：
// 所有发射过程共享状态都挂在这一个值上。
type Emitter struct {
	buf    *CodeBuffer
	data   *DataSection
	labels *LabelResolver
	relocs *RelocTable
	obs    Observer
}

// New 创建发射器
func New() *Emitter {
	return &Emitter{
		buf:    NewCodeBuffer(),
		data:   NewDataSection(),
		labels: NewLabelResolver(),
		relocs: NewRelocTable(),
		obs:    NopObserver{},
	}
}

// SetObserver 注入插桩观察者，nil 恢复为空实现
func (e *Emitter) SetObserver(obs Observer) {
	if obs == nil {
		e.obs = NopObserver{}
		return
	}
	e.obs = obs
}

// Buffer 返回代码缓冲区
func (e *Emitter) Buffer() *CodeBuffer {
	return e.buf
}

// Data 返回数据段
func (e *Emitter) Data() *DataSection {
	return e.data
}

// Labels 返回标签解析器
func (e *Emitter) Labels() *LabelResolver {
	return e.labels
}

// Relocs 返回重定位表
func (e *Emitter) Relocs() *RelocTable {
	return e.relocs
}

// Position 返回当前缓冲区末尾位置（即下一条指令的位置）
func (e *Emitter) Position() int {
	return e.buf.Len()
}

// ============================================================================
// 便捷操作（带观察者回调）
// ============================================================================

// EnterScope 进入函数局部作用域
func (e *Emitter) EnterScope(name string) {
	e.labels.EnterScope(name)
	e.obs.OnScopeEnter(name)
}

// ExitScope 退出作用域并立即解析其中全部局部引用
func (e *Emitter) ExitScope() error {
	name := e.labels.CurrentScope()
	if err := e.labels.ExitScope(e.buf); err != nil {
		return err
	}
	e.obs.OnScopeExit(name)
	return nil
}

// MarkLabel 在当前位置登记标签
func (e *Emitter) MarkLabel(name string, scope Scope) error {
	pos := e.buf.Len()
	if err := e.labels.MarkLabel(name, pos, scope); err != nil {
		return err
	}
	e.obs.OnLabel(name, pos, scope)
	return nil
}

// AddJump 登记一条待解析跳转
func (e *Emitter) AddJump(pos int, label string, size int, scope Scope) {
	e.labels.AddJump(pos, label, size, scope)
	e.obs.OnJump(label, pos, size, scope)
}

// AddLeaFixup 登记一条待解析的 RIP 相对取址
func (e *Emitter) AddLeaFixup(pos int, label string, scope Scope) {
	e.labels.AddLeaFixup(pos, label, scope)
}

// InternString 驻留字符串字面量
func (e *Emitter) InternString(s string) int {
	before := e.data.Len()
	off := e.data.InternString(s)
	if e.data.Len() != before {
		e.obs.OnData(off, e.data.Len()-before)
	}
	return off
}

// RecordReloc 登记一条指向数据段的绝对地址重定位
func (e *Emitter) RecordReloc(codeOffset, dataOffset int) {
	e.relocs.Record(codeOffset, dataOffset)
	e.obs.OnReloc(codeOffset, dataOffset)
}

// ResolveAll 终态解析全局标签
func (e *Emitter) ResolveAll() error {
	e.obs.OnResolveAll(len(e.labels.KnownLabels()))
	return e.labels.ResolveAll(e.buf)
}
