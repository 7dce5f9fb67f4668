package emit

import (
	"fmt"
	"math"
	"sort"

	"github.com/lumenlang/lumen/internal/diag"
)

// ============================================================================
// 两级标签/跳转解析器
// ============================================================================

// Scope 标签作用域
type Scope int

const (
	ScopeLocal  Scope = iota // 局部：函数作用域退出时立即解析
	ScopeGlobal              // 全局：整个程序发射完成后一次性解析
)

func (s Scope) String() string {
	if s == ScopeLocal {
		return "local"
	}
	return "global"
}

// pendingJump 待解析的跳转
// 跳转指令已写入缓冲区，32 位相对位移字段仍为占位符。
// size 为整条指令长度：无条件跳转/调用 5 字节，条件跳转 6 字节。
type pendingJump struct {
	pos   int    // 指令起始位置
	label string // 目标标签名
	size  int    // 指令长度（5 或 6）
}

// pendingLea 待解析的 RIP 相对取址
// pos 直接指向 4 字节位移字段本身。
type pendingLea struct {
	pos   int
	label string
}

// frame 一个作用域帧：标签表 + 待解析列表
type frame struct {
	name   string
	labels map[string]int
	jumps  []pendingJump
	leas   []pendingLea
}

func newFrame(name string) *frame {
	return &frame{
		name:   name,
		labels: make(map[string]int),
	}
}

// LabelResolver 两级标签解析器
//
// 局部作用域构成一个栈：进入函数时压入帧，退出时对该帧内的
// 所有待解析跳转/取址做解析并丢弃帧。全局表存活于整个编译
// 单元，在所有函数发射完成后由 ResolveAll 一次性排空。
// unified 表容纳未遵循两级纪律、在任何作用域之外登记的标签，
// 全局解析时作为后备查找。
type LabelResolver struct {
	frames   []*frame       // 局部作用域栈
	global   *frame         // 全局帧
	unified  map[string]int // 后备标签表
	uniqueID int            // 合成标签计数器
	resolved bool           // ResolveAll 已执行
}

// NewLabelResolver 创建标签解析器
func NewLabelResolver() *LabelResolver {
	return &LabelResolver{
		global:  newFrame("<global>"),
		unified: make(map[string]int),
	}
}

// EnterScope 进入局部作用域
func (r *LabelResolver) EnterScope(name string) {
	r.frames = append(r.frames, newFrame(name))
}

// InScope 当前是否有打开的局部作用域
func (r *LabelResolver) InScope() bool {
	return len(r.frames) > 0
}

// CurrentScope 返回当前局部作用域名，没有则返回空串
func (r *LabelResolver) CurrentScope() string {
	if len(r.frames) == 0 {
		return ""
	}
	return r.frames[len(r.frames)-1].name
}

// MarkLabel 在 pos 处登记标签
//
// 局部标签进入当前帧；没有打开的局部作用域时，局部标签落入
// 后备表（容忍两级纪律之外的登记）。同一张表内重名是致命错误。
func (r *LabelResolver) MarkLabel(name string, pos int, scope Scope) error {
	switch {
	case scope == ScopeGlobal:
		if _, exists := r.global.labels[name]; exists {
			return diag.Errorf(diag.E3004, "global label %q already defined", name)
		}
		r.global.labels[name] = pos
	case r.InScope():
		f := r.frames[len(r.frames)-1]
		if _, exists := f.labels[name]; exists {
			return diag.Errorf(diag.E3004, "local label %q already defined in scope %q", name, f.name)
		}
		f.labels[name] = pos
	default:
		if _, exists := r.unified[name]; exists {
			return diag.Errorf(diag.E3004, "label %q already defined", name)
		}
		r.unified[name] = pos
	}
	return nil
}

// AddJump 登记一条待解析跳转
//
// pos 为跳转指令起始位置，size 为整条指令长度（5 或 6），
// 位移字段始终是指令的最后 4 个字节。
func (r *LabelResolver) AddJump(pos int, label string, size int, scope Scope) {
	j := pendingJump{pos: pos, label: label, size: size}
	if scope == ScopeLocal && r.InScope() {
		f := r.frames[len(r.frames)-1]
		f.jumps = append(f.jumps, j)
		return
	}
	r.global.jumps = append(r.global.jumps, j)
}

// AddLeaFixup 登记一条待解析的 RIP 相对取址
// pos 指向 4 字节位移字段。
func (r *LabelResolver) AddLeaFixup(pos int, label string, scope Scope) {
	l := pendingLea{pos: pos, label: label}
	if scope == ScopeLocal && r.InScope() {
		f := r.frames[len(r.frames)-1]
		f.leas = append(f.leas, l)
		return
	}
	r.global.leas = append(r.global.leas, l)
}

// ExitScope 退出当前局部作用域并立即解析
//
// 帧内每条跳转在同一帧的标签表中查找目标；找不到即致命错误。
// 解析完成后帧被丢弃，之后不会再被查询。
func (r *LabelResolver) ExitScope(buf *CodeBuffer) error {
	if len(r.frames) == 0 {
		return diag.Errorf(diag.E3005, "ExitScope without matching EnterScope")
	}
	f := r.frames[len(r.frames)-1]
	r.frames = r.frames[:len(r.frames)-1]

	lookup := func(name string) (int, bool) {
		pos, ok := f.labels[name]
		return pos, ok
	}
	if err := resolveJumps(buf, f.jumps, lookup, f.name, diag.E3001); err != nil {
		return err
	}
	return resolveLeas(buf, f.leas, lookup, f.name, diag.E3001)
}

// ResolveAll 终态解析：排空全局表
//
// 必须在所有作用域关闭、整个程序发射完成后恰好调用一次。
// 仍未定义的标签是致命错误，错误信息附带全部已知标签名。
func (r *LabelResolver) ResolveAll(buf *CodeBuffer) error {
	if r.resolved {
		return diag.Errorf(diag.E3005, "ResolveAll called twice")
	}
	if len(r.frames) > 0 {
		return diag.Errorf(diag.E3005, "ResolveAll with %d unclosed local scope(s), innermost %q",
			len(r.frames), r.frames[len(r.frames)-1].name)
	}
	r.resolved = true

	lookup := func(name string) (int, bool) {
		if pos, ok := r.global.labels[name]; ok {
			return pos, ok
		}
		pos, ok := r.unified[name]
		return pos, ok
	}
	if err := r.noteKnown(resolveJumps(buf, r.global.jumps, lookup, "<global>", diag.E3002)); err != nil {
		return err
	}
	if err := r.noteKnown(resolveLeas(buf, r.global.leas, lookup, "<global>", diag.E3002)); err != nil {
		return err
	}
	r.global.jumps = nil
	r.global.leas = nil
	return nil
}

// noteKnown 给全局解析错误附上已知标签清单，帮助定位拼写错误
func (r *LabelResolver) noteKnown(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*diag.Error); ok && e.Code == diag.E3002 {
		return e.WithNote("known labels: %v", r.KnownLabels())
	}
	return err
}

// KnownLabels 返回排序后的全部已知标签名（全局表 + 后备表）
func (r *LabelResolver) KnownLabels() []string {
	names := make([]string, 0, len(r.global.labels)+len(r.unified))
	for name := range r.global.labels {
		names = append(names, name)
	}
	for name := range r.unified {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup 查询标签位置（先全局表后后备表）
func (r *LabelResolver) Lookup(name string) (int, bool) {
	if pos, ok := r.global.labels[name]; ok {
		return pos, true
	}
	pos, ok := r.unified[name]
	return pos, ok
}

// CreateUniqueLabel 生成不与调用方命名冲突的合成标签
func (r *LabelResolver) CreateUniqueLabel() string {
	r.uniqueID++
	return fmt.Sprintf(".L%d", r.uniqueID)
}

// ============================================================================
// 偏移计算与回填
// ============================================================================

// resolveJumps 对一组待解析跳转做偏移计算和回填
//
// 相对位移从跳转指令之后的下一条指令算起：
// offset = target - (pos + size)，位移字段在 pos + (size-4) 处。
func resolveJumps(buf *CodeBuffer, jumps []pendingJump, lookup func(string) (int, bool), scopeName, code string) error {
	for _, j := range jumps {
		target, ok := lookup(j.label)
		if !ok {
			return diag.Errorf(code, "undefined %s label %q in scope %q",
				scopeKindName(code), j.label, scopeName)
		}
		offset := int64(target) - int64(j.pos+j.size)
		if offset < math.MinInt32 || offset > math.MaxInt32 {
			return diag.Errorf(diag.E3003, "jump to %q: offset %d does not fit in signed 32 bits", j.label, offset)
		}
		if err := buf.PutU32(j.pos+j.size-4, uint32(int32(offset))); err != nil {
			return err
		}
	}
	return nil
}

// scopeKindName 错误码对应的作用域种类名
func scopeKindName(code string) string {
	if code == diag.E3002 {
		return "global"
	}
	return "local"
}

// resolveLeas 回填 RIP 相对位移
// RIP 指向位移字段之后：offset = target - (pos + 4)。
func resolveLeas(buf *CodeBuffer, leas []pendingLea, lookup func(string) (int, bool), scopeName, code string) error {
	for _, l := range leas {
		target, ok := lookup(l.label)
		if !ok {
			return diag.Errorf(code, "undefined %s label %q in scope %q (lea fixup)",
				scopeKindName(code), l.label, scopeName)
		}
		offset := int64(target) - int64(l.pos+4)
		if offset < math.MinInt32 || offset > math.MaxInt32 {
			return diag.Errorf(diag.E3003, "lea of %q: offset %d does not fit in signed 32 bits", l.label, offset)
		}
		if err := buf.PutU32(l.pos, uint32(int32(offset))); err != nil {
			return err
		}
	}
	return nil
}
