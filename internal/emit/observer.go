package emit

import (
	"go.uber.org/zap"
)

// ============================================================================
// 发射过程观察者
// ============================================================================

// Observer 发射过程的插桩接口
//
// 通过显式注入传给 Emitter，引擎自身从不直接打日志。
// 所有方法都可能在热路径上被调用，实现应保持轻量。
type Observer interface {
	OnScopeEnter(name string)
	OnScopeExit(name string)
	OnLabel(name string, pos int, scope Scope)
	OnJump(label string, pos, size int, scope Scope)
	OnData(offset, size int)
	OnReloc(codeOffset, dataOffset int)
	OnResolveAll(known int)
}

// NopObserver 空实现
type NopObserver struct{}

func (NopObserver) OnScopeEnter(name string)                       {}
func (NopObserver) OnScopeExit(name string)                        {}
func (NopObserver) OnLabel(name string, pos int, scope Scope)      {}
func (NopObserver) OnJump(label string, pos, size int, scope Scope) {}
func (NopObserver) OnData(offset, size int)                        {}
func (NopObserver) OnReloc(codeOffset, dataOffset int)             {}
func (NopObserver) OnResolveAll(known int)                         {}

// ============================================================================
// zap 日志观察者
// ============================================================================

// ZapObserver 把发射事件写入 zap 日志，供 -v 模式使用
type ZapObserver struct {
	log *zap.Logger
}

// NewZapObserver 创建日志观察者
func NewZapObserver(log *zap.Logger) *ZapObserver {
	return &ZapObserver{log: log}
}

func (o *ZapObserver) OnScopeEnter(name string) {
	o.log.Debug("enter scope", zap.String("scope", name))
}

func (o *ZapObserver) OnScopeExit(name string) {
	o.log.Debug("exit scope", zap.String("scope", name))
}

func (o *ZapObserver) OnLabel(name string, pos int, scope Scope) {
	o.log.Debug("mark label",
		zap.String("label", name),
		zap.Int("pos", pos),
		zap.String("scope", scope.String()))
}

func (o *ZapObserver) OnJump(label string, pos, size int, scope Scope) {
	o.log.Debug("pending jump",
		zap.String("target", label),
		zap.Int("pos", pos),
		zap.Int("size", size),
		zap.String("scope", scope.String()))
}

func (o *ZapObserver) OnData(offset, size int) {
	o.log.Debug("intern data", zap.Int("offset", offset), zap.Int("size", size))
}

func (o *ZapObserver) OnReloc(codeOffset, dataOffset int) {
	o.log.Debug("record relocation",
		zap.Int("code_offset", codeOffset),
		zap.Int("data_offset", dataOffset))
}

func (o *ZapObserver) OnResolveAll(known int) {
	o.log.Debug("resolve globals", zap.Int("known_labels", known))
}
