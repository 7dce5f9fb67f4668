// emitter_test.go - 发射器组合根测试

package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver 记录回调事件的测试观察者
type recordingObserver struct {
	NopObserver
	scopes []string
	labels []string
	jumps  []string
	datas  int
	relocs int
}

func (o *recordingObserver) OnScopeEnter(name string)                  { o.scopes = append(o.scopes, "+"+name) }
func (o *recordingObserver) OnScopeExit(name string)                   { o.scopes = append(o.scopes, "-"+name) }
func (o *recordingObserver) OnLabel(name string, pos int, scope Scope) { o.labels = append(o.labels, name) }
func (o *recordingObserver) OnJump(label string, pos, size int, scope Scope) {
	o.jumps = append(o.jumps, label)
}
func (o *recordingObserver) OnData(offset, size int)        { o.datas++ }
func (o *recordingObserver) OnReloc(codeOff, dataOff int)   { o.relocs++ }

// TestEmitterOwnership 组合根持有全部共享状态
func TestEmitterOwnership(t *testing.T) {
	em := New()
	require.NotNil(t, em.Buffer())
	require.NotNil(t, em.Data())
	require.NotNil(t, em.Labels())
	require.NotNil(t, em.Relocs())
	assert.Equal(t, 0, em.Position())

	em.Buffer().Append(0x90, 0x90)
	assert.Equal(t, 2, em.Position())
}

// TestEmitterObserver 事件通过注入的观察者流出
func TestEmitterObserver(t *testing.T) {
	em := New()
	obs := &recordingObserver{}
	em.SetObserver(obs)

	em.EnterScope("main")
	require.NoError(t, em.MarkLabel("top", ScopeLocal))
	pos := em.Buffer().Append(0xE9, 0, 0, 0, 0)
	em.AddJump(pos, "top", 5, ScopeLocal)
	require.NoError(t, em.ExitScope())

	em.InternString("hello")
	em.InternString("hello") // 去重命中，不产生事件
	em.RecordReloc(0, 0)

	assert.Equal(t, []string{"+main", "-main"}, obs.scopes)
	assert.Equal(t, []string{"top"}, obs.labels)
	assert.Equal(t, []string{"top"}, obs.jumps)
	assert.Equal(t, 1, obs.datas)
	assert.Equal(t, 1, obs.relocs)
}

// TestEmitterNilObserver nil 恢复为空实现，不崩溃
func TestEmitterNilObserver(t *testing.T) {
	em := New()
	em.SetObserver(nil)
	em.EnterScope("f")
	require.NoError(t, em.ExitScope())
}

// TestEmitterScopeLifecycle 局部作用域在退出时立即解析
func TestEmitterScopeLifecycle(t *testing.T) {
	em := New()

	em.EnterScope("f")
	pos := em.Buffer().Append(0xE9, 0, 0, 0, 0)
	em.AddJump(pos, "end", 5, ScopeLocal)
	em.Buffer().Append(0x90)
	require.NoError(t, em.MarkLabel("end", ScopeLocal))
	require.NoError(t, em.ExitScope())

	// 全局解析仍可独立执行
	require.NoError(t, em.ResolveAll())
}
