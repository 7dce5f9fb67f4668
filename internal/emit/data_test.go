// data_test.go - 数据段去重测试

package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestInternDedup 相同内容只保留一份，偏移稳定
func TestInternDedup(t *testing.T) {
	d := NewDataSection()

	first := d.InternString("hello")
	second := d.InternString("hello")
	assert.Equal(t, first, second)
	assert.Equal(t, 6, d.Len()) // 5 字节内容 + 1 字节终止符

	// "world" 紧跟在 "hello\0" 之后
	third := d.InternString("world")
	assert.Equal(t, first+6, third)
	assert.Equal(t, 12, d.Len())

	// 再次驻留不增长
	d.InternString("world")
	d.InternString("hello")
	assert.Equal(t, 12, d.Len())
}

// TestInternContent 内容带 NUL 终止符原样落盘
func TestInternContent(t *testing.T) {
	d := NewDataSection()
	off := d.InternString("hi")
	assert.Equal(t, 0, off)
	assert.Equal(t, []byte{'h', 'i', 0}, d.Bytes())
}

// TestInternBytes 任意字节内容参与同一去重
func TestInternBytes(t *testing.T) {
	d := NewDataSection()
	a := d.InternBytes([]byte{1, 2, 3})
	b := d.InternBytes([]byte{1, 2, 3})
	assert.Equal(t, a, b)
	assert.Equal(t, 4, d.Len())
}

// TestInternEmpty 空串也有稳定偏移（只占终止符一个字节）
func TestInternEmpty(t *testing.T) {
	d := NewDataSection()
	off := d.InternString("")
	assert.Equal(t, 0, off)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, 0, d.InternString(""))
	assert.Equal(t, 1, d.Len())
}
