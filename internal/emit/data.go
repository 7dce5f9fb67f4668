package emit

// ============================================================================
// 数据段
// ============================================================================

// DataSection 去重的常量数据存储
//
// 主要存放以 NUL 结尾的字符串字面量。相同内容只保留一份，
// 每段内容有稳定的段内偏移供代码引用。
type DataSection struct {
	data  []byte
	index map[string]int // 内容 -> 偏移
}

// NewDataSection 创建数据段
func NewDataSection() *DataSection {
	return &DataSection{
		data:  make([]byte, 0, 1024),
		index: make(map[string]int),
	}
}

// InternString 驻留字符串字面量，返回段内偏移
//
// 重复驻留相同内容返回首次的偏移，不追加新字节。
// 存储时在内容后追加一个 NUL 终止符。
func (d *DataSection) InternString(s string) int {
	if off, ok := d.index[s]; ok {
		return off
	}
	off := len(d.data)
	d.data = append(d.data, s...)
	d.data = append(d.data, 0)
	d.index[s] = off
	return off
}

// InternBytes 驻留原始字节内容，返回段内偏移
func (d *DataSection) InternBytes(b []byte) int {
	return d.InternString(string(b))
}

// Len 返回数据段总长度
func (d *DataSection) Len() int {
	return len(d.data)
}

// Bytes 返回数据段内容
func (d *DataSection) Bytes() []byte {
	return d.data
}
