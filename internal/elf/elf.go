// Package elf 把发射结果打包成可执行的静态 ELF64 镜像
//
// 这是发射引擎的下游消费者：拿到完成的代码缓冲区、数据段和
// 重定位表之后，计算段布局、固定基地址、按顺序执行重定位回填
// 和全局跳转解析，最后写出文件。
package elf

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/lumenlang/lumen/internal/emit"
)

// DefaultBase 默认加载基地址
const DefaultBase = 0x400000

// ELF 常量（仅本后端用到的子集）
const (
	elfHeaderSize = 64
	phdrSize      = 56

	etExec    = 2
	emX86_64  = 0x3E
	ptLoad    = 1
	pfX       = 1
	pfW       = 2
	pfR       = 4
	pageAlign = 0x1000
)

// Builder ELF 镜像构建器
type Builder struct {
	base uint64 // 代码段加载基地址
}

// NewBuilder 创建构建器
func NewBuilder(base uint64) *Builder {
	if base == 0 {
		base = DefaultBase
	}
	return &Builder{base: base}
}

// Build 完成布局、回填并生成镜像字节
//
// 固定的执行顺序：先 SetBaseAddresses，再重定位 Apply，
// 最后全局跳转解析。三步之后缓冲区才是终态。
func (b *Builder) Build(em *emit.Emitter) ([]byte, error) {
	code := em.Buffer().Bytes()
	data := em.Data().Bytes()

	// 布局：[ELF 头][2 个程序头][.text][.data]
	headerTotal := elfHeaderSize + 2*phdrSize
	textOff := align(headerTotal, 16)
	dataOff := align(textOff+len(code), 16)

	textVAddr := b.base + uint64(textOff)
	dataVAddr := b.base + uint64(dataOff)

	em.Relocs().SetBaseAddresses(textVAddr, dataVAddr)
	if err := em.Relocs().Apply(em.Buffer(), em.Data().Len()); err != nil {
		return nil, fmt.Errorf("apply relocations: %w", err)
	}
	if err := em.ResolveAll(); err != nil {
		return nil, fmt.Errorf("resolve global labels: %w", err)
	}
	code = em.Buffer().Bytes() // 回填后的终态内容

	startPos, ok := em.Labels().Lookup("_start")
	if !ok {
		startPos = 0
	}
	entry := textVAddr + uint64(startPos)

	img := make([]byte, dataOff+len(data))

	// === ELF 头 ===
	copy(img[0:], []byte{0x7F, 'E', 'L', 'F', 2, 1, 1, 0}) // 魔数, 64 位, 小端, v1
	putU16(img[16:], etExec)
	putU16(img[18:], emX86_64)
	putU32(img[20:], 1) // e_version
	putU64(img[24:], entry)
	putU64(img[32:], elfHeaderSize) // e_phoff
	putU64(img[40:], 0)             // e_shoff: 不写节头表
	putU32(img[48:], 0)             // e_flags
	putU16(img[52:], elfHeaderSize) // e_ehsize
	putU16(img[54:], phdrSize)      // e_phentsize
	putU16(img[56:], 2)             // e_phnum
	// e_shentsize/e_shnum/e_shstrndx 保持 0

	// === 程序头 1: 头部 + .text，R+X ===
	ph := img[elfHeaderSize:]
	putU32(ph[0:], ptLoad)
	putU32(ph[4:], pfR|pfX)
	putU64(ph[8:], 0)                          // p_offset
	putU64(ph[16:], b.base)                    // p_vaddr
	putU64(ph[24:], b.base)                    // p_paddr
	putU64(ph[32:], uint64(textOff+len(code))) // p_filesz
	putU64(ph[40:], uint64(textOff+len(code))) // p_memsz
	putU64(ph[48:], pageAlign)

	// === 程序头 2: .data，R+W ===
	ph = img[elfHeaderSize+phdrSize:]
	putU32(ph[0:], ptLoad)
	putU32(ph[4:], pfR|pfW)
	putU64(ph[8:], uint64(dataOff))
	putU64(ph[16:], dataVAddr)
	putU64(ph[24:], dataVAddr)
	putU64(ph[32:], uint64(len(data)))
	putU64(ph[40:], uint64(len(data)))
	putU64(ph[48:], pageAlign)

	copy(img[textOff:], code)
	copy(img[dataOff:], data)

	return img, nil
}

// WriteFile 构建并写出可执行文件
func (b *Builder) WriteFile(em *emit.Emitter, path string) error {
	img, err := b.Build(em)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, img, 0755); err != nil {
		return fmt.Errorf("write executable: %w", err)
	}
	return nil
}

func align(n, to int) int {
	return (n + to - 1) &^ (to - 1)
}

func putU16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func putU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func putU64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
