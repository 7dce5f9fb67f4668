// config_test.go - 构建配置测试

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault 默认配置
func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "main", cfg.Package.Name)
	assert.Equal(t, "a.out", cfg.Build.Output)
	assert.Equal(t, uint64(0x400000), cfg.Build.CodeBase)
	assert.False(t, cfg.Build.Verbose)
}

// TestLoad 加载完整配置文件
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[package]
name = "demo"
version = "1.2.0"

[build]
output = "demo.bin"
code-base = 0x200000
verbose = true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Package.Name)
	assert.Equal(t, "1.2.0", cfg.Package.Version)
	assert.Equal(t, "demo.bin", cfg.Build.Output)
	assert.Equal(t, uint64(0x200000), cfg.Build.CodeBase)
	assert.True(t, cfg.Build.Verbose)
}

// TestLoadPartial 缺失字段保留默认值
func TestLoadPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[package]
name = "demo"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Package.Name)
	assert.Equal(t, "a.out", cfg.Build.Output)
	assert.Equal(t, uint64(0x400000), cfg.Build.CodeBase)
}

// TestLoadErrors 文件缺失与语法错误
func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`[package`), 0644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

// TestFind 从子目录向上查找
func TestFind(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	cfgPath := filepath.Join(root, ConfigFileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte(""), 0644))

	found := Find(sub)
	require.NotEmpty(t, found)
	// t.TempDir 可能经过符号链接，比较展开后的路径
	wantDir, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(filepath.Dir(found))
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

// TestFindMissing 一路找不到返回空串
func TestFindMissing(t *testing.T) {
	assert.Equal(t, "", Find(filepath.Join(t.TempDir(), "missing")))
}
