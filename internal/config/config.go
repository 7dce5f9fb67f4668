// Package config 实现 Lumen 构建配置
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// 常量定义
const (
	ConfigFileName = "lumen.toml" // 配置文件名
)

// Config 构建配置
type Config struct {
	Package PackageInfo `toml:"package"`
	Build   BuildInfo   `toml:"build"`
}

// PackageInfo 包信息
type PackageInfo struct {
	// Name 包名
	Name string `toml:"name"`

	// Version 版本号（遵循语义化版本，如 1.0.0）
	Version string `toml:"version"`
}

// BuildInfo 构建选项
type BuildInfo struct {
	// Output 输出可执行文件路径
	Output string `toml:"output"`

	// CodeBase 代码段加载基地址
	CodeBase uint64 `toml:"code-base"`

	// Verbose 打印发射过程日志
	Verbose bool `toml:"verbose"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Package: PackageInfo{
			Name:    "main",
			Version: "0.1.0",
		},
		Build: BuildInfo{
			Output:   "a.out",
			CodeBase: 0x400000,
		},
	}
}

// Load 从文件加载配置，缺失的字段取默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Find 从指定路径向上查找配置文件
// 返回配置文件的完整路径，找不到则返回空串。
func Find(startPath string) string {
	info, err := os.Stat(startPath)
	if err != nil {
		return ""
	}

	var dir string
	if info.IsDir() {
		dir = startPath
	} else {
		dir = filepath.Dir(startPath)
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
