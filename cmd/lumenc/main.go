package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lumenlang/lumen/internal/codegen"
	"github.com/lumenlang/lumen/internal/config"
	"github.com/lumenlang/lumen/internal/diag"
	"github.com/lumenlang/lumen/internal/elf"
	"github.com/lumenlang/lumen/internal/emit"
	"github.com/lumenlang/lumen/internal/ir"
)

var (
	output   = flag.String("o", "", "Output executable path (overrides lumen.toml)")
	showIR   = flag.Bool("ir", false, "Show parsed IR and exit")
	showHex  = flag.Bool("hex", false, "Dump emitted code bytes")
	showData = flag.Bool("data", false, "Dump data section bytes")
	verbose  = flag.Bool("v", false, "Verbose emission log")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Lumen Compiler Backend v0.1.0")
		fmt.Println()
		fmt.Println("Usage: lumenc [options] <filename.lir>")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -o <path>   Output executable path")
		fmt.Println("  -ir         Show parsed IR and exit")
		fmt.Println("  -hex        Dump emitted code bytes")
		fmt.Println("  -data       Dump data section bytes")
		fmt.Println("  -v          Verbose emission log")
		os.Exit(0)
	}

	filename := flag.Arg(0)
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	// 解析 IR
	mod, err := ir.ParseModule(string(source), filename)
	if err != nil {
		diag.Report(os.Stderr, err)
		os.Exit(1)
	}

	if *showIR {
		fmt.Print(ir.Print(mod))
		return
	}

	// 配置：lumen.toml 可选，命令行覆盖
	cfg := config.Default()
	if path := config.Find(filename); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			diag.Report(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *output != "" {
		cfg.Build.Output = *output
	}

	// 发射
	em := emit.New()
	if *verbose || cfg.Build.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		em.SetObserver(emit.NewZapObserver(logger))
	}

	gen := codegen.New(em)
	if err := gen.Generate(mod); err != nil {
		diag.Report(os.Stderr, err)
		os.Exit(1)
	}

	// 布局、回填、写出
	builder := elf.NewBuilder(cfg.Build.CodeBase)
	if err := builder.WriteFile(em, cfg.Build.Output); err != nil {
		diag.Report(os.Stderr, err)
		os.Exit(1)
	}

	if *showHex {
		fmt.Println("=== Code ===")
		fmt.Print(hex.Dump(em.Buffer().Bytes()))
	}
	if *showData {
		fmt.Println("=== Data ===")
		fmt.Print(hex.Dump(em.Data().Bytes()))
	}

	fmt.Printf("Wrote %s (%d bytes code, %d bytes data)\n",
		cfg.Build.Output, em.Buffer().Len(), em.Data().Len())
}
