// Command pwatc compiles a Pascal-subset source file into WebAssembly text,
// and optionally assembles it into a .wasm binary via an external
// wat2wasm-compatible tool. Grounded on original_source/src/main.rs's
// driver shape, rebuilt around internal/config and internal/assemble.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/gopwat/pwatc/internal/assemble"
	"github.com/gopwat/pwatc/internal/config"
	"github.com/gopwat/pwatc/internal/parser"
	"github.com/gopwat/pwatc/internal/source"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := config.Parse(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := newLogger(opts.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	data, err := os.ReadFile(opts.Input())
	if err != nil {
		logger.Error("failed to read input file", zap.String("path", opts.Input()), zap.Error(err))
		return 1
	}

	outFile, err := os.Create(opts.Output)
	if err != nil {
		logger.Error("failed to create output file", zap.String("path", opts.Output), zap.Error(err))
		return 1
	}
	defer outFile.Close()

	buf := source.New(data, opts.Input())
	p := parser.New(buf, outFile)

	diags, err := p.Compile()
	if err != nil {
		logger.Error("compilation aborted", zap.Error(err))
		return 1
	}

	for _, d := range diags.Items() {
		fmt.Printf("%s:%d:%d: %s\n", strings.TrimSuffix(d.Kind.String(), " error"), d.Pos.Line, d.Pos.Col, d.Message)
	}
	logger.Debug("compilation finished", zap.Int("diagnostics", diags.Count()))

	if opts.EmitWasm && diags.Empty() {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		wasmPath := strings.TrimSuffix(opts.Output, ".wat") + ".wasm"
		logger.Debug("invoking assembler", zap.String("assembler", opts.Assembler), zap.String("output", wasmPath))
		if err := assemble.Run(ctx, opts.Assembler, opts.Output, wasmPath); err != nil {
			logger.Error("assembler invocation failed", zap.Error(err))
			return 1
		}
	}

	return 0
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
