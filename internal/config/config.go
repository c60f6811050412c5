// Package config defines the CLI options for cmd/pwatc and their
// validation, parsed with github.com/jessevdk/go-flags the way the sqldef
// family of tools (see _examples/sqldef-sqldef/cmd/*/*.go) parses theirs.
package config

import (
	"fmt"
	"strings"

	"github.com/jessevdk/go-flags"
)

// Options holds the fully parsed and validated command-line configuration.
type Options struct {
	Output    string `short:"o" long:"output" description:"Path to write the compiled WAT module" value-name:"path" default:"a.wat"`
	EmitWasm  bool   `long:"wasm" description:"Assemble the WAT output into a .wasm file after a clean compile"`
	Assembler string `long:"assembler" description:"Path to the wat2wasm-compatible assembler binary" value-name:"path" default:"wat2wasm"`
	Verbose   bool   `short:"v" long:"verbose" description:"Enable verbose logging"`

	Positional struct {
		Input string `positional-arg-name:"input" description:"Pascal source file to compile"`
	} `positional-args:"yes"`
}

// Parse parses args (typically os.Args[1:]) into an Options and validates
// it. A --help invocation is reported as *flags.Error with Type
// ErrHelp; the parser (flags.Default includes PrintErrors) has already
// printed the help text, so callers should exit 0 rather than treating it as
// a usage failure.
func Parse(args []string) (*Options, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] input.pas"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &opts, nil
}

// Input returns the positional source file path.
func (o *Options) Input() string {
	return o.Positional.Input
}

// Validate checks invariants ParseArgs cannot express through struct tags
// alone: a non-empty input path, and a .wat extension on an explicitly
// given output path. This is a CLI-usage failure, not a compilation
// diagnostic, so it is reported as a plain error.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.Positional.Input) == "" {
		return fmt.Errorf("no input file given")
	}
	if !strings.HasSuffix(o.Output, ".wat") {
		return fmt.Errorf("output path %q must have a .wat extension", o.Output)
	}
	return nil
}
