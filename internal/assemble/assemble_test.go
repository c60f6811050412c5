package assemble_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gopwat/pwatc/internal/assemble"
)

// fakeAssembler writes a script to dir that mimics wat2wasm's argument
// convention: it accepts `<input> -o <output>` and either touches the
// output file or, if the input path contains "fail", exits non-zero with
// a message on stderr.
func fakeAssembler(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake assembler script is POSIX shell only")
	}

	path := filepath.Join(dir, "fake-wat2wasm")
	script := `#!/bin/sh
set -e
input="$1"
shift
out=""
while [ "$#" -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift 2 ;;
    *) shift ;;
  esac
done
case "$input" in
  *fail*) echo "bad module" >&2; exit 1 ;;
esac
printf '\x00asm' > "$out"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRunWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	asm := fakeAssembler(t, dir)

	watPath := filepath.Join(dir, "a.wat")
	require.NoError(t, os.WriteFile(watPath, []byte("(module)"), 0o644))
	wasmPath := filepath.Join(dir, "a.wasm")

	err := assemble.Run(context.Background(), asm, watPath, wasmPath)
	require.NoError(t, err)

	data, err := os.ReadFile(wasmPath)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestRunPropagatesAssemblerFailure(t *testing.T) {
	dir := t.TempDir()
	asm := fakeAssembler(t, dir)

	watPath := filepath.Join(dir, "fail.wat")
	require.NoError(t, os.WriteFile(watPath, []byte("(module"), 0o644))
	wasmPath := filepath.Join(dir, "fail.wasm")

	err := assemble.Run(context.Background(), asm, watPath, wasmPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad module")
}

func TestRunMissingAssemblerReturnsError(t *testing.T) {
	dir := t.TempDir()
	err := assemble.Run(context.Background(), filepath.Join(dir, "does-not-exist"), "in.wat", "out.wasm")
	require.Error(t, err)
}
