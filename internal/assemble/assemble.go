// Package assemble wraps invocation of an external wat2wasm-compatible
// binary. It is a thin shell around os/exec: all the compiler's own logic
// lives upstream in internal/emit, which has already produced a complete
// .wat file by the time this package is asked to do anything. Grounded on
// original_source/src/main.rs, which shells out to `wat::parse_file` inline;
// here that step is an external process instead of a linked crate.
package assemble

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Run invokes assemblerPath on watPath, instructing it to write wasmPath.
// The assembler is expected to accept wat2wasm's own argument convention:
// `<assembler> <input.wat> -o <output.wasm>`. The subprocess's stderr is
// captured and folded into the returned error so callers don't need to wire
// up their own pipe.
func Run(ctx context.Context, assemblerPath, watPath, wasmPath string) error {
	cmd := exec.CommandContext(ctx, assemblerPath, watPath, "-o", wasmPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("%s: %w: %s", assemblerPath, err, bytes.TrimSpace(stderr.Bytes()))
		}
		return fmt.Errorf("%s: %w", assemblerPath, err)
	}
	return nil
}
