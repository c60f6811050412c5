// Package emit implements the streaming WAT (WebAssembly text) writer:
// Output, a fragment buffer with indentation and template back-patching, and
// Emitter, the set of WAT emission primitives the parser drives directly.
// Grounded on original_source/src/translation/{output,wasm}.rs.
package emit

import (
	"fmt"
	"io"
	"strings"
)

// template marks a fragment containing a type placeholder still to be
// resolved by a later FillNearestUnknown call.
const template = "UNKNOWN"

// Output is an ordered list of text fragments written out on Flush, with
// indentation tracking and LIFO back-patching of not-yet-known types.
type Output struct {
	indent          int
	parts           []string
	templateIndices []int
	w               io.Writer
}

// NewOutput creates an Output writing to w on Flush.
func NewOutput(w io.Writer) *Output {
	return &Output{parts: make([]string, 0, 16), w: w}
}

// IndentIn increases the indentation level used by WriteNL.
func (o *Output) IndentIn() { o.indent += 2 }

// IndentOut decreases the indentation level used by WriteNL.
func (o *Output) IndentOut() { o.indent -= 2 }

// IndentReset sets the indentation level back to zero.
func (o *Output) IndentReset() { o.indent = 0 }

// WriteNL appends msg on a new, indented line.
func (o *Output) WriteNL(msg string) {
	o.Write(fmt.Sprintf("\n%s%s", strings.Repeat(" ", o.indent), msg))
}

// Write appends msg as a fragment. If msg contains the UNKNOWN template
// marker, its position is recorded for a later FillLastTemplate.
func (o *Output) Write(msg string) {
	if strings.Contains(msg, template) {
		o.templateIndices = append(o.templateIndices, len(o.parts))
	}
	o.parts = append(o.parts, msg)
}

// FillLastTemplate replaces the UNKNOWN marker in the most recently recorded
// template fragment with with, and forgets that slot. A no-op if there is no
// pending template.
func (o *Output) FillLastTemplate(with string) {
	n := len(o.templateIndices)
	if n == 0 {
		return
	}
	idx := o.templateIndices[n-1]
	o.templateIndices = o.templateIndices[:n-1]
	o.parts[idx] = strings.ReplaceAll(o.parts[idx], template, with)
}

// Flush writes every buffered fragment to the underlying writer and clears
// the buffer. It panics on I/O failure, matching the teacher source's
// Drop impl treating a write failure as unrecoverable.
func (o *Output) Flush() {
	for _, p := range o.parts {
		if _, err := io.WriteString(o.w, p); err != nil {
			panic(fmt.Sprintf("IO error occurred when generating code: %v", err))
		}
	}
	o.parts = o.parts[:0]
	o.templateIndices = o.templateIndices[:0]
}
