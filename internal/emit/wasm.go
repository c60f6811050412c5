package emit

import (
	"fmt"
	"io"

	"github.com/gopwat/pwatc/internal/token"
	"github.com/gopwat/pwatc/internal/types"
)

// unsupportedOperator reports an operator or relation the emitter has no
// lowering for. Operators named in spec.md's Non-goals (Modulus, And, Not,
// integer division) and any relation outside Eq/Ne/Le/Lt/Gt/Ge on
// Integer/Real surface this way instead of emitting wrong WAT, mirroring the
// Rust source's todo!()/unimplemented!() panics turned into a catchable Go
// error at the call site.
type unsupportedOperator struct {
	what string
}

func (e *unsupportedOperator) Error() string {
	return fmt.Sprintf("unsupported operator: %s", e.what)
}

// Emitter drives WAT text generation. Once silenced (after the first
// diagnostic is reported elsewhere in the compiler), every emission method
// becomes a no-op so the parser can keep walking the program for further
// diagnostics without producing malformed output. Flush still writes
// whatever was buffered before silencing.
type Emitter struct {
	out      *Output
	silenced bool
}

// New creates an Emitter writing to w.
func New(w io.Writer) *Emitter {
	return &Emitter{out: NewOutput(w)}
}

// Silenced reports whether emission has been suppressed.
func (e *Emitter) Silenced() bool { return e.silenced }

// Silence suppresses all further emission. Idempotent.
func (e *Emitter) Silence() {
	e.silenced = true
}

// Flush writes all buffered output. Call once, at the end of compilation.
func (e *Emitter) Flush() {
	e.out.Flush()
}

func (e *Emitter) ModStart() {
	if e.silenced {
		return
	}
	e.out.Write("(module")
	e.out.IndentIn()
}

func (e *Emitter) ModEnd() {
	if e.silenced {
		return
	}
	e.out.Write(")\n")
}

func (e *Emitter) FuncImport(name string, paramTypes []types.Type) {
	if e.silenced {
		return
	}
	params := ""
	for _, t := range paramTypes {
		params += fmt.Sprintf("(param %s)", typename(t))
	}
	e.out.WriteNL(fmt.Sprintf("(func $%s (import \"imports\" \"%s\") %s)", name, name, params))
}

func (e *Emitter) FuncStart(name string, export bool) {
	if e.silenced {
		return
	}
	part := "$" + name
	if export {
		part = fmt.Sprintf("(export %q)", name)
	}
	e.out.WriteNL(fmt.Sprintf("(func %s", part))
	e.out.IndentIn()
}

func (e *Emitter) FuncLocal(name string, t types.Type) {
	if e.silenced {
		return
	}
	e.out.Write(fmt.Sprintf(" (local $%s %s)", name, typename(t)))
}

func (e *Emitter) FuncResult(t types.Type) {
	if e.silenced {
		return
	}
	e.out.Write(fmt.Sprintf(" (result %s)", typename(t)))
}

func (e *Emitter) FuncEnd() {
	if e.silenced {
		return
	}
	e.out.Write(")\n")
	e.out.IndentOut()
}

func (e *Emitter) Constant(value string, t types.Type) {
	if e.silenced {
		return
	}
	e.out.WriteNL(fmt.Sprintf("%s.const %s", typename(t), value))
}

func (e *Emitter) LocalSet(name string) {
	if e.silenced {
		return
	}
	e.out.WriteNL(fmt.Sprintf("local.set $%s", name))
}

func (e *Emitter) LocalGet(name string) {
	if e.silenced {
		return
	}
	e.out.WriteNL(fmt.Sprintf("local.get $%s", name))
}

// Op emits a binary arithmetic/logical opcode for the given operator at
// type t.
func (e *Emitter) Op(op token.Kind, t types.Type) error {
	if e.silenced {
		return nil
	}
	var cmd string
	switch op {
	case token.Multiply:
		cmd = "mul"
	case token.Plus:
		cmd = "add"
	case token.Minus:
		cmd = "sub"
	case token.Divide:
		cmd = "div"
	case token.Or:
		cmd = "or"
	case token.Xor:
		cmd = "xor"
	default:
		return &unsupportedOperator{what: op.String()}
	}
	e.out.WriteNL(fmt.Sprintf("%s.%s", typename(t), cmd))
	return nil
}

// Relop emits a comparison opcode for relation op between two values of
// type t, choosing the signed integer or float form as appropriate.
func (e *Emitter) Relop(op token.Kind, t types.Type) error {
	if e.silenced {
		return nil
	}
	var cmd string
	switch {
	case op == token.Eq:
		cmd = "eq"
	case op == token.Ne:
		cmd = "ne"
	case op == token.Le && t.Kind == types.Integer:
		cmd = "le_s"
	case op == token.Lt && t.Kind == types.Integer:
		cmd = "lt_s"
	case op == token.Gt && t.Kind == types.Integer:
		cmd = "gt_s"
	case op == token.Ge && t.Kind == types.Integer:
		cmd = "ge_s"
	case op == token.Le && t.Kind == types.Real:
		cmd = "le"
	case op == token.Lt && t.Kind == types.Real:
		cmd = "lt"
	case op == token.Gt && t.Kind == types.Real:
		cmd = "gt"
	case op == token.Ge && t.Kind == types.Real:
		cmd = "ge"
	default:
		return &unsupportedOperator{what: fmt.Sprintf("%s on %s", op, t)}
	}
	e.out.WriteNL(fmt.Sprintf("%s.%s", typename(t), cmd))
	return nil
}

func (e *Emitter) Eqz(t types.Type) {
	if e.silenced {
		return
	}
	e.out.WriteNL(fmt.Sprintf("%s.eqz", typename(t)))
}

func (e *Emitter) Call(name string) {
	if e.silenced {
		return
	}
	e.out.WriteNL(fmt.Sprintf("call $%s", name))
}

func (e *Emitter) IfStart() {
	if e.silenced {
		return
	}
	e.out.WriteNL("(if")
	e.out.IndentIn()
}

func (e *Emitter) ThenStart() {
	if e.silenced {
		return
	}
	e.out.WriteNL("(then")
	e.out.IndentIn()
}

func (e *Emitter) ThenEnd() {
	if e.silenced {
		return
	}
	e.out.Write(")")
	e.out.IndentOut()
}

func (e *Emitter) ElseStart() {
	if e.silenced {
		return
	}
	e.out.WriteNL("(else")
	e.out.IndentIn()
}

func (e *Emitter) ElseEnd() {
	if e.silenced {
		return
	}
	e.out.Write(")")
	e.out.IndentOut()
}

func (e *Emitter) IfEnd() {
	if e.silenced {
		return
	}
	e.out.WriteNL(")")
	e.out.IndentOut()
}

// LoopStart opens the (block (loop ...)) pair used to lower while/for/repeat.
func (e *Emitter) LoopStart(continueLabel, endLabel string) {
	if e.silenced {
		return
	}
	e.out.WriteNL(fmt.Sprintf("(block $%s", endLabel))
	e.out.IndentIn()
	e.out.WriteNL(fmt.Sprintf("(loop $%s", continueLabel))
	e.out.IndentIn()
}

func (e *Emitter) Br(label string) {
	if e.silenced {
		return
	}
	e.out.WriteNL(fmt.Sprintf("br $%s", label))
}

func (e *Emitter) BrIf(label string) {
	if e.silenced {
		return
	}
	e.out.WriteNL(fmt.Sprintf("br_if $%s", label))
}

// LoopEnd closes both the loop and block opened by LoopStart.
func (e *Emitter) LoopEnd() {
	if e.silenced {
		return
	}
	for i := 0; i < 2; i++ {
		e.out.IndentOut()
		e.out.WriteNL(")")
	}
}

// FillNearestUnknown back-patches the most recently emitted UNKNOWN.const
// placeholder (from a negated term whose operand type wasn't known yet) with
// t's concrete WAT type.
func (e *Emitter) FillNearestUnknown(t types.Type) {
	if e.silenced {
		return
	}
	e.out.FillLastTemplate(typename(t))
}

func typename(t types.Type) string {
	switch t.Kind {
	case types.Integer:
		return "i32"
	case types.Real:
		return "f32"
	case types.Scalar:
		return "i32"
	case types.Unknown:
		return template
	default:
		panic("unsupported type: " + t.String())
	}
}
