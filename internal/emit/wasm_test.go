package emit_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gopwat/pwatc/internal/emit"
	"github.com/gopwat/pwatc/internal/token"
	"github.com/gopwat/pwatc/internal/types"
)

func TestEmitterBasicModule(t *testing.T) {
	var buf bytes.Buffer
	e := emit.New(&buf)

	e.ModStart()
	e.FuncStart("program", true)
	e.FuncLocal("r0", types.IntegerType)
	e.Constant("1", types.IntegerType)
	e.LocalSet("r0")
	e.FuncEnd()
	e.ModEnd()
	e.Flush()

	out := buf.String()
	require.Contains(t, out, "(module")
	require.Contains(t, out, `(export "program")`)
	require.Contains(t, out, "(local $r0 i32)")
	require.Contains(t, out, "i32.const 1")
	require.Contains(t, out, "local.set $r0")
}

func TestEmitterSilenceStopsAllOutput(t *testing.T) {
	var buf bytes.Buffer
	e := emit.New(&buf)

	e.ModStart()
	e.Silence()
	e.FuncStart("program", true)
	e.Constant("1", types.IntegerType)
	e.Flush()

	require.Equal(t, "(module", buf.String())
}

func TestEmitterFillNearestUnknownBackpatchesSign(t *testing.T) {
	var buf bytes.Buffer
	e := emit.New(&buf)

	e.Constant("0", types.UnknownType)
	e.FillNearestUnknown(types.RealType)
	e.Flush()

	require.Contains(t, buf.String(), "f32.const 0")
	require.NotContains(t, buf.String(), "UNKNOWN")
}

func TestEmitterOpUnsupportedOperatorErrors(t *testing.T) {
	var buf bytes.Buffer
	e := emit.New(&buf)

	err := e.Op(token.IntegerDivide, types.IntegerType)
	require.Error(t, err)
}

func TestEmitterRelopChoosesSignedIntegerForm(t *testing.T) {
	var buf bytes.Buffer
	e := emit.New(&buf)

	require.NoError(t, e.Relop(token.Lt, types.IntegerType))
	e.Flush()
	require.Contains(t, buf.String(), "i32.lt_s")
}
