package parser_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gopwat/pwatc/internal/parser"
	"github.com/gopwat/pwatc/internal/source"
)

func check(t *testing.T, input string) int {
	t.Helper()
	p := parser.New(source.New([]byte(input), ""), io.Discard)
	diags, err := p.Check()
	require.NoError(t, err)
	return diags.Count()
}

func TestCheckSyntax(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		wantCount int
	}{
		{"empty program", `program Name;
begin
end.`, 0},
		{"variables block", `program Name;
var
  a: integer;
begin
end.`, 0},
		{"missing semicolon after program", `program Name
begin
end.`, 1},
		{"missing semicolon in type definitions", `program Name;
type
  a = integer
begin
end.`, 1},
		{"missing semicolon in var definitions", `program Name;
var
  a: integer
begin
end.`, 1},
		{"stray end", `program Name;
begin
  end
end.`, 1},
		{"record in variable block", `program Name;
var
  a: record
    a: integer;
  end;
begin
end.`, 0},
		{"for loop correct", `program Name;
var
  ix: integer;
begin
  for ix := 0 to 10 do begin
    writeln_int(ix)
  end
end.`, 0},
		{"for loop missing direction", `program Name;
var
  ix: integer;
begin
  for ix := 0 10 do begin
    writeln_int(ix)
  end
end.`, 1},
		{"for loop missing do", `program Name;
var
  ix: integer;
begin
  for ix := 0 to 10
    writeln_int(ix)
  end
end.`, 1},
		{"empty file", ``, 0},
		{"long correct program", `program Name;
type
  t1 = integer;
  t2 = record
    d: integer;
    f: boolean;
  end;
var
  a: record
    b, d: integer;
    c: boolean;
  end;
  b: integer;
  c: char;
  ix: integer;
begin
  c := 'a';

  if b = 25 then begin
      a.b := 1;
      a.c := false;

      while a.b > 1 do
          c := 'b'
  end;

  b := 2 + 5*(2-2) + 2;

  repeat begin
      c := 'j'
  end until 0 <> 0;

  for ix := 0 to 5 do begin
      b := b + 1;
  end
end.`, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.wantCount, check(t, c.input))
		})
	}
}

func TestCheckSemantics(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		wantCount int
	}{
		{"var redefinition global", `program Name;
var
  a: integer;
  a: boolean;
begin
end.`, 1},
		{"var redefinition line", `program Name;
var
  a, a: integer;
begin
end.`, 1},
		{"type redefinition", `program Name;
type
  a = integer;
  a = record end;
begin
end.`, 1},
		{"bad assignment", `program Name;
var
  a: integer;
  b: boolean;
begin
  a := b
end.`, 1},
		{"boolean assignment", `program Name;
var
  a: boolean;
begin
  a := 1 = 1
end.`, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.wantCount, check(t, c.input))
		})
	}
}

func TestWithStatementMergesFieldsLastWriteWins(t *testing.T) {
	input := `program Name;
var
  a: record
    x: integer;
  end;
  b: record
    x: boolean;
  end;
begin
  with a, b do x := true
end.`
	require.Equal(t, 0, check(t, input))
}

func TestUnsupportedOperatorReportsSemanticDiagnostic(t *testing.T) {
	input := `program Name;
var
  a, b, c: integer;
begin
  c := a mod b
end.`
	require.Equal(t, 1, check(t, input))
}

func TestSubrangeTypeUnimplemented(t *testing.T) {
	input := `program Name;
type
  t = 1..10;
begin
end.`
	require.Equal(t, 1, check(t, input))
}
