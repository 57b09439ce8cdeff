package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

func TestProgramResultIsLastStatement(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("x", ast.Num(2)),
		ast.Bin("*", ast.ID("x"), ast.Num(21)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	num, ok := result.(runtime.NumberValue)
	if !ok || num.Val != 42 {
		t.Fatalf("expected 42, got %#v", result)
	}
}

func TestDeclareAndReassign(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("x", ast.Num(1)),
		ast.Assign(ast.ID("x"), ast.Num(5)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	val, err := interp.GetVariable("x")
	if err != nil {
		t.Fatalf("expected binding for x: %v", err)
	}
	if num, ok := val.(runtime.NumberValue); !ok || num.Val != 5 {
		t.Fatalf("expected x == 5, got %#v", val)
	}
}

func TestAssignToUndeclaredFails(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Assign(ast.ID("nope"), ast.Num(1)),
	))
	if err == nil {
		t.Fatalf("expected error for assignment to undeclared variable")
	}
}

func TestBlockScopeDoesNotLeak(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("outer", ast.Num(1)),
		ast.Block(
			ast.Declare("inner", ast.Num(2)),
			ast.Assign(ast.ID("outer"), ast.Num(3)),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := interp.GetVariable("inner"); err == nil {
		t.Fatalf("expected inner to be scoped to the block")
	}
	outer, err := interp.GetVariable("outer")
	if err != nil {
		t.Fatalf("expected binding for outer: %v", err)
	}
	if num, ok := outer.(runtime.NumberValue); !ok || num.Val != 3 {
		t.Fatalf("expected outer == 3 via inner assignment, got %#v", outer)
	}
}

func TestIfElseAndOrClauses(t *testing.T) {
	interp := New()
	ifExpr := ast.Iff(ast.Bool(false), ast.Str("then"))
	ifExpr.OrClauses = []*ast.OrClause{
		ast.Or(ast.Bool(true), ast.Block(ast.Str("middle"))),
		ast.Or(nil, ast.Block(ast.Str("else"))),
	}
	result, err := interp.EvaluateProgram(ast.Prog(ifExpr))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := result.(runtime.StringValue); !ok || s.Val != "middle" {
		t.Fatalf("expected \"middle\", got %#v", result)
	}
}

func TestIfWithoutMatchingBranchIsNone(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Iff(ast.Bool(false), ast.Str("unreachable")),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.(runtime.NoneValue); !ok {
		t.Fatalf("expected none, got %#v", result)
	}
}

func TestPrintWritesToConfiguredOutput(t *testing.T) {
	interp := New()
	var buf bytes.Buffer
	interp.SetOutput(&buf)
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Call("print", ast.Str("hello")),
		ast.Call("print", ast.Num(7)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "hello\n7\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestLenAndTypeBuiltins(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Call("len", ast.List(ast.Num(1), ast.Num(2), ast.Num(3))),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 3 {
		t.Fatalf("expected len 3, got %#v", result)
	}

	result, err = interp.EvaluateProgram(ast.Prog(ast.Call("type", ast.Str("s"))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := result.(runtime.StringValue); !ok || s.Val != "string" {
		t.Fatalf("expected type \"string\", got %#v", result)
	}
}

func TestFreezeBlocksMutation(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("xs", ast.List(ast.Num(1))),
		ast.Call("freeze", ast.ID("xs")),
		ast.MethodCall(ast.ID("xs"), "push", ast.Num(2)),
	))
	if err == nil {
		t.Fatalf("expected push on frozen list to fail")
	}
	raised, ok := asRaised(err)
	if !ok {
		t.Fatalf("expected a typed runtime error, got %v", err)
	}
	if raised.ErrType != ErrRuntime {
		t.Fatalf("expected %s, got %s", ErrRuntime, raised.ErrType)
	}
}

func TestConfigStatementSwitchesPrecision(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Config("precision", ast.Str(PrecisionBig)),
		ast.Declare("n", ast.NumRaw("123456789012345678901234567890")),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	val, err := interp.GetVariable("n")
	if err != nil {
		t.Fatalf("expected binding for n: %v", err)
	}
	big, ok := val.(runtime.BigNumberValue)
	if !ok || big.Rep != runtime.RepBigInt {
		t.Fatalf("expected big integer, got %#v", val)
	}
	if got := big.Big.String(); got != "123456789012345678901234567890" {
		t.Fatalf("unexpected big value %s", got)
	}
}

func TestConfigStatementRejectsUnknownPrecision(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Config("precision", ast.Str("float32")),
	))
	if err == nil {
		t.Fatalf("expected a config error")
	}
	raised, ok := asRaised(err)
	if !ok || raised.ErrType != ErrConfig {
		t.Fatalf("expected %s, got %v", ErrConfig, err)
	}
}

func TestStringifyFormats(t *testing.T) {
	interp := New()
	cases := []struct {
		program *ast.Program
		want    string
	}{
		{ast.Prog(ast.Num(1.5)), "1.5"},
		{ast.Prog(ast.Num(3)), "3"},
		{ast.Prog(ast.Str("hi")), "hi"},
		{ast.Prog(ast.Bool(true)), "true"},
		{ast.Prog(ast.None()), "none"},
		{ast.Prog(ast.Sym("ok")), ":ok"},
		{ast.Prog(ast.List(ast.Num(1), ast.Str("a"))), `[1, "a"]`},
	}
	for _, tc := range cases {
		result, err := interp.EvaluateProgram(tc.program)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := interp.Stringify(result); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestStackTraceNamesCallChain(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("inner", nil, ast.Raise(ast.Str("boom"))),
		ast.FnDecl("outer", nil, ast.Call("inner")),
		ast.Call("outer"),
	))
	if err == nil {
		t.Fatalf("expected raised error")
	}
	raised, ok := asRaised(err)
	if !ok {
		t.Fatalf("expected typed error, got %v", err)
	}
	joined := strings.Join(raised.Stack, "|")
	if !strings.Contains(joined, "inner") || !strings.Contains(joined, "outer") {
		t.Fatalf("expected stack to mention inner and outer, got %v", raised.Stack)
	}
}
