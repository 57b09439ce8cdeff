package interpreter

import (
	"bytes"
	"testing"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

func TestFactorialRecursion(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("factorial", []*ast.Parameter{ast.Param("n")},
			ast.Iff(ast.Bin("<=", ast.ID("n"), ast.Num(1)),
				ast.Ret(ast.Num(1)),
			),
			ast.Ret(ast.Bin("*", ast.ID("n"),
				ast.Call("factorial", ast.Bin("-", ast.ID("n"), ast.Num(1))))),
		),
		ast.Call("factorial", ast.Num(5)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 120 {
		t.Fatalf("expected 120, got %#v", result)
	}
}

func TestRedeclarationReplacesSameShapeOverload(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("f", nil, ast.Ret(ast.Num(1))),
		ast.FnDecl("f", nil, ast.Ret(ast.Num(2))),
		ast.Call("f"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 2 {
		t.Fatalf("expected redefinition to win, got %#v", result)
	}
}

func TestRejectedOverloadNeverRunsDefaults(t *testing.T) {
	interp := New()
	var out bytes.Buffer
	interp.SetOutput(&out)
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("tick", nil,
			ast.Call("print", ast.Str("tick")),
			ast.Ret(ast.Num(0)),
		),
		ast.FnDeclGuard("f",
			[]*ast.Parameter{ast.Param("a"), ast.ParamDefault("b", ast.Call("tick"))},
			ast.Bin("<", ast.ID("a"), ast.Num(0)),
			ast.Ret(ast.Num(-1)),
		),
		ast.FnDecl("f", []*ast.Parameter{ast.Param("a")},
			ast.Ret(ast.ID("a")),
		),
		ast.Call("f", ast.Num(5)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 5 {
		t.Fatalf("expected unguarded overload, got %#v", result)
	}
	if out.Len() != 0 {
		t.Fatalf("default ran for a rejected overload: %q", out.String())
	}

	result, err = interp.EvaluateProgram(ast.Prog(ast.Call("f", ast.Num(-3))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != -1 {
		t.Fatalf("expected guarded overload, got %#v", result)
	}
	if got := out.String(); got != "tick\n" {
		t.Fatalf("expected the default to run exactly once, got %q", got)
	}
}

func TestRedeclarationKeepsDistinctArities(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("f", nil, ast.Ret(ast.Num(1))),
		ast.FnDecl("f", []*ast.Parameter{ast.Param("x")}, ast.Ret(ast.ID("x"))),
		ast.Bin("+", ast.Call("f"), ast.Call("f", ast.Num(10))),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 11 {
		t.Fatalf("expected both arities callable, got %#v", result)
	}
}

func TestNamedAndPositionalArguments(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("sub", []*ast.Parameter{ast.Param("a"), ast.Param("b")},
			ast.Ret(ast.Bin("-", ast.ID("a"), ast.ID("b"))),
		),
		ast.CallExpr(ast.ID("sub"),
			ast.NamedArg("b", ast.Num(3)),
			ast.NamedArg("a", ast.Num(10)),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 7 {
		t.Fatalf("expected 7, got %#v", result)
	}
}

func TestDefaultParameterEvaluatedAtCallTime(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("base", ast.Num(10)),
		ast.FnDecl("bump", []*ast.Parameter{ast.ParamDefault("by", ast.ID("base"))},
			ast.Ret(ast.ID("by")),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := interp.EvaluateProgram(ast.Prog(ast.Call("bump")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 10 {
		t.Fatalf("expected default 10, got %#v", result)
	}

	_, err = interp.EvaluateProgram(ast.Prog(ast.Assign(ast.ID("base"), ast.Num(50))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err = interp.EvaluateProgram(ast.Prog(ast.Call("bump")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 50 {
		t.Fatalf("expected rebound default 50, got %#v", result)
	}
}

func TestVariadicParameterCollectsRest(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("count", []*ast.Parameter{ast.Param("first"), ast.ParamRest("rest")},
			ast.Ret(ast.MethodCall(ast.ID("rest"), "length")),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := interp.EvaluateProgram(ast.Prog(ast.Call("count", ast.Num(1))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 0 {
		t.Fatalf("expected empty rest, got %#v", result)
	}

	result, err = interp.EvaluateProgram(ast.Prog(ast.Call("count", ast.Num(1), ast.Num(2), ast.Num(3), ast.Num(4))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 3 {
		t.Fatalf("expected rest of 3, got %#v", result)
	}
}

func TestWriteBackArgumentUpdatesCaller(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("double", []*ast.Parameter{ast.Param("n")},
			ast.Assign(ast.ID("n"), ast.Bin("*", ast.ID("n"), ast.Num(2))),
		),
		ast.Declare("x", ast.Num(5)),
		ast.CallExpr(ast.ID("double"), ast.WriteBackArg("x")),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x, err := interp.GetVariable("x")
	if err != nil {
		t.Fatalf("expected binding for x: %v", err)
	}
	if num, ok := x.(runtime.NumberValue); !ok || num.Val != 10 {
		t.Fatalf("expected write-back to set x to 10, got %#v", x)
	}
}

func TestPlainArgumentLeavesCallerUntouched(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("double", []*ast.Parameter{ast.Param("n")},
			ast.Assign(ast.ID("n"), ast.Bin("*", ast.ID("n"), ast.Num(2))),
		),
		ast.Declare("x", ast.Num(5)),
		ast.Call("double", ast.ID("x")),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x, err := interp.GetVariable("x")
	if err != nil {
		t.Fatalf("expected binding for x: %v", err)
	}
	if num, ok := x.(runtime.NumberValue); !ok || num.Val != 5 {
		t.Fatalf("expected x unchanged at 5, got %#v", x)
	}
}

func TestOverloadSelectionByArity(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("area", []*ast.Parameter{ast.Param("side")},
			ast.Ret(ast.Bin("*", ast.ID("side"), ast.ID("side"))),
		),
		ast.FnDecl("area", []*ast.Parameter{ast.Param("w"), ast.Param("h")},
			ast.Ret(ast.Bin("*", ast.ID("w"), ast.ID("h"))),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := interp.EvaluateProgram(ast.Prog(ast.Call("area", ast.Num(4))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 16 {
		t.Fatalf("expected square overload, got %#v", result)
	}

	result, err = interp.EvaluateProgram(ast.Prog(ast.Call("area", ast.Num(3), ast.Num(5))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 15 {
		t.Fatalf("expected rectangle overload, got %#v", result)
	}
}

func TestOverloadGuardDisambiguatesSameArity(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDeclGuard("half", []*ast.Parameter{ast.Param("n")},
			ast.Bin(">", ast.ID("n"), ast.Num(0)),
			ast.Ret(ast.Bin("/", ast.ID("n"), ast.Num(2))),
		),
		ast.FnDecl("half", []*ast.Parameter{ast.Param("n")},
			ast.Ret(ast.Num(0)),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := interp.EvaluateProgram(ast.Prog(ast.Call("half", ast.Num(8))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 4 {
		t.Fatalf("expected guarded overload, got %#v", result)
	}

	result, err = interp.EvaluateProgram(ast.Prog(ast.Call("half", ast.Num(-8))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 0 {
		t.Fatalf("expected fallback overload, got %#v", result)
	}
}

func TestLambdaClosesOverDeclarationScope(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("offset", ast.Num(100)),
		ast.Declare("add", ast.Lam([]*ast.Parameter{ast.Param("n")},
			ast.Ret(ast.Bin("+", ast.ID("n"), ast.ID("offset"))),
		)),
		ast.Call("add", ast.Num(1)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 101 {
		t.Fatalf("expected 101, got %#v", result)
	}
}

func TestWriteBackRequiresSimpleIdentifier(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnDecl("id", []*ast.Parameter{ast.Param("n")}, ast.Ret(ast.ID("n"))),
		ast.Declare("xs", ast.List(ast.Num(1))),
		ast.CallExpr(ast.ID("id"), &ast.Argument{
			Value:     ast.Index(ast.ID("xs"), ast.Num(0)),
			WriteBack: true,
		}),
	))
	if err == nil {
		t.Fatalf("expected error for write-back on a non-identifier")
	}
}
