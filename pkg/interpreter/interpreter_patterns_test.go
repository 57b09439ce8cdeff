package interpreter

import (
	"testing"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

func TestClauseFunctionFirstMatchWins(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnClauses("describe",
			ast.Clause(ast.LitP(ast.Num(0)), ast.Str("zero")),
			ast.Clause(ast.ID("x"), ast.Str("other")),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := interp.EvaluateProgram(ast.Prog(ast.Call("describe", ast.Num(0))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := result.(runtime.StringValue); !ok || s.Val != "zero" {
		t.Fatalf("expected \"zero\", got %#v", result)
	}

	result, err = interp.EvaluateProgram(ast.Prog(ast.Call("describe", ast.Num(3))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := result.(runtime.StringValue); !ok || s.Val != "other" {
		t.Fatalf("expected \"other\", got %#v", result)
	}
}

func TestNumericPatternEpsilonTolerance(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnClauses("is_zero",
			ast.Clause(ast.LitP(ast.Num(0)), ast.Bool(true)),
			ast.Clause(ast.Wc(), ast.Bool(false)),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := interp.EvaluateProgram(ast.Prog(ast.Call("is_zero", ast.NumRaw("1e-20"))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := result.(runtime.BoolValue); !ok || !b.Val {
		t.Fatalf("expected 1e-20 to match the 0 pattern, got %#v", result)
	}

	result, err = interp.EvaluateProgram(ast.Prog(ast.Call("is_zero", ast.Num(0.1))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := result.(runtime.BoolValue); !ok || b.Val {
		t.Fatalf("expected 0.1 not to match the 0 pattern, got %#v", result)
	}
}

func TestClauseFunctionNoMatchReturnsNone(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.FnClauses("only_one",
			ast.Clause(ast.LitP(ast.Num(1)), ast.Str("one")),
		),
		ast.Call("only_one", ast.Num(2)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.(runtime.NoneValue); !ok {
		t.Fatalf("expected none for unmatched argument, got %#v", result)
	}
}

func TestClauseGuardFiltersMatches(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnClauses("sign",
			ast.Clause(ast.ID("n"), ast.Str("positive"), ast.Bin(">", ast.ID("n"), ast.Num(0))),
			ast.Clause(ast.ID("n"), ast.Str("non-positive")),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := interp.EvaluateProgram(ast.Prog(ast.Call("sign", ast.Num(-2))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := result.(runtime.StringValue); !ok || s.Val != "non-positive" {
		t.Fatalf("expected guard to reject -2, got %#v", result)
	}
}

func TestUnderscoreIdentifierIsWildcard(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Match(ast.Sym("anything"),
			ast.Arm(ast.ID("_"), ast.Str("matched")),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := result.(runtime.StringValue); !ok || s.Val != "matched" {
		t.Fatalf("expected wildcard match, got %#v", result)
	}
	if _, err := interp.GetVariable("_"); err == nil {
		t.Fatalf("expected no binding for _")
	}
}

func TestListPatternExactLength(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Match(ast.List(ast.Num(1), ast.Num(2)),
			ast.Arm(ast.ListP([]ast.Pattern{ast.ID("a"), ast.ID("b"), ast.ID("c")}, nil), ast.Str("three")),
			ast.Arm(ast.ListP([]ast.Pattern{ast.ID("a"), ast.ID("b")}, nil), ast.Bin("+", ast.ID("a"), ast.ID("b"))),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 3 {
		t.Fatalf("expected 3, got %#v", result)
	}
}

func TestListPatternRestBindsFreshList(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("xs", ast.List(ast.Num(1), ast.Num(2), ast.Num(3))),
		ast.Match(ast.ID("xs"),
			ast.Arm(ast.ListP([]ast.Pattern{ast.ID("head")}, ast.ID("rest")), ast.ID("rest")),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rest, ok := result.(*runtime.ListValue)
	if !ok || len(rest.Elements) != 2 {
		t.Fatalf("expected rest of length 2, got %#v", result)
	}

	// Mutating the rest list must not touch the source.
	rest.Elements = append(rest.Elements, runtime.NumberValue{Val: 9})
	xs, err := interp.GetVariable("xs")
	if err != nil {
		t.Fatalf("expected binding for xs: %v", err)
	}
	if src, ok := xs.(*runtime.ListValue); !ok || len(src.Elements) != 3 {
		t.Fatalf("expected source list unchanged, got %#v", xs)
	}
}

func TestListPatternKindMismatchIsNonMatch(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Match(ast.Num(5),
			ast.Arm(ast.ListP([]ast.Pattern{ast.ID("x")}, nil), ast.Str("list")),
			ast.Arm(ast.Wc(), ast.Str("fallthrough")),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := result.(runtime.StringValue); !ok || s.Val != "fallthrough" {
		t.Fatalf("expected kind mismatch to fall through, got %#v", result)
	}
}

func TestMatchWithoutArmsIsNone(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Match(ast.List(),
			ast.Arm(ast.ListP([]ast.Pattern{ast.ID("x")}, nil), ast.Str("nonempty")),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.(runtime.NoneValue); !ok {
		t.Fatalf("expected none when no arm matches, got %#v", result)
	}
}

func TestClauseFunctionRequiresSingleArgument(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.FnClauses("p", ast.Clause(ast.Wc(), ast.None())),
		ast.Call("p", ast.Num(1), ast.Num(2)),
	))
	if err == nil {
		t.Fatalf("expected arity error for pattern function")
	}
}
