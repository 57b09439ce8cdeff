package interpreter

import (
	"testing"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

func TestNoCyclesRejectsBackEdge(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("g", ast.Call("graph")),
		ast.MethodCall(ast.ID("g"), "add_rule", ast.Sym("no_cycles")),
		ast.MethodCall(ast.ID("g"), "add_node", ast.Str("a"), ast.Num(1)),
		ast.MethodCall(ast.ID("g"), "add_node", ast.Str("b"), ast.Num(2)),
		ast.MethodCall(ast.ID("g"), "add_edge", ast.Str("a"), ast.Str("b")),
		ast.MethodCall(ast.ID("g"), "add_edge", ast.Str("b"), ast.Str("a")),
	))
	if err == nil {
		t.Fatalf("expected cycle violation")
	}
	raised, ok := asRaised(err)
	if !ok || raised.ErrType != ErrRuleViolation {
		t.Fatalf("expected %s, got %v", ErrRuleViolation, err)
	}

	gval, getErr := interp.GetVariable("g")
	if getErr != nil {
		t.Fatalf("expected binding for g: %v", getErr)
	}
	g := gval.(*runtime.GraphValue)
	if got := g.EdgeCount(); got != 1 {
		t.Fatalf("expected violating edge reverted, got %d edges", got)
	}
}

func TestMaxDegreeBoundsOutgoingEdges(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("g", ast.Call("graph")),
		ast.MethodCall(ast.ID("g"), "add_rule", ast.Sym("max_degree"), ast.Num(1)),
		ast.MethodCall(ast.ID("g"), "add_node", ast.Str("hub"), ast.Num(0)),
		ast.MethodCall(ast.ID("g"), "add_node", ast.Str("x"), ast.Num(0)),
		ast.MethodCall(ast.ID("g"), "add_node", ast.Str("y"), ast.Num(0)),
		ast.MethodCall(ast.ID("g"), "add_edge", ast.Str("hub"), ast.Str("x")),
		ast.MethodCall(ast.ID("g"), "add_edge", ast.Str("hub"), ast.Str("y")),
	))
	if err == nil {
		t.Fatalf("expected max_degree violation")
	}
}

func TestPositiveTransformOnListInsert(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("xs", ast.List()),
		ast.MethodCall(ast.ID("xs"), "add_rule", ast.Sym("positive")),
		ast.MethodCall(ast.ID("xs"), "push", ast.Num(-4)),
		ast.MethodCall(ast.ID("xs"), "push", ast.Num(3)),
		ast.Index(ast.ID("xs"), ast.Num(0)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 4 {
		t.Fatalf("expected -4 transformed to 4, got %#v", result)
	}
}

func TestNoneToZeroAndRoundToInt(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("xs", ast.List()),
		ast.MethodCall(ast.ID("xs"), "add_rule", ast.Sym("none_to_zero")),
		ast.MethodCall(ast.ID("xs"), "add_rule", ast.Sym("round_to_int")),
		ast.MethodCall(ast.ID("xs"), "push", ast.None()),
		ast.MethodCall(ast.ID("xs"), "push", ast.Num(2.7)),
		ast.ID("xs"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := result.(*runtime.ListValue)
	if len(list.Elements) != 2 {
		t.Fatalf("expected two elements, got %#v", list.Elements)
	}
	if num, ok := list.Elements[0].(runtime.NumberValue); !ok || num.Val != 0 {
		t.Fatalf("expected none converted to 0, got %#v", list.Elements[0])
	}
	if num, ok := list.Elements[1].(runtime.NumberValue); !ok || num.Val != 3 {
		t.Fatalf("expected 2.7 rounded to 3, got %#v", list.Elements[1])
	}
}

func TestTransformWithUserFunction(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("xs", ast.List()),
		ast.MethodCall(ast.ID("xs"), "add_rule", ast.Sym("transform_with"),
			ast.Lam([]*ast.Parameter{ast.Param("v")},
				ast.Ret(ast.Bin("*", ast.ID("v"), ast.Num(10))),
			)),
		ast.MethodCall(ast.ID("xs"), "push", ast.Num(7)),
		ast.Index(ast.ID("xs"), ast.Num(0)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 70 {
		t.Fatalf("expected custom transform to yield 70, got %#v", result)
	}
}

func TestConditionalRuleWithFallback(t *testing.T) {
	interp := New()
	result, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("xs", ast.List()),
		ast.MethodCall(ast.ID("xs"), "add_rule", ast.Sym("conditional"),
			ast.List(
				ast.Lam([]*ast.Parameter{ast.Param("v")},
					ast.Ret(ast.Bin("<", ast.ID("v"), ast.Num(0)))),
				ast.Lam([]*ast.Parameter{ast.Param("v")},
					ast.Ret(ast.Num(0))),
				ast.Lam([]*ast.Parameter{ast.Param("v")},
					ast.Ret(ast.Bin("*", ast.ID("v"), ast.Num(2)))),
			)),
		ast.MethodCall(ast.ID("xs"), "push", ast.Num(-9)),
		ast.MethodCall(ast.ID("xs"), "push", ast.Num(5)),
		ast.ID("xs"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := result.(*runtime.ListValue)
	if num, ok := list.Elements[0].(runtime.NumberValue); !ok || num.Val != 0 {
		t.Fatalf("expected predicate branch to clamp -9 to 0, got %#v", list.Elements[0])
	}
	if num, ok := list.Elements[1].(runtime.NumberValue); !ok || num.Val != 10 {
		t.Fatalf("expected fallback to double 5, got %#v", list.Elements[1])
	}
}

func TestNoDuplicatesOnList(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("xs", ast.List(ast.Num(1))),
		ast.MethodCall(ast.ID("xs"), "add_rule", ast.Sym("no_duplicates")),
		ast.MethodCall(ast.ID("xs"), "push", ast.Num(1)),
	))
	if err == nil {
		t.Fatalf("expected duplicate violation")
	}

	xs, getErr := interp.GetVariable("xs")
	if getErr != nil {
		t.Fatalf("expected binding for xs: %v", getErr)
	}
	if list := xs.(*runtime.ListValue); len(list.Elements) != 1 {
		t.Fatalf("expected violating push reverted, got %#v", list.Elements)
	}
}

func TestNoFrozenRejectsFrozenInsert(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("frozen", ast.List(ast.Num(1))),
		ast.Call("freeze", ast.ID("frozen")),
		ast.Declare("xs", ast.List()),
		ast.MethodCall(ast.ID("xs"), "add_rule", ast.Sym("no_frozen")),
		ast.MethodCall(ast.ID("xs"), "push", ast.ID("frozen")),
	))
	if err == nil {
		t.Fatalf("expected no_frozen violation")
	}
	raised, ok := asRaised(err)
	if !ok || raised.ErrType != ErrRuleViolation {
		t.Fatalf("expected %s, got %v", ErrRuleViolation, err)
	}
}

func TestUnknownRuleNameFails(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.Declare("xs", ast.List()),
		ast.MethodCall(ast.ID("xs"), "add_rule", ast.Sym("definitely_not_a_rule")),
	))
	if err == nil {
		t.Fatalf("expected unknown rule error")
	}
}

func TestConstrainWithCustomPredicate(t *testing.T) {
	interp := New()
	_, err := interp.EvaluateProgram(ast.Prog(
		ast.GraphDecl("Capped", "", nil,
			[]*ast.FunctionDeclaration{
				ast.FnDecl("fill", []*ast.Parameter{ast.Param("n")},
					ast.ForIn(ast.ID("k"), ast.Call("range", ast.ID("n")),
						ast.MethodCall(ast.Self(), "add_node",
							ast.MethodCall(ast.ID("k"), "to_string"), ast.ID("k")),
					),
				),
			},
			[]*ast.RuleDeclaration{
				ast.Rule("constrain_with", ast.Lam([]*ast.Parameter{ast.Param("before"), ast.Param("after")},
					ast.Ret(ast.Bin("<=", ast.MethodCall(ast.ID("after"), "node_count"), ast.Num(2))),
				)),
			},
			nil),
		ast.Declare("c", ast.CallExpr(ast.ID("Capped"))),
		ast.MethodCall(ast.ID("c"), "fill", ast.Num(2)),
	))
	if err != nil {
		t.Fatalf("unexpected error for permitted fill: %v", err)
	}

	_, err = interp.EvaluateProgram(ast.Prog(ast.MethodCall(ast.ID("c"), "fill", ast.Num(3))))
	if err == nil {
		t.Fatalf("expected custom constraint to reject the larger fill")
	}

	cval, getErr := interp.GetVariable("c")
	if getErr != nil {
		t.Fatalf("expected binding for c: %v", getErr)
	}
	if g := cval.(*runtime.GraphValue); len(g.UserNodeIDs()) != 2 {
		t.Fatalf("expected rejected call to leave the first two nodes, got %v", g.UserNodeIDs())
	}
}
