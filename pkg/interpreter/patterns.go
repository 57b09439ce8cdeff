package interpreter

import (
	"fmt"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

// epsilon is the tolerance for numeric pattern equality. Two numbers
// whose difference is below it match the same literal pattern.
const epsilon = 1e-9

// matchPattern attempts to match a value against a pattern, binding any
// pattern variables into env. A kind mismatch is a plain non-match,
// never an error.
func (i *Interpreter) matchPattern(pattern ast.Pattern, value runtime.Value, env *runtime.Environment) (bool, error) {
	switch p := pattern.(type) {
	case *ast.WildcardPattern:
		return true, nil
	case *ast.Identifier:
		// The literal name `_` is a wildcard even spelled as a variable.
		if p.Name == "_" {
			return true, nil
		}
		env.Define(p.Name, value)
		return true, nil
	case *ast.LiteralPattern:
		return i.matchLiteral(p.Literal, value)
	case *ast.ListPattern:
		return i.matchListPattern(p, value, env)
	default:
		return false, fmt.Errorf("internal error: unhandled pattern %T", pattern)
	}
}

func (i *Interpreter) matchLiteral(literal ast.Literal, value runtime.Value) (bool, error) {
	switch lit := literal.(type) {
	case *ast.NumberLiteral:
		want, err := i.interpretNumber(lit.Raw, lit.Position())
		if err != nil {
			return false, err
		}
		got, ok := asFloat(value)
		if !ok {
			return false, nil
		}
		wantF, _ := asFloat(want)
		diff := wantF - got
		if diff < 0 {
			diff = -diff
		}
		return diff < epsilon, nil
	case *ast.StringLiteral:
		s, ok := value.(runtime.StringValue)
		return ok && s.Val == lit.Value, nil
	case *ast.BooleanLiteral:
		b, ok := value.(runtime.BoolValue)
		return ok && b.Val == lit.Value, nil
	case *ast.NoneLiteral:
		_, ok := value.(runtime.NoneValue)
		return ok, nil
	case *ast.SymbolLiteral:
		s, ok := value.(runtime.SymbolValue)
		return ok && s.Name == lit.Name, nil
	default:
		return false, fmt.Errorf("internal error: unhandled literal pattern %T", literal)
	}
}

func (i *Interpreter) matchListPattern(p *ast.ListPattern, value runtime.Value, env *runtime.Environment) (bool, error) {
	list, ok := value.(*runtime.ListValue)
	if !ok {
		return false, nil
	}
	if p.Rest == nil {
		if len(list.Elements) != len(p.Elements) {
			return false, nil
		}
	} else if len(list.Elements) < len(p.Elements) {
		return false, nil
	}
	for idx, sub := range p.Elements {
		matched, err := i.matchPattern(sub, list.Elements[idx], env)
		if err != nil || !matched {
			return false, err
		}
	}
	if p.Rest != nil {
		rest := runtime.NewList(list.Elements[len(p.Elements):]...)
		if ident, ok := p.Rest.(*ast.Identifier); ok {
			if ident.Name != "_" {
				env.Define(ident.Name, rest)
			}
			return true, nil
		}
		if _, ok := p.Rest.(*ast.WildcardPattern); ok {
			return true, nil
		}
		return i.matchPattern(p.Rest, rest, env)
	}
	return true, nil
}

// matchClauses selects the first function clause whose pattern matches
// the single argument and whose guard, if any, is truthy in a scope
// seeded with the clause bindings. The returned environment carries the
// accepted clause's bindings; a nil clause means no clause matched.
func (i *Interpreter) matchClauses(clauses []*ast.FunctionClause, arg runtime.Value, parent *runtime.Environment) (*ast.FunctionClause, *runtime.Environment, error) {
	for _, clause := range clauses {
		clauseEnv := parent.Extend()
		matched, err := i.matchPattern(clause.Pattern, arg, clauseEnv)
		if err != nil {
			return nil, nil, err
		}
		if !matched {
			continue
		}
		if clause.Guard != nil {
			guard, fl, err := i.evalExpression(clause.Guard, clauseEnv)
			if err != nil {
				return nil, nil, err
			}
			if !fl.isNormal() {
				return nil, nil, i.runtimeErrorf(clause.Guard.Position(), "control flow inside a clause guard")
			}
			if !isTruthy(guard) {
				continue
			}
		}
		return clause, clauseEnv, nil
	}
	return nil, nil, nil
}

func asFloat(v runtime.Value) (float64, bool) {
	switch n := v.(type) {
	case runtime.NumberValue:
		return n.Val, true
	case runtime.BigNumberValue:
		return n.AsFloat(), true
	default:
		return 0, false
	}
}
