package interpreter

import (
	"fmt"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evalStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, flow, error) {
	switch n := node.(type) {
	case ast.Expression:
		return i.evalExpression(n, env)
	case *ast.FunctionDeclaration:
		return i.evalFunctionDeclaration(n, env)
	case *ast.GraphDeclaration:
		return i.evalGraphDeclaration(n, env)
	case *ast.WhileLoop:
		return i.evalWhileLoop(n, env)
	case *ast.ForLoop:
		return i.evalForLoop(n, env)
	case *ast.BreakStatement:
		var val runtime.Value = runtime.NoneValue{}
		if n.Value != nil {
			v, fl, err := i.evalExpression(n.Value, env)
			if err != nil || !fl.isNormal() {
				return nil, fl, err
			}
			val = v
		}
		return runtime.NoneValue{}, breakFlow(val), nil
	case *ast.ContinueStatement:
		return runtime.NoneValue{}, flow{kind: flowContinue}, nil
	case *ast.ReturnStatement:
		var val runtime.Value = runtime.NoneValue{}
		if n.Value != nil {
			v, fl, err := i.evalExpression(n.Value, env)
			if err != nil || !fl.isNormal() {
				return nil, fl, err
			}
			val = v
		}
		return runtime.NoneValue{}, returnFlow(val), nil
	case *ast.RaiseStatement:
		return i.evalRaiseStatement(n, env)
	case *ast.RuleDeclaration:
		return nil, normalFlow, i.runtimeErrorf(n.Position(), "rule declaration outside a graph body")
	case *ast.ImportStatement:
		return i.evalImportStatement(n, env)
	case *ast.LoadStatement:
		return i.evalLoadStatement(n, env)
	case *ast.ConfigStatement:
		return i.evalConfigStatement(n, env)
	default:
		return nil, normalFlow, fmt.Errorf("internal error: unhandled statement %T", node)
	}
}

// evalBlockBody runs a statement list in the given scope, forwarding any
// non-normal flow to the caller. The value of the block is its last
// normally evaluated statement, or none for an empty block.
func (i *Interpreter) evalBlockBody(body []ast.Statement, env *runtime.Environment) (runtime.Value, flow, error) {
	var last runtime.Value = runtime.NoneValue{}
	for _, stmt := range body {
		val, fl, err := i.evalStatement(stmt, env)
		if err != nil {
			return nil, normalFlow, err
		}
		if !fl.isNormal() {
			return nil, fl, nil
		}
		last = val
	}
	return last, normalFlow, nil
}

func (i *Interpreter) evalFunctionDeclaration(n *ast.FunctionDeclaration, env *runtime.Environment) (runtime.Value, flow, error) {
	fn := &runtime.FunctionValue{
		Name:     n.Name,
		Params:   n.Params,
		Clauses:  n.Clauses,
		Guard:    n.Guard,
		Body:     n.Body,
		Closure:  env,
		IsStatic: n.IsStatic,
		IsSetter: n.IsSetter,
	}
	// The binding is installed before anything can call the function,
	// so a body referring to its own name resolves through the shared
	// closure scope.
	env.Define(n.Name, fn)
	if env == i.global {
		i.installOverload(n.Name, fn)
	}
	return fn, normalFlow, nil
}

// installOverload adds fn to the global overload table. An unguarded
// redeclaration with the same arity shape replaces the earlier
// candidate, so unqualified dispatch and a plain name lookup agree on
// which body wins.
func (i *Interpreter) installOverload(name string, fn *runtime.FunctionValue) {
	candidates := i.overloads[name]
	if fn.Guard == nil && fn.Clauses == nil {
		fnMax, fnVariadic := fn.Arity()
		for idx, existing := range candidates {
			if existing.Guard != nil || existing.Clauses != nil {
				continue
			}
			exMax, exVariadic := existing.Arity()
			if exMax == fnMax && exVariadic == fnVariadic && existing.RequiredArity() == fn.RequiredArity() {
				candidates[idx] = fn
				return
			}
		}
	}
	i.overloads[name] = append(candidates, fn)
}

func (i *Interpreter) evalWhileLoop(n *ast.WhileLoop, env *runtime.Environment) (runtime.Value, flow, error) {
	var result runtime.Value = runtime.NoneValue{}
	for {
		cond, fl, err := i.evalExpression(n.Condition, env)
		if err != nil || !fl.isNormal() {
			return nil, fl, err
		}
		if !isTruthy(cond) {
			break
		}
		_, fl, err = i.evalBlockIn(n.Body, env.Extend())
		if err != nil {
			return nil, normalFlow, err
		}
		switch fl.kind {
		case flowBreak:
			if fl.value != nil {
				result = fl.value
			}
			return result, normalFlow, nil
		case flowContinue:
			continue
		case flowReturn:
			return nil, fl, nil
		}
	}
	return result, normalFlow, nil
}

func (i *Interpreter) evalForLoop(n *ast.ForLoop, env *runtime.Environment) (runtime.Value, flow, error) {
	iterable, fl, err := i.evalExpression(n.Iterable, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	elements, err := i.iterationElements(iterable, n.Iterable.Position())
	if err != nil {
		return nil, normalFlow, err
	}
	var result runtime.Value = runtime.NoneValue{}
	for _, element := range elements {
		iterEnv := env.Extend()
		matched, err := i.matchPattern(n.Pattern, element, iterEnv)
		if err != nil {
			return nil, normalFlow, err
		}
		if !matched {
			return nil, normalFlow, i.typeErrorf(n.Pattern.Position(), "loop pattern does not match element")
		}
		_, fl, err := i.evalBlockIn(n.Body, iterEnv)
		if err != nil {
			return nil, normalFlow, err
		}
		switch fl.kind {
		case flowBreak:
			if fl.value != nil {
				result = fl.value
			}
			return result, normalFlow, nil
		case flowContinue:
			continue
		case flowReturn:
			return nil, fl, nil
		}
	}
	return result, normalFlow, nil
}

// iterationElements flattens an iterable value into an element sequence:
// list elements, map keys in insertion order, string characters, or a
// graph's user node ids.
func (i *Interpreter) iterationElements(v runtime.Value, pos ast.Position) ([]runtime.Value, error) {
	switch val := v.(type) {
	case *runtime.ListValue:
		return append([]runtime.Value(nil), val.Elements...), nil
	case *runtime.MapValue:
		out := make([]runtime.Value, 0, len(val.KeyOrder))
		for _, k := range val.KeyOrder {
			out = append(out, runtime.StringValue{Val: k})
		}
		return out, nil
	case runtime.StringValue:
		out := make([]runtime.Value, 0, len(val.Val))
		for _, r := range val.Val {
			out = append(out, runtime.StringValue{Val: string(r)})
		}
		return out, nil
	case *runtime.GraphValue:
		ids := val.UserNodeIDs()
		out := make([]runtime.Value, 0, len(ids))
		for _, id := range ids {
			out = append(out, runtime.StringValue{Val: id})
		}
		return out, nil
	default:
		return nil, i.typeErrorf(pos, "cannot iterate over %s", v.Kind())
	}
}

func (i *Interpreter) evalRaiseStatement(n *ast.RaiseStatement, env *runtime.Environment) (runtime.Value, flow, error) {
	val, fl, err := i.evalExpression(n.Expression, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	switch ev := val.(type) {
	case runtime.ErrorValue:
		if ev.Pos.IsZero() {
			ev.Pos = n.Position()
		}
		if ev.Stack == nil {
			ev.Stack = i.stackSnapshot()
		}
		return nil, normalFlow, raiseSignal{value: ev}
	case runtime.StringValue:
		return nil, normalFlow, i.errorf(ErrRuntime, n.Position(), "%s", ev.Val)
	default:
		return nil, normalFlow, i.errorf(ErrRuntime, n.Position(), "%s", i.Stringify(val))
	}
}

func (i *Interpreter) evalConfigStatement(n *ast.ConfigStatement, env *runtime.Environment) (runtime.Value, flow, error) {
	val, fl, err := i.evalExpression(n.Value, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	switch n.Name {
	case "precision":
		s, ok := val.(runtime.StringValue)
		if !ok {
			return nil, normalFlow, i.errorf(ErrConfig, n.Position(), "precision expects a string, got %s", val.Kind())
		}
		switch s.Val {
		case PrecisionFloat64, PrecisionFloat128, PrecisionBig:
			i.config.Precision = s.Val
		default:
			return nil, normalFlow, i.errorf(ErrConfig, n.Position(), "unknown precision mode '%s'", s.Val)
		}
	case "integer":
		b, ok := val.(runtime.BoolValue)
		if !ok {
			return nil, normalFlow, i.errorf(ErrConfig, n.Position(), "integer expects a boolean, got %s", val.Kind())
		}
		i.config.IntegerMode = b.Val
	case "unsigned":
		b, ok := val.(runtime.BoolValue)
		if !ok {
			return nil, normalFlow, i.errorf(ErrConfig, n.Position(), "unsigned expects a boolean, got %s", val.Kind())
		}
		i.config.UnsignedMode = b.Val
	case "collect_errors":
		b, ok := val.(runtime.BoolValue)
		if !ok {
			return nil, normalFlow, i.errorf(ErrConfig, n.Position(), "collect_errors expects a boolean, got %s", val.Kind())
		}
		i.config.CollectErrors = b.Val
	default:
		return nil, normalFlow, i.errorf(ErrConfig, n.Position(), "unknown config setting '%s'", n.Name)
	}
	return runtime.NoneValue{}, normalFlow, nil
}
