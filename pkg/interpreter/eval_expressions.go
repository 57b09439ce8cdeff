package interpreter

import (
	"fmt"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evalExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, flow, error) {
	switch n := node.(type) {
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, normalFlow, nil
	case *ast.NumberLiteral:
		v, err := i.interpretNumber(n.Raw, n.Position())
		return v, normalFlow, err
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, normalFlow, nil
	case *ast.NoneLiteral:
		return runtime.NoneValue{}, normalFlow, nil
	case *ast.SymbolLiteral:
		return runtime.SymbolValue{Name: n.Name}, normalFlow, nil
	case *ast.Identifier:
		val, err := env.Get(n.Name)
		if err != nil {
			return nil, normalFlow, i.runtimeErrorf(n.Position(), "undefined variable '%s'", n.Name)
		}
		return val, normalFlow, nil
	case *ast.SelfExpression:
		val, err := env.Get("self")
		if err != nil {
			return nil, normalFlow, i.runtimeErrorf(n.Position(), "'self' outside a graph method")
		}
		return val, normalFlow, nil
	case *ast.SuperExpression:
		return nil, normalFlow, i.runtimeErrorf(n.Position(), "'super' must be the target of a method call")
	case *ast.ListLiteral:
		return i.evalListLiteral(n, env)
	case *ast.MapLiteral:
		return i.evalMapLiteral(n, env)
	case *ast.UnaryExpression:
		return i.evalUnary(n, env)
	case *ast.BinaryExpression:
		return i.evalBinary(n, env)
	case *ast.AssignmentExpression:
		return i.evalAssignment(n, env)
	case *ast.MemberAccessExpression:
		return i.evalMemberRead(n, env)
	case *ast.IndexExpression:
		return i.evalIndexRead(n, env)
	case *ast.BlockExpression:
		return i.evalBlockIn(n, env.Extend())
	case *ast.IfExpression:
		return i.evalIf(n, env)
	case *ast.MatchExpression:
		return i.evalMatch(n, env)
	case *ast.TryExpression:
		return i.evalTry(n, env)
	case *ast.FunctionExpression:
		fn := &runtime.FunctionValue{
			Params:  n.Params,
			Clauses: n.Clauses,
			Body:    n.Body,
			Closure: env,
		}
		return fn, normalFlow, nil
	case *ast.CallExpression:
		return i.evalCall(n, env)
	default:
		return nil, normalFlow, fmt.Errorf("internal error: unhandled expression %T", node)
	}
}

// evalBlockIn runs a block's statements in the provided scope. Callers
// choose whether the scope is fresh (most blocks) or shared (static
// method bodies).
func (i *Interpreter) evalBlockIn(block *ast.BlockExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	return i.evalBlockBody(block.Body, env)
}

func (i *Interpreter) evalListLiteral(n *ast.ListLiteral, env *runtime.Environment) (runtime.Value, flow, error) {
	elements := make([]runtime.Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		v, fl, err := i.evalExpression(el, env)
		if err != nil || !fl.isNormal() {
			return nil, fl, err
		}
		elements = append(elements, v)
	}
	return runtime.NewList(elements...), normalFlow, nil
}

func (i *Interpreter) evalMapLiteral(n *ast.MapLiteral, env *runtime.Environment) (runtime.Value, flow, error) {
	m := runtime.NewMap()
	for _, entry := range n.Entries {
		v, fl, err := i.evalExpression(entry.Value, env)
		if err != nil || !fl.isNormal() {
			return nil, fl, err
		}
		m.Set(entry.Key, v)
	}
	return m, normalFlow, nil
}

func (i *Interpreter) evalUnary(n *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	operand, fl, err := i.evalExpression(n.Operand, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	switch n.Operator {
	case "-":
		v, err := i.numericNegate(operand, n.Position())
		return v, normalFlow, err
	case "!", "not":
		return runtime.BoolValue{Val: !isTruthy(operand)}, normalFlow, nil
	default:
		return nil, normalFlow, i.typeErrorf(n.Position(), "unknown unary operator '%s'", n.Operator)
	}
}

func (i *Interpreter) evalBinary(n *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	// Short-circuit operators evaluate the right side lazily.
	switch n.Operator {
	case "&&", "and":
		left, fl, err := i.evalExpression(n.Left, env)
		if err != nil || !fl.isNormal() {
			return nil, fl, err
		}
		if !isTruthy(left) {
			return left, normalFlow, nil
		}
		return i.evalExpression(n.Right, env)
	case "||", "or":
		left, fl, err := i.evalExpression(n.Left, env)
		if err != nil || !fl.isNormal() {
			return nil, fl, err
		}
		if isTruthy(left) {
			return left, normalFlow, nil
		}
		return i.evalExpression(n.Right, env)
	}

	left, fl, err := i.evalExpression(n.Left, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	right, fl, err := i.evalExpression(n.Right, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	v, err := i.applyBinary(n.Operator, left, right, n.Position())
	return v, normalFlow, err
}

func (i *Interpreter) evalAssignment(n *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	value, fl, err := i.evalExpression(n.Right, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	switch target := n.Left.(type) {
	case *ast.Identifier:
		if n.Operator == ast.AssignmentDeclare {
			env.Define(target.Name, value)
			return value, normalFlow, nil
		}
		if err := env.Assign(target.Name, value); err != nil {
			return nil, normalFlow, i.runtimeErrorf(target.Position(), "assignment to undefined variable '%s'", target.Name)
		}
		return value, normalFlow, nil
	case *ast.MemberAccessExpression:
		return i.evalMemberWrite(target, value, env)
	case *ast.IndexExpression:
		return i.evalIndexWrite(target, value, env)
	default:
		return nil, normalFlow, i.typeErrorf(n.Position(), "invalid assignment target")
	}
}

func (i *Interpreter) evalIndexRead(n *ast.IndexExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	object, fl, err := i.evalExpression(n.Object, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	index, fl, err := i.evalExpression(n.Index, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	v, err := i.indexValue(object, index, n.Position())
	if err != nil && i.config.CollectErrors && collectable(err) {
		ev, _ := asRaised(err)
		i.diagnostics = append(i.diagnostics, ev)
		return runtime.NoneValue{}, normalFlow, nil
	}
	return v, normalFlow, err
}

func (i *Interpreter) indexValue(object, index runtime.Value, pos ast.Position) (runtime.Value, error) {
	switch obj := object.(type) {
	case *runtime.ListValue:
		idx, err := i.indexAsInt(index, pos)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(obj.Elements) {
			return nil, i.runtimeErrorf(pos, "list index %d out of range (length %d)", idx, len(obj.Elements))
		}
		return obj.Elements[idx], nil
	case runtime.StringValue:
		idx, err := i.indexAsInt(index, pos)
		if err != nil {
			return nil, err
		}
		runes := []rune(obj.Val)
		if idx < 0 || idx >= len(runes) {
			return nil, i.runtimeErrorf(pos, "string index %d out of range (length %d)", idx, len(runes))
		}
		return runtime.StringValue{Val: string(runes[idx])}, nil
	case *runtime.MapValue:
		key, ok := index.(runtime.StringValue)
		if !ok {
			return nil, i.typeErrorf(pos, "map keys are strings, got %s", index.Kind())
		}
		if v, ok := obj.Get(key.Val); ok {
			return v, nil
		}
		return nil, i.runtimeErrorf(pos, "missing map key '%s'", key.Val)
	case *runtime.GraphValue:
		key, ok := index.(runtime.StringValue)
		if !ok {
			return nil, i.typeErrorf(pos, "graph node ids are strings, got %s", index.Kind())
		}
		if runtime.IsInternalNode(key.Val) || runtime.IsPropertyNode(key.Val) {
			return nil, i.runtimeErrorf(pos, "no node '%s' in graph", key.Val)
		}
		if v, ok := obj.GetNode(key.Val); ok {
			return v, nil
		}
		return nil, i.runtimeErrorf(pos, "no node '%s' in graph", key.Val)
	default:
		return nil, i.typeErrorf(pos, "%s is not indexable", object.Kind())
	}
}

func (i *Interpreter) indexAsInt(index runtime.Value, pos ast.Position) (int, error) {
	switch idx := index.(type) {
	case runtime.NumberValue:
		return int(idx.Val), nil
	case runtime.BigNumberValue:
		return int(idx.AsFloat()), nil
	default:
		return 0, i.typeErrorf(pos, "index must be a number, got %s", index.Kind())
	}
}

func (i *Interpreter) evalIndexWrite(target *ast.IndexExpression, value runtime.Value, env *runtime.Environment) (runtime.Value, flow, error) {
	object, fl, err := i.evalExpression(target.Object, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	index, fl, err := i.evalExpression(target.Index, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	pos := target.Position()
	switch obj := object.(type) {
	case *runtime.ListValue:
		if obj.Frozen {
			return nil, normalFlow, i.runtimeErrorf(pos, "cannot modify a frozen list")
		}
		idx, err := i.indexAsInt(index, pos)
		if err != nil {
			return nil, normalFlow, err
		}
		if idx < 0 || idx >= len(obj.Elements) {
			return nil, normalFlow, i.runtimeErrorf(pos, "list index %d out of range (length %d)", idx, len(obj.Elements))
		}
		transformed, err := i.applyInsertRules(obj.Rules, value, pos)
		if err != nil {
			return nil, normalFlow, err
		}
		obj.Elements[idx] = transformed
		if err := i.checkListStructure(obj, pos); err != nil {
			return nil, normalFlow, err
		}
		return transformed, normalFlow, nil
	case *runtime.MapValue:
		if obj.Frozen {
			return nil, normalFlow, i.runtimeErrorf(pos, "cannot modify a frozen map")
		}
		key, ok := index.(runtime.StringValue)
		if !ok {
			return nil, normalFlow, i.typeErrorf(pos, "map keys are strings, got %s", index.Kind())
		}
		obj.Set(key.Val, value)
		return value, normalFlow, nil
	case *runtime.GraphValue:
		key, ok := index.(runtime.StringValue)
		if !ok {
			return nil, normalFlow, i.typeErrorf(pos, "graph node ids are strings, got %s", index.Kind())
		}
		if runtime.IsPropertyNode(key.Val) {
			return nil, normalFlow, i.runtimeErrorf(pos, "node id '%s' is reserved", key.Val)
		}
		if err := i.graphSetNode(obj, key.Val, value, pos); err != nil {
			return nil, normalFlow, err
		}
		return value, normalFlow, nil
	default:
		return nil, normalFlow, i.typeErrorf(pos, "%s does not support index assignment", object.Kind())
	}
}

func (i *Interpreter) evalIf(n *ast.IfExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	cond, fl, err := i.evalExpression(n.Condition, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	if isTruthy(cond) {
		return i.evalBlockIn(n.Body, env.Extend())
	}
	for _, clause := range n.OrClauses {
		if clause.Condition == nil {
			return i.evalBlockIn(clause.Body, env.Extend())
		}
		cond, fl, err := i.evalExpression(clause.Condition, env)
		if err != nil || !fl.isNormal() {
			return nil, fl, err
		}
		if isTruthy(cond) {
			return i.evalBlockIn(clause.Body, env.Extend())
		}
	}
	return runtime.NoneValue{}, normalFlow, nil
}

func (i *Interpreter) evalMatch(n *ast.MatchExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	subject, fl, err := i.evalExpression(n.Subject, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	for _, arm := range n.Arms {
		armEnv := env.Extend()
		matched, err := i.matchPattern(arm.Pattern, subject, armEnv)
		if err != nil {
			return nil, normalFlow, err
		}
		if !matched {
			continue
		}
		if arm.Guard != nil {
			guard, fl, err := i.evalExpression(arm.Guard, armEnv)
			if err != nil || !fl.isNormal() {
				return nil, fl, err
			}
			if !isTruthy(guard) {
				continue
			}
		}
		return i.evalExpression(arm.Body, armEnv)
	}
	return runtime.NoneValue{}, normalFlow, nil
}

func (i *Interpreter) evalTry(n *ast.TryExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	result, fl, err := i.evalBlockIn(n.Body, env.Extend())

	if err != nil {
		if raised, ok := asRaised(err); ok {
			handled := false
			for _, clause := range n.Catches {
				if clause.ErrorType != "" && clause.ErrorType != raised.ErrType {
					continue
				}
				// The clause runs in a fresh child scope so the error
				// binding doesn't leak; mutations to pre-existing
				// variables land in the parent via the chain.
				catchEnv := env.Extend()
				if clause.Binding != nil {
					catchEnv.Define(clause.Binding.Name, raised)
				}
				result, fl, err = i.evalBlockIn(clause.Body, catchEnv)
				catchEnv.TakeParent()
				handled = true
				break
			}
			if !handled {
				result, fl = nil, normalFlow
			}
		}
	}

	if n.Finally != nil {
		_, ffl, ferr := i.evalBlockIn(n.Finally, env.Extend())
		if ferr != nil {
			return nil, normalFlow, ferr
		}
		if !ffl.isNormal() {
			return nil, ffl, nil
		}
	}
	if err != nil {
		return nil, normalFlow, err
	}
	return result, fl, nil
}
