package interpreter

import (
	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

// evalQualifiedCall dispatches `obj.method(...)`: module member first,
// then the builtin method table for the receiver's kind, then the
// graph's instance-method tables.
func (i *Interpreter) evalQualifiedCall(callee *ast.MemberAccessExpression, n *ast.CallExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	object, fl, err := i.evalExpression(callee.Object, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	args, fl, err := i.evalArguments(n.Arguments, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	name := callee.Member.Name
	pos := n.Position()

	if module, ok := object.(*runtime.ModuleValue); ok {
		member, ok := module.Members[name]
		if !ok {
			return nil, normalFlow, i.runtimeErrorf(pos, "module '%s' has no member '%s'", module.Name, name)
		}
		v, err := i.callValue(member, args, env, pos)
		return v, normalFlow, err
	}

	if table, ok := i.builtins[object.Kind()]; ok {
		if method, ok := table[name]; ok {
			v, err := method(i, object, args, env, pos)
			return v, normalFlow, err
		}
	}

	if g, ok := object.(*runtime.GraphValue); ok {
		v, err := i.callGraphMethod(g, name, args, env, pos)
		return v, normalFlow, err
	}

	return nil, normalFlow, i.runtimeErrorf(pos, "no such method '%s' on %s", name, object.Kind())
}

func (i *Interpreter) evalMemberRead(n *ast.MemberAccessExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	object, fl, err := i.evalExpression(n.Object, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	name := n.Member.Name
	pos := n.Position()

	switch obj := object.(type) {
	case *runtime.ModuleValue:
		member, ok := obj.Members[name]
		if !ok {
			return nil, normalFlow, i.runtimeErrorf(pos, "module '%s' has no member '%s'", obj.Name, name)
		}
		return member, normalFlow, nil
	case *runtime.GraphValue:
		if v, ok := obj.LookupNode(runtime.PropertyNodeID(name)); ok {
			return v, normalFlow, nil
		}
		if method, owner := obj.LookupMethod(name); method != nil {
			return &runtime.BoundMethodValue{Receiver: obj, Method: method, Owner: owner}, normalFlow, nil
		}
		if static, owner := obj.LookupStatic(name); static != nil {
			return &runtime.BoundMethodValue{Receiver: obj, Method: static, Owner: owner}, normalFlow, nil
		}
		typeName := obj.TypeName
		if typeName == "" {
			typeName = "graph"
		}
		return nil, normalFlow, i.runtimeErrorf(pos, "no such member '%s' on %s", name, typeName)
	case *runtime.MapValue:
		if v, ok := obj.Get(name); ok {
			return v, normalFlow, nil
		}
		return nil, normalFlow, i.runtimeErrorf(pos, "missing map key '%s'", name)
	case runtime.ErrorValue:
		switch name {
		case "type":
			return runtime.StringValue{Val: obj.ErrType}, normalFlow, nil
		case "message":
			return runtime.StringValue{Val: obj.Message}, normalFlow, nil
		case "line":
			return runtime.NumberValue{Val: float64(obj.Pos.Line)}, normalFlow, nil
		case "cause":
			if obj.Cause != nil {
				return *obj.Cause, normalFlow, nil
			}
			return runtime.NoneValue{}, normalFlow, nil
		}
		return nil, normalFlow, i.runtimeErrorf(pos, "no such member '%s' on error", name)
	default:
		return nil, normalFlow, i.runtimeErrorf(pos, "no such member '%s' on %s", name, object.Kind())
	}
}

func (i *Interpreter) evalMemberWrite(target *ast.MemberAccessExpression, value runtime.Value, env *runtime.Environment) (runtime.Value, flow, error) {
	object, fl, err := i.evalExpression(target.Object, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	name := target.Member.Name
	pos := target.Position()

	// Writes through `self` inside a method body go straight to the
	// property node; setters intercept external writes only. This keeps
	// setter bodies like `self.x = value` from re-entering themselves.
	_, viaSelf := target.Object.(*ast.SelfExpression)

	switch obj := object.(type) {
	case *runtime.GraphValue:
		if setter, owner := obj.LookupSetter(name); setter != nil && !viaSelf {
			args := []evaluatedArg{{value: value, pos: pos}}
			_, err := i.runGraphMethod(obj, setter, owner, args, env, pos, true)
			if err != nil {
				return nil, normalFlow, err
			}
			return value, normalFlow, nil
		}
		if err := i.graphSetNode(obj, runtime.PropertyNodeID(name), value, pos); err != nil {
			return nil, normalFlow, err
		}
		return value, normalFlow, nil
	case *runtime.MapValue:
		if obj.Frozen {
			return nil, normalFlow, i.runtimeErrorf(pos, "cannot modify a frozen map")
		}
		obj.Set(name, value)
		return value, normalFlow, nil
	case *runtime.ModuleValue:
		return nil, normalFlow, i.runtimeErrorf(pos, "module members are read-only")
	default:
		return nil, normalFlow, i.typeErrorf(pos, "cannot assign member '%s' on %s", name, object.Kind())
	}
}
