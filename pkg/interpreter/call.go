package interpreter

import (
	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

// evaluatedArg is one call argument after evaluation. srcVar is set for
// write-back arguments and names the caller variable to copy the final
// parameter value back into.
type evaluatedArg struct {
	name   string
	value  runtime.Value
	srcVar string
	pos    ast.Position
}

// writeBack records one (parameter, caller-variable) pair to reconcile
// after the callee returns.
type writeBack struct {
	param  string
	srcVar string
}

func (i *Interpreter) evalCall(n *ast.CallExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	switch callee := n.Callee.(type) {
	case *ast.Identifier:
		return i.evalUnqualifiedCall(callee, n, env)
	case *ast.MemberAccessExpression:
		if _, ok := callee.Object.(*ast.SuperExpression); ok {
			return i.evalSuperCall(callee.Member.Name, n, env)
		}
		return i.evalQualifiedCall(callee, n, env)
	default:
		fn, fl, err := i.evalExpression(n.Callee, env)
		if err != nil || !fl.isNormal() {
			return nil, fl, err
		}
		args, fl, err := i.evalArguments(n.Arguments, env)
		if err != nil || !fl.isNormal() {
			return nil, fl, err
		}
		v, err := i.callValue(fn, args, env, n.Position())
		return v, normalFlow, err
	}
}

// evalUnqualifiedCall resolves `f(...)`: the global overload table by
// arity (and guard) first, then a method on the graph bound to `self`,
// then whatever function value the name resolves to.
func (i *Interpreter) evalUnqualifiedCall(callee *ast.Identifier, n *ast.CallExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	args, fl, err := i.evalArguments(n.Arguments, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}
	name := callee.Name

	if candidates := i.overloads[name]; len(candidates) > 0 {
		fn, err := i.selectOverload(candidates, args)
		if err != nil {
			return nil, normalFlow, err
		}
		if fn != nil {
			v, err := i.callFunction(fn, args, env, n.Position())
			return v, normalFlow, err
		}
	}

	if selfVal, selfErr := env.Get("self"); selfErr == nil {
		if g, ok := selfVal.(*runtime.GraphValue); ok {
			if _, owner := g.LookupMethod(name); owner != nil {
				v, err := i.callGraphMethod(g, name, args, env, n.Position())
				return v, normalFlow, err
			}
		}
	}

	fn, err := env.Get(name)
	if err != nil {
		return nil, normalFlow, i.runtimeErrorf(n.Position(), "undefined function '%s'", name)
	}
	v, err := i.callValue(fn, args, env, n.Position())
	return v, normalFlow, err
}

// selectOverload picks the first declared overload whose arity admits
// the call and whose guard, if present, holds for the explicitly
// passed arguments. Defaults are not evaluated until a candidate is
// committed and actually called.
func (i *Interpreter) selectOverload(candidates []*runtime.FunctionValue, args []evaluatedArg) (*runtime.FunctionValue, error) {
	for _, fn := range candidates {
		if fn.Clauses != nil {
			if len(args) == 1 {
				return fn, nil
			}
			continue
		}
		max, variadic := fn.Arity()
		if len(args) < fn.RequiredArity() {
			continue
		}
		if !variadic && len(args) > max {
			continue
		}
		if fn.Guard == nil {
			return fn, nil
		}
		guardEnv := runtime.NewEnvironment(fn.Closure)
		bindings, _, err := i.bindExplicitArguments(fn, args, ast.Position{})
		if err != nil {
			continue
		}
		for name, val := range bindings {
			guardEnv.Define(name, val)
		}
		guard, fl, err := i.evalExpression(fn.Guard, guardEnv)
		if err != nil {
			return nil, err
		}
		if fl.isNormal() && isTruthy(guard) {
			return fn, nil
		}
	}
	return nil, nil
}

func (i *Interpreter) evalArguments(arguments []*ast.Argument, env *runtime.Environment) ([]evaluatedArg, flow, error) {
	args := make([]evaluatedArg, 0, len(arguments))
	for _, arg := range arguments {
		v, fl, err := i.evalExpression(arg.Value, env)
		if err != nil || !fl.isNormal() {
			return nil, fl, err
		}
		ea := evaluatedArg{name: arg.Name, value: v, pos: arg.Value.Position()}
		if arg.WriteBack {
			ident, ok := arg.Value.(*ast.Identifier)
			if !ok {
				return nil, normalFlow, i.typeErrorf(arg.Value.Position(), "write-back arguments must be simple variables")
			}
			ea.srcVar = ident.Name
		}
		args = append(args, ea)
	}
	return args, normalFlow, nil
}

// callValue dispatches a call on an arbitrary callee value.
func (i *Interpreter) callValue(callee runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.callFunction(fn, args, env, pos)
	case runtime.NativeFunctionValue:
		return i.callNative(fn, args, env, pos)
	case *runtime.BoundMethodValue:
		if g, ok := fn.Receiver.(*runtime.GraphValue); ok {
			return i.callGraphMethod(g, fn.Method.Name, args, env, pos)
		}
		return i.callFunction(fn.Method, args, env, pos)
	case *runtime.GraphValue:
		return i.instantiateGraph(fn, args, pos)
	default:
		return nil, i.typeErrorf(pos, "%s is not callable", callee.Kind())
	}
}

func (i *Interpreter) callNative(fn runtime.NativeFunctionValue, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
	if fn.Arity >= 0 && len(args) != fn.Arity {
		return nil, i.runtimeErrorf(pos, "%s expects %d arguments, got %d", fn.Name, fn.Arity, len(args))
	}
	values := make([]runtime.Value, len(args))
	for idx, a := range args {
		values[idx] = a.value
	}
	i.pushCall(fn.Name, pos)
	defer i.popCall()
	return fn.Impl(&runtime.NativeCallContext{Env: env, Pos: pos}, values)
}

// bindArguments unifies positional and named arguments against the
// parameter list. Defaults are evaluated in the caller's scope. The
// returned map carries the final bindings; writeBacks pairs parameters
// with caller variables for post-return reconciliation.
func (i *Interpreter) bindArguments(fn *runtime.FunctionValue, args []evaluatedArg, callerEnv *runtime.Environment, pos ast.Position) (map[string]runtime.Value, []writeBack, error) {
	bound, backs, err := i.bindExplicitArguments(fn, args, pos)
	if err != nil {
		return nil, nil, err
	}
	if err := i.applyDefaults(fn, bound, callerEnv, pos); err != nil {
		return nil, nil, err
	}
	return bound, backs, nil
}

// bindExplicitArguments binds only what the caller passed, plus the
// variadic collector. Guard probing uses it directly so a default
// expression never runs for an overload that is then rejected.
func (i *Interpreter) bindExplicitArguments(fn *runtime.FunctionValue, args []evaluatedArg, pos ast.Position) (map[string]runtime.Value, []writeBack, error) {
	params := fn.Params
	bound := make(map[string]runtime.Value, len(params))
	filled := make(map[string]bool, len(params))
	var backs []writeBack

	variadicIdx := -1
	for idx, p := range params {
		if p.Variadic {
			if variadicIdx >= 0 {
				return nil, nil, i.typeErrorf(pos, "function '%s' declares more than one variadic parameter", fn.Name)
			}
			variadicIdx = idx
		}
	}

	paramByName := make(map[string]*ast.Parameter, len(params))
	for _, p := range params {
		paramByName[p.Name] = p
	}

	// Named arguments bind directly.
	for _, arg := range args {
		if arg.name == "" {
			continue
		}
		p, ok := paramByName[arg.name]
		if !ok {
			return nil, nil, i.runtimeErrorf(arg.pos, "unknown parameter '%s' for function '%s'", arg.name, fn.Name)
		}
		if filled[p.Name] {
			return nil, nil, i.runtimeErrorf(arg.pos, "duplicate argument for parameter '%s'", p.Name)
		}
		bound[p.Name] = arg.value
		filled[p.Name] = true
		if arg.srcVar != "" {
			backs = append(backs, writeBack{param: p.Name, srcVar: arg.srcVar})
		}
	}

	// Positional arguments fill open slots in order, diverting into the
	// variadic collector once it is reached.
	var variadicValues []runtime.Value
	slot := 0
	for _, arg := range args {
		if arg.name != "" {
			continue
		}
		for slot < len(params) && (filled[params[slot].Name] || params[slot].Variadic) {
			if params[slot].Variadic {
				break
			}
			slot++
		}
		if slot >= len(params) || params[slot].Variadic {
			if variadicIdx < 0 {
				return nil, nil, i.runtimeErrorf(arg.pos, "too many arguments for function '%s'", fn.Name)
			}
			variadicValues = append(variadicValues, arg.value)
			continue
		}
		p := params[slot]
		bound[p.Name] = arg.value
		filled[p.Name] = true
		if arg.srcVar != "" {
			backs = append(backs, writeBack{param: p.Name, srcVar: arg.srcVar})
		}
		slot++
	}

	// The variadic collector always binds, even when empty.
	for _, p := range params {
		if !filled[p.Name] && p.Variadic {
			bound[p.Name] = runtime.NewList(variadicValues...)
		}
	}
	return bound, backs, nil
}

// applyDefaults fills the remaining parameters from their default
// expressions, evaluated in the caller's scope, and rejects a call
// that leaves a required parameter unbound.
func (i *Interpreter) applyDefaults(fn *runtime.FunctionValue, bound map[string]runtime.Value, callerEnv *runtime.Environment, pos ast.Position) error {
	for _, p := range fn.Params {
		if _, ok := bound[p.Name]; ok {
			continue
		}
		if p.Default != nil {
			def, fl, err := i.evalExpression(p.Default, callerEnv)
			if err != nil {
				return err
			}
			if !fl.isNormal() {
				return i.runtimeErrorf(p.Position(), "control flow inside a default expression")
			}
			bound[p.Name] = def
			continue
		}
		return i.runtimeErrorf(pos, "missing required parameter '%s' for function '%s'", p.Name, fn.Name)
	}
	return nil
}

// callFunction invokes a plain function value: clause dispatch for
// pattern functions, parameter binding otherwise, with write-back
// reconciliation into the caller's scope after a successful return.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []evaluatedArg, callerEnv *runtime.Environment, pos ast.Position) (runtime.Value, error) {
	name := fn.Name
	if name == "" {
		name = "<lambda>"
	}
	i.pushCall(name, pos)
	defer i.popCall()

	if fn.Clauses != nil {
		if len(args) != 1 {
			return nil, i.runtimeErrorf(pos, "pattern function '%s' takes exactly one argument, got %d", name, len(args))
		}
		clause, clauseEnv, err := i.matchClauses(fn.Clauses, args[0].value, fn.Closure)
		if err != nil {
			return nil, err
		}
		if clause == nil {
			return runtime.NoneValue{}, nil
		}
		result, fl, err := i.evalExpression(clause.Body, clauseEnv)
		if err != nil {
			return nil, err
		}
		if fl.kind == flowReturn {
			return fl.value, nil
		}
		if !fl.isNormal() {
			return nil, i.runtimeErrorf(pos, "loop control escaped function '%s'", name)
		}
		return result, nil
	}

	bindings, backs, err := i.bindArguments(fn, args, callerEnv, pos)
	if err != nil {
		return nil, err
	}
	callEnv := runtime.NewEnvironment(fn.Closure)
	for bname, bval := range bindings {
		callEnv.Define(bname, bval)
	}

	result, fl, err := i.evalBlockIn(fn.Body, callEnv)
	if err != nil {
		return nil, err
	}
	if fl.kind == flowReturn {
		result = fl.value
	} else if !fl.isNormal() {
		return nil, i.runtimeErrorf(pos, "loop control escaped function '%s'", name)
	}

	// Write-back arguments copy the parameter's final value into the
	// caller's variable before the callee scope is discarded.
	for _, wb := range backs {
		final, ok := callEnv.GetLocal(wb.param)
		if !ok {
			continue
		}
		if err := callerEnv.Assign(wb.srcVar, final); err != nil {
			return nil, i.runtimeErrorf(pos, "write-back target '%s' is not assignable", wb.srcVar)
		}
	}
	return result, nil
}
