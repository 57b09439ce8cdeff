package interpreter

import (
	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

// evalGraphDeclaration builds a CLG prototype: properties become
// `__properties__/` nodes, methods fill the three tables, rules attach
// in declaration order, and a configure block synthesizes trivial
// accessors for names without an explicit method.
func (i *Interpreter) evalGraphDeclaration(n *ast.GraphDeclaration, env *runtime.Environment) (runtime.Value, flow, error) {
	var g *runtime.GraphValue
	if n.Parent != nil {
		parentVal, err := env.Get(n.Parent.Name)
		if err != nil {
			return nil, normalFlow, i.runtimeErrorf(n.Parent.Position(), "undefined parent graph '%s'", n.Parent.Name)
		}
		parent, ok := parentVal.(*runtime.GraphValue)
		if !ok {
			return nil, normalFlow, i.typeErrorf(n.Parent.Position(), "'%s' is not a graph", n.Parent.Name)
		}
		g = runtime.FromParent(parent)
	} else {
		g = runtime.NewGraph()
	}
	g.TypeName = n.Name

	for _, decl := range n.Rules {
		rule, err := i.buildRule(decl, env)
		if err != nil {
			return nil, normalFlow, err
		}
		g.Rules = append(g.Rules, rule)
	}

	for _, prop := range n.Properties {
		var value runtime.Value = runtime.NoneValue{}
		if prop.Value != nil {
			v, fl, err := i.evalExpression(prop.Value, env)
			if err != nil || !fl.isNormal() {
				return nil, fl, err
			}
			value = v
		}
		transformed, err := i.applyInsertRules(g.AllRules(), value, prop.Position())
		if err != nil {
			return nil, normalFlow, err
		}
		g.SetNode(runtime.PropertyNodeID(prop.Name), transformed)
	}

	for _, method := range n.Methods {
		fn := &runtime.FunctionValue{
			Name:     method.Name,
			Params:   method.Params,
			Clauses:  method.Clauses,
			Guard:    method.Guard,
			Body:     method.Body,
			Closure:  env,
			IsStatic: method.IsStatic,
			IsSetter: method.IsSetter,
		}
		switch {
		case method.IsStatic:
			g.Statics[method.Name] = fn
		case method.IsSetter:
			g.Setters[method.Name] = fn
		default:
			g.Methods[method.Name] = fn
		}
	}

	if n.Configure != nil {
		i.synthesizeAccessors(g, n.Configure, env)
	}

	env.Define(n.Name, g)
	return g, normalFlow, nil
}

// synthesizeAccessors adds trivial getter/setter methods for configured
// names, skipping any name an explicit method already covers.
func (i *Interpreter) synthesizeAccessors(g *runtime.GraphValue, cfg *ast.ConfigureBlock, env *runtime.Environment) {
	for _, name := range cfg.Readable {
		if _, ok := g.Methods[name]; ok {
			continue
		}
		g.Methods[name] = &runtime.FunctionValue{
			Name:    name,
			Body:    ast.Block(ast.Ret(ast.Member(ast.Self(), name))),
			Closure: env,
		}
	}
	for _, name := range cfg.Writable {
		if _, ok := g.Setters[name]; ok {
			continue
		}
		g.Setters[name] = &runtime.FunctionValue{
			Name:     name,
			Params:   []*ast.Parameter{ast.Param("value")},
			Body:     ast.Block(ast.AssignMember(ast.Self(), name, ast.ID("value"))),
			Closure:  env,
			IsSetter: true,
		}
	}
}

// instantiateGraph makes an instance from a prototype: a fresh graph
// whose owned parent is a clone of the prototype. Named arguments
// initialize properties through the insertion rules.
func (i *Interpreter) instantiateGraph(proto *runtime.GraphValue, args []evaluatedArg, pos ast.Position) (runtime.Value, error) {
	instance := runtime.FromParent(proto)
	instance.TypeName = proto.TypeName
	for _, arg := range args {
		if arg.name == "" {
			return nil, i.runtimeErrorf(arg.pos, "graph instantiation takes named property arguments")
		}
		transformed, err := i.applyInsertRules(instance.AllRules(), arg.value, arg.pos)
		if err != nil {
			return nil, err
		}
		instance.SetNode(runtime.PropertyNodeID(arg.name), transformed)
	}
	return instance, nil
}

// callGraphMethod runs an instance method transactionally: `self` is a
// clone of the receiver; only after every method constraint and
// structural rule accepts the result does the clone replace the
// receiver's state. A failed call leaves the receiver untouched.
func (i *Interpreter) callGraphMethod(receiver *runtime.GraphValue, name string, args []evaluatedArg, callerEnv *runtime.Environment, pos ast.Position) (runtime.Value, error) {
	method, owner := receiver.LookupMethod(name)
	if method == nil {
		if static, staticOwner := receiver.LookupStatic(name); static != nil {
			return i.callStaticMethod(static, staticOwner, args, callerEnv, pos)
		}
		typeName := receiver.TypeName
		if typeName == "" {
			typeName = "graph"
		}
		return nil, i.runtimeErrorf(pos, "no such method '%s' on %s", name, typeName)
	}
	return i.runGraphMethod(receiver, method, owner, args, callerEnv, pos, true)
}

func (i *Interpreter) runGraphMethod(receiver *runtime.GraphValue, method *runtime.FunctionValue, owner *runtime.GraphValue, args []evaluatedArg, callerEnv *runtime.Environment, pos ast.Position, commit bool) (runtime.Value, error) {
	label := method.Name
	if receiver.TypeName != "" {
		label = receiver.TypeName + "." + method.Name
	}
	i.pushCall(label, pos)
	defer i.popCall()

	bindings, backs, err := i.bindArguments(method, args, callerEnv, pos)
	if err != nil {
		return nil, err
	}

	clone := receiver.Clone()
	before := runtime.SnapshotConstrainable(receiver)

	callEnv := runtime.NewEnvironment(method.Closure)
	callEnv.Define("self", clone)
	for bname, bval := range bindings {
		callEnv.Define(bname, bval)
	}

	i.pushGraphContext(owner)
	result, fl, err := i.evalBlockIn(method.Body, callEnv)
	i.popGraphContext()
	if err != nil {
		return nil, err
	}
	if fl.kind == flowReturn {
		result = fl.value
	} else if !fl.isNormal() {
		return nil, i.runtimeErrorf(pos, "loop control escaped method '%s'", method.Name)
	}

	// The body may have rebound self; the rebound graph is what gets
	// validated and committed.
	final := clone
	if selfVal, selfErr := callEnv.Get("self"); selfErr == nil {
		if g, ok := selfVal.(*runtime.GraphValue); ok {
			final = g
		}
	}

	if err := i.checkMethodConstraints(receiver, final, before, pos); err != nil {
		return nil, err
	}
	for _, rule := range final.AllRules() {
		if rule.RuleKind != runtime.RuleStructural {
			continue
		}
		if verr := rule.CheckStructural(final); verr != nil {
			return nil, i.ruleViolationf(pos, "%v", verr)
		}
	}

	if commit {
		receiver.ReplaceWith(final)
	}
	for _, wb := range backs {
		val, ok := callEnv.GetLocal(wb.param)
		if !ok {
			continue
		}
		if werr := callerEnv.Assign(wb.srcVar, val); werr != nil {
			return nil, i.runtimeErrorf(pos, "write-back target '%s' is not assignable", wb.srcVar)
		}
	}
	return result, nil
}

func (i *Interpreter) checkMethodConstraints(receiver, final *runtime.GraphValue, before runtime.ConstraintSnapshot, pos ast.Position) error {
	after := runtime.SnapshotConstrainable(final)
	for _, rule := range receiver.AllRules() {
		if rule.RuleKind != runtime.RuleMethodConstraint {
			continue
		}
		if rule.Name == runtime.RuleCustomConstraint {
			if rule.Fn == nil {
				continue
			}
			verdict, err := i.callValue(rule.Fn, []evaluatedArg{
				{value: receiver, pos: pos},
				{value: final, pos: pos},
			}, i.global, pos)
			if err != nil {
				return err
			}
			if !isTruthy(verdict) {
				return i.ruleViolationf(pos, "rule %s: method rejected by constraint", rule)
			}
			continue
		}
		if err := rule.CheckConstraint(before, after); err != nil {
			return i.ruleViolationf(pos, "%v", err)
		}
	}
	return nil
}

// callStaticMethod runs a static method in the caller's live scope,
// saving and restoring any bindings its parameters shadow. Statics never
// bind self.
func (i *Interpreter) callStaticMethod(method *runtime.FunctionValue, owner *runtime.GraphValue, args []evaluatedArg, callerEnv *runtime.Environment, pos ast.Position) (runtime.Value, error) {
	label := method.Name
	if owner != nil && owner.TypeName != "" {
		label = owner.TypeName + "." + method.Name
	}
	i.pushCall(label, pos)
	defer i.popCall()

	bindings, _, err := i.bindArguments(method, args, callerEnv, pos)
	if err != nil {
		return nil, err
	}

	type saved struct {
		value   runtime.Value
		present bool
	}
	shadowed := make(map[string]saved, len(bindings))
	for name := range bindings {
		old, present := callerEnv.GetLocal(name)
		shadowed[name] = saved{value: old, present: present}
		callerEnv.Define(name, bindings[name])
	}
	defer func() {
		for name, s := range shadowed {
			if s.present {
				callerEnv.Define(name, s.value)
			} else {
				callerEnv.Undefine(name)
			}
		}
	}()

	result, fl, err := i.evalBlockIn(method.Body, callerEnv)
	if err != nil {
		return nil, err
	}
	if fl.kind == flowReturn {
		return fl.value, nil
	}
	if !fl.isNormal() {
		return nil, i.runtimeErrorf(pos, "loop control escaped method '%s'", method.Name)
	}
	return result, nil
}

// evalSuperCall resolves `super.m(...)` strictly upward from the graph
// whose method is currently executing, running the parent method against
// the same `self` clone so the enclosing call's transaction sees its
// mutations.
func (i *Interpreter) evalSuperCall(name string, n *ast.CallExpression, env *runtime.Environment) (runtime.Value, flow, error) {
	ctx := i.currentGraphContext()
	if ctx == nil {
		return nil, normalFlow, i.runtimeErrorf(n.Position(), "'super' outside a graph method")
	}
	if ctx.Parent == nil {
		return nil, normalFlow, i.runtimeErrorf(n.Position(), "graph '%s' has no parent", ctx.TypeName)
	}
	method, owner := ctx.Parent.LookupMethod(name)
	if method == nil {
		return nil, normalFlow, i.runtimeErrorf(n.Position(), "no such method '%s' on parent of '%s'", name, ctx.TypeName)
	}
	selfVal, err := env.Get("self")
	if err != nil {
		return nil, normalFlow, i.runtimeErrorf(n.Position(), "'super' outside a graph method")
	}
	self, ok := selfVal.(*runtime.GraphValue)
	if !ok {
		return nil, normalFlow, i.runtimeErrorf(n.Position(), "'self' is not a graph")
	}

	args, fl, err := i.evalArguments(n.Arguments, env)
	if err != nil || !fl.isNormal() {
		return nil, fl, err
	}

	bindings, _, err := i.bindArguments(method, args, env, n.Position())
	if err != nil {
		return nil, normalFlow, err
	}
	callEnv := runtime.NewEnvironment(method.Closure)
	callEnv.Define("self", self)
	for bname, bval := range bindings {
		callEnv.Define(bname, bval)
	}

	label := method.Name
	if owner.TypeName != "" {
		label = owner.TypeName + "." + method.Name
	}
	i.pushCall(label, n.Position())
	i.pushGraphContext(owner)
	result, fl, err := i.evalBlockIn(method.Body, callEnv)
	i.popGraphContext()
	i.popCall()
	if err != nil {
		return nil, normalFlow, err
	}
	if fl.kind == flowReturn {
		return fl.value, normalFlow, nil
	}
	if !fl.isNormal() {
		return nil, normalFlow, i.runtimeErrorf(n.Position(), "loop control escaped method '%s'", method.Name)
	}
	return result, normalFlow, nil
}
