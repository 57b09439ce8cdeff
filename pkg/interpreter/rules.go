package interpreter

import (
	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

// buildRule turns a `rule :name[, param]` declaration into a rule
// instance, evaluating the parameter for the variants that take one.
func (i *Interpreter) buildRule(decl *ast.RuleDeclaration, env *runtime.Environment) (*runtime.RuleInstance, error) {
	var param runtime.Value
	if decl.Param != nil {
		v, fl, evalErr := i.evalExpression(decl.Param, env)
		if evalErr != nil {
			return nil, evalErr
		}
		if !fl.isNormal() {
			return nil, i.runtimeErrorf(decl.Position(), "control flow inside a rule parameter")
		}
		param = v
	}
	return i.makeRule(runtime.RuleName(decl.Name), param, decl.Position())
}

// makeRule builds a rule instance from a name and an already evaluated
// parameter. The `add_rule` builtin shares it with rule declarations.
func (i *Interpreter) makeRule(name runtime.RuleName, param runtime.Value, pos ast.Position) (*runtime.RuleInstance, error) {
	rule, err := runtime.NewRuleInstance(name)
	if err != nil {
		return nil, i.runtimeErrorf(pos, "%v", err)
	}

	switch rule.Name {
	case runtime.RuleMaxDegree:
		n, ok := asFloat(param)
		if param == nil || !ok || n < 0 {
			return nil, i.runtimeErrorf(pos, "rule max_degree requires a non-negative numeric bound")
		}
		rule.MaxDegree = int(n)
	case runtime.RuleCustomFunction:
		fn, ok := param.(*runtime.FunctionValue)
		if !ok {
			return nil, i.runtimeErrorf(pos, "rule transform_with requires a function")
		}
		rule.Transform = fn
		rule.Label = fn.Name
	case runtime.RuleCustomConstraint:
		fn, ok := param.(*runtime.FunctionValue)
		if !ok {
			return nil, i.runtimeErrorf(pos, "rule constrain_with requires a function")
		}
		rule.Fn = fn
		rule.Label = fn.Name
	case runtime.RuleConditional:
		list, ok := param.(*runtime.ListValue)
		if !ok || len(list.Elements) < 2 || len(list.Elements) > 3 {
			return nil, i.runtimeErrorf(pos, "rule conditional requires [predicate, transform] or [predicate, transform, fallback]")
		}
		fns := make([]*runtime.FunctionValue, len(list.Elements))
		for idx, el := range list.Elements {
			fn, ok := el.(*runtime.FunctionValue)
			if !ok {
				return nil, i.runtimeErrorf(pos, "rule conditional elements must be functions")
			}
			fns[idx] = fn
		}
		rule.Predicate = fns[0]
		rule.Transform = fns[1]
		if len(fns) == 3 {
			rule.Fallback = fns[2]
		}
	default:
		if param != nil {
			return nil, i.runtimeErrorf(pos, "rule %s takes no parameter", rule.Name)
		}
	}
	return rule, nil
}

// applyInsertRules runs transformation and freeze rules over a value
// being inserted into a rule-bearing collection, in declaration order.
// Custom and conditional transforms invoke user functions.
func (i *Interpreter) applyInsertRules(rules []*runtime.RuleInstance, value runtime.Value, pos ast.Position) (runtime.Value, error) {
	for _, rule := range rules {
		switch rule.RuleKind {
		case runtime.RuleTransformation:
			if rule.IsPureTransform() {
				transformed, err := rule.ApplyPureTransform(value)
				if err != nil {
					return nil, i.ruleViolationf(pos, "%v", err)
				}
				value = transformed
				continue
			}
			transformed, err := i.applyUserTransform(rule, value, pos)
			if err != nil {
				return nil, err
			}
			value = transformed
		case runtime.RuleFreeze:
			adjusted, err := rule.ApplyFreezeRule(value)
			if err != nil {
				return nil, i.ruleViolationf(pos, "%v", err)
			}
			value = adjusted
		}
	}
	return value, nil
}

func (i *Interpreter) applyUserTransform(rule *runtime.RuleInstance, value runtime.Value, pos ast.Position) (runtime.Value, error) {
	arg := []evaluatedArg{{value: value, pos: pos}}
	switch rule.Name {
	case runtime.RuleCustomFunction:
		return i.callValue(rule.Transform, arg, i.global, pos)
	case runtime.RuleConditional:
		verdict, err := i.callValue(rule.Predicate, arg, i.global, pos)
		if err != nil {
			return nil, err
		}
		if isTruthy(verdict) {
			return i.callValue(rule.Transform, arg, i.global, pos)
		}
		if rule.Fallback != nil {
			return i.callValue(rule.Fallback, arg, i.global, pos)
		}
		return value, nil
	default:
		return value, nil
	}
}

// graphSetNode inserts or updates one node, threading the value through
// insertion rules and validating every structural rule afterward. A
// violation restores the previous state before reporting.
func (i *Interpreter) graphSetNode(g *runtime.GraphValue, id string, value runtime.Value, pos ast.Position) error {
	if g.Frozen {
		return i.runtimeErrorf(pos, "cannot modify a frozen graph")
	}
	if runtime.IsInternalNode(id) && !runtime.IsPropertyNode(id) {
		return i.runtimeErrorf(pos, "node id '%s' is reserved", id)
	}
	transformed, err := i.applyInsertRules(g.AllRules(), value, pos)
	if err != nil {
		return err
	}
	old, existed := g.GetNode(id)
	g.SetNode(id, transformed)
	if err := i.checkGraphStructure(g, pos); err != nil {
		if existed {
			g.SetNode(id, old)
		} else {
			g.RemoveNode(id)
		}
		return err
	}
	return nil
}

// graphAddEdge adds an edge and validates structure, removing the edge
// again on violation.
func (i *Interpreter) graphAddEdge(g *runtime.GraphValue, from, to, label string, weight runtime.Value, pos ast.Position) error {
	if g.Frozen {
		return i.runtimeErrorf(pos, "cannot modify a frozen graph")
	}
	if err := g.AddEdge(from, to, label, weight); err != nil {
		return i.runtimeErrorf(pos, "%v", err)
	}
	if err := i.checkGraphStructure(g, pos); err != nil {
		g.RemoveEdge(from, to, label)
		return err
	}
	return nil
}

func (i *Interpreter) checkGraphStructure(g *runtime.GraphValue, pos ast.Position) error {
	for _, rule := range g.AllRules() {
		if rule.RuleKind != runtime.RuleStructural {
			continue
		}
		if err := rule.CheckStructural(g); err != nil {
			return i.ruleViolationf(pos, "%v", err)
		}
	}
	return nil
}

func (i *Interpreter) checkListStructure(list *runtime.ListValue, pos ast.Position) error {
	for _, rule := range list.Rules {
		if rule.RuleKind != runtime.RuleStructural {
			continue
		}
		if err := rule.CheckListStructural(list); err != nil {
			return i.ruleViolationf(pos, "%v", err)
		}
	}
	return nil
}
