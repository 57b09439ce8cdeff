package interpreter

import (
	"math"
	"sort"
	"strings"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

// builtinMethod is one entry in the per-kind method table consulted by
// qualified dispatch before graph method tables.
type builtinMethod func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error)

func builtinTables() map[runtime.Kind]map[string]builtinMethod {
	numbers := numberBuiltins()
	return map[runtime.Kind]map[string]builtinMethod{
		runtime.KindString:    stringBuiltins(),
		runtime.KindNumber:    numbers,
		runtime.KindBigNumber: numbers,
		runtime.KindList:      listBuiltins(),
		runtime.KindMap:       mapBuiltins(),
		runtime.KindGraph:     graphBuiltins(),
	}
}

func (i *Interpreter) wantArgs(args []evaluatedArg, n int, name string, pos ast.Position) error {
	if len(args) != n {
		return i.runtimeErrorf(pos, "%s expects %d arguments, got %d", name, n, len(args))
	}
	return nil
}

func (i *Interpreter) stringArg(args []evaluatedArg, idx int, name string, pos ast.Position) (string, error) {
	s, ok := args[idx].value.(runtime.StringValue)
	if !ok {
		return "", i.typeErrorf(pos, "%s expects a string argument, got %s", name, args[idx].value.Kind())
	}
	return s.Val, nil
}

//-----------------------------------------------------------------------------
// Strings
//-----------------------------------------------------------------------------

func stringBuiltins() map[string]builtinMethod {
	return map[string]builtinMethod{
		"length": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			s := recv.(runtime.StringValue)
			return runtime.NumberValue{Val: float64(len([]rune(s.Val)))}, nil
		},
		"upper": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			s := recv.(runtime.StringValue)
			return runtime.StringValue{Val: strings.ToUpper(s.Val)}, nil
		},
		"lower": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			s := recv.(runtime.StringValue)
			return runtime.StringValue{Val: strings.ToLower(s.Val)}, nil
		},
		"trim": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			s := recv.(runtime.StringValue)
			return runtime.StringValue{Val: strings.TrimSpace(s.Val)}, nil
		},
		"contains": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "contains", pos); err != nil {
				return nil, err
			}
			needle, err := i.stringArg(args, 0, "contains", pos)
			if err != nil {
				return nil, err
			}
			s := recv.(runtime.StringValue)
			return runtime.BoolValue{Val: strings.Contains(s.Val, needle)}, nil
		},
		"starts_with": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "starts_with", pos); err != nil {
				return nil, err
			}
			prefix, err := i.stringArg(args, 0, "starts_with", pos)
			if err != nil {
				return nil, err
			}
			s := recv.(runtime.StringValue)
			return runtime.BoolValue{Val: strings.HasPrefix(s.Val, prefix)}, nil
		},
		"ends_with": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "ends_with", pos); err != nil {
				return nil, err
			}
			suffix, err := i.stringArg(args, 0, "ends_with", pos)
			if err != nil {
				return nil, err
			}
			s := recv.(runtime.StringValue)
			return runtime.BoolValue{Val: strings.HasSuffix(s.Val, suffix)}, nil
		},
		"split": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "split", pos); err != nil {
				return nil, err
			}
			sep, err := i.stringArg(args, 0, "split", pos)
			if err != nil {
				return nil, err
			}
			s := recv.(runtime.StringValue)
			parts := strings.Split(s.Val, sep)
			elements := make([]runtime.Value, len(parts))
			for idx, p := range parts {
				elements[idx] = runtime.StringValue{Val: p}
			}
			return runtime.NewList(elements...), nil
		},
		"replace": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 2, "replace", pos); err != nil {
				return nil, err
			}
			old, err := i.stringArg(args, 0, "replace", pos)
			if err != nil {
				return nil, err
			}
			new_, err := i.stringArg(args, 1, "replace", pos)
			if err != nil {
				return nil, err
			}
			s := recv.(runtime.StringValue)
			return runtime.StringValue{Val: strings.ReplaceAll(s.Val, old, new_)}, nil
		},
		"index_of": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "index_of", pos); err != nil {
				return nil, err
			}
			needle, err := i.stringArg(args, 0, "index_of", pos)
			if err != nil {
				return nil, err
			}
			s := recv.(runtime.StringValue)
			return runtime.NumberValue{Val: float64(strings.Index(s.Val, needle))}, nil
		},
		"to_number": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			s := recv.(runtime.StringValue)
			return i.interpretNumber(strings.TrimSpace(s.Val), pos)
		},
	}
}

//-----------------------------------------------------------------------------
// Numbers
//-----------------------------------------------------------------------------

func numberBuiltins() map[string]builtinMethod {
	unary := func(name string, f func(float64) float64) builtinMethod {
		return func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			n, _ := asFloat(recv)
			return runtime.NumberValue{Val: f(n)}, nil
		}
	}
	return map[string]builtinMethod{
		"abs":   unary("abs", math.Abs),
		"round": unary("round", math.Round),
		"floor": unary("floor", math.Floor),
		"ceil":  unary("ceil", math.Ceil),
		"sqrt": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			n, _ := asFloat(recv)
			if n < 0 {
				return nil, i.runtimeErrorf(pos, "sqrt of a negative number")
			}
			return runtime.NumberValue{Val: math.Sqrt(n)}, nil
		},
		"to_string": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			return runtime.StringValue{Val: i.Stringify(recv)}, nil
		},
	}
}

//-----------------------------------------------------------------------------
// Lists
//-----------------------------------------------------------------------------

func listBuiltins() map[string]builtinMethod {
	return map[string]builtinMethod{
		"length": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			list := recv.(*runtime.ListValue)
			return runtime.NumberValue{Val: float64(len(list.Elements))}, nil
		},
		"push": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			list := recv.(*runtime.ListValue)
			if list.Frozen {
				return nil, i.runtimeErrorf(pos, "cannot modify a frozen list")
			}
			if err := i.wantArgs(args, 1, "push", pos); err != nil {
				return nil, err
			}
			value, err := i.applyInsertRules(list.Rules, args[0].value, pos)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, value)
			if err := i.checkListStructure(list, pos); err != nil {
				list.Elements = list.Elements[:len(list.Elements)-1]
				return nil, err
			}
			return list, nil
		},
		"pop": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			list := recv.(*runtime.ListValue)
			if list.Frozen {
				return nil, i.runtimeErrorf(pos, "cannot modify a frozen list")
			}
			if len(list.Elements) == 0 {
				return nil, i.runtimeErrorf(pos, "pop from an empty list")
			}
			last := list.Elements[len(list.Elements)-1]
			list.Elements = list.Elements[:len(list.Elements)-1]
			return last, nil
		},
		"first": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			list := recv.(*runtime.ListValue)
			if len(list.Elements) == 0 {
				return runtime.NoneValue{}, nil
			}
			return list.Elements[0], nil
		},
		"last": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			list := recv.(*runtime.ListValue)
			if len(list.Elements) == 0 {
				return runtime.NoneValue{}, nil
			}
			return list.Elements[len(list.Elements)-1], nil
		},
		"contains": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "contains", pos); err != nil {
				return nil, err
			}
			list := recv.(*runtime.ListValue)
			for _, el := range list.Elements {
				if i.valuesEqual(el, args[0].value) {
					return runtime.BoolValue{Val: true}, nil
				}
			}
			return runtime.BoolValue{Val: false}, nil
		},
		"index_of": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "index_of", pos); err != nil {
				return nil, err
			}
			list := recv.(*runtime.ListValue)
			for idx, el := range list.Elements {
				if i.valuesEqual(el, args[0].value) {
					return runtime.NumberValue{Val: float64(idx)}, nil
				}
			}
			return runtime.NumberValue{Val: -1}, nil
		},
		"remove_at": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			list := recv.(*runtime.ListValue)
			if list.Frozen {
				return nil, i.runtimeErrorf(pos, "cannot modify a frozen list")
			}
			if err := i.wantArgs(args, 1, "remove_at", pos); err != nil {
				return nil, err
			}
			idx, err := i.indexAsInt(args[0].value, pos)
			if err != nil {
				return nil, err
			}
			if idx < 0 || idx >= len(list.Elements) {
				return nil, i.runtimeErrorf(pos, "list index %d out of range (length %d)", idx, len(list.Elements))
			}
			removed := list.Elements[idx]
			list.Elements = append(list.Elements[:idx], list.Elements[idx+1:]...)
			return removed, nil
		},
		"join": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "join", pos); err != nil {
				return nil, err
			}
			sep, err := i.stringArg(args, 0, "join", pos)
			if err != nil {
				return nil, err
			}
			list := recv.(*runtime.ListValue)
			parts := make([]string, len(list.Elements))
			for idx, el := range list.Elements {
				parts[idx] = i.Stringify(el)
			}
			return runtime.StringValue{Val: strings.Join(parts, sep)}, nil
		},
		"reverse": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			list := recv.(*runtime.ListValue)
			out := make([]runtime.Value, len(list.Elements))
			for idx, el := range list.Elements {
				out[len(list.Elements)-1-idx] = el
			}
			return runtime.NewList(out...), nil
		},
		"sort": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			list := recv.(*runtime.ListValue)
			out := append([]runtime.Value(nil), list.Elements...)
			var sortErr error
			sort.SliceStable(out, func(a, b int) bool {
				av, aok := asFloat(out[a])
				bv, bok := asFloat(out[b])
				if aok && bok {
					return av < bv
				}
				as, aok := out[a].(runtime.StringValue)
				bs, bok := out[b].(runtime.StringValue)
				if aok && bok {
					return as.Val < bs.Val
				}
				sortErr = i.typeErrorf(pos, "sort requires a list of numbers or strings")
				return false
			})
			if sortErr != nil {
				return nil, sortErr
			}
			return runtime.NewList(out...), nil
		},
		"map": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "map", pos); err != nil {
				return nil, err
			}
			list := recv.(*runtime.ListValue)
			out := make([]runtime.Value, 0, len(list.Elements))
			for _, el := range list.Elements {
				mapped, err := i.callValue(args[0].value, []evaluatedArg{{value: el, pos: pos}}, env, pos)
				if err != nil {
					return nil, err
				}
				out = append(out, mapped)
			}
			return runtime.NewList(out...), nil
		},
		"filter": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "filter", pos); err != nil {
				return nil, err
			}
			list := recv.(*runtime.ListValue)
			out := make([]runtime.Value, 0, len(list.Elements))
			for _, el := range list.Elements {
				keep, err := i.callValue(args[0].value, []evaluatedArg{{value: el, pos: pos}}, env, pos)
				if err != nil {
					return nil, err
				}
				if isTruthy(keep) {
					out = append(out, el)
				}
			}
			return runtime.NewList(out...), nil
		},
		"reduce": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 2, "reduce", pos); err != nil {
				return nil, err
			}
			list := recv.(*runtime.ListValue)
			acc := args[1].value
			for _, el := range list.Elements {
				next, err := i.callValue(args[0].value, []evaluatedArg{{value: acc, pos: pos}, {value: el, pos: pos}}, env, pos)
				if err != nil {
					return nil, err
				}
				acc = next
			}
			return acc, nil
		},
		"add_rule": addRuleBuiltin,
		"rules": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			list := recv.(*runtime.ListValue)
			return ruleNameList(list.Rules), nil
		},
	}
}

//-----------------------------------------------------------------------------
// Maps
//-----------------------------------------------------------------------------

func mapBuiltins() map[string]builtinMethod {
	return map[string]builtinMethod{
		"length": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			m := recv.(*runtime.MapValue)
			return runtime.NumberValue{Val: float64(len(m.Entries))}, nil
		},
		"keys": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			m := recv.(*runtime.MapValue)
			out := make([]runtime.Value, 0, len(m.KeyOrder))
			for _, k := range m.KeyOrder {
				out = append(out, runtime.StringValue{Val: k})
			}
			return runtime.NewList(out...), nil
		},
		"values": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			m := recv.(*runtime.MapValue)
			out := make([]runtime.Value, 0, len(m.KeyOrder))
			for _, k := range m.KeyOrder {
				out = append(out, m.Entries[k])
			}
			return runtime.NewList(out...), nil
		},
		"has": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "has", pos); err != nil {
				return nil, err
			}
			key, err := i.stringArg(args, 0, "has", pos)
			if err != nil {
				return nil, err
			}
			m := recv.(*runtime.MapValue)
			_, ok := m.Get(key)
			return runtime.BoolValue{Val: ok}, nil
		},
		"get": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			if err := i.wantArgs(args, 1, "get", pos); err != nil {
				return nil, err
			}
			key, err := i.stringArg(args, 0, "get", pos)
			if err != nil {
				return nil, err
			}
			m := recv.(*runtime.MapValue)
			if v, ok := m.Get(key); ok {
				return v, nil
			}
			return runtime.NoneValue{}, nil
		},
		"delete": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			m := recv.(*runtime.MapValue)
			if m.Frozen {
				return nil, i.runtimeErrorf(pos, "cannot modify a frozen map")
			}
			if err := i.wantArgs(args, 1, "delete", pos); err != nil {
				return nil, err
			}
			key, err := i.stringArg(args, 0, "delete", pos)
			if err != nil {
				return nil, err
			}
			m.Delete(key)
			return m, nil
		},
	}
}

//-----------------------------------------------------------------------------
// Graphs
//-----------------------------------------------------------------------------

func graphBuiltins() map[string]builtinMethod {
	return map[string]builtinMethod{
		"add_node": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if err := i.wantArgs(args, 2, "add_node", pos); err != nil {
				return nil, err
			}
			id, err := i.stringArg(args, 0, "add_node", pos)
			if err != nil {
				return nil, err
			}
			if runtime.IsPropertyNode(id) {
				return nil, i.runtimeErrorf(pos, "node id '%s' is reserved", id)
			}
			if err := i.graphSetNode(g, id, args[1].value, pos); err != nil {
				return nil, err
			}
			return g, nil
		},
		"get_node": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if err := i.wantArgs(args, 1, "get_node", pos); err != nil {
				return nil, err
			}
			id, err := i.stringArg(args, 0, "get_node", pos)
			if err != nil {
				return nil, err
			}
			if runtime.IsInternalNode(id) || runtime.IsPropertyNode(id) {
				return runtime.NoneValue{}, nil
			}
			if v, ok := g.GetNode(id); ok {
				return v, nil
			}
			return runtime.NoneValue{}, nil
		},
		"has_node": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if err := i.wantArgs(args, 1, "has_node", pos); err != nil {
				return nil, err
			}
			id, err := i.stringArg(args, 0, "has_node", pos)
			if err != nil {
				return nil, err
			}
			return runtime.BoolValue{Val: !runtime.IsInternalNode(id) && !runtime.IsPropertyNode(id) && g.HasNode(id)}, nil
		},
		"remove_node": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if g.Frozen {
				return nil, i.runtimeErrorf(pos, "cannot modify a frozen graph")
			}
			if err := i.wantArgs(args, 1, "remove_node", pos); err != nil {
				return nil, err
			}
			id, err := i.stringArg(args, 0, "remove_node", pos)
			if err != nil {
				return nil, err
			}
			if runtime.IsInternalNode(id) || runtime.IsPropertyNode(id) {
				return runtime.BoolValue{Val: false}, nil
			}
			return runtime.BoolValue{Val: g.RemoveNode(id)}, nil
		},
		"add_edge": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if len(args) < 2 || len(args) > 4 {
				return nil, i.runtimeErrorf(pos, "add_edge expects from, to, and optional label and weight")
			}
			from, err := i.stringArg(args, 0, "add_edge", pos)
			if err != nil {
				return nil, err
			}
			to, err := i.stringArg(args, 1, "add_edge", pos)
			if err != nil {
				return nil, err
			}
			label := ""
			if len(args) >= 3 {
				label, err = i.stringArg(args, 2, "add_edge", pos)
				if err != nil {
					return nil, err
				}
			}
			var weight runtime.Value
			if len(args) == 4 {
				weight = args[3].value
			}
			if err := i.graphAddEdge(g, from, to, label, weight, pos); err != nil {
				return nil, err
			}
			return g, nil
		},
		"remove_edge": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if g.Frozen {
				return nil, i.runtimeErrorf(pos, "cannot modify a frozen graph")
			}
			if len(args) < 2 || len(args) > 3 {
				return nil, i.runtimeErrorf(pos, "remove_edge expects from, to, and an optional label")
			}
			from, err := i.stringArg(args, 0, "remove_edge", pos)
			if err != nil {
				return nil, err
			}
			to, err := i.stringArg(args, 1, "remove_edge", pos)
			if err != nil {
				return nil, err
			}
			label := ""
			if len(args) == 3 {
				label, err = i.stringArg(args, 2, "remove_edge", pos)
				if err != nil {
					return nil, err
				}
			}
			return runtime.BoolValue{Val: g.RemoveEdge(from, to, label)}, nil
		},
		"nodes": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			return stringList(g.UserNodeIDs()), nil
		},
		"node_count": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			return runtime.NumberValue{Val: float64(len(g.UserNodeIDs()))}, nil
		},
		"edges": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			out := make([]runtime.Value, 0, len(g.Edges))
			for _, e := range g.Edges {
				entry := runtime.NewMap()
				entry.Set("from", runtime.StringValue{Val: e.From})
				entry.Set("to", runtime.StringValue{Val: e.To})
				if e.Label != "" {
					entry.Set("label", runtime.StringValue{Val: e.Label})
				}
				if e.Weight != nil {
					entry.Set("weight", e.Weight)
				}
				out = append(out, entry)
			}
			return runtime.NewList(out...), nil
		},
		"edge_count": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			return runtime.NumberValue{Val: float64(g.EdgeCount())}, nil
		},
		"neighbors": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if err := i.wantArgs(args, 1, "neighbors", pos); err != nil {
				return nil, err
			}
			id, err := i.stringArg(args, 0, "neighbors", pos)
			if err != nil {
				return nil, err
			}
			return stringList(g.Neighbors(id)), nil
		},
		"predecessors": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if err := i.wantArgs(args, 1, "predecessors", pos); err != nil {
				return nil, err
			}
			id, err := i.stringArg(args, 0, "predecessors", pos)
			if err != nil {
				return nil, err
			}
			return stringList(g.Predecessors(id)), nil
		},
		"out_degree": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if err := i.wantArgs(args, 1, "out_degree", pos); err != nil {
				return nil, err
			}
			id, err := i.stringArg(args, 0, "out_degree", pos)
			if err != nil {
				return nil, err
			}
			return runtime.NumberValue{Val: float64(g.OutDegree(id))}, nil
		},
		"in_degree": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if err := i.wantArgs(args, 1, "in_degree", pos); err != nil {
				return nil, err
			}
			id, err := i.stringArg(args, 0, "in_degree", pos)
			if err != nil {
				return nil, err
			}
			return runtime.NumberValue{Val: float64(g.InDegree(id))}, nil
		},
		"has_cycle": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			return runtime.BoolValue{Val: g.HasCycle()}, nil
		},
		"roots": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			return stringList(g.Roots()), nil
		},
		"is_connected": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			return runtime.BoolValue{Val: g.IsConnected()}, nil
		},
		"clone": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			return g.Clone(), nil
		},
		"type_name": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			if g.TypeName == "" {
				return runtime.NoneValue{}, nil
			}
			return runtime.StringValue{Val: g.TypeName}, nil
		},
		"add_rule": addRuleBuiltin,
		"rules": func(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
			g := recv.(*runtime.GraphValue)
			return ruleNameList(g.AllRules()), nil
		},
	}
}

// addRuleBuiltin attaches a rule to a list or graph at runtime:
// `g.add_rule(:no_cycles)`, `xs.add_rule(:max_degree, 3)`.
func addRuleBuiltin(i *Interpreter, recv runtime.Value, args []evaluatedArg, env *runtime.Environment, pos ast.Position) (runtime.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, i.runtimeErrorf(pos, "add_rule expects a rule name and an optional parameter")
	}
	sym, ok := args[0].value.(runtime.SymbolValue)
	if !ok {
		return nil, i.typeErrorf(pos, "add_rule expects a symbol, got %s", args[0].value.Kind())
	}
	var param runtime.Value
	if len(args) == 2 {
		param = args[1].value
	}
	rule, err := i.makeRule(runtime.RuleName(sym.Name), param, pos)
	if err != nil {
		return nil, err
	}
	switch target := recv.(type) {
	case *runtime.ListValue:
		target.Rules = append(target.Rules, rule)
		if err := i.checkListStructure(target, pos); err != nil {
			target.Rules = target.Rules[:len(target.Rules)-1]
			return nil, err
		}
		return target, nil
	case *runtime.GraphValue:
		target.Rules = append(target.Rules, rule)
		if err := i.checkGraphStructure(target, pos); err != nil {
			target.Rules = target.Rules[:len(target.Rules)-1]
			return nil, err
		}
		return target, nil
	default:
		return nil, i.typeErrorf(pos, "add_rule applies to lists and graphs, not %s", recv.Kind())
	}
}

func stringList(ids []string) *runtime.ListValue {
	out := make([]runtime.Value, len(ids))
	for idx, id := range ids {
		out[idx] = runtime.StringValue{Val: id}
	}
	return runtime.NewList(out...)
}

func ruleNameList(rules []*runtime.RuleInstance) *runtime.ListValue {
	out := make([]runtime.Value, len(rules))
	for idx, r := range rules {
		out[idx] = runtime.SymbolValue{Name: string(r.Name)}
	}
	return runtime.NewList(out...)
}
