package interpreter

import (
	"strings"

	"graphite/interpreter-go/pkg/runtime"
)

// registerGlobals installs the native functions every program sees.
func (i *Interpreter) registerGlobals() {
	define := func(name string, arity int, impl runtime.NativeFunc) {
		i.global.Define(name, runtime.NativeFunctionValue{Name: name, Arity: arity, Impl: impl})
	}

	define("print", -1, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		parts := make([]string, len(args))
		for idx, a := range args {
			parts[idx] = i.Stringify(a)
		}
		i.printLine(strings.Join(parts, " "))
		return runtime.NoneValue{}, nil
	})

	define("len", 1, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		switch v := args[0].(type) {
		case runtime.StringValue:
			return runtime.NumberValue{Val: float64(len([]rune(v.Val)))}, nil
		case *runtime.ListValue:
			return runtime.NumberValue{Val: float64(len(v.Elements))}, nil
		case *runtime.MapValue:
			return runtime.NumberValue{Val: float64(len(v.Entries))}, nil
		case *runtime.GraphValue:
			return runtime.NumberValue{Val: float64(len(v.UserNodeIDs()))}, nil
		default:
			return nil, i.typeErrorf(ctx.Pos, "len is not defined for %s", args[0].Kind())
		}
	})

	define("type", 1, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if g, ok := args[0].(*runtime.GraphValue); ok && g.TypeName != "" {
			return runtime.StringValue{Val: g.TypeName}, nil
		}
		return runtime.StringValue{Val: args[0].Kind().String()}, nil
	})

	define("to_string", 1, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: i.Stringify(args[0])}, nil
	})

	define("freeze", 1, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.Freeze(args[0]), nil
	})

	define("is_frozen", 1, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.BoolValue{Val: runtime.IsFrozen(args[0])}, nil
	})

	define("error", 2, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		errType, ok := args[0].(runtime.StringValue)
		if !ok {
			return nil, i.typeErrorf(ctx.Pos, "error type must be a string")
		}
		message, ok := args[1].(runtime.StringValue)
		if !ok {
			return nil, i.typeErrorf(ctx.Pos, "error message must be a string")
		}
		return runtime.ErrorValue{ErrType: errType.Val, Message: message.Val, Pos: ctx.Pos, Stack: i.stackSnapshot()}, nil
	})

	define("graph", 0, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.NewGraph(), nil
	})

	define("from_parent", 1, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		parent, ok := args[0].(*runtime.GraphValue)
		if !ok {
			return nil, i.typeErrorf(ctx.Pos, "from_parent expects a graph, got %s", args[0].Kind())
		}
		return runtime.FromParent(parent), nil
	})

	define("range", -1, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		var lo, hi float64
		switch len(args) {
		case 1:
			n, ok := asFloat(args[0])
			if !ok {
				return nil, i.typeErrorf(ctx.Pos, "range expects numbers")
			}
			hi = n
		case 2:
			a, aok := asFloat(args[0])
			b, bok := asFloat(args[1])
			if !aok || !bok {
				return nil, i.typeErrorf(ctx.Pos, "range expects numbers")
			}
			lo, hi = a, b
		default:
			return nil, i.runtimeErrorf(ctx.Pos, "range expects 1 or 2 arguments, got %d", len(args))
		}
		out := make([]runtime.Value, 0)
		for n := lo; n < hi; n++ {
			out = append(out, runtime.NumberValue{Val: n})
		}
		return runtime.NewList(out...), nil
	})

	define("run", 1, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		path, ok := args[0].(runtime.StringValue)
		if !ok {
			return nil, i.typeErrorf(ctx.Pos, "run expects a path string")
		}
		return i.runSubprogram(path.Val, ctx.Pos)
	})
}
