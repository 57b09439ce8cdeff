package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"graphite/interpreter-go/pkg/runtime"
)

// Stringify renders a value for print and diagnostics. Strings render
// bare at the top level and quoted inside collections.
func (i *Interpreter) Stringify(v runtime.Value) string {
	return i.stringify(v, false)
}

func (i *Interpreter) stringify(v runtime.Value, nested bool) string {
	switch val := v.(type) {
	case runtime.NumberValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64)
	case runtime.BigNumberValue:
		switch val.Rep {
		case runtime.RepInt64:
			return strconv.FormatInt(val.Int, 10)
		case runtime.RepUint64:
			return strconv.FormatUint(val.Uint, 10)
		case runtime.RepBigInt:
			return val.Big.String()
		case runtime.RepFloat128:
			return val.Float.Text('g', -1)
		}
		return "0"
	case runtime.StringValue:
		if nested {
			return strconv.Quote(val.Val)
		}
		return val.Val
	case runtime.BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case runtime.NoneValue:
		return "none"
	case runtime.SymbolValue:
		return ":" + val.Name
	case *runtime.ListValue:
		parts := make([]string, len(val.Elements))
		for idx, el := range val.Elements {
			parts[idx] = i.stringify(el, true)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *runtime.MapValue:
		parts := make([]string, 0, len(val.KeyOrder))
		for _, k := range val.KeyOrder {
			parts = append(parts, fmt.Sprintf("%s: %s", k, i.stringify(val.Entries[k], true)))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *runtime.GraphValue:
		name := val.TypeName
		if name == "" {
			name = "graph"
		}
		return fmt.Sprintf("%s(nodes: %d, edges: %d)", name, len(val.UserNodeIDs()), val.EdgeCount())
	case *runtime.FunctionValue:
		if val.Name != "" {
			return "<fn " + val.Name + ">"
		}
		return "<fn>"
	case runtime.NativeFunctionValue:
		return "<native fn " + val.Name + ">"
	case *runtime.BoundMethodValue:
		return "<method " + val.Method.Name + ">"
	case *runtime.ModuleValue:
		return "<module " + val.Name + ">"
	case runtime.ErrorValue:
		return val.String()
	case *runtime.PatternValue:
		return "<pattern>"
	default:
		return fmt.Sprintf("<%s>", v.Kind())
	}
}
