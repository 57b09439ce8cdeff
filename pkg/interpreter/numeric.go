package interpreter

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

// interpretNumber turns a literal's raw spelling into a value according
// to the ambient configuration: f64 by default, i64/u64 in integer mode,
// 128-bit floats or arbitrary precision under the wider precision modes.
func (i *Interpreter) interpretNumber(raw string, pos ast.Position) (runtime.Value, error) {
	raw = strings.ReplaceAll(raw, "_", "")
	isIntegral := !strings.ContainsAny(raw, ".eE")

	switch {
	case i.config.Precision == PrecisionBig && isIntegral:
		n := new(big.Int)
		if _, ok := n.SetString(raw, 10); !ok {
			return nil, i.typeErrorf(pos, "invalid number literal '%s'", raw)
		}
		return runtime.NewBigInt(n), nil
	case i.config.Precision == PrecisionBig || i.config.Precision == PrecisionFloat128:
		f, _, err := big.ParseFloat(raw, 10, runtime.Float128Prec, big.ToNearestEven)
		if err != nil {
			return nil, i.typeErrorf(pos, "invalid number literal '%s'", raw)
		}
		return runtime.NewFloat128(f), nil
	case i.config.IntegerMode && isIntegral:
		if i.config.UnsignedMode {
			u, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, i.typeErrorf(pos, "invalid unsigned literal '%s'", raw)
			}
			return runtime.NewUint64(u), nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, i.typeErrorf(pos, "invalid integer literal '%s'", raw)
		}
		return runtime.NewInt64(n), nil
	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, i.typeErrorf(pos, "invalid number literal '%s'", raw)
		}
		return runtime.NumberValue{Val: f}, nil
	}
}

func (i *Interpreter) numericNegate(v runtime.Value, pos ast.Position) (runtime.Value, error) {
	switch n := v.(type) {
	case runtime.NumberValue:
		return runtime.NumberValue{Val: -n.Val}, nil
	case runtime.BigNumberValue:
		switch n.Rep {
		case runtime.RepInt64:
			return runtime.NewInt64(-n.Int), nil
		case runtime.RepUint64:
			return nil, i.typeErrorf(pos, "cannot negate an unsigned number")
		case runtime.RepBigInt:
			return runtime.NewBigInt(new(big.Int).Neg(n.Big)), nil
		case runtime.RepFloat128:
			return runtime.NewFloat128(new(big.Float).SetPrec(runtime.Float128Prec).Neg(n.Float)), nil
		}
	}
	return nil, i.typeErrorf(pos, "cannot negate %s", v.Kind())
}

func (i *Interpreter) applyBinary(op string, left, right runtime.Value, pos ast.Position) (runtime.Value, error) {
	switch op {
	case "==":
		return runtime.BoolValue{Val: i.valuesEqual(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !i.valuesEqual(left, right)}, nil
	}

	// String concatenation and comparison.
	if ls, ok := left.(runtime.StringValue); ok {
		if rs, ok := right.(runtime.StringValue); ok {
			switch op {
			case "+":
				return runtime.StringValue{Val: ls.Val + rs.Val}, nil
			case "<":
				return runtime.BoolValue{Val: ls.Val < rs.Val}, nil
			case "<=":
				return runtime.BoolValue{Val: ls.Val <= rs.Val}, nil
			case ">":
				return runtime.BoolValue{Val: ls.Val > rs.Val}, nil
			case ">=":
				return runtime.BoolValue{Val: ls.Val >= rs.Val}, nil
			}
			return nil, i.typeErrorf(pos, "operator '%s' not defined for strings", op)
		}
	}

	// List concatenation.
	if ll, ok := left.(*runtime.ListValue); ok {
		if rl, ok := right.(*runtime.ListValue); ok && op == "+" {
			merged := make([]runtime.Value, 0, len(ll.Elements)+len(rl.Elements))
			merged = append(merged, ll.Elements...)
			merged = append(merged, rl.Elements...)
			return runtime.NewList(merged...), nil
		}
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, i.typeErrorf(pos, "operator '%s' not defined for %s and %s", op, left.Kind(), right.Kind())
	}

	switch op {
	case "<":
		return runtime.BoolValue{Val: i.numericCompare(left, right) < 0}, nil
	case "<=":
		return runtime.BoolValue{Val: i.numericCompare(left, right) <= 0}, nil
	case ">":
		return runtime.BoolValue{Val: i.numericCompare(left, right) > 0}, nil
	case ">=":
		return runtime.BoolValue{Val: i.numericCompare(left, right) >= 0}, nil
	}

	// Arithmetic: the wider representation of the two operands wins.
	if lb, ok := left.(runtime.BigNumberValue); ok {
		if rb, ok := right.(runtime.BigNumberValue); ok {
			return i.bigArithmetic(op, lb, rb, pos)
		}
	}
	if isFloat128(left) || isFloat128(right) {
		return i.float128Arithmetic(op, toFloat128(left), toFloat128(right), pos)
	}
	if isBigInt(left) || isBigInt(right) {
		return i.float128Arithmetic(op, toFloat128(left), toFloat128(right), pos)
	}

	switch op {
	case "+":
		return runtime.NumberValue{Val: lf + rf}, nil
	case "-":
		return runtime.NumberValue{Val: lf - rf}, nil
	case "*":
		return runtime.NumberValue{Val: lf * rf}, nil
	case "/":
		if rf == 0 {
			return nil, i.runtimeErrorf(pos, "division by zero")
		}
		return runtime.NumberValue{Val: lf / rf}, nil
	case "%":
		if rf == 0 {
			return nil, i.runtimeErrorf(pos, "modulo by zero")
		}
		return runtime.NumberValue{Val: math.Mod(lf, rf)}, nil
	case "**":
		return runtime.NumberValue{Val: math.Pow(lf, rf)}, nil
	default:
		return nil, i.typeErrorf(pos, "unknown operator '%s'", op)
	}
}

func (i *Interpreter) bigArithmetic(op string, l, r runtime.BigNumberValue, pos ast.Position) (runtime.Value, error) {
	if l.Rep == runtime.RepFloat128 || r.Rep == runtime.RepFloat128 {
		return i.float128Arithmetic(op, toFloat128(l), toFloat128(r), pos)
	}
	if l.Rep == runtime.RepBigInt || r.Rep == runtime.RepBigInt {
		return i.bigIntArithmetic(op, toBigInt(l), toBigInt(r), pos)
	}
	if l.Rep == runtime.RepUint64 && r.Rep == runtime.RepUint64 {
		switch op {
		case "+":
			return runtime.NewUint64(l.Uint + r.Uint), nil
		case "-":
			if r.Uint > l.Uint {
				return nil, i.runtimeErrorf(pos, "unsigned subtraction underflow")
			}
			return runtime.NewUint64(l.Uint - r.Uint), nil
		case "*":
			return runtime.NewUint64(l.Uint * r.Uint), nil
		case "/":
			if r.Uint == 0 {
				return nil, i.runtimeErrorf(pos, "division by zero")
			}
			return runtime.NewUint64(l.Uint / r.Uint), nil
		case "%":
			if r.Uint == 0 {
				return nil, i.runtimeErrorf(pos, "modulo by zero")
			}
			return runtime.NewUint64(l.Uint % r.Uint), nil
		case "**":
			return runtime.NumberValue{Val: math.Pow(float64(l.Uint), float64(r.Uint))}, nil
		}
	}
	li, ri := l.Int, r.Int
	if l.Rep == runtime.RepUint64 {
		li = int64(l.Uint)
	}
	if r.Rep == runtime.RepUint64 {
		ri = int64(r.Uint)
	}
	switch op {
	case "+":
		return runtime.NewInt64(li + ri), nil
	case "-":
		return runtime.NewInt64(li - ri), nil
	case "*":
		return runtime.NewInt64(li * ri), nil
	case "/":
		if ri == 0 {
			return nil, i.runtimeErrorf(pos, "division by zero")
		}
		return runtime.NewInt64(li / ri), nil
	case "%":
		if ri == 0 {
			return nil, i.runtimeErrorf(pos, "modulo by zero")
		}
		return runtime.NewInt64(li % ri), nil
	case "**":
		return runtime.NumberValue{Val: math.Pow(float64(li), float64(ri))}, nil
	default:
		return nil, i.typeErrorf(pos, "unknown operator '%s'", op)
	}
}

func (i *Interpreter) bigIntArithmetic(op string, l, r *big.Int, pos ast.Position) (runtime.Value, error) {
	out := new(big.Int)
	switch op {
	case "+":
		return runtime.NewBigInt(out.Add(l, r)), nil
	case "-":
		return runtime.NewBigInt(out.Sub(l, r)), nil
	case "*":
		return runtime.NewBigInt(out.Mul(l, r)), nil
	case "/":
		if r.Sign() == 0 {
			return nil, i.runtimeErrorf(pos, "division by zero")
		}
		return runtime.NewBigInt(out.Quo(l, r)), nil
	case "%":
		if r.Sign() == 0 {
			return nil, i.runtimeErrorf(pos, "modulo by zero")
		}
		return runtime.NewBigInt(out.Rem(l, r)), nil
	case "**":
		if r.Sign() < 0 || !r.IsInt64() {
			return nil, i.runtimeErrorf(pos, "exponent out of range")
		}
		return runtime.NewBigInt(out.Exp(l, r, nil)), nil
	default:
		return nil, i.typeErrorf(pos, "unknown operator '%s'", op)
	}
}

func (i *Interpreter) float128Arithmetic(op string, l, r *big.Float, pos ast.Position) (runtime.Value, error) {
	out := new(big.Float).SetPrec(runtime.Float128Prec)
	switch op {
	case "+":
		return runtime.NewFloat128(out.Add(l, r)), nil
	case "-":
		return runtime.NewFloat128(out.Sub(l, r)), nil
	case "*":
		return runtime.NewFloat128(out.Mul(l, r)), nil
	case "/":
		if r.Sign() == 0 {
			return nil, i.runtimeErrorf(pos, "division by zero")
		}
		return runtime.NewFloat128(out.Quo(l, r)), nil
	case "%":
		lf, _ := l.Float64()
		rf, _ := r.Float64()
		if rf == 0 {
			return nil, i.runtimeErrorf(pos, "modulo by zero")
		}
		return runtime.NewFloat128(out.SetFloat64(math.Mod(lf, rf))), nil
	case "**":
		lf, _ := l.Float64()
		rf, _ := r.Float64()
		return runtime.NewFloat128(out.SetFloat64(math.Pow(lf, rf))), nil
	default:
		return nil, i.typeErrorf(pos, "unknown operator '%s'", op)
	}
}

func (i *Interpreter) numericCompare(left, right runtime.Value) int {
	if isFloat128(left) || isFloat128(right) || isBigInt(left) || isBigInt(right) {
		return toFloat128(left).Cmp(toFloat128(right))
	}
	lf, _ := asFloat(left)
	rf, _ := asFloat(right)
	switch {
	case lf < rf:
		return -1
	case lf > rf:
		return 1
	default:
		return 0
	}
}

// valuesEqual is runtime `==`: exact numeric equality across
// representations, structural equality for lists and maps, identity for
// graphs and functions.
func (i *Interpreter) valuesEqual(a, b runtime.Value) bool {
	lf, lok := asFloat(a)
	rf, rok := asFloat(b)
	if lok && rok {
		if isFloat128(a) || isFloat128(b) || isBigInt(a) || isBigInt(b) {
			return toFloat128(a).Cmp(toFloat128(b)) == 0
		}
		return lf == rf
	}
	switch av := a.(type) {
	case runtime.StringValue:
		bv, ok := b.(runtime.StringValue)
		return ok && av.Val == bv.Val
	case runtime.BoolValue:
		bv, ok := b.(runtime.BoolValue)
		return ok && av.Val == bv.Val
	case runtime.NoneValue:
		_, ok := b.(runtime.NoneValue)
		return ok
	case runtime.SymbolValue:
		bv, ok := b.(runtime.SymbolValue)
		return ok && av.Name == bv.Name
	case *runtime.ListValue:
		bv, ok := b.(*runtime.ListValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for idx := range av.Elements {
			if !i.valuesEqual(av.Elements[idx], bv.Elements[idx]) {
				return false
			}
		}
		return true
	case *runtime.MapValue:
		bv, ok := b.(*runtime.MapValue)
		if !ok || len(av.Entries) != len(bv.Entries) {
			return false
		}
		for k, v := range av.Entries {
			other, present := bv.Entries[k]
			if !present || !i.valuesEqual(v, other) {
				return false
			}
		}
		return true
	case runtime.ErrorValue:
		bv, ok := b.(runtime.ErrorValue)
		return ok && av.ErrType == bv.ErrType && av.Message == bv.Message
	default:
		return a == b
	}
}

func isFloat128(v runtime.Value) bool {
	b, ok := v.(runtime.BigNumberValue)
	return ok && b.Rep == runtime.RepFloat128
}

func isBigInt(v runtime.Value) bool {
	b, ok := v.(runtime.BigNumberValue)
	return ok && b.Rep == runtime.RepBigInt
}

func toFloat128(v runtime.Value) *big.Float {
	out := new(big.Float).SetPrec(runtime.Float128Prec)
	switch n := v.(type) {
	case runtime.NumberValue:
		return out.SetFloat64(n.Val)
	case runtime.BigNumberValue:
		switch n.Rep {
		case runtime.RepInt64:
			return out.SetInt64(n.Int)
		case runtime.RepUint64:
			return out.SetUint64(n.Uint)
		case runtime.RepBigInt:
			return out.SetInt(n.Big)
		case runtime.RepFloat128:
			return out.Set(n.Float)
		}
	}
	return out
}

func toBigInt(v runtime.BigNumberValue) *big.Int {
	switch v.Rep {
	case runtime.RepInt64:
		return big.NewInt(v.Int)
	case runtime.RepUint64:
		return new(big.Int).SetUint64(v.Uint)
	case runtime.RepBigInt:
		return v.Big
	case runtime.RepFloat128:
		out, _ := v.Float.Int(nil)
		return out
	}
	return new(big.Int)
}
