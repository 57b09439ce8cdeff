package runtime

import (
	"fmt"
	"math/big"

	"graphite/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindBigNumber
	KindString
	KindBool
	KindNone
	KindSymbol
	KindList
	KindMap
	KindGraph
	KindFunction
	KindNativeFunction
	KindBoundMethod
	KindModule
	KindError
	KindPattern
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBigNumber:
		return "bignumber"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNone:
		return "none"
	case KindSymbol:
		return "symbol"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindGraph:
		return "graph"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindBoundMethod:
		return "bound_method"
	case KindModule:
		return "module"
	case KindError:
		return "error"
	case KindPattern:
		return "pattern"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

// BigRep selects the concrete representation of a BigNumberValue; the
// ambient precision configuration picks it at literal-evaluation time.
type BigRep int

const (
	RepInt64 BigRep = iota
	RepUint64
	RepFloat128
	RepBigInt
)

func (r BigRep) String() string {
	switch r {
	case RepInt64:
		return "int64"
	case RepUint64:
		return "uint64"
	case RepFloat128:
		return "float128"
	case RepBigInt:
		return "bigint"
	default:
		return fmt.Sprintf("rep_%d", int(r))
	}
}

// Float128Prec is the mantissa precision used for 128-bit float mode.
const Float128Prec = 113

type BigNumberValue struct {
	Rep   BigRep
	Int   int64
	Uint  uint64
	Big   *big.Int
	Float *big.Float
}

func (v BigNumberValue) Kind() Kind { return KindBigNumber }

func NewInt64(val int64) BigNumberValue {
	return BigNumberValue{Rep: RepInt64, Int: val}
}

func NewUint64(val uint64) BigNumberValue {
	return BigNumberValue{Rep: RepUint64, Uint: val}
}

func NewBigInt(val *big.Int) BigNumberValue {
	return BigNumberValue{Rep: RepBigInt, Big: CloneBigInt(val)}
}

func NewFloat128(val *big.Float) BigNumberValue {
	f := new(big.Float).SetPrec(Float128Prec)
	if val != nil {
		f.Set(val)
	}
	return BigNumberValue{Rep: RepFloat128, Float: f}
}

// AsFloat projects any BigNumber representation onto float64, used for
// epsilon comparison and mixed-mode arithmetic.
func (v BigNumberValue) AsFloat() float64 {
	switch v.Rep {
	case RepInt64:
		return float64(v.Int)
	case RepUint64:
		return float64(v.Uint)
	case RepBigInt:
		if v.Big == nil {
			return 0
		}
		f, _ := new(big.Float).SetInt(v.Big).Float64()
		return f
	case RepFloat128:
		if v.Float == nil {
			return 0
		}
		f, _ := v.Float.Float64()
		return f
	default:
		return 0
	}
}

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NoneValue struct{}

func (NoneValue) Kind() Kind { return KindNone }

type SymbolValue struct {
	Name string
}

func (v SymbolValue) Kind() Kind { return KindSymbol }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// ListValue is ordered and mutable; rules attached to the list fire on
// every insertion.
type ListValue struct {
	Elements []Value
	Rules    []*RuleInstance
	Frozen   bool
}

func (v *ListValue) Kind() Kind { return KindList }

func NewList(elements ...Value) *ListValue {
	return &ListValue{Elements: elements}
}

// MapValue is string-keyed; key order is preserved for deterministic
// iteration and stringification.
type MapValue struct {
	Entries  map[string]Value
	KeyOrder []string
	Frozen   bool
}

func (v *MapValue) Kind() Kind { return KindMap }

func NewMap() *MapValue {
	return &MapValue{Entries: make(map[string]Value)}
}

func (v *MapValue) Set(key string, value Value) {
	if _, ok := v.Entries[key]; !ok {
		v.KeyOrder = append(v.KeyOrder, key)
	}
	v.Entries[key] = value
}

func (v *MapValue) Get(key string) (Value, bool) {
	val, ok := v.Entries[key]
	return val, ok
}

func (v *MapValue) Delete(key string) {
	if _, ok := v.Entries[key]; !ok {
		return
	}
	delete(v.Entries, key)
	for idx, k := range v.KeyOrder {
		if k == key {
			v.KeyOrder = append(v.KeyOrder[:idx], v.KeyOrder[idx+1:]...)
			break
		}
	}
}

//-----------------------------------------------------------------------------
// Functions & closures
//-----------------------------------------------------------------------------

// FunctionValue carries either Params+Body or Clauses, mirroring the AST.
// Closure is shared, never copied: mutation in the defining scope is
// visible inside the function and vice versa.
type FunctionValue struct {
	Name     string
	Params   []*ast.Parameter
	Clauses  []*ast.FunctionClause
	Guard    ast.Expression
	Body     *ast.BlockExpression
	Closure  *Environment
	IsStatic bool
	IsSetter bool
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// Arity reports the fixed parameter count and whether a variadic slot is
// present. Pattern-clause functions always take exactly one argument.
func (v *FunctionValue) Arity() (int, bool) {
	if len(v.Clauses) > 0 {
		return 1, false
	}
	fixed := 0
	variadic := false
	for _, p := range v.Params {
		if p.Variadic {
			variadic = true
			continue
		}
		fixed++
	}
	return fixed, variadic
}

// RequiredArity counts parameters with neither default nor variadic flag.
func (v *FunctionValue) RequiredArity() int {
	if len(v.Clauses) > 0 {
		return 1
	}
	required := 0
	for _, p := range v.Params {
		if p.Variadic || p.Default != nil {
			continue
		}
		required++
	}
	return required
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// NativeCallContext provides hooks for native functions.
type NativeCallContext struct {
	Env *Environment
	Pos ast.Position
}

type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }

// BoundMethodValue captures a receiver together with a callable.
type BoundMethodValue struct {
	Receiver Value
	Method   *FunctionValue
	// Owner is the graph whose method table supplied Method; super
	// resolution walks upward from it.
	Owner *GraphValue
}

func (v *BoundMethodValue) Kind() Kind { return KindBoundMethod }

//-----------------------------------------------------------------------------
// Modules, errors, patterns
//-----------------------------------------------------------------------------

type ModuleValue struct {
	Name    string
	Path    string
	Members map[string]Value
}

func (v *ModuleValue) Kind() Kind { return KindModule }

// ErrorValue is a user-visible typed error. ErrType is the name user
// code catches by (`catch RuleViolation as e`).
type ErrorValue struct {
	ErrType string
	Message string
	Pos     ast.Position
	Cause   *ErrorValue
	Stack   []string
}

func (v ErrorValue) Kind() Kind { return KindError }

func (v ErrorValue) String() string {
	if v.Pos.IsZero() {
		return fmt.Sprintf("%s: %s", v.ErrType, v.Message)
	}
	return fmt.Sprintf("%s: %s (line %d, column %d)", v.ErrType, v.Message, v.Pos.Line, v.Pos.Column)
}

// PatternValue is a first-class pattern query usable against graphs and
// lists (`nodes_matching`, `find_nodes`).
type PatternValue struct {
	Pattern ast.Pattern
	Guard   ast.Expression
}

func (v *PatternValue) Kind() Kind { return KindPattern }

//-----------------------------------------------------------------------------
// Freezing
//-----------------------------------------------------------------------------

// Freeze marks a value shallowly frozen. Scalars are immutable already
// and pass through unchanged.
func Freeze(v Value) Value {
	switch val := v.(type) {
	case *ListValue:
		val.Frozen = true
	case *MapValue:
		val.Frozen = true
	case *GraphValue:
		val.Frozen = true
	}
	return v
}

func IsFrozen(v Value) bool {
	switch val := v.(type) {
	case *ListValue:
		return val.Frozen
	case *MapValue:
		return val.Frozen
	case *GraphValue:
		return val.Frozen
	default:
		return false
	}
}

//-----------------------------------------------------------------------------
// Utility helpers
//-----------------------------------------------------------------------------

// CloneBigInt copies the provided big.Int pointer, tolerating nil.
func CloneBigInt(src *big.Int) *big.Int {
	if src == nil {
		return nil
	}
	return new(big.Int).Set(src)
}
