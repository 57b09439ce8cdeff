package interpreter

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

// Precision names accepted by `config precision: "..."` and the manifest.
const (
	PrecisionFloat64  = "float64"
	PrecisionFloat128 = "float128"
	PrecisionBig      = "big"
)

// Config is the ambient numeric and error-handling configuration. It can
// be set by the embedder, by the project manifest, or adjusted from
// inside a program via `config` statements.
type Config struct {
	Precision     string
	IntegerMode   bool
	UnsignedMode  bool
	CollectErrors bool
}

func DefaultConfig() Config {
	return Config{Precision: PrecisionFloat64}
}

type callRecord struct {
	name string
	pos  ast.Position
}

// Interpreter drives evaluation of Graphite AST nodes.
type Interpreter struct {
	global    *runtime.Environment
	config    Config
	overloads map[string][]*runtime.FunctionValue
	builtins  map[runtime.Kind]map[string]builtinMethod

	modules map[string]*runtime.ModuleValue
	loading map[string]bool

	callStack    []callRecord
	graphContext []*runtime.GraphValue

	out     io.Writer
	capture []*bytes.Buffer

	diagnostics []runtime.ErrorValue
	currentFile string
}

// New returns an interpreter with an empty global environment and the
// default configuration.
func New() *Interpreter {
	i := &Interpreter{
		global:    runtime.NewEnvironment(nil),
		config:    DefaultConfig(),
		overloads: make(map[string][]*runtime.FunctionValue),
		modules:   make(map[string]*runtime.ModuleValue),
		loading:   make(map[string]bool),
		out:       os.Stdout,
	}
	i.builtins = builtinTables()
	i.registerGlobals()
	return i
}

// NewWithConfig returns an interpreter seeded with the given
// configuration.
func NewWithConfig(cfg Config) *Interpreter {
	i := New()
	if cfg.Precision == "" {
		cfg.Precision = PrecisionFloat64
	}
	i.config = cfg
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Configuration returns the current ambient configuration.
func (i *Interpreter) Configuration() Config {
	return i.config
}

// SetOutput redirects program output. Capture buffers, when active,
// take precedence.
func (i *Interpreter) SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	i.out = w
}

// Diagnostics returns errors collected while running with
// CollectErrors enabled.
func (i *Interpreter) Diagnostics() []runtime.ErrorValue {
	return append([]runtime.ErrorValue(nil), i.diagnostics...)
}

// EvaluateProgram executes a program against the global environment and
// returns the last evaluated value.
func (i *Interpreter) EvaluateProgram(program *ast.Program) (runtime.Value, error) {
	return i.evaluateBody(program.Body, i.global)
}

// ExecuteSource decodes a serialized program and evaluates it. The
// source text is the canonical JSON program encoding produced by the
// parser toolchain.
func (i *Interpreter) ExecuteSource(source string) (runtime.Value, error) {
	program, err := ast.DecodeProgram([]byte(source))
	if err != nil {
		return nil, i.errorf(ErrSyntax, ast.Position{}, "invalid program source: %v", err)
	}
	return i.EvaluateProgram(program)
}

// ExecuteFile reads, decodes and evaluates a program file. Imports and
// loads inside the program resolve relative to its path.
func (i *Interpreter) ExecuteFile(path string) (runtime.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, i.errorf(ErrIO, ast.Position{}, "cannot read %s: %v", path, err)
	}
	program, err := ast.DecodeProgram(data)
	if err != nil {
		return nil, i.errorf(ErrSyntax, ast.Position{}, "invalid program %s: %v", path, err)
	}
	prev := i.currentFile
	i.currentFile = path
	defer func() { i.currentFile = prev }()
	return i.EvaluateProgram(program)
}

// GetVariable reads a variable from the global environment.
func (i *Interpreter) GetVariable(name string) (runtime.Value, error) {
	v, err := i.global.Get(name)
	if err != nil {
		return nil, i.runtimeErrorf(ast.Position{}, "undefined variable '%s'", name)
	}
	return v, nil
}

func (i *Interpreter) evaluateBody(body []ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	var last runtime.Value = runtime.NoneValue{}
	for _, stmt := range body {
		val, fl, err := i.evalStatement(stmt, env)
		if err != nil {
			if i.config.CollectErrors && collectable(err) {
				ev, _ := asRaised(err)
				i.diagnostics = append(i.diagnostics, ev)
				last = runtime.NoneValue{}
				continue
			}
			return nil, err
		}
		switch fl.kind {
		case flowNormal:
			last = val
		case flowReturn:
			return nil, fmt.Errorf("internal error: return escaped to top level")
		default:
			return nil, fmt.Errorf("internal error: loop control escaped to top level")
		}
	}
	return last, nil
}

// Output capture. BeginCapture redirects print output into a fresh
// in-memory buffer; EndCapture pops it and returns the captured text.
// Captures nest when one program invokes another as a subroutine.

func (i *Interpreter) BeginCapture() {
	i.capture = append(i.capture, &bytes.Buffer{})
}

func (i *Interpreter) EndCapture() string {
	if len(i.capture) == 0 {
		return ""
	}
	buf := i.capture[len(i.capture)-1]
	i.capture = i.capture[:len(i.capture)-1]
	return buf.String()
}

func (i *Interpreter) writer() io.Writer {
	if len(i.capture) > 0 {
		return i.capture[len(i.capture)-1]
	}
	return i.out
}

func (i *Interpreter) printLine(text string) {
	fmt.Fprintln(i.writer(), text)
}

// Call records. The call stack is independent of the scope chain and is
// balanced on every exit path, including errors, so error values always
// carry an accurate snapshot.

func (i *Interpreter) pushCall(name string, pos ast.Position) {
	i.callStack = append(i.callStack, callRecord{name: name, pos: pos})
}

func (i *Interpreter) popCall() {
	if len(i.callStack) == 0 {
		return
	}
	i.callStack = i.callStack[:len(i.callStack)-1]
}

func (i *Interpreter) stackSnapshot() []string {
	out := make([]string, 0, len(i.callStack))
	for idx := len(i.callStack) - 1; idx >= 0; idx-- {
		rec := i.callStack[idx]
		if rec.pos.IsZero() {
			out = append(out, rec.name)
		} else {
			out = append(out, fmt.Sprintf("%s (%d:%d)", rec.name, rec.pos.Line, rec.pos.Column))
		}
	}
	return out
}

// graph context stack, used by `super` resolution.

func (i *Interpreter) pushGraphContext(g *runtime.GraphValue) {
	i.graphContext = append(i.graphContext, g)
}

func (i *Interpreter) popGraphContext() {
	if len(i.graphContext) == 0 {
		return
	}
	i.graphContext = i.graphContext[:len(i.graphContext)-1]
}

func (i *Interpreter) currentGraphContext() *runtime.GraphValue {
	if len(i.graphContext) == 0 {
		return nil
	}
	return i.graphContext[len(i.graphContext)-1]
}

// isTruthy follows the language's truthiness: false, none, and zero are
// falsy; everything else is truthy.
func isTruthy(v runtime.Value) bool {
	switch val := v.(type) {
	case runtime.BoolValue:
		return val.Val
	case runtime.NoneValue:
		return false
	case runtime.NumberValue:
		return val.Val != 0
	case runtime.BigNumberValue:
		return val.AsFloat() != 0
	default:
		return true
	}
}
