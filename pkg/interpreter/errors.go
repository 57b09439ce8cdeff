package interpreter

import (
	"fmt"
	"strings"

	"graphite/interpreter-go/pkg/ast"
	"graphite/interpreter-go/pkg/runtime"
)

// Error type names visible to user code. User programs may raise and
// catch these by name, as well as types of their own invention.
const (
	ErrSyntax             = "SyntaxError"
	ErrType               = "TypeError"
	ErrRuntime            = "RuntimeError"
	ErrRuleViolation      = "RuleViolation"
	ErrModuleNotFound     = "ModuleNotFound"
	ErrIO                 = "IOError"
	ErrCircularDependency = "CircularDependency"
	ErrConfig             = "ConfigError"
)

// raiseSignal carries a typed runtime error value through the Go error
// channel. try/catch inspects the carried value's ErrType; anything else
// on the error channel is an interpreter-internal failure.
type raiseSignal struct {
	value runtime.ErrorValue
}

func (r raiseSignal) Error() string {
	return r.value.String()
}

// asRaised extracts a typed error value from an evaluation error, if the
// error is user-catchable.
func asRaised(err error) (runtime.ErrorValue, bool) {
	if rs, ok := err.(raiseSignal); ok {
		return rs.value, true
	}
	return runtime.ErrorValue{}, false
}

// DescribeError renders an evaluation error for terminal display,
// including the call stack and cause chain when present.
func DescribeError(err error) string {
	ev, ok := asRaised(err)
	if !ok {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(ev.String())
	for _, frame := range ev.Stack {
		b.WriteString("\n  at ")
		b.WriteString(frame)
	}
	for cause := ev.Cause; cause != nil; cause = cause.Cause {
		b.WriteString("\ncaused by: ")
		b.WriteString(cause.String())
	}
	return b.String()
}

func (i *Interpreter) newError(errType, message string, pos ast.Position) raiseSignal {
	return raiseSignal{value: runtime.ErrorValue{
		ErrType: errType,
		Message: message,
		Pos:     pos,
		Stack:   i.stackSnapshot(),
	}}
}

func (i *Interpreter) errorf(errType string, pos ast.Position, format string, args ...interface{}) error {
	return i.newError(errType, fmt.Sprintf(format, args...), pos)
}

func (i *Interpreter) typeErrorf(pos ast.Position, format string, args ...interface{}) error {
	return i.errorf(ErrType, pos, format, args...)
}

func (i *Interpreter) runtimeErrorf(pos ast.Position, format string, args ...interface{}) error {
	return i.errorf(ErrRuntime, pos, format, args...)
}

func (i *Interpreter) ruleViolationf(pos ast.Position, format string, args ...interface{}) error {
	return i.errorf(ErrRuleViolation, pos, format, args...)
}

// chainCause attaches an underlying typed error as the cause of a new one.
func (i *Interpreter) chainCause(errType, message string, pos ast.Position, cause error) error {
	sig := i.newError(errType, message, pos)
	if cv, ok := asRaised(cause); ok {
		c := cv
		sig.value.Cause = &c
	}
	return sig
}

// collectable reports whether an error belongs to the soft class that the
// collect mode downgrades to a diagnostic plus a none result.
func collectable(err error) bool {
	ev, ok := asRaised(err)
	if !ok {
		return false
	}
	// Module, config, and syntax failures always abort; everything
	// else, including user-raised types, is soft.
	switch ev.ErrType {
	case ErrModuleNotFound, ErrIO, ErrCircularDependency, ErrConfig, ErrSyntax:
		return false
	default:
		return true
	}
}
