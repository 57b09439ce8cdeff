package interpreter

import "graphite/interpreter-go/pkg/runtime"

// flow is the explicit control-flow result threaded through statement and
// expression evaluation. Loops intercept flowBreak/flowContinue; call
// boundaries intercept flowReturn. A flow other than flowNormal escaping
// the top level is an interpreter bug surfaced as an internal error.
type flowKind int

const (
	flowNormal flowKind = iota
	flowReturn
	flowBreak
	flowContinue
)

type flow struct {
	kind  flowKind
	value runtime.Value
}

var normalFlow = flow{kind: flowNormal}

func returnFlow(v runtime.Value) flow { return flow{kind: flowReturn, value: v} }
func breakFlow(v runtime.Value) flow  { return flow{kind: flowBreak, value: v} }

func (f flow) isNormal() bool { return f.kind == flowNormal }
