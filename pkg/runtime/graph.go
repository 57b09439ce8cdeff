package runtime

import (
	"fmt"
	"strings"
)

// Reserved node-id prefixes. Property nodes back CLG properties; the
// internal prefixes are bookkeeping and never visible through index or
// property access.
const (
	PropertyPrefix = "__properties__/"

	internalMethods = "__methods__"
	internalParent  = "__parent__"
	internalSelf    = "__self__"
)

// IsInternalNode reports whether id belongs to interpreter bookkeeping.
func IsInternalNode(id string) bool {
	return strings.HasPrefix(id, internalMethods) ||
		strings.HasPrefix(id, internalParent) ||
		strings.HasPrefix(id, internalSelf)
}

// IsPropertyNode reports whether id backs a CLG property.
func IsPropertyNode(id string) bool {
	return strings.HasPrefix(id, PropertyPrefix)
}

// PropertyNodeID maps a property name onto its backing node id.
func PropertyNodeID(name string) string {
	return PropertyPrefix + name
}

// Edge is a directed, type-tagged connection between two nodes. Weight
// is nil for unweighted edges.
type Edge struct {
	From   string
	To     string
	Label  string
	Weight Value
}

// GraphValue is the node-keyed object at the center of the language:
// plain data graph, CLG instance, or CLG type, depending on how it was
// declared.
type GraphValue struct {
	TypeName string
	Nodes    map[string]Value
	Edges    []*Edge
	// Parent is exclusively owned; parent chains are acyclic by
	// construction (FromParent clones, so no value is its own ancestor).
	Parent  *GraphValue
	Rules   []*RuleInstance
	Methods map[string]*FunctionValue
	Statics map[string]*FunctionValue
	Setters map[string]*FunctionValue
	Frozen  bool

	nodeOrder []string
}

func NewGraph() *GraphValue {
	return &GraphValue{
		Nodes:   make(map[string]Value),
		Methods: make(map[string]*FunctionValue),
		Statics: make(map[string]*FunctionValue),
		Setters: make(map[string]*FunctionValue),
	}
}

func (g *GraphValue) Kind() Kind { return KindGraph }

// FromParent creates a new graph owning a clone of parent, supporting
// multi-level inheritance without shared mutable ancestry.
func FromParent(parent *GraphValue) *GraphValue {
	g := NewGraph()
	if parent != nil {
		g.Parent = parent.Clone()
	}
	return g
}

// SetNode inserts or overwrites a node. Insertion order is preserved for
// deterministic iteration.
func (g *GraphValue) SetNode(id string, value Value) {
	if _, ok := g.Nodes[id]; !ok {
		g.nodeOrder = append(g.nodeOrder, id)
	}
	g.Nodes[id] = value
}

func (g *GraphValue) GetNode(id string) (Value, bool) {
	v, ok := g.Nodes[id]
	return v, ok
}

func (g *GraphValue) HasNode(id string) bool {
	_, ok := g.Nodes[id]
	return ok
}

// LookupNode resolves a node id through the parent chain, so instances
// see property defaults declared on their prototype.
func (g *GraphValue) LookupNode(id string) (Value, bool) {
	for cur := g; cur != nil; cur = cur.Parent {
		if v, ok := cur.Nodes[id]; ok {
			return v, true
		}
	}
	return nil, false
}

// RemoveNode deletes a node and every edge touching it.
func (g *GraphValue) RemoveNode(id string) bool {
	if _, ok := g.Nodes[id]; !ok {
		return false
	}
	delete(g.Nodes, id)
	for idx, existing := range g.nodeOrder {
		if existing == id {
			g.nodeOrder = append(g.nodeOrder[:idx], g.nodeOrder[idx+1:]...)
			break
		}
	}
	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if e.From != id && e.To != id {
			kept = append(kept, e)
		}
	}
	g.Edges = kept
	return true
}

// AddEdge connects two existing nodes with a type-tagged edge.
func (g *GraphValue) AddEdge(from, to, label string, weight Value) error {
	if !g.HasNode(from) {
		return fmt.Errorf("no node '%s' in graph", from)
	}
	if !g.HasNode(to) {
		return fmt.Errorf("no node '%s' in graph", to)
	}
	g.Edges = append(g.Edges, &Edge{From: from, To: to, Label: label, Weight: weight})
	return nil
}

// RemoveEdge deletes the first edge matching from/to (and label when
// given). It reports whether an edge was removed.
func (g *GraphValue) RemoveEdge(from, to, label string) bool {
	for idx, e := range g.Edges {
		if e.From != from || e.To != to {
			continue
		}
		if label != "" && e.Label != label {
			continue
		}
		g.Edges = append(g.Edges[:idx], g.Edges[idx+1:]...)
		return true
	}
	return false
}

func (g *GraphValue) EdgeCount() int {
	return len(g.Edges)
}

// NodeIDs returns every node id in insertion order, bookkeeping included.
func (g *GraphValue) NodeIDs() []string {
	out := make([]string, len(g.nodeOrder))
	copy(out, g.nodeOrder)
	return out
}

// UserNodeIDs returns node ids visible to user code: everything outside
// the reserved prefixes.
func (g *GraphValue) UserNodeIDs() []string {
	out := make([]string, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		if IsInternalNode(id) || IsPropertyNode(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ConstrainableIDs is the view method constraints diff over: user nodes
// plus CLG properties, excluding bookkeeping.
func (g *GraphValue) ConstrainableIDs() []string {
	out := make([]string, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		if IsInternalNode(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Neighbors returns the targets of outgoing edges from id, in edge
// insertion order.
func (g *GraphValue) Neighbors(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// Predecessors returns the sources of incoming edges to id.
func (g *GraphValue) Predecessors(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.To == id {
			out = append(out, e.From)
		}
	}
	return out
}

func (g *GraphValue) OutDegree(id string) int {
	n := 0
	for _, e := range g.Edges {
		if e.From == id {
			n++
		}
	}
	return n
}

func (g *GraphValue) InDegree(id string) int {
	n := 0
	for _, e := range g.Edges {
		if e.To == id {
			n++
		}
	}
	return n
}

// Clone copies the graph: node map, edges, rules list, method tables,
// and the owned parent chain. Scalar node values are shared; containers
// stored as node values (graphs, lists, maps) are deep-copied so
// method-call transactions cannot leak partial mutations through them.
func (g *GraphValue) Clone() *GraphValue {
	if g == nil {
		return nil
	}
	out := NewGraph()
	out.TypeName = g.TypeName
	out.Frozen = g.Frozen
	for _, id := range g.nodeOrder {
		out.SetNode(id, cloneNodeValue(g.Nodes[id]))
	}
	out.Edges = make([]*Edge, len(g.Edges))
	for idx, e := range g.Edges {
		copied := *e
		out.Edges[idx] = &copied
	}
	out.Rules = append([]*RuleInstance(nil), g.Rules...)
	for name, fn := range g.Methods {
		out.Methods[name] = fn
	}
	for name, fn := range g.Statics {
		out.Statics[name] = fn
	}
	for name, fn := range g.Setters {
		out.Setters[name] = fn
	}
	out.Parent = g.Parent.Clone()
	return out
}

// cloneNodeValue deep-copies container values and shares everything
// else.
func cloneNodeValue(val Value) Value {
	switch v := val.(type) {
	case *GraphValue:
		return v.Clone()
	case *ListValue:
		elements := make([]Value, len(v.Elements))
		for idx, el := range v.Elements {
			elements[idx] = cloneNodeValue(el)
		}
		return &ListValue{Elements: elements, Rules: append([]*RuleInstance(nil), v.Rules...), Frozen: v.Frozen}
	case *MapValue:
		entries := make(map[string]Value, len(v.Entries))
		for key, entry := range v.Entries {
			entries[key] = cloneNodeValue(entry)
		}
		return &MapValue{Entries: entries, KeyOrder: append([]string(nil), v.KeyOrder...), Frozen: v.Frozen}
	default:
		return val
	}
}

// ReplaceWith overwrites this graph's state with another's, so every
// alias of the receiver observes the change at once. Method-call
// transactions commit a validated clone through it.
func (g *GraphValue) ReplaceWith(other *GraphValue) {
	g.TypeName = other.TypeName
	g.Nodes = other.Nodes
	g.Edges = other.Edges
	g.Parent = other.Parent
	g.Rules = other.Rules
	g.Methods = other.Methods
	g.Statics = other.Statics
	g.Setters = other.Setters
	g.Frozen = other.Frozen
	g.nodeOrder = other.nodeOrder
}

// LookupMethod finds an instance method by walking the parent chain. It
// returns the owning graph so super resolution can continue upward.
func (g *GraphValue) LookupMethod(name string) (*FunctionValue, *GraphValue) {
	for cur := g; cur != nil; cur = cur.Parent {
		if fn, ok := cur.Methods[name]; ok {
			return fn, cur
		}
	}
	return nil, nil
}

// LookupStatic finds a static method along the parent chain.
func (g *GraphValue) LookupStatic(name string) (*FunctionValue, *GraphValue) {
	for cur := g; cur != nil; cur = cur.Parent {
		if fn, ok := cur.Statics[name]; ok {
			return fn, cur
		}
	}
	return nil, nil
}

// LookupSetter finds a setter method along the parent chain.
func (g *GraphValue) LookupSetter(name string) (*FunctionValue, *GraphValue) {
	for cur := g; cur != nil; cur = cur.Parent {
		if fn, ok := cur.Setters[name]; ok {
			return fn, cur
		}
	}
	return nil, nil
}

// AllRules collects rules from the whole parent chain, ancestors first,
// so inherited constraints keep firing on derived graphs.
func (g *GraphValue) AllRules() []*RuleInstance {
	if g == nil {
		return nil
	}
	inherited := g.Parent.AllRules()
	return append(inherited, g.Rules...)
}

//-----------------------------------------------------------------------------
// Structural queries used by the rule engine
//-----------------------------------------------------------------------------

// HasCycle reports whether the user-visible subgraph contains a directed
// cycle.
func (g *GraphValue) HasCycle() bool {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(g.Nodes))
	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case inStack:
			return true
		case done:
			return false
		}
		state[id] = inStack
		for _, next := range g.Neighbors(id) {
			if visit(next) {
				return true
			}
		}
		state[id] = done
		return false
	}
	for _, id := range g.UserNodeIDs() {
		if state[id] == unvisited && visit(id) {
			return true
		}
	}
	return false
}

// Roots returns user nodes with no incoming edges.
func (g *GraphValue) Roots() []string {
	var out []string
	for _, id := range g.UserNodeIDs() {
		if g.InDegree(id) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// IsConnected reports weak connectivity over the user-visible subgraph.
// Empty and single-node graphs are connected.
func (g *GraphValue) IsConnected() bool {
	ids := g.UserNodeIDs()
	if len(ids) <= 1 {
		return true
	}
	adjacent := make(map[string][]string, len(ids))
	for _, e := range g.Edges {
		adjacent[e.From] = append(adjacent[e.From], e.To)
		adjacent[e.To] = append(adjacent[e.To], e.From)
	}
	seen := map[string]bool{ids[0]: true}
	queue := []string{ids[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacent[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, id := range ids {
		if !seen[id] {
			return false
		}
	}
	return true
}
