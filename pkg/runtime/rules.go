package runtime

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// RuleKind groups rule behaviours: structural rules validate graph shape
// after mutations, transformation rules rewrite values on insertion,
// freeze rules police frozen values, and method constraints are enforced
// by before/after diffing around user-method calls.
type RuleKind int

const (
	RuleStructural RuleKind = iota
	RuleTransformation
	RuleFreeze
	RuleMethodConstraint
)

// RuleName is the surface-level identifier used in `rule :name`
// declarations.
type RuleName string

const (
	RuleNoCycles        RuleName = "no_cycles"
	RuleSingleRoot      RuleName = "single_root"
	RuleConnected       RuleName = "connected"
	RuleBinaryTree      RuleName = "binary_tree"
	RuleNoDuplicates    RuleName = "no_duplicates"
	RuleMaxDegree       RuleName = "max_degree"
	RuleWeightedEdges   RuleName = "weighted_edges"
	RuleUnweightedEdges RuleName = "unweighted_edges"

	RuleNoneToZero     RuleName = "none_to_zero"
	RulePositive       RuleName = "positive"
	RuleRoundToInt     RuleName = "round_to_int"
	RuleUppercase      RuleName = "uppercase"
	RuleLowercase      RuleName = "lowercase"
	RuleCustomFunction RuleName = "transform_with"
	RuleConditional    RuleName = "conditional"

	RuleNoFrozen          RuleName = "no_frozen"
	RuleCopyElements      RuleName = "copy_elements"
	RuleShallowFreezeOnly RuleName = "shallow_freeze_only"

	RuleNoNodeRemovals   RuleName = "no_node_removals"
	RuleNoEdgeRemovals   RuleName = "no_edge_removals"
	RuleReadOnly         RuleName = "read_only"
	RuleCustomConstraint RuleName = "constrain_with"
)

// KindOfRule maps a rule name onto its behavioural group.
func KindOfRule(name RuleName) (RuleKind, bool) {
	switch name {
	case RuleNoCycles, RuleSingleRoot, RuleConnected, RuleBinaryTree,
		RuleNoDuplicates, RuleMaxDegree, RuleWeightedEdges, RuleUnweightedEdges:
		return RuleStructural, true
	case RuleNoneToZero, RulePositive, RuleRoundToInt, RuleUppercase,
		RuleLowercase, RuleCustomFunction, RuleConditional:
		return RuleTransformation, true
	case RuleNoFrozen, RuleCopyElements, RuleShallowFreezeOnly:
		return RuleFreeze, true
	case RuleNoNodeRemovals, RuleNoEdgeRemovals, RuleReadOnly, RuleCustomConstraint:
		return RuleMethodConstraint, true
	default:
		return 0, false
	}
}

// RuleInstance is one attached rule. MaxDegree carries the degree bound;
// the function fields carry user callables for the custom variants, which
// the executor invokes (they cannot be evaluated context-free).
type RuleInstance struct {
	Name      RuleName
	RuleKind  RuleKind
	MaxDegree int
	Fn        *FunctionValue
	Predicate *FunctionValue
	Transform *FunctionValue
	Fallback  *FunctionValue
	Label     string
}

func NewRuleInstance(name RuleName) (*RuleInstance, error) {
	kind, ok := KindOfRule(name)
	if !ok {
		return nil, fmt.Errorf("unknown rule '%s'", name)
	}
	return &RuleInstance{Name: name, RuleKind: kind}, nil
}

func (r *RuleInstance) String() string {
	if r.Label != "" {
		return fmt.Sprintf("%s (%s)", r.Name, r.Label)
	}
	return string(r.Name)
}

//-----------------------------------------------------------------------------
// Structural checks
//-----------------------------------------------------------------------------

// CheckStructural validates a graph against one structural rule. A nil
// return means the graph satisfies the rule.
func (r *RuleInstance) CheckStructural(g *GraphValue) error {
	switch r.Name {
	case RuleNoCycles:
		if g.HasCycle() {
			return fmt.Errorf("rule no_cycles: graph contains a cycle")
		}
	case RuleSingleRoot:
		if len(g.UserNodeIDs()) == 0 {
			return nil
		}
		roots := g.Roots()
		if len(roots) != 1 {
			return fmt.Errorf("rule single_root: expected exactly one root, found %d", len(roots))
		}
	case RuleConnected:
		if !g.IsConnected() {
			return fmt.Errorf("rule connected: graph is not connected")
		}
	case RuleBinaryTree:
		if g.HasCycle() {
			return fmt.Errorf("rule binary_tree: graph contains a cycle")
		}
		for _, id := range g.UserNodeIDs() {
			if g.OutDegree(id) > 2 {
				return fmt.Errorf("rule binary_tree: node '%s' has more than two children", id)
			}
			if g.InDegree(id) > 1 {
				return fmt.Errorf("rule binary_tree: node '%s' has more than one parent", id)
			}
		}
	case RuleNoDuplicates:
		seen := make([]Value, 0, len(g.Nodes))
		for _, id := range g.UserNodeIDs() {
			val := g.Nodes[id]
			for _, prev := range seen {
				if shallowEqual(prev, val) {
					return fmt.Errorf("rule no_duplicates: duplicate node value in graph")
				}
			}
			seen = append(seen, val)
		}
	case RuleMaxDegree:
		for _, id := range g.UserNodeIDs() {
			if g.OutDegree(id) > r.MaxDegree {
				return fmt.Errorf("rule max_degree: node '%s' exceeds degree %d", id, r.MaxDegree)
			}
		}
	case RuleWeightedEdges:
		for _, e := range g.Edges {
			if e.Weight == nil {
				return fmt.Errorf("rule weighted_edges: edge %s->%s has no weight", e.From, e.To)
			}
		}
	case RuleUnweightedEdges:
		for _, e := range g.Edges {
			if e.Weight != nil {
				return fmt.Errorf("rule unweighted_edges: edge %s->%s carries a weight", e.From, e.To)
			}
		}
	}
	return nil
}

// CheckListStructural validates list contents for the structural rules
// that make sense on ordered collections.
func (r *RuleInstance) CheckListStructural(list *ListValue) error {
	if r.Name != RuleNoDuplicates {
		return nil
	}
	for i, a := range list.Elements {
		for _, b := range list.Elements[i+1:] {
			if shallowEqual(a, b) {
				return fmt.Errorf("rule no_duplicates: duplicate element in list")
			}
		}
	}
	return nil
}

//-----------------------------------------------------------------------------
// Pure transformations
//-----------------------------------------------------------------------------

// ApplyPureTransform rewrites an inserted value for the context-free
// transformation rules. Custom and conditional transforms are threaded
// through the executor instead, since they invoke user functions.
func (r *RuleInstance) ApplyPureTransform(v Value) (Value, error) {
	switch r.Name {
	case RuleNoneToZero:
		if _, ok := v.(NoneValue); ok {
			return NumberValue{Val: 0}, nil
		}
		return v, nil
	case RulePositive:
		switch n := v.(type) {
		case NumberValue:
			return NumberValue{Val: math.Abs(n.Val)}, nil
		case BigNumberValue:
			return bigAbs(n), nil
		}
		return v, nil
	case RuleRoundToInt:
		switch n := v.(type) {
		case NumberValue:
			return NumberValue{Val: math.Round(n.Val)}, nil
		case BigNumberValue:
			if n.Rep == RepFloat128 && n.Float != nil {
				f, _ := n.Float.Float64()
				rounded := new(big.Float).SetPrec(Float128Prec).SetFloat64(math.Round(f))
				return BigNumberValue{Rep: RepFloat128, Float: rounded}, nil
			}
			return n, nil
		}
		return v, nil
	case RuleUppercase:
		if s, ok := v.(StringValue); ok {
			return StringValue{Val: strings.ToUpper(s.Val)}, nil
		}
		return v, nil
	case RuleLowercase:
		if s, ok := v.(StringValue); ok {
			return StringValue{Val: strings.ToLower(s.Val)}, nil
		}
		return v, nil
	default:
		return v, nil
	}
}

// IsPureTransform reports whether ApplyPureTransform fully implements
// this rule, or whether the executor has to invoke user code.
func (r *RuleInstance) IsPureTransform() bool {
	switch r.Name {
	case RuleCustomFunction, RuleConditional:
		return false
	default:
		return r.RuleKind == RuleTransformation
	}
}

func bigAbs(n BigNumberValue) Value {
	switch n.Rep {
	case RepInt64:
		if n.Int < 0 {
			return BigNumberValue{Rep: RepInt64, Int: -n.Int}
		}
		return n
	case RepBigInt:
		if n.Big != nil && n.Big.Sign() < 0 {
			return BigNumberValue{Rep: RepBigInt, Big: new(big.Int).Abs(n.Big)}
		}
		return n
	case RepFloat128:
		if n.Float != nil && n.Float.Sign() < 0 {
			return BigNumberValue{Rep: RepFloat128, Float: new(big.Float).SetPrec(Float128Prec).Abs(n.Float)}
		}
		return n
	default:
		return n
	}
}

//-----------------------------------------------------------------------------
// Freeze rules
//-----------------------------------------------------------------------------

// ApplyFreezeRule enforces or adjusts an inserted value for one
// freeze-control rule.
func (r *RuleInstance) ApplyFreezeRule(v Value) (Value, error) {
	switch r.Name {
	case RuleNoFrozen:
		if IsFrozen(v) {
			return nil, fmt.Errorf("rule no_frozen: frozen value rejected")
		}
		return v, nil
	case RuleCopyElements:
		return copyValueShallow(v), nil
	case RuleShallowFreezeOnly:
		// Shallow freezing is the only freeze depth the runtime
		// implements, so the rule only needs to reject values whose
		// elements are themselves frozen.
		switch val := v.(type) {
		case *ListValue:
			for _, el := range val.Elements {
				if IsFrozen(el) {
					return nil, fmt.Errorf("rule shallow_freeze_only: nested frozen value rejected")
				}
			}
		case *MapValue:
			for _, el := range val.Entries {
				if IsFrozen(el) {
					return nil, fmt.Errorf("rule shallow_freeze_only: nested frozen value rejected")
				}
			}
		}
		return v, nil
	default:
		return v, nil
	}
}

func copyValueShallow(v Value) Value {
	switch val := v.(type) {
	case *ListValue:
		return &ListValue{Elements: append([]Value(nil), val.Elements...), Rules: val.Rules}
	case *MapValue:
		out := NewMap()
		for _, k := range val.KeyOrder {
			out.Set(k, val.Entries[k])
		}
		return out
	case *GraphValue:
		return val.Clone()
	default:
		return v
	}
}

//-----------------------------------------------------------------------------
// Method-constraint diffing
//-----------------------------------------------------------------------------

// ConstraintSnapshot captures the constrainable view of a graph before a
// method call: node-id set plus edge count.
type ConstraintSnapshot struct {
	NodeIDs   map[string]bool
	EdgeCount int
}

func SnapshotConstrainable(g *GraphValue) ConstraintSnapshot {
	ids := make(map[string]bool)
	for _, id := range g.ConstrainableIDs() {
		ids[id] = true
	}
	return ConstraintSnapshot{NodeIDs: ids, EdgeCount: g.EdgeCount()}
}

// CheckConstraint diffs before/after snapshots for the context-free
// method constraints. CustomMethodConstraint is invoked by the executor.
func (r *RuleInstance) CheckConstraint(before, after ConstraintSnapshot) error {
	switch r.Name {
	case RuleReadOnly:
		if len(before.NodeIDs) != len(after.NodeIDs) || before.EdgeCount != after.EdgeCount {
			return fmt.Errorf("rule read_only: method mutated a read-only graph")
		}
		for id := range before.NodeIDs {
			if !after.NodeIDs[id] {
				return fmt.Errorf("rule read_only: method mutated a read-only graph")
			}
		}
	case RuleNoNodeRemovals:
		for id := range before.NodeIDs {
			if !after.NodeIDs[id] {
				return fmt.Errorf("rule no_node_removals: node '%s' was removed", id)
			}
		}
	case RuleNoEdgeRemovals:
		if after.EdgeCount < before.EdgeCount {
			return fmt.Errorf("rule no_edge_removals: edge count decreased from %d to %d", before.EdgeCount, after.EdgeCount)
		}
	}
	return nil
}

// shallowEqual is the equality used by no_duplicates; it covers scalar
// kinds and falls back to identity for aggregates.
func shallowEqual(a, b Value) bool {
	switch av := a.(type) {
	case NumberValue:
		switch bv := b.(type) {
		case NumberValue:
			return av.Val == bv.Val
		case BigNumberValue:
			return av.Val == bv.AsFloat()
		}
		return false
	case BigNumberValue:
		switch bv := b.(type) {
		case NumberValue:
			return av.AsFloat() == bv.Val
		case BigNumberValue:
			return av.AsFloat() == bv.AsFloat()
		}
		return false
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	case SymbolValue:
		bv, ok := b.(SymbolValue)
		return ok && av.Name == bv.Name
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	default:
		return a == b
	}
}
