package runtime

import (
	"fmt"
	"sort"
)

// Environment provides lexical scoping for Graphite runtime values.
// Environments are shared by pointer: a closure captures its defining
// scope by aliasing, never by copy.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// TakeParent detaches and returns the parent scope. Short-lived child
// scopes (catch clauses, guard evaluation) use it to hand mutations made
// through the chain back to the enclosing scope without leaking their
// own block-local bindings.
func (e *Environment) TakeParent() *Environment {
	parent := e.parent
	e.parent = nil
	return parent
}

// Snapshot returns a deterministic copy of the current bindings.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// DefinedLocally reports whether the current scope itself binds name.
func (e *Environment) DefinedLocally(name string) bool {
	_, ok := e.values[name]
	return ok
}

// GetLocal retrieves a binding from the current scope only.
func (e *Environment) GetLocal(name string) (Value, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Undefine removes a binding from the current scope only.
func (e *Environment) Undefine(name string) {
	delete(e.values, name)
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	if _, ok := e.values[name]; ok {
		e.values[name] = value
		return nil
	}
	if e.parent != nil {
		return e.parent.Assign(name, value)
	}
	return fmt.Errorf("Undefined variable '%s'", name)
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, fmt.Errorf("Undefined variable '%s'", name)
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend clones the current environment into a new child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
