package runtime

import "testing"

func TestDefineAndGetThroughChain(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", NumberValue{Val: 1})

	child := global.Extend()
	v, err := child.Get("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num := v.(NumberValue); num.Val != 1 {
		t.Fatalf("expected 1, got %#v", v)
	}
}

func TestDefineShadowsWithoutTouchingParent(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", NumberValue{Val: 1})

	child := global.Extend()
	child.Define("x", NumberValue{Val: 2})

	v, _ := child.Get("x")
	if num := v.(NumberValue); num.Val != 2 {
		t.Fatalf("expected shadowed 2, got %#v", v)
	}
	v, _ = global.Get("x")
	if num := v.(NumberValue); num.Val != 1 {
		t.Fatalf("expected parent untouched, got %#v", v)
	}
}

func TestAssignWritesToDefiningScope(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", NumberValue{Val: 1})

	child := global.Extend()
	if err := child.Assign("x", NumberValue{Val: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if child.DefinedLocally("x") {
		t.Fatalf("assignment should not create a local binding")
	}
	v, _ := global.Get("x")
	if num := v.(NumberValue); num.Val != 5 {
		t.Fatalf("expected 5 in the defining scope, got %#v", v)
	}
}

func TestAssignUndefinedFails(t *testing.T) {
	env := NewEnvironment(nil)
	if err := env.Assign("ghost", NoneValue{}); err == nil {
		t.Fatalf("expected error for undefined variable")
	}
}

func TestTakeParentDetachesScope(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", NumberValue{Val: 1})

	child := global.Extend()
	child.Define("local", NumberValue{Val: 2})
	child.Assign("x", NumberValue{Val: 3})

	parent := child.TakeParent()
	if parent != global {
		t.Fatalf("expected the original parent back")
	}
	if child.Parent() != nil {
		t.Fatalf("expected the child to be detached")
	}
	if _, err := global.Get("local"); err == nil {
		t.Fatalf("block-local binding leaked into the parent")
	}
	v, _ := global.Get("x")
	if num := v.(NumberValue); num.Val != 3 {
		t.Fatalf("expected mutation through the chain to persist, got %#v", v)
	}
}

func TestSnapshotCopiesCurrentScopeOnly(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("outer", NumberValue{Val: 1})

	child := global.Extend()
	child.Define("inner", NumberValue{Val: 2})

	snap := child.Snapshot()
	if _, ok := snap["outer"]; ok {
		t.Fatalf("snapshot should not include parent bindings")
	}
	if _, ok := snap["inner"]; !ok {
		t.Fatalf("snapshot missing local binding")
	}
	snap["inner"] = NumberValue{Val: 99}
	v, _ := child.Get("inner")
	if num := v.(NumberValue); num.Val != 2 {
		t.Fatalf("snapshot should be a copy, got %#v", v)
	}
}

func TestKeysAreSorted(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("b", NoneValue{})
	env.Define("a", NoneValue{})
	env.Define("c", NoneValue{})

	keys := env.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("expected sorted keys, got %v", keys)
	}
}
