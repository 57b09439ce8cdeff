package interpreter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"graphite/interpreter-go/pkg/runtime"
)

func writeProgram(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name+ProgramExt)
	source := `{"type":"Program","body":[` + body + `]}`
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func declareJSON(name, raw string) string {
	return `{"type":"AssignmentExpression","operator":":=",` +
		`"left":{"type":"Identifier","name":"` + name + `"},` +
		`"right":{"type":"NumberLiteral","raw":"` + raw + `"}}`
}

func printJSON(text string) string {
	return `{"type":"CallExpression","callee":{"type":"Identifier","name":"print"},` +
		`"arguments":[{"value":{"type":"StringLiteral","value":"` + text + `"}}]}`
}

func importJSON(path string) string {
	return `{"type":"ImportStatement","path":"` + path + `"}`
}

func memberJSON(object, member string) string {
	return `{"type":"MemberAccessExpression",` +
		`"object":{"type":"Identifier","name":"` + object + `"},` +
		`"member":{"type":"Identifier","name":"` + member + `"}}`
}

func TestImportBindsModuleByFileName(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "mathutil", declareJSON("answer", "42"))
	main := writeProgram(t, dir, "main",
		importJSON("mathutil")+","+memberJSON("mathutil", "answer"))

	interp := New()
	result, err := interp.ExecuteFile(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 42 {
		t.Fatalf("expected module member 42, got %#v", result)
	}
}

func TestImportAliasRebindsName(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "mathutil", declareJSON("answer", "42"))
	main := writeProgram(t, dir, "main",
		`{"type":"ImportStatement","path":"mathutil","alias":{"type":"Identifier","name":"m"}}`+
			","+memberJSON("m", "answer"))

	interp := New()
	result, err := interp.ExecuteFile(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 42 {
		t.Fatalf("expected aliased member 42, got %#v", result)
	}
}

func TestImportRunsModuleOnce(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "noisy", printJSON("loaded"))
	main := writeProgram(t, dir, "main",
		importJSON("noisy")+","+importJSON("noisy"))

	interp := New()
	var out bytes.Buffer
	interp.SetOutput(&out)
	if _, err := interp.ExecuteFile(main); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "loaded\n" {
		t.Fatalf("expected module body to run once, got %q", out.String())
	}
}

func TestImportHidesUnderscoreNames(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "mod",
		declareJSON("visible", "1")+","+declareJSON("_hidden", "2"))
	main := writeProgram(t, dir, "main",
		importJSON("mod")+","+memberJSON("mod", "_hidden"))

	interp := New()
	_, err := interp.ExecuteFile(main)
	if err == nil {
		t.Fatalf("expected underscore member to be hidden")
	}
	raised, ok := asRaised(err)
	if !ok || raised.ErrType != ErrRuntime {
		t.Fatalf("expected %s, got %v", ErrRuntime, err)
	}
}

func TestCircularImportFails(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "a", importJSON("b"))
	writeProgram(t, dir, "b", importJSON("a"))
	main := writeProgram(t, dir, "main", importJSON("a"))

	interp := New()
	_, err := interp.ExecuteFile(main)
	if err == nil {
		t.Fatalf("expected circular import error")
	}
	raised, ok := asRaised(err)
	if !ok || raised.ErrType != ErrCircularDependency {
		t.Fatalf("expected %s, got %v", ErrCircularDependency, err)
	}
}

func TestImportMissingModule(t *testing.T) {
	dir := t.TempDir()
	main := writeProgram(t, dir, "main", importJSON("nowhere"))

	interp := New()
	_, err := interp.ExecuteFile(main)
	if err == nil {
		t.Fatalf("expected missing module error")
	}
	raised, ok := asRaised(err)
	if !ok || raised.ErrType != ErrModuleNotFound {
		t.Fatalf("expected %s, got %v", ErrModuleNotFound, err)
	}
}

func TestLoadMergesBindingsIntoCaller(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "shared",
		declareJSON("base", "10")+","+declareJSON("_internal", "99"))
	main := writeProgram(t, dir, "main",
		`{"type":"LoadStatement","path":"shared"}`+
			`,{"type":"Identifier","name":"base"}`)

	interp := New()
	result, err := interp.ExecuteFile(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 10 {
		t.Fatalf("expected loaded binding, got %#v", result)
	}

	main2 := writeProgram(t, dir, "main2",
		`{"type":"LoadStatement","path":"shared"}`+
			`,{"type":"Identifier","name":"_internal"}`)
	if _, err := New().ExecuteFile(main2); err == nil {
		t.Fatalf("expected underscore binding to stay private to the loaded file")
	}
}

func TestRunCapturesSubprogramOutput(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "child", printJSON("hello from child"))
	main := writeProgram(t, dir, "main",
		`{"type":"CallExpression","callee":{"type":"Identifier","name":"run"},`+
			`"arguments":[{"value":{"type":"StringLiteral","value":"child"}}]}`)

	interp := New()
	var out bytes.Buffer
	interp.SetOutput(&out)
	result, err := interp.ExecuteFile(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := result.(runtime.StringValue); !ok || s.Val != "hello from child\n" {
		t.Fatalf("expected captured output, got %#v", result)
	}
	if out.String() != "" {
		t.Fatalf("expected nothing on the main stream, got %q", out.String())
	}
}
