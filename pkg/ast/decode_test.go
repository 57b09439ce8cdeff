package ast

import (
	"reflect"
	"testing"
)

func TestDecodeProgramBasics(t *testing.T) {
	source := `{
		"type": "Program",
		"body": [
			{
				"type": "AssignmentExpression",
				"operator": ":=",
				"pos": {"line": 1, "column": 1},
				"left": {"type": "Identifier", "name": "x"},
				"right": {"type": "NumberLiteral", "raw": "1_000.5"}
			},
			{
				"type": "CallExpression",
				"callee": {"type": "Identifier", "name": "print"},
				"arguments": [
					{"value": {"type": "Identifier", "name": "x"}},
					{"name": "sep", "value": {"type": "StringLiteral", "value": ", "}},
					{"writeBack": true, "value": {"type": "Identifier", "name": "x"}}
				]
			}
		]
	}`
	prog, err := DecodeProgram([]byte(source))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Body) != 2 {
		t.Fatalf("expected two statements, got %d", len(prog.Body))
	}

	assign, ok := prog.Body[0].(*AssignmentExpression)
	if !ok {
		t.Fatalf("expected assignment, got %#v", prog.Body[0])
	}
	if assign.Operator != AssignmentDeclare {
		t.Fatalf("expected declaration operator, got %q", assign.Operator)
	}
	if assign.Position().Line != 1 || assign.Position().Column != 1 {
		t.Fatalf("expected position 1:1, got %v", assign.Position())
	}
	num, ok := assign.Right.(*NumberLiteral)
	if !ok || num.Raw != "1_000.5" {
		t.Fatalf("expected raw spelling preserved, got %#v", assign.Right)
	}

	call, ok := prog.Body[1].(*CallExpression)
	if !ok {
		t.Fatalf("expected call, got %#v", prog.Body[1])
	}
	if len(call.Arguments) != 3 {
		t.Fatalf("expected three arguments, got %d", len(call.Arguments))
	}
	if call.Arguments[0].Name != "" || call.Arguments[0].WriteBack {
		t.Fatalf("expected plain positional argument, got %#v", call.Arguments[0])
	}
	if call.Arguments[1].Name != "sep" {
		t.Fatalf("expected named argument, got %#v", call.Arguments[1])
	}
	if !call.Arguments[2].WriteBack {
		t.Fatalf("expected write-back argument, got %#v", call.Arguments[2])
	}
}

func TestDecodeNumericValueEncoding(t *testing.T) {
	source := `{"type":"Program","body":[{"type":"NumberLiteral","value":2.5}]}`
	prog, err := DecodeProgram([]byte(source))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	num := prog.Body[0].(*NumberLiteral)
	if num.Raw != "2.5" {
		t.Fatalf("expected numeric encoding tolerated, got %q", num.Raw)
	}
}

func TestDecodeGraphDeclaration(t *testing.T) {
	source := `{
		"type": "Program",
		"body": [
			{
				"type": "GraphDeclaration",
				"name": "Dog",
				"parent": {"type": "Identifier", "name": "Animal"},
				"properties": [
					{"name": "name", "value": {"type": "StringLiteral", "value": "rex"}},
					{"name": "age"}
				],
				"methods": [
					{
						"type": "FunctionDeclaration",
						"name": "speak",
						"body": {"type": "BlockExpression", "body": [
							{"type": "ReturnStatement", "value": {"type": "StringLiteral", "value": "woof"}}
						]}
					},
					{
						"type": "FunctionDeclaration",
						"name": "kind",
						"isStatic": true,
						"body": {"type": "BlockExpression", "body": []}
					}
				],
				"rules": [
					{"type": "RuleDeclaration", "name": "no_cycles"}
				],
				"configure": {"readable": ["name", "age"], "writable": ["age"]}
			}
		]
	}`
	prog, err := DecodeProgram([]byte(source))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decl := prog.Body[0].(*GraphDeclaration)
	if decl.Name != "Dog" || decl.Parent == nil || decl.Parent.Name != "Animal" {
		t.Fatalf("unexpected header: %#v", decl)
	}
	if len(decl.Properties) != 2 || decl.Properties[1].Value != nil {
		t.Fatalf("expected default-less property, got %#v", decl.Properties)
	}
	if len(decl.Methods) != 2 || !decl.Methods[1].IsStatic {
		t.Fatalf("expected static method flag, got %#v", decl.Methods)
	}
	if len(decl.Rules) != 1 || decl.Rules[0].Name != "no_cycles" {
		t.Fatalf("expected rule declaration, got %#v", decl.Rules)
	}
	if decl.Configure == nil || len(decl.Configure.Writable) != 1 {
		t.Fatalf("expected configure block, got %#v", decl.Configure)
	}
}

func TestDecodeConfigureLists(t *testing.T) {
	source := `{
		"type": "Program",
		"body": [
			{
				"type": "GraphDeclaration",
				"name": "Account",
				"properties": [{"name": "balance"}, {"name": "owner"}],
				"configure": {"readable": ["balance", "owner", 7], "writable": ["owner"]}
			}
		]
	}`
	prog, err := DecodeProgram([]byte(source))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decl := prog.Body[0].(*GraphDeclaration)
	if decl.Configure == nil {
		t.Fatalf("expected configure block, got nil")
	}
	if !reflect.DeepEqual(decl.Configure.Readable, []string{"balance", "owner"}) {
		t.Fatalf("expected non-strings filtered from readable, got %#v", decl.Configure.Readable)
	}
	if !reflect.DeepEqual(decl.Configure.Writable, []string{"owner"}) {
		t.Fatalf("unexpected writable list: %#v", decl.Configure.Writable)
	}
}

func TestDecodeRejectsUnknownNode(t *testing.T) {
	source := `{"type":"Program","body":[{"type":"Mystery"}]}`
	if _, err := DecodeProgram([]byte(source)); err == nil {
		t.Fatalf("expected unknown node error")
	}
}

func TestDecodeRejectsNonProgramRoot(t *testing.T) {
	source := `{"type":"Identifier","name":"x"}`
	if _, err := DecodeProgram([]byte(source)); err == nil {
		t.Fatalf("expected root type error")
	}
}
