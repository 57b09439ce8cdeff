package ast

import (
	"fmt"
	"strconv"
)

// Terse builders used throughout the interpreter tests.

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(strconv.FormatFloat(value, 'g', -1, 64))
}

func NumRaw(raw string) *NumberLiteral {
	return NewNumberLiteral(raw)
}

func Int(value int64) *NumberLiteral {
	return NewNumberLiteral(strconv.FormatInt(value, 10))
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func None() *NoneLiteral {
	return NewNoneLiteral()
}

func Sym(name string) *SymbolLiteral {
	return NewSymbolLiteral(name)
}

func List(elements ...Expression) *ListLiteral {
	return NewListLiteral(elements)
}

func Entry(key string, value Expression) *MapEntry {
	return NewMapEntry(key, value)
}

func MapLit(entries ...*MapEntry) *MapLiteral {
	return NewMapLiteral(entries)
}

// Pattern helpers.

func Wc() *WildcardPattern {
	return NewWildcardPattern()
}

func LitP(l Literal) *LiteralPattern {
	return NewLiteralPattern(l)
}

func ListP(elements []Pattern, rest Pattern) *ListPattern {
	return NewListPattern(elements, rest)
}

// PatternFrom accepts a Pattern, an identifier name, or a literal value
// and normalizes it into a Pattern.
func PatternFrom(value interface{}) Pattern {
	switch v := value.(type) {
	case Pattern:
		return v
	case string:
		return ID(v)
	case int:
		return LitP(Int(int64(v)))
	case int64:
		return LitP(Int(v))
	case float64:
		return LitP(Num(v))
	case bool:
		return LitP(Bool(v))
	case nil:
		return LitP(None())
	default:
		panic(fmt.Sprintf("ast.PatternFrom: unsupported value %T", value))
	}
}

// Expression helpers.

func Un(operator string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(operator, operand)
}

func Bin(operator string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Arg(value Expression) *Argument {
	return NewArgument("", value, false)
}

func NamedArg(name string, value Expression) *Argument {
	return NewArgument(name, value, false)
}

func WriteBackArg(name string) *Argument {
	return NewArgument("", ID(name), true)
}

func CallExpr(callee Expression, args ...*Argument) *CallExpression {
	return NewCallExpression(callee, args)
}

// Call builds a positional-argument call on a named function.
func Call(name string, args ...Expression) *CallExpression {
	wrapped := make([]*Argument, 0, len(args))
	for _, a := range args {
		wrapped = append(wrapped, Arg(a))
	}
	return NewCallExpression(ID(name), wrapped)
}

// MethodCall builds `object.method(args...)`.
func MethodCall(object Expression, method string, args ...Expression) *CallExpression {
	wrapped := make([]*Argument, 0, len(args))
	for _, a := range args {
		wrapped = append(wrapped, Arg(a))
	}
	return NewCallExpression(NewMemberAccessExpression(object, ID(method)), wrapped)
}

func SuperCall(method string, args ...Expression) *CallExpression {
	wrapped := make([]*Argument, 0, len(args))
	for _, a := range args {
		wrapped = append(wrapped, Arg(a))
	}
	return NewCallExpression(NewMemberAccessExpression(NewSuperExpression(), ID(method)), wrapped)
}

func Block(statements ...Statement) *BlockExpression {
	return NewBlockExpression(statements)
}

func Declare(name string, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(AssignmentDeclare, ID(name), value)
}

func Assign(left Node, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(AssignmentAssign, left, value)
}

func AssignMember(object Expression, member string, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(AssignmentAssign, NewMemberAccessExpression(object, ID(member)), value)
}

func AssignIndex(object, index, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(AssignmentAssign, NewIndexExpression(object, index), value)
}

func Member(object Expression, member string) *MemberAccessExpression {
	return NewMemberAccessExpression(object, ID(member))
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

func Self() *SelfExpression {
	return NewSelfExpression()
}

func Param(name string) *Parameter {
	return NewParameter(name, nil, false)
}

func ParamDefault(name string, def Expression) *Parameter {
	return NewParameter(name, def, false)
}

func ParamRest(name string) *Parameter {
	return NewParameter(name, nil, true)
}

func Lam(params []*Parameter, statements ...Statement) *FunctionExpression {
	return NewFunctionExpression(params, nil, Block(statements...))
}

func Clause(pattern interface{}, body Expression, guard ...Expression) *FunctionClause {
	var g Expression
	if len(guard) > 0 {
		g = guard[0]
	}
	return NewFunctionClause(PatternFrom(pattern), g, body)
}

func ClauseFn(clauses ...*FunctionClause) *FunctionExpression {
	return NewFunctionExpression(nil, clauses, nil)
}

// Control flow helpers.

func Or(condition Expression, body *BlockExpression) *OrClause {
	return NewOrClause(condition, body)
}

func Iff(condition Expression, statements ...Statement) *IfExpression {
	return NewIfExpression(condition, Block(statements...), nil)
}

func IfElse(condition Expression, body *BlockExpression, elseBody *BlockExpression) *IfExpression {
	return NewIfExpression(condition, body, []*OrClause{NewOrClause(nil, elseBody)})
}

func Arm(pattern interface{}, body Expression, guard ...Expression) *MatchArm {
	var g Expression
	if len(guard) > 0 {
		g = guard[0]
	}
	return NewMatchArm(PatternFrom(pattern), g, body)
}

func Match(subject Expression, arms ...*MatchArm) *MatchExpression {
	return NewMatchExpression(subject, arms)
}

func Catch(errorType string, binding string, statements ...Statement) *CatchClause {
	var bind *Identifier
	if binding != "" {
		bind = ID(binding)
	}
	return NewCatchClause(errorType, bind, Block(statements...))
}

func Try(body *BlockExpression, catches ...*CatchClause) *TryExpression {
	return NewTryExpression(body, catches, nil)
}

func TryFinally(body *BlockExpression, finally *BlockExpression, catches ...*CatchClause) *TryExpression {
	return NewTryExpression(body, catches, finally)
}

func While(condition Expression, statements ...Statement) *WhileLoop {
	return NewWhileLoop(condition, Block(statements...))
}

func ForIn(pattern interface{}, iterable Expression, statements ...Statement) *ForLoop {
	return NewForLoop(PatternFrom(pattern), iterable, Block(statements...))
}

func Brk(value Expression) *BreakStatement {
	return NewBreakStatement(value)
}

func Cont() *ContinueStatement {
	return NewContinueStatement()
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

func Raise(expression Expression) *RaiseStatement {
	return NewRaiseStatement(expression)
}

// Declaration helpers.

func FnDecl(name string, params []*Parameter, statements ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(name, params, nil, nil, Block(statements...), false, false)
}

func FnDeclGuard(name string, params []*Parameter, guard Expression, statements ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(name, params, nil, guard, Block(statements...), false, false)
}

func FnClauses(name string, clauses ...*FunctionClause) *FunctionDeclaration {
	return NewFunctionDeclaration(name, nil, clauses, nil, nil, false, false)
}

func StaticFn(name string, params []*Parameter, statements ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(name, params, nil, nil, Block(statements...), true, false)
}

func SetterFn(name string, params []*Parameter, statements ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(name, params, nil, nil, Block(statements...), false, true)
}

func Prop(name string, value Expression) *PropertyDefinition {
	return NewPropertyDefinition(name, value)
}

func Rule(name string, param ...Expression) *RuleDeclaration {
	var p Expression
	if len(param) > 0 {
		p = param[0]
	}
	return NewRuleDeclaration(name, p)
}

func Configure(readable, writable []string) *ConfigureBlock {
	return NewConfigureBlock(readable, writable)
}

func GraphDecl(name string, parent string, properties []*PropertyDefinition, methods []*FunctionDeclaration, rules []*RuleDeclaration, configure *ConfigureBlock) *GraphDeclaration {
	var parentID *Identifier
	if parent != "" {
		parentID = ID(parent)
	}
	return NewGraphDeclaration(name, parentID, properties, methods, rules, configure)
}

func Import(path string, alias string) *ImportStatement {
	var aliasID *Identifier
	if alias != "" {
		aliasID = ID(alias)
	}
	return NewImportStatement(path, aliasID)
}

func Load(path string) *LoadStatement {
	return NewLoadStatement(path)
}

func Config(name string, value Expression) *ConfigStatement {
	return NewConfigStatement(name, value)
}

func Prog(statements ...Statement) *Program {
	return NewProgram(statements)
}
