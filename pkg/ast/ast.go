package ast

type NodeType string

const (
	NodeIdentifier           NodeType = "Identifier"
	NodeStringLiteral        NodeType = "StringLiteral"
	NodeNumberLiteral        NodeType = "NumberLiteral"
	NodeBooleanLiteral       NodeType = "BooleanLiteral"
	NodeNoneLiteral          NodeType = "NoneLiteral"
	NodeSymbolLiteral        NodeType = "SymbolLiteral"
	NodeListLiteral          NodeType = "ListLiteral"
	NodeMapEntry             NodeType = "MapEntry"
	NodeMapLiteral           NodeType = "MapLiteral"
	NodeWildcardPattern      NodeType = "WildcardPattern"
	NodeLiteralPattern       NodeType = "LiteralPattern"
	NodeListPattern          NodeType = "ListPattern"
	NodeUnaryExpression      NodeType = "UnaryExpression"
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeArgument             NodeType = "Argument"
	NodeCallExpression       NodeType = "CallExpression"
	NodeBlockExpression      NodeType = "BlockExpression"
	NodeAssignmentExpression NodeType = "AssignmentExpression"
	NodeMemberAccess         NodeType = "MemberAccessExpression"
	NodeIndexExpression      NodeType = "IndexExpression"
	NodeSuperExpression      NodeType = "SuperExpression"
	NodeSelfExpression       NodeType = "SelfExpression"
	NodeFunctionExpression   NodeType = "FunctionExpression"
	NodeFunctionClause       NodeType = "FunctionClause"
	NodeParameter            NodeType = "Parameter"
	NodeOrClause             NodeType = "OrClause"
	NodeIfExpression         NodeType = "IfExpression"
	NodeMatchArm             NodeType = "MatchArm"
	NodeMatchExpression      NodeType = "MatchExpression"
	NodeCatchClause          NodeType = "CatchClause"
	NodeTryExpression        NodeType = "TryExpression"
	NodeWhileLoop            NodeType = "WhileLoop"
	NodeForLoop              NodeType = "ForLoop"
	NodeBreakStatement       NodeType = "BreakStatement"
	NodeContinueStatement    NodeType = "ContinueStatement"
	NodeReturnStatement      NodeType = "ReturnStatement"
	NodeRaiseStatement       NodeType = "RaiseStatement"
	NodeFunctionDeclaration  NodeType = "FunctionDeclaration"
	NodePropertyDefinition   NodeType = "PropertyDefinition"
	NodeRuleDeclaration      NodeType = "RuleDeclaration"
	NodeConfigureBlock       NodeType = "ConfigureBlock"
	NodeGraphDeclaration     NodeType = "GraphDeclaration"
	NodeImportStatement      NodeType = "ImportStatement"
	NodeLoadStatement        NodeType = "LoadStatement"
	NodeConfigStatement      NodeType = "ConfigStatement"
	NodeProgram              NodeType = "Program"
)

// Position locates a node in its source file. Positions are carried for
// diagnostics only and never influence evaluation.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) IsZero() bool { return p.Line == 0 && p.Column == 0 }

type Node interface {
	NodeType() NodeType
	Position() Position
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	Pos  Position `json:"pos,omitempty"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Position() Position { return n.Pos }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Pattern interface {
	Node
	patternNode()
}

type patternMarker struct{}

func (patternMarker) patternNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker
	patternMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

// NumberLiteral keeps the raw spelling; interpretation (f64, fixed-width
// integer, 128-bit float, arbitrary precision) depends on the ambient
// numeric configuration at evaluation time.
type NumberLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Raw string `json:"raw"`
}

func NewNumberLiteral(raw string) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Raw: raw}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NoneLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker
}

func NewNoneLiteral() *NoneLiteral {
	return &NoneLiteral{nodeImpl: newNodeImpl(NodeNoneLiteral)}
}

type SymbolLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Name string `json:"name"`
}

func NewSymbolLiteral(name string) *SymbolLiteral {
	return &SymbolLiteral{nodeImpl: newNodeImpl(NodeSymbolLiteral), Name: name}
}

type ListLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Elements []Expression `json:"elements"`
}

func NewListLiteral(elements []Expression) *ListLiteral {
	return &ListLiteral{nodeImpl: newNodeImpl(NodeListLiteral), Elements: elements}
}

type MapEntry struct {
	nodeImpl

	Key   string     `json:"key"`
	Value Expression `json:"value"`
}

func NewMapEntry(key string, value Expression) *MapEntry {
	return &MapEntry{nodeImpl: newNodeImpl(NodeMapEntry), Key: key, Value: value}
}

type MapLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Entries []*MapEntry `json:"entries"`
}

func NewMapLiteral(entries []*MapEntry) *MapLiteral {
	return &MapLiteral{nodeImpl: newNodeImpl(NodeMapLiteral), Entries: entries}
}

// Patterns

type WildcardPattern struct {
	nodeImpl
	patternMarker
}

func NewWildcardPattern() *WildcardPattern {
	return &WildcardPattern{nodeImpl: newNodeImpl(NodeWildcardPattern)}
}

type LiteralPattern struct {
	nodeImpl
	patternMarker

	Literal Literal `json:"literal"`
}

func NewLiteralPattern(literal Literal) *LiteralPattern {
	return &LiteralPattern{nodeImpl: newNodeImpl(NodeLiteralPattern), Literal: literal}
}

type ListPattern struct {
	nodeImpl
	patternMarker

	Elements []Pattern `json:"elements"`
	Rest     Pattern   `json:"rest,omitempty"`
}

func NewListPattern(elements []Pattern, rest Pattern) *ListPattern {
	return &ListPattern{nodeImpl: newNodeImpl(NodeListPattern), Elements: elements, Rest: rest}
}

// Expressions

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// Argument is a single call argument: optionally named, optionally a
// write-back (`x!`) whose final parameter value is copied back to the
// caller's variable after the call returns.
type Argument struct {
	nodeImpl

	Name      string     `json:"name,omitempty"`
	Value     Expression `json:"value"`
	WriteBack bool       `json:"writeBack,omitempty"`
}

func NewArgument(name string, value Expression, writeBack bool) *Argument {
	return &Argument{nodeImpl: newNodeImpl(NodeArgument), Name: name, Value: value, WriteBack: writeBack}
}

type CallExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    Expression  `json:"callee"`
	Arguments []*Argument `json:"arguments"`
}

func NewCallExpression(callee Expression, arguments []*Argument) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: arguments}
}

type BlockExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlockExpression(body []Statement) *BlockExpression {
	return &BlockExpression{nodeImpl: newNodeImpl(NodeBlockExpression), Body: body}
}

type AssignmentOperator string

const (
	AssignmentDeclare AssignmentOperator = ":="
	AssignmentAssign  AssignmentOperator = "="
)

type AssignmentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator AssignmentOperator `json:"operator"`
	Left     Node               `json:"left"`
	Right    Expression         `json:"right"`
}

func NewAssignmentExpression(operator AssignmentOperator, left Node, right Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Operator: operator, Left: left, Right: right}
}

type MemberAccessExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object Expression  `json:"object"`
	Member *Identifier `json:"member"`
}

func NewMemberAccessExpression(object Expression, member *Identifier) *MemberAccessExpression {
	return &MemberAccessExpression{nodeImpl: newNodeImpl(NodeMemberAccess), Object: object, Member: member}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

// SuperExpression only appears as the object of a member call inside a
// graph method body.
type SuperExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewSuperExpression() *SuperExpression {
	return &SuperExpression{nodeImpl: newNodeImpl(NodeSuperExpression)}
}

type SelfExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewSelfExpression() *SelfExpression {
	return &SelfExpression{nodeImpl: newNodeImpl(NodeSelfExpression)}
}

// Functions

// Parameter declares one function parameter. At most one parameter per
// function may be variadic; a default expression is evaluated in the
// caller's scope when the argument is absent.
type Parameter struct {
	nodeImpl

	Name     string     `json:"name"`
	Default  Expression `json:"default,omitempty"`
	Variadic bool       `json:"variadic,omitempty"`
}

func NewParameter(name string, def Expression, variadic bool) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name, Default: def, Variadic: variadic}
}

// FunctionClause is a single `|pattern| => body` clause of a
// pattern-matching function.
type FunctionClause struct {
	nodeImpl

	Pattern Pattern    `json:"pattern"`
	Guard   Expression `json:"guard,omitempty"`
	Body    Expression `json:"body"`
}

func NewFunctionClause(pattern Pattern, guard Expression, body Expression) *FunctionClause {
	return &FunctionClause{nodeImpl: newNodeImpl(NodeFunctionClause), Pattern: pattern, Guard: guard, Body: body}
}

// FunctionExpression carries either Params+Body or Clauses, never both.
type FunctionExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Params  []*Parameter      `json:"params,omitempty"`
	Clauses []*FunctionClause `json:"clauses,omitempty"`
	Body    *BlockExpression  `json:"body,omitempty"`
}

func NewFunctionExpression(params []*Parameter, clauses []*FunctionClause, body *BlockExpression) *FunctionExpression {
	return &FunctionExpression{nodeImpl: newNodeImpl(NodeFunctionExpression), Params: params, Clauses: clauses, Body: body}
}

type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Name     string            `json:"name"`
	Params   []*Parameter      `json:"params,omitempty"`
	Clauses  []*FunctionClause `json:"clauses,omitempty"`
	Guard    Expression        `json:"guard,omitempty"`
	Body     *BlockExpression  `json:"body,omitempty"`
	IsStatic bool              `json:"isStatic,omitempty"`
	IsSetter bool              `json:"isSetter,omitempty"`
}

func NewFunctionDeclaration(name string, params []*Parameter, clauses []*FunctionClause, guard Expression, body *BlockExpression, isStatic, isSetter bool) *FunctionDeclaration {
	return &FunctionDeclaration{
		nodeImpl: newNodeImpl(NodeFunctionDeclaration),
		Name:     name,
		Params:   params,
		Clauses:  clauses,
		Guard:    guard,
		Body:     body,
		IsStatic: isStatic,
		IsSetter: isSetter,
	}
}

// Control flow

type OrClause struct {
	nodeImpl

	Condition Expression       `json:"condition,omitempty"`
	Body      *BlockExpression `json:"body"`
}

func NewOrClause(condition Expression, body *BlockExpression) *OrClause {
	return &OrClause{nodeImpl: newNodeImpl(NodeOrClause), Condition: condition, Body: body}
}

type IfExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Condition Expression       `json:"condition"`
	Body      *BlockExpression `json:"body"`
	OrClauses []*OrClause      `json:"orClauses,omitempty"`
}

func NewIfExpression(condition Expression, body *BlockExpression, orClauses []*OrClause) *IfExpression {
	return &IfExpression{nodeImpl: newNodeImpl(NodeIfExpression), Condition: condition, Body: body, OrClauses: orClauses}
}

type MatchArm struct {
	nodeImpl

	Pattern Pattern    `json:"pattern"`
	Guard   Expression `json:"guard,omitempty"`
	Body    Expression `json:"body"`
}

func NewMatchArm(pattern Pattern, guard Expression, body Expression) *MatchArm {
	return &MatchArm{nodeImpl: newNodeImpl(NodeMatchArm), Pattern: pattern, Guard: guard, Body: body}
}

type MatchExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Subject Expression  `json:"subject"`
	Arms    []*MatchArm `json:"arms"`
}

func NewMatchExpression(subject Expression, arms []*MatchArm) *MatchExpression {
	return &MatchExpression{nodeImpl: newNodeImpl(NodeMatchExpression), Subject: subject, Arms: arms}
}

// CatchClause matches by declared error-type name; an empty ErrorType
// matches any error. Binding names the caught error inside the clause.
type CatchClause struct {
	nodeImpl

	ErrorType string           `json:"errorType,omitempty"`
	Binding   *Identifier      `json:"binding,omitempty"`
	Body      *BlockExpression `json:"body"`
}

func NewCatchClause(errorType string, binding *Identifier, body *BlockExpression) *CatchClause {
	return &CatchClause{nodeImpl: newNodeImpl(NodeCatchClause), ErrorType: errorType, Binding: binding, Body: body}
}

type TryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Body    *BlockExpression `json:"body"`
	Catches []*CatchClause   `json:"catches,omitempty"`
	Finally *BlockExpression `json:"finally,omitempty"`
}

func NewTryExpression(body *BlockExpression, catches []*CatchClause, finally *BlockExpression) *TryExpression {
	return &TryExpression{nodeImpl: newNodeImpl(NodeTryExpression), Body: body, Catches: catches, Finally: finally}
}

type WhileLoop struct {
	nodeImpl
	statementMarker

	Condition Expression       `json:"condition"`
	Body      *BlockExpression `json:"body"`
}

func NewWhileLoop(condition Expression, body *BlockExpression) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhileLoop), Condition: condition, Body: body}
}

type ForLoop struct {
	nodeImpl
	statementMarker

	Pattern  Pattern          `json:"pattern"`
	Iterable Expression       `json:"iterable"`
	Body     *BlockExpression `json:"body"`
}

func NewForLoop(pattern Pattern, iterable Expression, body *BlockExpression) *ForLoop {
	return &ForLoop{nodeImpl: newNodeImpl(NodeForLoop), Pattern: pattern, Iterable: iterable, Body: body}
}

type BreakStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewBreakStatement(value Expression) *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement), Value: value}
}

type ContinueStatement struct {
	nodeImpl
	statementMarker
}

func NewContinueStatement() *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement)}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}

type RaiseStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewRaiseStatement(expression Expression) *RaiseStatement {
	return &RaiseStatement{nodeImpl: newNodeImpl(NodeRaiseStatement), Expression: expression}
}

// Graph declarations

type PropertyDefinition struct {
	nodeImpl

	Name  string     `json:"name"`
	Value Expression `json:"value,omitempty"`
}

func NewPropertyDefinition(name string, value Expression) *PropertyDefinition {
	return &PropertyDefinition{nodeImpl: newNodeImpl(NodePropertyDefinition), Name: name, Value: value}
}

// RuleDeclaration attaches a named rule (`rule :no_cycles`,
// `rule :max_degree, 3`) to the enclosing graph or collection.
type RuleDeclaration struct {
	nodeImpl
	statementMarker

	Name  string     `json:"name"`
	Param Expression `json:"param,omitempty"`
}

func NewRuleDeclaration(name string, param Expression) *RuleDeclaration {
	return &RuleDeclaration{nodeImpl: newNodeImpl(NodeRuleDeclaration), Name: name, Param: param}
}

type ConfigureBlock struct {
	nodeImpl

	Readable []string `json:"readable,omitempty"`
	Writable []string `json:"writable,omitempty"`
}

func NewConfigureBlock(readable, writable []string) *ConfigureBlock {
	return &ConfigureBlock{nodeImpl: newNodeImpl(NodeConfigureBlock), Readable: readable, Writable: writable}
}

type GraphDeclaration struct {
	nodeImpl
	statementMarker

	Name       string                 `json:"name"`
	Parent     *Identifier            `json:"parent,omitempty"`
	Properties []*PropertyDefinition  `json:"properties,omitempty"`
	Methods    []*FunctionDeclaration `json:"methods,omitempty"`
	Rules      []*RuleDeclaration     `json:"rules,omitempty"`
	Configure  *ConfigureBlock        `json:"configure,omitempty"`
}

func NewGraphDeclaration(name string, parent *Identifier, properties []*PropertyDefinition, methods []*FunctionDeclaration, rules []*RuleDeclaration, configure *ConfigureBlock) *GraphDeclaration {
	return &GraphDeclaration{
		nodeImpl:   newNodeImpl(NodeGraphDeclaration),
		Name:       name,
		Parent:     parent,
		Properties: properties,
		Methods:    methods,
		Rules:      rules,
		Configure:  configure,
	}
}

// Modules

type ImportStatement struct {
	nodeImpl
	statementMarker

	Path  string      `json:"path"`
	Alias *Identifier `json:"alias,omitempty"`
}

func NewImportStatement(path string, alias *Identifier) *ImportStatement {
	return &ImportStatement{nodeImpl: newNodeImpl(NodeImportStatement), Path: path, Alias: alias}
}

type LoadStatement struct {
	nodeImpl
	statementMarker

	Path string `json:"path"`
}

func NewLoadStatement(path string) *LoadStatement {
	return &LoadStatement{nodeImpl: newNodeImpl(NodeLoadStatement), Path: path}
}

// ConfigStatement adjusts ambient interpreter configuration from within a
// program (`config precision: "big"`).
type ConfigStatement struct {
	nodeImpl
	statementMarker

	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

func NewConfigStatement(name string, value Expression) *ConfigStatement {
	return &ConfigStatement{nodeImpl: newNodeImpl(NodeConfigStatement), Name: name, Value: value}
}

type Program struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}
