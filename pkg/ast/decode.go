package ast

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DecodeProgram parses the canonical JSON serialization of a Graphite
// program, the format the parser collaborator emits.
func DecodeProgram(data []byte) (*Program, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	node, err := decodeNode(root)
	if err != nil {
		return nil, err
	}
	prog, ok := node.(*Program)
	if !ok {
		return nil, fmt.Errorf("decode program: top-level node is %s, want Program", node.NodeType())
	}
	return prog, nil
}

func decodeNode(node map[string]any) (Node, error) {
	typ, _ := node["type"].(string)
	pos := decodePos(node)
	switch NodeType(typ) {
	case NodeProgram:
		stmts, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		prog := NewProgram(stmts)
		prog.Pos = pos
		return prog, nil
	case NodeIdentifier:
		name, _ := node["name"].(string)
		out := NewIdentifier(name)
		out.Pos = pos
		return out, nil
	case NodeStringLiteral:
		val, _ := node["value"].(string)
		out := NewStringLiteral(val)
		out.Pos = pos
		return out, nil
	case NodeNumberLiteral:
		out := NewNumberLiteral(rawNumber(node))
		out.Pos = pos
		return out, nil
	case NodeBooleanLiteral:
		val, _ := node["value"].(bool)
		out := NewBooleanLiteral(val)
		out.Pos = pos
		return out, nil
	case NodeNoneLiteral:
		out := NewNoneLiteral()
		out.Pos = pos
		return out, nil
	case NodeSymbolLiteral:
		name, _ := node["name"].(string)
		out := NewSymbolLiteral(name)
		out.Pos = pos
		return out, nil
	case NodeListLiteral:
		elems, err := decodeExpressions(node["elements"])
		if err != nil {
			return nil, err
		}
		out := NewListLiteral(elems)
		out.Pos = pos
		return out, nil
	case NodeMapLiteral:
		entriesRaw, _ := node["entries"].([]any)
		entries := make([]*MapEntry, 0, len(entriesRaw))
		for _, raw := range entriesRaw {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid map entry %T", raw)
			}
			key, _ := child["key"].(string)
			value, err := decodeExpression(child["value"])
			if err != nil {
				return nil, err
			}
			entries = append(entries, NewMapEntry(key, value))
		}
		out := NewMapLiteral(entries)
		out.Pos = pos
		return out, nil
	case NodeWildcardPattern:
		out := NewWildcardPattern()
		out.Pos = pos
		return out, nil
	case NodeLiteralPattern:
		litNode, err := decodeExpression(node["literal"])
		if err != nil {
			return nil, err
		}
		lit, ok := litNode.(Literal)
		if !ok {
			return nil, fmt.Errorf("literal pattern holds non-literal %s", litNode.NodeType())
		}
		out := NewLiteralPattern(lit)
		out.Pos = pos
		return out, nil
	case NodeListPattern:
		elemsRaw, _ := node["elements"].([]any)
		elems := make([]Pattern, 0, len(elemsRaw))
		for _, raw := range elemsRaw {
			p, err := decodePattern(raw)
			if err != nil {
				return nil, err
			}
			elems = append(elems, p)
		}
		var rest Pattern
		if restRaw, ok := node["rest"].(map[string]any); ok {
			p, err := decodePattern(restRaw)
			if err != nil {
				return nil, err
			}
			rest = p
		}
		out := NewListPattern(elems, rest)
		out.Pos = pos
		return out, nil
	case NodeUnaryExpression:
		op, _ := node["operator"].(string)
		operand, err := decodeExpression(node["operand"])
		if err != nil {
			return nil, err
		}
		out := NewUnaryExpression(op, operand)
		out.Pos = pos
		return out, nil
	case NodeBinaryExpression:
		op, _ := node["operator"].(string)
		left, err := decodeExpression(node["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(node["right"])
		if err != nil {
			return nil, err
		}
		out := NewBinaryExpression(op, left, right)
		out.Pos = pos
		return out, nil
	case NodeCallExpression:
		callee, err := decodeExpression(node["callee"])
		if err != nil {
			return nil, err
		}
		argsRaw, _ := node["arguments"].([]any)
		args := make([]*Argument, 0, len(argsRaw))
		for _, raw := range argsRaw {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid argument %T", raw)
			}
			name, _ := child["name"].(string)
			writeBack, _ := child["writeBack"].(bool)
			value, err := decodeExpression(child["value"])
			if err != nil {
				return nil, err
			}
			args = append(args, NewArgument(name, value, writeBack))
		}
		out := NewCallExpression(callee, args)
		out.Pos = pos
		return out, nil
	case NodeBlockExpression:
		stmts, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		out := NewBlockExpression(stmts)
		out.Pos = pos
		return out, nil
	case NodeAssignmentExpression:
		op, _ := node["operator"].(string)
		leftRaw, ok := node["left"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("assignment missing left side")
		}
		left, err := decodeNode(leftRaw)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(node["right"])
		if err != nil {
			return nil, err
		}
		out := NewAssignmentExpression(AssignmentOperator(op), left, right)
		out.Pos = pos
		return out, nil
	case NodeMemberAccess:
		object, err := decodeExpression(node["object"])
		if err != nil {
			return nil, err
		}
		memberRaw, ok := node["member"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("member access missing member")
		}
		memberNode, err := decodeNode(memberRaw)
		if err != nil {
			return nil, err
		}
		member, ok := memberNode.(*Identifier)
		if !ok {
			return nil, fmt.Errorf("member access member is %s, want Identifier", memberNode.NodeType())
		}
		out := NewMemberAccessExpression(object, member)
		out.Pos = pos
		return out, nil
	case NodeIndexExpression:
		object, err := decodeExpression(node["object"])
		if err != nil {
			return nil, err
		}
		index, err := decodeExpression(node["index"])
		if err != nil {
			return nil, err
		}
		out := NewIndexExpression(object, index)
		out.Pos = pos
		return out, nil
	case NodeSuperExpression:
		out := NewSuperExpression()
		out.Pos = pos
		return out, nil
	case NodeSelfExpression:
		out := NewSelfExpression()
		out.Pos = pos
		return out, nil
	case NodeFunctionExpression:
		params, clauses, body, err := decodeFunctionParts(node)
		if err != nil {
			return nil, err
		}
		out := NewFunctionExpression(params, clauses, body)
		out.Pos = pos
		return out, nil
	case NodeFunctionDeclaration:
		name, _ := node["name"].(string)
		params, clauses, body, err := decodeFunctionParts(node)
		if err != nil {
			return nil, err
		}
		var guard Expression
		if _, ok := node["guard"].(map[string]any); ok {
			guard, err = decodeExpression(node["guard"])
			if err != nil {
				return nil, err
			}
		}
		isStatic, _ := node["isStatic"].(bool)
		isSetter, _ := node["isSetter"].(bool)
		out := NewFunctionDeclaration(name, params, clauses, guard, body, isStatic, isSetter)
		out.Pos = pos
		return out, nil
	case NodeIfExpression:
		cond, err := decodeExpression(node["condition"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(node["body"])
		if err != nil {
			return nil, err
		}
		clausesRaw, _ := node["orClauses"].([]any)
		clauses := make([]*OrClause, 0, len(clausesRaw))
		for _, raw := range clausesRaw {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid or-clause %T", raw)
			}
			var clauseCond Expression
			if _, ok := child["condition"].(map[string]any); ok {
				clauseCond, err = decodeExpression(child["condition"])
				if err != nil {
					return nil, err
				}
			}
			clauseBody, err := decodeBlock(child["body"])
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, NewOrClause(clauseCond, clauseBody))
		}
		out := NewIfExpression(cond, body, clauses)
		out.Pos = pos
		return out, nil
	case NodeMatchExpression:
		subject, err := decodeExpression(node["subject"])
		if err != nil {
			return nil, err
		}
		armsRaw, _ := node["arms"].([]any)
		arms := make([]*MatchArm, 0, len(armsRaw))
		for _, raw := range armsRaw {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid match arm %T", raw)
			}
			pattern, err := decodePattern(child["pattern"])
			if err != nil {
				return nil, err
			}
			var guard Expression
			if _, ok := child["guard"].(map[string]any); ok {
				guard, err = decodeExpression(child["guard"])
				if err != nil {
					return nil, err
				}
			}
			body, err := decodeExpression(child["body"])
			if err != nil {
				return nil, err
			}
			arms = append(arms, NewMatchArm(pattern, guard, body))
		}
		out := NewMatchExpression(subject, arms)
		out.Pos = pos
		return out, nil
	case NodeTryExpression:
		body, err := decodeBlock(node["body"])
		if err != nil {
			return nil, err
		}
		catchesRaw, _ := node["catches"].([]any)
		catches := make([]*CatchClause, 0, len(catchesRaw))
		for _, raw := range catchesRaw {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid catch clause %T", raw)
			}
			errorType, _ := child["errorType"].(string)
			var binding *Identifier
			if bindRaw, ok := child["binding"].(map[string]any); ok {
				bindNode, err := decodeNode(bindRaw)
				if err != nil {
					return nil, err
				}
				binding, ok = bindNode.(*Identifier)
				if !ok {
					return nil, fmt.Errorf("catch binding is %s, want Identifier", bindNode.NodeType())
				}
			}
			clauseBody, err := decodeBlock(child["body"])
			if err != nil {
				return nil, err
			}
			catches = append(catches, NewCatchClause(errorType, binding, clauseBody))
		}
		var finally *BlockExpression
		if _, ok := node["finally"].(map[string]any); ok {
			finally, err = decodeBlock(node["finally"])
			if err != nil {
				return nil, err
			}
		}
		out := NewTryExpression(body, catches, finally)
		out.Pos = pos
		return out, nil
	case NodeWhileLoop:
		cond, err := decodeExpression(node["condition"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(node["body"])
		if err != nil {
			return nil, err
		}
		out := NewWhileLoop(cond, body)
		out.Pos = pos
		return out, nil
	case NodeForLoop:
		pattern, err := decodePattern(node["pattern"])
		if err != nil {
			return nil, err
		}
		iterable, err := decodeExpression(node["iterable"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(node["body"])
		if err != nil {
			return nil, err
		}
		out := NewForLoop(pattern, iterable, body)
		out.Pos = pos
		return out, nil
	case NodeBreakStatement:
		var value Expression
		if _, ok := node["value"].(map[string]any); ok {
			var err error
			value, err = decodeExpression(node["value"])
			if err != nil {
				return nil, err
			}
		}
		out := NewBreakStatement(value)
		out.Pos = pos
		return out, nil
	case NodeContinueStatement:
		out := NewContinueStatement()
		out.Pos = pos
		return out, nil
	case NodeReturnStatement:
		var value Expression
		if _, ok := node["value"].(map[string]any); ok {
			var err error
			value, err = decodeExpression(node["value"])
			if err != nil {
				return nil, err
			}
		}
		out := NewReturnStatement(value)
		out.Pos = pos
		return out, nil
	case NodeRaiseStatement:
		expr, err := decodeExpression(node["expression"])
		if err != nil {
			return nil, err
		}
		out := NewRaiseStatement(expr)
		out.Pos = pos
		return out, nil
	case NodeRuleDeclaration:
		name, _ := node["name"].(string)
		var param Expression
		if _, ok := node["param"].(map[string]any); ok {
			var err error
			param, err = decodeExpression(node["param"])
			if err != nil {
				return nil, err
			}
		}
		out := NewRuleDeclaration(name, param)
		out.Pos = pos
		return out, nil
	case NodeGraphDeclaration:
		return decodeGraphDeclaration(node, pos)
	case NodeImportStatement:
		path, _ := node["path"].(string)
		var alias *Identifier
		if aliasRaw, ok := node["alias"].(map[string]any); ok {
			aliasNode, err := decodeNode(aliasRaw)
			if err != nil {
				return nil, err
			}
			alias, ok = aliasNode.(*Identifier)
			if !ok {
				return nil, fmt.Errorf("import alias is %s, want Identifier", aliasNode.NodeType())
			}
		}
		out := NewImportStatement(path, alias)
		out.Pos = pos
		return out, nil
	case NodeLoadStatement:
		path, _ := node["path"].(string)
		out := NewLoadStatement(path)
		out.Pos = pos
		return out, nil
	case NodeConfigStatement:
		name, _ := node["name"].(string)
		value, err := decodeExpression(node["value"])
		if err != nil {
			return nil, err
		}
		out := NewConfigStatement(name, value)
		out.Pos = pos
		return out, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", typ)
	}
}

func decodeGraphDeclaration(node map[string]any, pos Position) (Node, error) {
	name, _ := node["name"].(string)
	var parent *Identifier
	if parentRaw, ok := node["parent"].(map[string]any); ok {
		parentNode, err := decodeNode(parentRaw)
		if err != nil {
			return nil, err
		}
		parent, ok = parentNode.(*Identifier)
		if !ok {
			return nil, fmt.Errorf("graph parent is %s, want Identifier", parentNode.NodeType())
		}
	}
	propsRaw, _ := node["properties"].([]any)
	props := make([]*PropertyDefinition, 0, len(propsRaw))
	for _, raw := range propsRaw {
		child, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid property definition %T", raw)
		}
		propName, _ := child["name"].(string)
		var value Expression
		if _, ok := child["value"].(map[string]any); ok {
			var err error
			value, err = decodeExpression(child["value"])
			if err != nil {
				return nil, err
			}
		}
		props = append(props, NewPropertyDefinition(propName, value))
	}
	methodsRaw, _ := node["methods"].([]any)
	methods := make([]*FunctionDeclaration, 0, len(methodsRaw))
	for _, raw := range methodsRaw {
		child, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid method declaration %T", raw)
		}
		decoded, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		method, ok := decoded.(*FunctionDeclaration)
		if !ok {
			return nil, fmt.Errorf("graph method is %s, want FunctionDeclaration", decoded.NodeType())
		}
		methods = append(methods, method)
	}
	rulesRaw, _ := node["rules"].([]any)
	rules := make([]*RuleDeclaration, 0, len(rulesRaw))
	for _, raw := range rulesRaw {
		child, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid rule declaration %T", raw)
		}
		decoded, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		rule, ok := decoded.(*RuleDeclaration)
		if !ok {
			return nil, fmt.Errorf("graph rule is %s, want RuleDeclaration", decoded.NodeType())
		}
		rules = append(rules, rule)
	}
	var configure *ConfigureBlock
	if confRaw, ok := node["configure"].(map[string]any); ok {
		configure = NewConfigureBlock(stringList(confRaw["readable"]), stringList(confRaw["writable"]))
	}
	out := NewGraphDeclaration(name, parent, props, methods, rules, configure)
	out.Pos = pos
	return out, nil
}

func decodeFunctionParts(node map[string]any) ([]*Parameter, []*FunctionClause, *BlockExpression, error) {
	paramsRaw, _ := node["params"].([]any)
	params := make([]*Parameter, 0, len(paramsRaw))
	for _, raw := range paramsRaw {
		child, ok := raw.(map[string]any)
		if !ok {
			return nil, nil, nil, fmt.Errorf("invalid parameter %T", raw)
		}
		name, _ := child["name"].(string)
		variadic, _ := child["variadic"].(bool)
		var def Expression
		if _, ok := child["default"].(map[string]any); ok {
			var err error
			def, err = decodeExpression(child["default"])
			if err != nil {
				return nil, nil, nil, err
			}
		}
		params = append(params, NewParameter(name, def, variadic))
	}
	clausesRaw, _ := node["clauses"].([]any)
	clauses := make([]*FunctionClause, 0, len(clausesRaw))
	for _, raw := range clausesRaw {
		child, ok := raw.(map[string]any)
		if !ok {
			return nil, nil, nil, fmt.Errorf("invalid function clause %T", raw)
		}
		pattern, err := decodePattern(child["pattern"])
		if err != nil {
			return nil, nil, nil, err
		}
		var guard Expression
		if _, ok := child["guard"].(map[string]any); ok {
			guard, err = decodeExpression(child["guard"])
			if err != nil {
				return nil, nil, nil, err
			}
		}
		body, err := decodeExpression(child["body"])
		if err != nil {
			return nil, nil, nil, err
		}
		clauses = append(clauses, NewFunctionClause(pattern, guard, body))
	}
	var body *BlockExpression
	if _, ok := node["body"].(map[string]any); ok {
		var err error
		body, err = decodeBlock(node["body"])
		if err != nil {
			return nil, nil, nil, err
		}
	}
	if len(params) == 0 {
		params = nil
	}
	if len(clauses) == 0 {
		clauses = nil
	}
	return params, clauses, body, nil
}

func decodeStatements(raw any) ([]Statement, error) {
	items, _ := raw.([]any)
	stmts := make([]Statement, 0, len(items))
	for _, item := range items {
		child, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid statement entry %T", item)
		}
		node, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		stmt, ok := node.(Statement)
		if !ok {
			return nil, fmt.Errorf("node %s is not a statement", node.NodeType())
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func decodeExpressions(raw any) ([]Expression, error) {
	items, _ := raw.([]any)
	exprs := make([]Expression, 0, len(items))
	for _, item := range items {
		expr, err := decodeExpression(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func decodeExpression(raw any) (Expression, error) {
	child, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid expression entry %T", raw)
	}
	node, err := decodeNode(child)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(Expression)
	if !ok {
		return nil, fmt.Errorf("node %s is not an expression", node.NodeType())
	}
	return expr, nil
}

func decodePattern(raw any) (Pattern, error) {
	child, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid pattern entry %T", raw)
	}
	node, err := decodeNode(child)
	if err != nil {
		return nil, err
	}
	pattern, ok := node.(Pattern)
	if !ok {
		return nil, fmt.Errorf("node %s is not a pattern", node.NodeType())
	}
	return pattern, nil
}

func decodeBlock(raw any) (*BlockExpression, error) {
	expr, err := decodeExpression(raw)
	if err != nil {
		return nil, err
	}
	block, ok := expr.(*BlockExpression)
	if !ok {
		return nil, fmt.Errorf("node %s is not a block", expr.NodeType())
	}
	return block, nil
}

func decodePos(node map[string]any) Position {
	posRaw, ok := node["pos"].(map[string]any)
	if !ok {
		return Position{}
	}
	line, _ := posRaw["line"].(float64)
	col, _ := posRaw["column"].(float64)
	return Position{Line: int(line), Column: int(col)}
}

// stringList pulls the string elements out of a decoded JSON array,
// ignoring anything else.
func stringList(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// rawNumber tolerates both string and numeric encodings of a number
// literal's raw spelling.
func rawNumber(node map[string]any) string {
	if raw, ok := node["raw"].(string); ok {
		return raw
	}
	if val, ok := node["value"].(float64); ok {
		return strconv.FormatFloat(val, 'g', -1, 64)
	}
	return "0"
}
