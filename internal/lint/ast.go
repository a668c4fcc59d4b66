package lint

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Node kinds shared by the JavaScript and TypeScript grammars.
const (
	KindProgram            = "program"
	KindCallExpression     = "call_expression"
	KindNewExpression      = "new_expression"
	KindMemberExpression   = "member_expression"
	KindAwaitExpression    = "await_expression"
	KindArguments          = "arguments"
	KindObject             = "object"
	KindPair               = "pair"
	KindMethodDefinition   = "method_definition"
	KindClassBody          = "class_body"
	KindClassDeclaration   = "class_declaration"
	KindIdentifier         = "identifier"
	KindPropertyIdentifier = "property_identifier"
	KindComputedProperty   = "computed_property_name"
	KindString             = "string"
	KindNumber             = "number"
	KindTemplateString     = "template_string"
	KindTemplateSubst      = "template_substitution"
	KindArrowFunction      = "arrow_function"
	KindFunctionDecl       = "function_declaration"
	KindGeneratorFunction  = "generator_function"
	KindGeneratorDecl      = "generator_function_declaration"
	KindStatementBlock     = "statement_block"
	KindTryStatement       = "try_statement"
	KindThrowStatement     = "throw_statement"
	KindParenthesized      = "parenthesized_expression"
	KindLexicalDecl        = "lexical_declaration"
	KindVariableDecl       = "variable_declaration"
	KindVariableDeclarator = "variable_declarator"
	KindExportStatement    = "export_statement"
	KindComment            = "comment"
)

// Older grammar releases call function expressions "function"; newer ones
// "function_expression".
var functionExpressionKinds = map[string]bool{
	"function":            true,
	"function_expression": true,
	KindGeneratorFunction: true,
}

// IsFunctionExpression reports whether n is a function or generator expression.
func IsFunctionExpression(n *sitter.Node) bool {
	return n != nil && functionExpressionKinds[n.Type()]
}

// IsFunctionValue reports whether n is a callable literal: a function
// expression or an arrow function.
func IsFunctionValue(n *sitter.Node) bool {
	return n != nil && (IsFunctionExpression(n) || n.Type() == KindArrowFunction)
}

// IsFunctionBoundary reports whether n starts a new function body, including
// declarations and methods.
func IsFunctionBoundary(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case KindFunctionDecl, KindGeneratorDecl, KindMethodDefinition:
		return true
	}
	return IsFunctionValue(n)
}

// HasKeyword reports whether n has a direct anonymous child token of the given
// kind, such as "async", "get", "static" or "*". Named children are ignored so
// a method called async is not mistaken for the modifier.
func HasKeyword(n *sitter.Node, keyword string) bool {
	if n == nil {
		return false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() && child.Type() == keyword {
			return true
		}
	}
	return false
}

// Keyword returns the first direct anonymous child token of kind keyword.
func Keyword(n *sitter.Node, keyword string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() && child.Type() == keyword {
			return child
		}
	}
	return nil
}

// NamedChildren returns the named children of n without comments.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == KindComment {
			continue
		}
		out = append(out, child)
	}
	return out
}

// Arguments returns the argument expressions of a call or new expression.
func Arguments(call *sitter.Node) []*sitter.Node {
	if call == nil {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != KindArguments {
		return nil
	}
	return NamedChildren(args)
}

// SkipParentheses returns the nearest ancestor of n that is not a
// parenthesized expression.
func SkipParentheses(n *sitter.Node) *sitter.Node {
	p := n.Parent()
	for p != nil && p.Type() == KindParenthesized {
		p = p.Parent()
	}
	return p
}

// EnclosingFunction returns the nearest function boundary above n, or nil at
// the top level.
func EnclosingFunction(n *sitter.Node) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if IsFunctionBoundary(p) {
			return p
		}
	}
	return nil
}

// SameNode reports whether a and b denote the same syntax node.
func SameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
