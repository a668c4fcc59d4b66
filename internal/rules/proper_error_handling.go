package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/lint"
)

// ProperErrorHandling reports awaited async Meteor calls outside a try block
// and async Meteor calls whose promise is dropped inside async functions.
var ProperErrorHandling = &lint.Rule{
	Name:        "proper-error-handling",
	Description: "Enforce proper error handling for async operations in Meteor 3",
	Type:        lint.Suggestion,
	Messages: map[string]string{
		"useTryCatch":         "Use try/catch blocks for error handling with async operations",
		"noUnhandledPromises": "Unhandled promise rejection: Add await and try/catch to handle potential errors",
	},
	Create: func(ctx *lint.Context) lint.Listeners {
		return lint.Listeners{
			lint.KindAwaitExpression: func(n *sitter.Node) { checkAwaitInTry(ctx, n) },
			lint.KindCallExpression:  func(n *sitter.Node) { checkUnhandled(ctx, n) },
		}
	},
}

func checkAwaitInTry(ctx *lint.Context, await *sitter.Node) {
	operands := lint.NamedChildren(await)
	if len(operands) == 0 {
		return
	}
	operand := operands[0]
	for operand.Type() == lint.KindParenthesized {
		inner := lint.NamedChildren(operand)
		if len(inner) == 0 {
			return
		}
		operand = inner[0]
	}
	if _, ok := asyncMethodCall(ctx, operand); !ok {
		return
	}
	if insideTryBlock(await) {
		return
	}
	ctx.Report(lint.Report{Node: await, MessageID: "useTryCatch"})
}

// insideTryBlock reports whether n sits in the protected block of some
// enclosing try statement. Catch and finally clauses do not count.
func insideTryBlock(n *sitter.Node) bool {
	for child, p := n, n.Parent(); p != nil; child, p = p, p.Parent() {
		if p.Type() == lint.KindTryStatement && lint.SameNode(p.ChildByFieldName("body"), child) {
			return true
		}
	}
	return false
}

func checkUnhandled(ctx *lint.Context, call *sitter.Node) {
	if _, ok := asyncMethodCall(ctx, call); !ok {
		return
	}
	if parent := lint.SkipParentheses(call); parent != nil {
		switch parent.Type() {
		case lint.KindAwaitExpression:
			return
		case lint.KindMemberExpression:
			if prop := ctx.Text(parent.ChildByFieldName("property")); prop == "then" || prop == "catch" {
				return
			}
		}
	}
	fn := lint.EnclosingFunction(call)
	if fn == nil || !lint.HasKeyword(fn, "async") {
		return
	}
	ctx.Report(lint.Report{Node: call, MessageID: "noUnhandledPromises"})
}
