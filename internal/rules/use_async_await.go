package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/lint"
)

// UseAsyncAwait reports callback and .then() styles on async Meteor calls.
var UseAsyncAwait = &lint.Rule{
	Name:        "use-async-await",
	Description: "Enforce using async/await instead of callbacks or promises with then()",
	Type:        lint.Suggestion,
	Messages: map[string]string{
		"useAsyncAwait":  "Use async/await with {{ method }} instead of callbacks",
		"noThenChaining": "Use async/await instead of .then() chaining with {{ method }}",
	},
	Create: func(ctx *lint.Context) lint.Listeners {
		return lint.Listeners{
			lint.KindCallExpression:   func(n *sitter.Node) { checkCallback(ctx, n) },
			lint.KindMemberExpression: func(n *sitter.Node) { checkThenChain(ctx, n) },
		}
	},
}

func checkCallback(ctx *lint.Context, call *sitter.Node) {
	method, ok := asyncMethodCall(ctx, call)
	if !ok {
		return
	}
	args := lint.Arguments(call)
	if len(args) == 0 || !lint.IsFunctionValue(args[len(args)-1]) {
		return
	}
	ctx.Report(lint.Report{
		Node:      call,
		MessageID: "useAsyncAwait",
		Data:      map[string]string{"method": method},
	})
}

func checkThenChain(ctx *lint.Context, member *sitter.Node) {
	obj, prop := memberParts(member)
	if obj == nil || ctx.Text(prop) != "then" {
		return
	}
	method, ok := asyncMethodCall(ctx, obj)
	if !ok {
		return
	}
	ctx.Report(lint.Report{
		Node:      member,
		MessageID: "noThenChaining",
		Data:      map[string]string{"method": method},
	})
}
