package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/lint"
)

// PreferAsyncMethods suggests the async counterpart of synchronous Meteor
// calls in server code. find has no async form and is never reported.
var PreferAsyncMethods = &lint.Rule{
	Name:        "prefer-async-methods",
	Description: "Prefer async methods over sync methods in Meteor 3",
	Type:        lint.Suggestion,
	Fixable:     true,
	Messages: map[string]string{
		"preferAsync": "Use {{ asyncMethod }} instead of {{ method }} for better performance and compatibility with Meteor 3",
	},
	Create: func(ctx *lint.Context) lint.Listeners {
		if !isServerPath(ctx.Filename) {
			return nil
		}
		return lint.Listeners{
			lint.KindCallExpression: func(n *sitter.Node) { checkPreferAsync(ctx, n) },
		}
	},
}

func checkPreferAsync(ctx *lint.Context, call *sitter.Node) {
	sc, ok := classifySyncCall(ctx, call)
	if !ok {
		return
	}

	method, asyncMethod := sc.method, sc.asyncMethod
	switch sc.kind {
	case frameworkCall:
		method, asyncMethod = "Meteor."+method, "Meteor."+asyncMethod
	case accountsCall:
		method, asyncMethod = "Accounts."+method, "Accounts."+asyncMethod
	}

	ctx.Report(lint.Report{
		Node:      call,
		MessageID: "preferAsync",
		Data:      map[string]string{"method": method, "asyncMethod": asyncMethod},
		Fix:       lint.ReplaceText(sc.property, sc.asyncMethod),
	})
}
