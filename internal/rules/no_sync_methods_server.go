package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/lint"
)

// NoSyncMethodsServer reports synchronous Meteor calls in server code.
// Files count as server code when their path contains /server/ or
// /imports/api/.
var NoSyncMethodsServer = &lint.Rule{
	Name:        "no-sync-methods-server",
	Description: "Disallow synchronous Meteor methods on the server",
	Type:        lint.Problem,
	Fixable:     true,
	Messages: map[string]string{
		"noSyncMethodsServer": "Avoid using synchronous {{ method }} on the server. Use {{ asyncMethod }} instead",
	},
	Create: func(ctx *lint.Context) lint.Listeners {
		if !isServerPath(ctx.Filename) {
			return nil
		}
		return lint.Listeners{
			lint.KindCallExpression: func(n *sitter.Node) { checkServerSyncCall(ctx, n) },
		}
	},
}

func checkServerSyncCall(ctx *lint.Context, call *sitter.Node) {
	sc, ok := classifySyncCall(ctx, call)
	if !ok {
		return
	}

	var method, asyncMethod string
	switch sc.kind {
	case frameworkCall:
		method, asyncMethod = "Meteor."+sc.method, "Meteor."+sc.asyncMethod
	case accountsCall:
		method, asyncMethod = "Accounts."+sc.method, "Accounts."+sc.asyncMethod
	case collectionCall:
		method, asyncMethod = sc.receiver+"."+sc.method, sc.receiver+"."+sc.asyncMethod
	case cursorCall:
		method, asyncMethod = "cursor."+sc.method, "cursor."+sc.asyncMethod
	}

	ctx.Report(lint.Report{
		Node:      call,
		MessageID: "noSyncMethodsServer",
		Data:      map[string]string{"method": method, "asyncMethod": asyncMethod},
		Fix:       lint.ReplaceText(sc.property, sc.asyncMethod),
	})
}
