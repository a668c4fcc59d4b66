package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/lint"
	"github.com/phobologic/meteor3lint/internal/model"
)

// NoDeprecatedMethods reports Meteor APIs that are deprecated or removed in
// Meteor 3.
var NoDeprecatedMethods = &lint.Rule{
	Name:        "no-deprecated-methods",
	Description: "Disallow deprecated Meteor methods",
	Type:        lint.Problem,
	Fixable:     true,
	Messages: map[string]string{
		"noDeprecatedMethods":      "{{ method }} is deprecated in Meteor 3. Use {{ alternative }} instead",
		"noDeprecatedMethodsNoAlt": "{{ method }} is deprecated in Meteor 3 and should not be used",
	},
	Create: func(ctx *lint.Context) lint.Listeners {
		return lint.Listeners{
			lint.KindMemberExpression: func(n *sitter.Node) { checkDeprecated(ctx, n) },
		}
	},
}

func checkDeprecated(ctx *lint.Context, member *sitter.Node) {
	obj, prop := memberParts(member)
	if obj == nil || prop == nil || obj.Type() != lint.KindIdentifier {
		return
	}
	symbol := ctx.Text(obj) + "." + ctx.Text(prop)

	if alt, ok := DeprecatedReplacement(symbol); ok {
		ctx.Report(lint.Report{
			Node:      member,
			MessageID: "noDeprecatedMethods",
			Data:      map[string]string{"method": symbol, "alternative": alt},
			Fix:       renameFix(member, prop, symbol),
		})
		return
	}
	if IsRemoved(symbol) {
		ctx.Report(lint.Report{
			Node:      member,
			MessageID: "noDeprecatedMethodsNoAlt",
			Data:      map[string]string{"method": symbol},
		})
	}
}

// renameFix swaps the property of a called symbol for its async name. Plain
// references are left alone since the replacement has a different
// signature.
func renameFix(member, prop *sitter.Node, symbol string) *model.Fix {
	rename, ok := callRenames[symbol]
	if !ok {
		return nil
	}
	call := member.Parent()
	if call == nil || call.Type() != lint.KindCallExpression || !lint.SameNode(call.ChildByFieldName("function"), member) {
		return nil
	}
	return lint.ReplaceText(prop, rename)
}
