package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/lint"
)

// UseMeteorError reports generic Error construction inside Meteor methods,
// where clients only see the details of a Meteor.Error.
var UseMeteorError = &lint.Rule{
	Name:        "use-meteor-error",
	Description: "Enforce using Meteor.Error instead of generic Error in Meteor methods",
	Type:        lint.Suggestion,
	Fixable:     true,
	Messages: map[string]string{
		"useMeteorError": "Use Meteor.Error instead of generic Error in Meteor methods for better client handling",
	},
	Create: func(ctx *lint.Context) lint.Listeners {
		return lint.Listeners{
			lint.KindNewExpression: func(n *sitter.Node) {
				checkErrorConstruction(ctx, n, n.ChildByFieldName("constructor"))
			},
			// throw Error(...) without new. throw new Error(...) is covered
			// by the new_expression listener.
			lint.KindThrowStatement: func(n *sitter.Node) {
				args := lint.NamedChildren(n)
				if len(args) == 0 || args[0].Type() != lint.KindCallExpression {
					return
				}
				checkErrorConstruction(ctx, args[0], args[0].ChildByFieldName("function"))
			},
		}
	},
}

func checkErrorConstruction(ctx *lint.Context, n, callee *sitter.Node) {
	if callee == nil || callee.Type() != lint.KindIdentifier || ctx.Text(callee) != "Error" {
		return
	}
	if !insideMeteorMethod(ctx, n) {
		return
	}
	ctx.Report(lint.Report{
		Node:      n,
		MessageID: "useMeteorError",
		Fix:       lint.ReplaceText(callee, "Meteor.Error"),
	})
}

// insideMeteorMethod reports whether n lies within a member of an object
// literal that is itself inside a Meteor.methods call.
func insideMeteorMethod(ctx *lint.Context, n *sitter.Node) bool {
	inMember := false
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case lint.KindPair, lint.KindMethodDefinition:
			if gp := p.Parent(); gp != nil && gp.Type() == lint.KindObject {
				inMember = true
			}
		case lint.KindCallExpression:
			if isMeteorMethodsCall(ctx, p) {
				return inMember
			}
		}
	}
	return false
}
