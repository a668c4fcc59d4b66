// Package rules implements the Meteor 3 migration rules.
package rules

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/lint"
)

// anonymousMethod labels members whose key cannot be read statically.
const anonymousMethod = "anonymous"

var serverPathRe = regexp.MustCompile(`/server/|/imports/api/`)

// isServerPath reports whether filename follows the Meteor server code
// layout. filename uses forward slashes.
func isServerPath(filename string) bool {
	return serverPathRe.MatchString(filename)
}

// memberParts returns the object and property of a member expression.
func memberParts(n *sitter.Node) (object, property *sitter.Node) {
	if n == nil || n.Type() != lint.KindMemberExpression {
		return nil, nil
	}
	return n.ChildByFieldName("object"), n.ChildByFieldName("property")
}

// calleeMember returns the object and property of a call whose callee is a
// member expression.
func calleeMember(call *sitter.Node) (object, property *sitter.Node) {
	if call == nil || call.Type() != lint.KindCallExpression {
		return nil, nil
	}
	return memberParts(call.ChildByFieldName("function"))
}

// isQualified reports whether n is the member expression object.property
// with a plain identifier object.
func isQualified(ctx *lint.Context, n *sitter.Node, object, property string) bool {
	obj, prop := memberParts(n)
	if obj == nil || prop == nil || obj.Type() != lint.KindIdentifier {
		return false
	}
	return ctx.Text(obj) == object && ctx.Text(prop) == property
}

// isMeteorMethodsCall reports whether n is a call to Meteor.methods.
func isMeteorMethodsCall(ctx *lint.Context, n *sitter.Node) bool {
	if n == nil || n.Type() != lint.KindCallExpression {
		return false
	}
	return isQualified(ctx, n.ChildByFieldName("function"), "Meteor", "methods")
}

// isMeteorMethodsArgument reports whether n is passed directly to Meteor.methods.
func isMeteorMethodsArgument(ctx *lint.Context, n *sitter.Node) bool {
	args := n.Parent()
	if args == nil || args.Type() != lint.KindArguments {
		return false
	}
	return isMeteorMethodsCall(ctx, args.Parent())
}

// asyncMethodCall returns the property name of a call to one of the known
// asynchronous Meteor methods.
func asyncMethodCall(ctx *lint.Context, call *sitter.Node) (string, bool) {
	_, prop := calleeMember(call)
	if prop == nil {
		return "", false
	}
	name := ctx.Text(prop)
	return name, IsAsyncMethod(name)
}

// propertyName reads a static member key: an identifier, a string or number
// literal, or a template literal without substitutions, optionally inside
// computed brackets. It returns "" for anything else.
func propertyName(ctx *lint.Context, key *sitter.Node) string {
	if key == nil {
		return ""
	}
	switch key.Type() {
	case lint.KindPropertyIdentifier, lint.KindIdentifier, "private_property_identifier", lint.KindNumber:
		return ctx.Text(key)
	case lint.KindString:
		return unquote(ctx.Text(key))
	case lint.KindTemplateString:
		for _, part := range lint.NamedChildren(key) {
			if part.Type() == lint.KindTemplateSubst {
				return ""
			}
		}
		return strings.TrimSuffix(strings.TrimPrefix(ctx.Text(key), "`"), "`")
	case lint.KindComputedProperty:
		inner := lint.NamedChildren(key)
		if len(inner) != 1 {
			return ""
		}
		return propertyName(ctx, inner[0])
	}
	return ""
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// receiverRoot returns the identifier a call receiver starts from: the
// receiver itself when it is an identifier, or the object of a one-level
// member receiver such as Meteor.users.
func receiverRoot(ctx *lint.Context, receiver *sitter.Node) string {
	if receiver == nil {
		return ""
	}
	switch receiver.Type() {
	case lint.KindIdentifier:
		return ctx.Text(receiver)
	case lint.KindMemberExpression:
		obj, _ := memberParts(receiver)
		if obj != nil && obj.Type() == lint.KindIdentifier {
			return ctx.Text(obj)
		}
	}
	return ""
}

// syncCallKind says which Meteor subsystem a synchronous call belongs to.
type syncCallKind int

const (
	frameworkCall syncCallKind = iota + 1
	accountsCall
	collectionCall
	cursorCall
)

// syncCall describes a call to a synchronous method with an async counterpart.
type syncCall struct {
	kind        syncCallKind
	method      string
	asyncMethod string
	// receiver names the collection for collectionCall.
	receiver string
	property *sitter.Node
}

// classifySyncCall decides from the receiver's shape whether call is a
// framework, accounts, collection or cursor call. The order matters:
// Accounts.users.findOne is a collection call, not an accounts call.
func classifySyncCall(ctx *lint.Context, call *sitter.Node) (syncCall, bool) {
	obj, prop := calleeMember(call)
	if obj == nil || prop == nil {
		return syncCall{}, false
	}
	method := ctx.Text(prop)
	asyncName, ok := AsyncName(method)
	if !ok {
		return syncCall{}, false
	}
	sc := syncCall{method: method, asyncMethod: asyncName, property: prop}

	root := receiverRoot(ctx, obj)
	switch {
	case root == "Meteor" && has(frameworkMethods, method):
		sc.kind = frameworkCall
	case root == "Accounts" && has(accountsMethods, method):
		sc.kind = accountsCall
	case has(collectionMethods, method):
		sc.kind = collectionCall
		sc.receiver = "Collection"
		if obj.Type() == lint.KindIdentifier {
			sc.receiver = ctx.Text(obj)
		}
	case has(cursorMethods, method):
		sc.kind = cursorCall
	default:
		return syncCall{}, false
	}
	return sc, true
}
