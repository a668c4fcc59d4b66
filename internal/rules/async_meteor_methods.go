package rules

import (
	"fmt"
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/lint"
	"github.com/phobologic/meteor3lint/internal/model"
)

// AsyncMethodsOptions configures async-meteor-methods.
type AsyncMethodsOptions struct {
	// IgnorePatterns are regular expressions; a method whose name matches
	// any of them is not reported.
	IgnorePatterns []string `yaml:"ignorePatterns" json:"ignorePatterns"`
}

// Validate compiles every pattern.
func (o *AsyncMethodsOptions) Validate() error {
	for _, p := range o.IgnorePatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("ignorePatterns: invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

// AsyncMeteorMethods requires server methods registered with Meteor.methods
// to be declared async.
var AsyncMeteorMethods = &lint.Rule{
	Name:        "async-meteor-methods",
	Description: "Enforce async Meteor methods for Meteor 3 compatibility",
	Type:        lint.Suggestion,
	Fixable:     true,
	Messages: map[string]string{
		"useAsyncMethods":         "Meteor methods should be declared as async in Meteor 3",
		"useAsyncMethodsWithName": `Meteor method "{{methodName}}" should be declared as async in Meteor 3`,
	},
	NewOptions: func() any { return &AsyncMethodsOptions{} },
	Create:     createAsyncMeteorMethods,
}

type methodsChecker struct {
	ctx    *lint.Context
	ignore []*regexp.Regexp
}

func createAsyncMeteorMethods(ctx *lint.Context) lint.Listeners {
	c := &methodsChecker{ctx: ctx}
	if opts, ok := ctx.Options.(*AsyncMethodsOptions); ok && opts != nil {
		for _, p := range opts.IgnorePatterns {
			// Patterns are validated when the configuration loads.
			if re, err := regexp.Compile(p); err == nil {
				c.ignore = append(c.ignore, re)
			}
		}
	}
	return lint.Listeners{
		lint.KindCallExpression: c.checkCall,
		lint.KindClassBody:      c.checkClassBody,
	}
}

func (c *methodsChecker) checkCall(call *sitter.Node) {
	if !isMeteorMethodsCall(c.ctx, call) {
		return
	}
	args := lint.Arguments(call)
	if len(args) == 0 {
		return
	}

	arg := args[0]
	switch arg.Type() {
	case lint.KindObject:
		c.checkObject(arg)
	case lint.KindIdentifier:
		if target := c.ctx.Resolve(arg); target != nil && target.Type() == lint.KindObject {
			c.checkObject(target)
		}
	case lint.KindNewExpression:
		// new Methods() with a class declared elsewhere in scope. Inline class
		// expressions are reached through checkClassBody.
		ctor := arg.ChildByFieldName("constructor")
		if ctor == nil || ctor.Type() != lint.KindIdentifier {
			return
		}
		if decl := c.ctx.Resolve(ctor); decl != nil && decl.Type() == lint.KindClassDeclaration {
			c.checkClass(decl.ChildByFieldName("body"))
		}
	}
}

// checkClassBody handles Meteor.methods(new (class { ... })()).
func (c *methodsChecker) checkClassBody(body *sitter.Node) {
	for p := body.Parent(); p != nil; p = p.Parent() {
		if p.Type() != lint.KindNewExpression {
			continue
		}
		if isMeteorMethodsArgument(c.ctx, p) {
			c.checkClass(body)
		}
		return
	}
}

func (c *methodsChecker) checkObject(obj *sitter.Node) {
	for _, member := range lint.NamedChildren(obj) {
		switch member.Type() {
		case lint.KindMethodDefinition:
			if lint.HasKeyword(member, "async") || lint.HasKeyword(member, "get") || lint.HasKeyword(member, "set") {
				continue
			}
			name := c.memberName(member.ChildByFieldName("name"))
			c.report(member, name, c.methodFix(member, name))

		case lint.KindPair:
			value := member.ChildByFieldName("value")
			if !lint.IsFunctionValue(value) || lint.HasKeyword(value, "async") {
				continue
			}
			// The parameter list opens a non-async function value, so
			// inserting before the value lands before the parameters.
			name := c.memberName(member.ChildByFieldName("key"))
			c.report(value, name, lint.InsertTextBefore(value, "async "))
		}
	}
}

func (c *methodsChecker) checkClass(body *sitter.Node) {
	for _, member := range lint.NamedChildren(body) {
		if member.Type() != lint.KindMethodDefinition {
			continue
		}
		key := member.ChildByFieldName("name")
		if key == nil || key.Type() != lint.KindPropertyIdentifier {
			continue
		}
		name := c.ctx.Text(key)
		if name == "constructor" {
			continue
		}
		skip := false
		for _, kw := range []string{"async", "static", "get", "set"} {
			if lint.HasKeyword(member, kw) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		c.report(member, name, c.methodFix(member, name))
	}
}

func (c *methodsChecker) memberName(key *sitter.Node) string {
	if name := propertyName(c.ctx, key); name != "" {
		return name
	}
	return anonymousMethod
}

func (c *methodsChecker) report(anchor *sitter.Node, name string, fix *model.Fix) {
	for _, re := range c.ignore {
		if re.MatchString(name) {
			return
		}
	}
	c.ctx.Report(lint.Report{
		Node:      anchor,
		MessageID: "useAsyncMethodsWithName",
		Data:      map[string]string{"methodName": name},
		Fix:       fix,
	})
}

// methodFix inserts "async " in front of a method definition's name. Only
// tokens ahead of the parameter list are considered, so a matching name in
// the body is never touched. Generators get it before the asterisk and
// computed keys before the bracket.
func (c *methodsChecker) methodFix(method *sitter.Node, name string) *model.Fix {
	if star := lint.Keyword(method, "*"); star != nil {
		return lint.InsertTextBefore(star, "async ")
	}
	params := method.ChildByFieldName("parameters")
	for _, tok := range c.ctx.Tokens(method) {
		if params != nil && tok.StartByte() >= params.StartByte() {
			break
		}
		if tok.Type() == lint.KindPropertyIdentifier && c.ctx.Text(tok) == name {
			return lint.InsertTextBefore(tok, "async ")
		}
	}
	if key := method.ChildByFieldName("name"); key != nil {
		return lint.InsertTextBefore(key, "async ")
	}
	return nil
}
