package lint

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/model"
)

// Context is the per-file, per-rule view handed to Rule.Create.
type Context struct {
	// Filename is the file's path with forward slashes.
	Filename string
	Source   []byte
	Root     *sitter.Node
	// Options is the rule's decoded options value, or nil.
	Options any

	rule     *Rule
	severity model.Severity
	sink     *[]model.Diagnostic
}

// Report records a diagnostic anchored at r.Node.
func (c *Context) Report(r Report) {
	if r.Node == nil {
		return
	}
	start := r.Node.StartPoint()
	d := model.Diagnostic{
		Rule:      c.rule.QualifiedName(),
		MessageID: r.MessageID,
		Data:      r.Data,
		Message:   FormatMessage(c.rule.Messages[r.MessageID], r.Data),
		Severity:  c.severity,
		Line:      int(start.Row) + 1,
		Column:    int(start.Column) + 1,
		StartByte: r.Node.StartByte(),
		EndByte:   r.Node.EndByte(),
		Fix:       r.Fix,
	}
	*c.sink = append(*c.sink, d)
}

// Text returns the source text of n.
func (c *Context) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(c.Source[n.StartByte():n.EndByte()])
}

// Tokens returns the leaf tokens of n in source order, comments excluded.
func (c *Context) Tokens(n *sitter.Node) []*sitter.Node {
	var tokens []*sitter.Node
	var collect func(*sitter.Node)
	collect = func(node *sitter.Node) {
		if node.Type() == KindComment {
			return
		}
		if node.ChildCount() == 0 {
			if node.EndByte() > node.StartByte() {
				tokens = append(tokens, node)
			}
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			collect(node.Child(i))
		}
	}
	if n != nil {
		collect(n)
	}
	return tokens
}

// Resolve looks ident up among the declarations made directly in the
// nearest enclosing scope (the program or a statement block). It returns the
// initializer of a matching variable declarator or a matching class
// declaration, and nil when there is no such declaration there. Outer scopes
// are not consulted.
func (c *Context) Resolve(ident *sitter.Node) *sitter.Node {
	if ident == nil || ident.Type() != KindIdentifier {
		return nil
	}
	name := c.Text(ident)

	scope := ident.Parent()
	for scope != nil && scope.Type() != KindProgram && scope.Type() != KindStatementBlock {
		scope = scope.Parent()
	}
	if scope == nil {
		return nil
	}

	for _, stmt := range NamedChildren(scope) {
		if stmt.Type() == KindExportStatement {
			stmt = stmt.ChildByFieldName("declaration")
			if stmt == nil {
				continue
			}
		}
		switch stmt.Type() {
		case KindLexicalDecl, KindVariableDecl:
			for _, decl := range NamedChildren(stmt) {
				if decl.Type() != KindVariableDeclarator {
					continue
				}
				if id := decl.ChildByFieldName("name"); id != nil && id.Type() == KindIdentifier && c.Text(id) == name {
					return decl.ChildByFieldName("value")
				}
			}
		case KindClassDeclaration:
			if id := stmt.ChildByFieldName("name"); id != nil && c.Text(id) == name {
				return stmt
			}
		}
	}
	return nil
}

var placeholderRe = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// FormatMessage substitutes {{ name }} placeholders in template from data.
// Placeholders without data are left as written.
func FormatMessage(template string, data map[string]string) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := data[key]; ok {
			return v
		}
		return m
	})
}
