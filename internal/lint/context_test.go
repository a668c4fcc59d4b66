package lint

import (
	"context"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

// parseJS returns a Context over src with no rule attached.
func parseJS(t *testing.T, src string) *Context {
	t.Helper()
	tree, err := jsParser().ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Cleanup(tree.Close)
	return &Context{Filename: "x.js", Source: []byte(src), Root: tree.RootNode()}
}

// findIdentifier returns the nth identifier node spelled name.
func findIdentifier(c *Context, name string, nth int) *sitter.Node {
	var found *sitter.Node
	seen := 0
	var visit func(*sitter.Node)
	visit = func(n *sitter.Node) {
		if found != nil {
			return
		}
		if n.Type() == KindIdentifier && c.Text(n) == name {
			if seen == nth {
				found = n
				return
			}
			seen++
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(c.Root)
	return found
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		ident    string
		nth      int
		wantKind string // "" means unresolved
	}{
		{"const object", "const m = { a() {} };\nuse(m);", "m", 1, KindObject},
		{"var object", "var m = {};\nuse(m);", "m", 1, KindObject},
		{"exported const", "export const m = {};\nuse(m);", "m", 1, KindObject},
		{"class declaration", "class M {}\nuse(M);", "M", 1, KindClassDeclaration},
		{"undeclared", "use(m);", "m", 0, ""},
		{"declared in an outer scope", "const m = {};\nfunction f() { use(m); }", "m", 1, ""},
		{"declared in the same block", "function f() { const m = {}; use(m); }", "m", 1, KindObject},
		{"declared without initializer", "let m;\nuse(m);", "m", 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := parseJS(t, tt.src)
			ident := findIdentifier(c, tt.ident, tt.nth)
			if ident == nil {
				t.Fatalf("identifier %s #%d not found", tt.ident, tt.nth)
			}
			got := c.Resolve(ident)
			switch {
			case tt.wantKind == "" && got != nil:
				t.Errorf("Resolve = %s, want nil", got.Type())
			case tt.wantKind != "" && got == nil:
				t.Errorf("Resolve = nil, want %s", tt.wantKind)
			case tt.wantKind != "" && got.Type() != tt.wantKind:
				t.Errorf("Resolve = %s, want %s", got.Type(), tt.wantKind)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	c := parseJS(t, "save(/* note */ a);")
	var got []string
	for _, tok := range c.Tokens(c.Root) {
		got = append(got, c.Text(tok))
	}
	joined := strings.Join(got, " ")
	if strings.Contains(joined, "note") {
		t.Errorf("tokens include a comment: %q", joined)
	}
	if !strings.HasPrefix(joined, "save ( a )") {
		t.Errorf("tokens = %q", joined)
	}
}

func TestFormatMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		template string
		data     map[string]string
		want     string
	}{
		{"plain", nil, "plain"},
		{"{{ method }} is deprecated", map[string]string{"method": "Meteor.wrapAsync"}, "Meteor.wrapAsync is deprecated"},
		{`method "{{methodName}}"`, map[string]string{"methodName": "save"}, `method "save"`},
		{"{{ a }} and {{b}}", map[string]string{"a": "1", "b": "2"}, "1 and 2"},
		{"{{ missing }} stays", map[string]string{}, "{{ missing }} stays"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			t.Parallel()
			if got := FormatMessage(tt.template, tt.data); got != tt.want {
				t.Errorf("FormatMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasKeyword(t *testing.T) {
	t.Parallel()

	c := parseJS(t, "const o = { async save() {}, plain() {}, get value() { return 1; } };")
	var methods []*sitter.Node
	var visit func(*sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == KindMethodDefinition {
			methods = append(methods, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(c.Root)
	if len(methods) != 3 {
		t.Fatalf("found %d methods, want 3", len(methods))
	}

	if !HasKeyword(methods[0], "async") {
		t.Error("async save() should have the async keyword")
	}
	if HasKeyword(methods[1], "async") {
		t.Error("plain() should not have the async keyword")
	}
	if !HasKeyword(methods[2], "get") {
		t.Error("getter should have the get keyword")
	}
}
