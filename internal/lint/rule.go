// Package lint runs rules over tree-sitter syntax trees. It parses a file,
// walks the tree once in document order and hands every node to the
// callbacks the enabled rules registered for that node kind.
package lint

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/model"
)

// PluginPrefix namespaces rule names in configuration and output.
const PluginPrefix = "meteor3/"

// RuleType classifies a rule the way ESLint does.
type RuleType string

const (
	Problem    RuleType = "problem"
	Suggestion RuleType = "suggestion"
)

// Listeners maps a tree-sitter node kind to the callback invoked for every
// node of that kind.
type Listeners map[string]func(node *sitter.Node)

// Rule describes one lint rule.
type Rule struct {
	Name        string
	Description string
	Type        RuleType
	Fixable     bool
	// Messages maps message IDs to templates with {{ slot }} placeholders.
	// The IDs are part of the output contract.
	Messages map[string]string

	// NewOptions returns a pointer to a zero options value for decoding.
	// Nil means the rule accepts no options.
	NewOptions func() any

	// Create is called once per file and returns the rule's callbacks.
	Create func(ctx *Context) Listeners
}

// QualifiedName returns the rule name with the plugin prefix.
func (r *Rule) QualifiedName() string {
	return PluginPrefix + r.Name
}

// OptionsValidator is implemented by option types that need checks beyond
// decoding, such as compiling regular expressions.
type OptionsValidator interface {
	Validate() error
}

// Configured binds a rule to a severity and decoded options.
type Configured struct {
	Rule     *Rule
	Severity model.Severity
	Options  any
}

// Report is what a rule passes to Context.Report.
type Report struct {
	Node      *sitter.Node
	MessageID string
	Data      map[string]string
	// Fix is optional; reporting without a fix is always valid.
	Fix *model.Fix
}
