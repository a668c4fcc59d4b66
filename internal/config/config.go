// Package config loads meteor3lint configuration files and resolves them
// against the built-in presets.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/meteor3lint/internal/lint"
	"github.com/phobologic/meteor3lint/internal/model"
	"github.com/phobologic/meteor3lint/internal/rules"
)

// FileNames are the configuration file names looked up by Find, in order.
var FileNames = []string{".meteor3lint.yaml", ".meteor3lint.yml"}

// File is the on-disk configuration.
type File struct {
	// Extends names the preset the rules start from.
	Extends string `yaml:"extends,omitempty"`
	// Rules overrides individual rules, keyed by name with or without the
	// meteor3/ prefix.
	Rules map[string]RuleSetting `yaml:"rules,omitempty"`
}

// RuleSetting is a rule entry: either a bare severity or a
// [severity, options] pair.
type RuleSetting struct {
	Severity model.Severity
	// Options is kept undecoded until the rule is known.
	Options *yaml.Node
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *RuleSetting) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		sev, err := model.ParseSeverity(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		s.Severity = sev
		return nil
	case yaml.SequenceNode:
		if len(value.Content) == 0 || len(value.Content) > 2 {
			return fmt.Errorf("line %d: rule setting must be [severity] or [severity, options]", value.Line)
		}
		first := value.Content[0]
		if first.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: severity must be a scalar", first.Line)
		}
		sev, err := model.ParseSeverity(first.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", first.Line, err)
		}
		s.Severity = sev
		if len(value.Content) == 2 {
			opts := value.Content[1]
			if opts.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: rule options must be a mapping", opts.Line)
			}
			s.Options = opts
		}
		return nil
	}
	return fmt.Errorf("line %d: rule setting must be a severity or [severity, options]", value.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (s RuleSetting) MarshalYAML() (any, error) {
	if s.Options == nil {
		return s.Severity.String(), nil
	}
	return []any{s.Severity.String(), s.Options}, nil
}

// Parse decodes a configuration file. Unknown keys are errors. An empty
// document yields an empty configuration.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &f, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Find looks for a configuration file in dir and its parents. It returns
// "" when there is none.
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range FileNames {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				return p
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Resolve applies f on top of its preset and returns every rule in
// registration order, options decoded and validated. preset overrides
// f.Extends when non-empty. All problems are reported together.
func Resolve(f *File, preset string) ([]lint.Configured, error) {
	if f == nil {
		f = &File{}
	}
	if preset == "" {
		preset = f.Extends
	}
	if preset == "" {
		preset = DefaultPreset
	}
	severities, err := PresetSeverities(preset)
	if err != nil {
		return nil, err
	}

	var errs []error
	settings := make(map[string]RuleSetting, len(f.Rules))
	names := make([]string, 0, len(f.Rules))
	for name := range f.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r, ok := rules.ByName(name)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown rule %q", name))
			continue
		}
		settings[r.Name] = f.Rules[name]
	}

	out := make([]lint.Configured, 0, len(rules.All()))
	for _, r := range rules.All() {
		c := lint.Configured{Rule: r, Severity: severities[r.Name]}
		if s, ok := settings[r.Name]; ok {
			c.Severity = s.Severity
			if s.Options != nil {
				opts, err := decodeOptions(r, s.Options)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				c.Options = opts
			}
		}
		if c.Options == nil && r.NewOptions != nil {
			c.Options = r.NewOptions()
		}
		out = append(out, c)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// decodeOptions decodes node into the rule's options type, rejecting
// unknown keys, and runs its validation.
func decodeOptions(r *lint.Rule, node *yaml.Node) (any, error) {
	if r.NewOptions == nil {
		return nil, fmt.Errorf("rule %s takes no options", r.QualifiedName())
	}
	// yaml.Node.Decode has no strict mode, so round-trip through a decoder.
	raw, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.QualifiedName(), err)
	}
	opts := r.NewOptions()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil {
		return nil, fmt.Errorf("rule %s options: %w", r.QualifiedName(), err)
	}
	if v, ok := opts.(lint.OptionsValidator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("rule %s options: %w", r.QualifiedName(), err)
		}
	}
	return opts, nil
}
