package config

import (
	"fmt"
	"strings"

	"github.com/phobologic/meteor3lint/internal/model"
	"github.com/phobologic/meteor3lint/internal/rules"
)

// DefaultPreset applies when neither the file nor the command line names one.
const DefaultPreset = "recommended"

// PresetNames lists the built-in presets.
func PresetNames() []string {
	return []string{"recommended", "strict"}
}

// PresetSeverities returns the severity of every rule in the named preset.
// The name may carry the "plugin:meteor3/" or "meteor3/" prefix.
func PresetSeverities(name string) (map[string]model.Severity, error) {
	name = strings.TrimPrefix(name, "plugin:")
	name = strings.TrimPrefix(name, "meteor3/")

	out := make(map[string]model.Severity)
	switch name {
	case "recommended":
		for _, r := range rules.All() {
			out[r.Name] = model.Warn
		}
		out[rules.NoDeprecatedMethods.Name] = model.Error
	case "strict":
		for _, r := range rules.All() {
			out[r.Name] = model.Error
		}
	default:
		return nil, fmt.Errorf("unknown preset %q (want %s)", name, strings.Join(PresetNames(), " or "))
	}
	return out, nil
}

// Preset returns a configuration file spelling out every rule of the named
// preset. It is what the init command writes.
func Preset(name string) (*File, error) {
	sev, err := PresetSeverities(name)
	if err != nil {
		return nil, err
	}
	f := &File{Extends: name, Rules: make(map[string]RuleSetting)}
	for _, r := range rules.All() {
		f.Rules[r.QualifiedName()] = RuleSetting{Severity: sev[r.Name]}
	}
	return f, nil
}
