package rules

import (
	"strings"

	"github.com/phobologic/meteor3lint/internal/lint"
)

// All returns every rule in registration order.
func All() []*lint.Rule {
	return []*lint.Rule{
		PreferAsyncMethods,
		UseAsyncAwait,
		NoSyncMethodsServer,
		ProperErrorHandling,
		UseMeteorError,
		AsyncMeteorMethods,
		NoDeprecatedMethods,
	}
}

// ByName looks a rule up by name, with or without the plugin prefix.
func ByName(name string) (*lint.Rule, bool) {
	name = strings.TrimPrefix(name, lint.PluginPrefix)
	for _, r := range All() {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
