package config

import (
	"strings"
	"sync"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

var (
	envKeysOnce sync.Once
	envKeys     map[string]string
)

// envKey maps a lower-cased, prefix-stripped variable name such as
// "layout_tiers_full_show_date" to its config path. Field names contain
// underscores themselves, so the mapping is looked up against the known
// keys rather than derived by splitting.
func envKey(name string) string {
	envKeysOnce.Do(func() {
		k := koanf.New(".")
		envKeys = make(map[string]string)
		if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
			return
		}
		for _, key := range k.Keys() {
			envKeys[strings.ReplaceAll(key, ".", "_")] = key
		}
	})
	if key, ok := envKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "_", ".")
}
