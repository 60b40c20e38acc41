package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "MACROKIT_"

// EnvConfigPath names the config file. It is read by the CLI, not applied
// as a setting.
const EnvConfigPath = EnvPrefix + "CONFIG"

// ApplyEnv overlays MACROKIT_* variables onto c. MACROKIT_SECTION_KEY sets
// key in section, so MACROKIT_PLAYBACK_MAX_JUMPS sets playback.max_jumps.
// lookup and environ are os.LookupEnv and os.Environ in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool), environ []string) error {
	overrides := make(map[string]any)
	for _, kv := range environ {
		name, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) || name == EnvConfigPath {
			continue
		}
		section, key, ok := envToPath(name)
		if !ok {
			continue
		}
		value, _ := lookup(name)
		sub, _ := overrides[section].(map[string]any)
		if sub == nil {
			sub = make(map[string]any)
			overrides[section] = sub
		}
		sub[key] = parseValue(value)
	}
	if len(overrides) == 0 {
		return nil
	}

	// Round-trip through TOML so overrides get the same typing as the file.
	data, err := toml.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnv, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnv, err)
	}
	return nil
}

// envToPath converts MACROKIT_RECORD_STOP_KEY to ("record", "stop_key").
func envToPath(env string) (section, key string, ok bool) {
	name := strings.ToLower(strings.TrimPrefix(env, EnvPrefix))
	section, key, ok = strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return "", "", false
	}
	return section, key, true
}

// parseValue types an environment string for TOML.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}
