package main

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "FMC_"
	maxConfigFileSize = 1024 * 1024
)

// sections are the nested config blocks; env keys starting with one of these
// map to section.field, everything else stays a top-level key.
var sections = map[string]bool{
	"transport": true,
	"freshness": true,
}

// credentialKeys come from the same environment but are never part of the
// driver config.
var credentialKeys = []string{"username", "password"}

// fileEnvLoader reads an optional YAML file, then overlays FMC_* environment
// variables. It feeds core.NewCfgxConfigProvider.
type fileEnvLoader struct {
	path string
}

func newFileEnvLoader(path string) *fileEnvLoader {
	return &fileEnvLoader{path: strings.TrimSpace(path)}
}

func (l *fileEnvLoader) LoadRaw(context.Context) (map[string]any, error) {
	k := koanf.New(".")

	if l != nil && l.path != "" {
		info, err := os.Stat(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", l.path, maxConfigFileSize)
		}
		content, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", l.path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for _, key := range credentialKeys {
		k.Delete(key)
	}
	return k.Raw(), nil
}

// typedKeys lists the config keys that decode into non-string fields. Every
// other value stays a string.
var typedKeys = map[string]reflect.Kind{
	"port":                                  reflect.Int,
	"transport.timeout_seconds":             reflect.Int,
	"transport.max_response_body_bytes":     reflect.Int,
	"transport.insecure_skip_verify":        reflect.Bool,
	"freshness.expiring_soon_seconds":       reflect.Int,
	"freshness.reauthenticate_lead_seconds": reflect.Int,
}

// envValue types the numeric and boolean keys so they decode into the typed
// config fields. Values that do not parse are passed through for cfgx to
// reject.
func envValue(name, value string) (string, any) {
	key := envKey(name)
	value = strings.TrimSpace(value)
	switch typedKeys[key] {
	case reflect.Int:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return key, n
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(value); err == nil {
			return key, b
		}
	}
	return key, value
}

// envKey maps FMC_TRANSPORT_TIMEOUT_SECONDS to transport.timeout_seconds and
// FMC_SERVICE_NAME to service_name.
func envKey(name string) string {
	lower := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 2 && sections[parts[0]] {
		return parts[0] + "." + parts[1]
	}
	return lower
}
