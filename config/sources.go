package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/masmgr/logedit-go/internal/apperr"
)

// bytesProvider serves an in-memory document to koanf.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) {
	return b, nil
}

func (b bytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("bytesProvider does not support Read")
}

// tomlParser is a koanf parser backed by BurntSushi/toml.
type tomlParser struct{}

func (tomlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if _, err := toml.Decode(string(b), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlParser) Marshal(m map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parserFor(format string) (koanf.Parser, error) {
	switch format {
	case "json":
		return kjson.Parser(), nil
	case "yaml":
		return yaml.Parser(), nil
	case "toml":
		return tomlParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// loadDefaults seeds k with DefaultConfig so that file and environment
// keys merge over complete defaults.
func loadDefaults(k *koanf.Koanf) error {
	return loadStruct(k, DefaultConfig())
}

func loadStruct(k *koanf.Koanf, cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := k.Load(bytesProvider(data), kjson.Parser()); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	return nil
}

func loadFile(k *koanf.Koanf, path string) error {
	p, err := parserFor(formatOf(path))
	if err != nil {
		return apperr.Wrap(apperr.KindConfiguration, err, "cannot load %s", path)
	}
	if err := k.Load(file.Provider(path), p); err != nil {
		return apperr.Wrap(apperr.KindConfiguration, err, "cannot load %s", path)
	}
	return nil
}

// loadEnvironment applies LOGEDIT_ variables. Keys are matched without
// regard to case against the keys already loaded, so
// LOGEDIT_SUMMARIZER__MAXTOKENS overrides summarizer.maxTokens.
func loadEnvironment(k *koanf.Koanf) error {
	known := k.Keys()
	transform := func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		for _, existing := range known {
			if strings.EqualFold(existing, key) {
				return existing
			}
		}
		return key
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return apperr.Wrap(apperr.KindConfiguration, err, "failed to load environment config")
	}
	return nil
}
