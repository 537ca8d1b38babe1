// Copyright 2020 ZUP IT SERVICOS EM TECNOLOGIA E INOVACAO SA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the in-memory representation of ratchet.toml:
// the struct contract the engine consumes, plus a loader. Exhaustive
// validation of every field combination is left to the command-line
// front end that owns the file format.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/imbue-ai/ratchets-sub000/model"
)

// RuleSetting is a per-rule override: either a bare bool (enable/
// disable) or a settings table (severity override, region glob
// whitelist). The zero value has Enabled false, so it disables the
// rule; the table form sets Enabled to true when decoded.
type RuleSetting struct {
	Enabled     bool
	Severity    string
	RegionGlobs []string
}

// Config is the decoded shape of ratchet.toml.
type Config struct {
	Version   string
	Languages []model.Language
	Include   []string
	Exclude   []string
	Rules     map[string]RuleSetting
	Patterns  map[string]model.GlobPattern
}

// rawDocument mirrors Config but with Rules left as `any` so both the
// bool and table forms decode before RuleSetting normalisation.
type rawDocument struct {
	Version   string         `toml:"version"`
	Languages []string       `toml:"languages"`
	Include   []string       `toml:"include"`
	Exclude   []string       `toml:"exclude"`
	Rules     map[string]any `toml:"rules"`
	Patterns  map[string]string `toml:"patterns"`
}

// Load reads and decodes path. An unknown version is a hard
// ErrConfigValidation error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewError(model.ErrorKindConfigIO, fmt.Sprintf("read config %s", path), err)
	}
	return Parse(data)
}

// Parse decodes raw TOML bytes into a Config.
func Parse(data []byte) (*Config, error) {
	var raw rawDocument
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, model.NewError(model.ErrorKindConfigParse, "parse config", err)
	}

	if raw.Version != "1" {
		return nil, model.NewError(model.ErrorKindConfigValidation,
			fmt.Sprintf("unsupported config version %q", raw.Version), nil)
	}

	languages := make([]model.Language, 0, len(raw.Languages))
	for _, l := range raw.Languages {
		lang := model.Language(l)
		if !lang.Valid() {
			return nil, model.NewError(model.ErrorKindConfigValidation,
				fmt.Sprintf("unknown language %q", l), nil)
		}
		languages = append(languages, lang)
	}

	rules := map[string]RuleSetting{}
	for id, raw := range raw.Rules {
		setting, err := normalizeRuleSetting(id, raw)
		if err != nil {
			return nil, err
		}
		rules[id] = setting
	}

	patterns := map[string]model.GlobPattern{}
	for name, pattern := range raw.Patterns {
		g, err := model.NewGlobPattern(pattern)
		if err != nil {
			return nil, err
		}
		patterns[name] = g
	}

	return &Config{
		Version:   raw.Version,
		Languages: languages,
		Include:   raw.Include,
		Exclude:   raw.Exclude,
		Rules:     rules,
		Patterns:  patterns,
	}, nil
}

func normalizeRuleSetting(id string, raw any) (RuleSetting, error) {
	switch v := raw.(type) {
	case bool:
		return RuleSetting{Enabled: v}, nil
	case map[string]any:
		setting := RuleSetting{Enabled: true}
		if severity, ok := v["severity"].(string); ok {
			setting.Severity = severity
		}
		if regions, ok := v["region_globs"].([]any); ok {
			for _, r := range regions {
				if s, ok := r.(string); ok {
					setting.RegionGlobs = append(setting.RegionGlobs, s)
				}
			}
		}
		return setting, nil
	default:
		return RuleSetting{}, model.NewError(model.ErrorKindConfigValidation,
			fmt.Sprintf("rule %s: expected bool or table, got %T", id, raw), nil)
	}
}

// RuleEnabled reports whether id is enabled per cfg: absent from the
// config means enabled by default.
func (c *Config) RuleEnabled(id string) bool {
	if c == nil {
		return true
	}
	setting, ok := c.Rules[id]
	if !ok {
		return true
	}
	return setting.Enabled
}
