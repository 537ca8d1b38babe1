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

// Package registry builds the set of active rules: the embedded
// built-in catalogue plus filesystem custom rules, filtered and
// validated against a Config.
package registry

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/imbue-ai/ratchets-sub000/config"
	"github.com/imbue-ai/ratchets-sub000/internal/ratchetlog"
	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/rule"
)

//go:embed builtins/regex/*.toml
var builtinRegexFS embed.FS

//go:embed builtins/ast/*.toml
var builtinASTFS embed.FS

// Registry is an immutable, id-indexed set of active rules.
type Registry struct {
	rules map[string]rule.Rule
	ids   []model.RuleID
}

// Get returns the rule for id, or false if it is not registered (either
// never defined, or filtered out by config).
func (r *Registry) Get(id model.RuleID) (rule.Rule, bool) {
	v, ok := r.rules[id.String()]
	return v, ok
}

// Only returns a temporary Registry containing just id, for callers
// that need to re-run execution restricted to a single rule (bump
// discovers the current actual count this way). Returns false if id
// is not active in r.
func (r *Registry) Only(id model.RuleID) (*Registry, bool) {
	v, ok := r.rules[id.String()]
	if !ok {
		return nil, false
	}
	return &Registry{
		rules: map[string]rule.Rule{id.String(): v},
		ids:   []model.RuleID{id},
	}, true
}

// Len reports the number of active rules.
func (r *Registry) Len() int { return len(r.rules) }

// IsEmpty reports whether no rules are active.
func (r *Registry) IsEmpty() bool { return len(r.rules) == 0 }

// RuleIDs returns every active rule id in ascending order.
func (r *Registry) RuleIDs() []model.RuleID {
	out := make([]model.RuleID, len(r.ids))
	copy(out, r.ids)
	return out
}

// Rules returns every active rule in ascending id order.
func (r *Registry) Rules() []rule.Rule {
	out := make([]rule.Rule, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.rules[id.String()])
	}
	return out
}

// Build ingests the embedded built-in catalogue, then filesystem custom
// rules under customDirs (each scanned for regex/*.toml and ast/*.toml),
// then applies cfg's per-rule enable/disable filter. Duplicate ids
// across any source are an ErrorKindInvalidRuleDefinition failure.
func Build(cfg *config.Config, customDirs ...string) (*Registry, error) {
	loaded := map[string]rule.Rule{}

	addRule := func(r rule.Rule, source string) error {
		id := r.ID().String()
		if _, exists := loaded[id]; exists {
			return model.NewError(model.ErrorKindInvalidRuleDefinition,
				fmt.Sprintf("duplicate rule id %q (from %s)", id, source), nil)
		}
		loaded[id] = r
		return nil
	}

	patterns := map[string]model.GlobPattern{}
	if cfg != nil {
		patterns = cfg.Patterns
	}

	if err := loadRegexDir(builtinRegexFS, "builtins/regex", addRule); err != nil {
		return nil, err
	}
	if err := loadASTDir(builtinASTFS, "builtins/ast", patterns, addRule); err != nil {
		return nil, err
	}

	for _, dir := range customDirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			ratchetlog.Logger().Warn().Str("dir", dir).Msg("registry: custom rule directory not found")
			continue
		}
		root := os.DirFS(dir)
		if err := loadRegexDir(root, "regex", addRule); err != nil {
			return nil, err
		}
		if err := loadASTDir(root, "ast", patterns, addRule); err != nil {
			return nil, err
		}
	}

	active := map[string]rule.Rule{}
	for id, r := range loaded {
		if cfg.RuleEnabled(id) {
			active[id] = r
		}
	}

	ids := make([]model.RuleID, 0, len(active))
	for id := range active {
		ids = append(ids, model.MustRuleID(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	return &Registry{rules: active, ids: ids}, nil
}

func loadRegexDir(filesystem fs.FS, dir string, add func(rule.Rule, string) error) error {
	entries, err := fs.ReadDir(filesystem, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return model.NewError(model.ErrorKindIO, fmt.Sprintf("read rule dir %s", dir), err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		path := dir + "/" + e.Name()
		f, err := filesystem.Open(path)
		if err != nil {
			return model.NewError(model.ErrorKindIO, fmt.Sprintf("open rule file %s", path), err)
		}
		r, err := rule.LoadRegexRule(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := add(r, path); err != nil {
			return err
		}
	}
	return nil
}

func loadASTDir(filesystem fs.FS, dir string, patterns map[string]model.GlobPattern, add func(rule.Rule, string) error) error {
	entries, err := fs.ReadDir(filesystem, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return model.NewError(model.ErrorKindIO, fmt.Sprintf("read rule dir %s", dir), err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		path := dir + "/" + e.Name()
		f, err := filesystem.Open(path)
		if err != nil {
			return model.NewError(model.ErrorKindIO, fmt.Sprintf("open rule file %s", path), err)
		}
		r, err := rule.LoadASTRule(f, patterns)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := add(r, path); err != nil {
			return err
		}
	}
	return nil
}
