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

package region

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/imbue-ai/ratchets-sub000/model"
)

// banner is written as a leading comment on every serialised counts
// file so readers of a diff know how the numbers move.
const banner = "# Generated by ratchet. Budgets only ever move down automatically\n" +
	"# (tighten) or up explicitly (bump); do not hand-edit casually.\n"

// Store is a mapping of RuleID to Tree. A rule absent from the store
// behaves as an implicit tree with root count 0.
type Store struct {
	mu    sync.RWMutex
	trees map[string]*Tree
}

// New returns an empty Store.
func New() *Store {
	return &Store{trees: map[string]*Tree{}}
}

// Tree returns the Tree for id, creating an empty one on first access.
func (s *Store) Tree(id model.RuleID) *Tree {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := id.String()
	t, ok := s.trees[key]
	if !ok {
		t = NewTree()
		s.trees[key] = t
	}
	return t
}

// Budget returns the budget that applies to filePath for rule.
func (s *Store) Budget(id model.RuleID, filePath string) int {
	return s.Tree(id).Budget(model.RegionOfFile(filePath))
}

// BudgetByRegion is Budget starting directly at region rather than a
// file's parent directory.
func (s *Store) BudgetByRegion(id model.RuleID, region model.RegionPath) int {
	return s.Tree(id).Budget(region)
}

// FindConfiguredRegion returns the nearest explicitly-configured
// ancestor region for filePath, used by the aggregator to bucket
// violations.
func (s *Store) FindConfiguredRegion(id model.RuleID, filePath string) model.RegionPath {
	return s.Tree(id).FindConfiguredRegion(model.RegionOfFile(filePath))
}

// SetCount mutates the store directly. Callers performing bump/tighten
// should operate on an owned copy (see Clone) and persist via Save once
// finished; the store is never mutated mid-run.
func (s *Store) SetCount(id model.RuleID, region model.RegionPath, count int) {
	s.Tree(id).SetCount(region, count)
}

// RuleIDs returns every rule id present in the store, ascending.
func (s *Store) RuleIDs() []model.RuleID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.trees))
	for k := range s.trees {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]model.RuleID, len(keys))
	for i, k := range keys {
		out[i] = model.MustRuleID(k)
	}
	return out
}

// Clone returns a deep, independent copy for bump/tighten to mutate
// before an atomic Save.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := New()
	for id, tree := range s.trees {
		ct := NewTree()
		for _, region := range tree.ConfiguredRegions() {
			count, _ := tree.Count(region)
			ct.SetCount(region, count)
		}
		clone.trees[id] = ct
	}
	return clone
}

// document is the TOML decoding target: top-level keys are rule ids,
// each value a map of RegionPath string to non-negative count.
type document map[string]map[string]int

// Load parses a budget file. A missing file is treated as an empty
// Store so a first bump can seed it.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, model.NewError(model.ErrorKindIO, fmt.Sprintf("read counts file %s", path), err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, model.NewError(model.ErrorKindConfigParse, fmt.Sprintf("parse counts file %s", path), err)
	}

	store := New()
	for ruleID, regions := range doc {
		id, err := model.NewRuleID(ruleID)
		if err != nil {
			return nil, err
		}
		tree := store.Tree(id)
		for regionStr, count := range regions {
			if count < 0 {
				return nil, model.NewError(model.ErrorKindConfigValidation,
					fmt.Sprintf("negative count for %s %s", ruleID, regionStr), nil)
			}
			tree.SetCount(model.NewRegionPath(regionStr), count)
		}
	}
	return store, nil
}

// Save serialises the store deterministically (ascending rule id,
// ascending region path, fixed banner) and replaces path's content
// atomically via a temp-file rename.
func (s *Store) Save(path string) error {
	var b strings.Builder
	b.WriteString(banner)

	for _, id := range s.RuleIDs() {
		tree := s.Tree(id)
		b.WriteString(fmt.Sprintf("\n[%s]\n", tomlKey(id.String())))
		for _, region := range tree.ConfiguredRegions() {
			count, _ := tree.Count(region)
			fmt.Fprintf(&b, "%s = %d\n", tomlKey(region.String()), count)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return model.NewError(model.ErrorKindIO, fmt.Sprintf("write counts file %s", tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return model.NewError(model.ErrorKindIO, fmt.Sprintf("replace counts file %s", path), err)
	}
	return nil
}

var bareKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// tomlKey emits s as a bare TOML key when its characters allow it
// (every rule id does, as does a single-segment region such as "src"),
// quoting it otherwise (the root "." and nested regions containing "/").
func tomlKey(s string) string {
	if bareKeyPattern.MatchString(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
