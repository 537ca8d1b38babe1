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

// Package region implements the hierarchical, inheritance-based mapping
// from file paths to per-rule budgets. A Tree holds one rule's
// overrides; a Store owns one Tree per RuleID and is the only mutable
// state ratchet persists to disk.
package region

import (
	"sort"
	"sync"

	"github.com/imbue-ai/ratchets-sub000/model"
)

// Tree holds the per-region budget overrides for a single rule.
//
// Invariants (enforced on every mutation):
//   - the root region "." is always in the configured set
//   - all counts are non-negative
//   - overrides and the configured set stay consistent
type Tree struct {
	mu         sync.RWMutex
	rootCount  int
	overrides  map[string]int
	configured map[string]bool
}

// NewTree builds a Tree with a root count of 0.
func NewTree() *Tree {
	return &Tree{
		overrides:  map[string]int{},
		configured: map[string]bool{model.RootRegion: true},
	}
}

// Budget walks up from region's ancestor chain and returns the first
// explicit override encountered, or the root count if none is found.
func (t *Tree) Budget(region model.RegionPath) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, ancestor := range region.Ancestors() {
		if ancestor.IsRoot() {
			break
		}
		if count, ok := t.overrides[ancestor.String()]; ok {
			return count
		}
	}
	return t.rootCount
}

// FindConfiguredRegion returns the nearest ancestor of region that is
// explicitly configured for this rule, or the root region if none is.
func (t *Tree) FindConfiguredRegion(region model.RegionPath) model.RegionPath {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, ancestor := range region.Ancestors() {
		if t.configured[ancestor.String()] {
			return ancestor
		}
	}
	return model.Root()
}

// SetCount sets the budget at region, creating an override unless
// region is the root (which always updates rootCount and the "."
// entry atomically).
func (t *Tree) SetCount(region model.RegionPath, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.configured[region.String()] = true
	if region.IsRoot() {
		t.rootCount = count
		return
	}
	t.overrides[region.String()] = count
}

// Count returns the raw stored count at exactly region (not an
// inherited lookup), and whether region is explicitly configured.
func (t *Tree) Count(region model.RegionPath) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if region.IsRoot() {
		return t.rootCount, true
	}
	count, ok := t.overrides[region.String()]
	return count, ok
}

// ConfiguredRegions returns every explicitly configured region path,
// including the root, in ascending order.
func (t *Tree) ConfiguredRegions() []model.RegionPath {
	t.mu.RLock()
	defer t.mu.RUnlock()

	paths := make([]string, 0, len(t.configured))
	for p := range t.configured {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]model.RegionPath, len(paths))
	for i, p := range paths {
		out[i] = model.NewRegionPath(p)
	}
	return out
}
