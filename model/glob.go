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

package model

import (
	"fmt"

	"github.com/bmatcuk/doublestar"
)

// GlobPattern is an opaque textual glob validated at configuration load
// time by attempting to compile it.
type GlobPattern struct {
	pattern string
}

// NewGlobPattern validates pattern by compiling it, returning
// ErrInvalidGlob on failure.
func NewGlobPattern(pattern string) (GlobPattern, error) {
	if _, err := doublestar.Match(pattern, "probe"); err != nil {
		return GlobPattern{}, NewError(ErrorKindInvalidGlob,
			fmt.Sprintf("invalid glob pattern %q", pattern), err)
	}
	return GlobPattern{pattern: pattern}, nil
}

// Match reports whether path matches the glob.
func (g GlobPattern) Match(path string) bool {
	matched, _ := doublestar.Match(g.pattern, path)
	return matched
}

func (g GlobPattern) String() string {
	return g.pattern
}

// GlobSet is a set of GlobPatterns matched with OR semantics.
type GlobSet []GlobPattern

// MatchAny reports whether any pattern in the set matches path. An
// empty set never matches.
func (s GlobSet) MatchAny(path string) bool {
	for _, g := range s {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// NewGlobSet compiles every pattern in patterns, failing on the first
// invalid one.
func NewGlobSet(patterns []string) (GlobSet, error) {
	set := make(GlobSet, 0, len(patterns))
	for _, p := range patterns {
		g, err := NewGlobPattern(p)
		if err != nil {
			return nil, err
		}
		set = append(set, g)
	}
	return set, nil
}
