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

// Package rule implements the polymorphic Rule abstraction: RegexRule
// and AstRule variants, their TOML loaders, the closed post-filter
// catalogue, and the shared applicability predicate.
package rule

import (
	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/tsparse"
)

// ExecutionContext is the input a Rule.Execute call receives: the file
// being analysed, its raw bytes, and an optional already-parsed tree
// (nil if no AST rule needed one, or parsing failed). Execute must be
// pure and safe to call from multiple goroutines with distinct
// contexts concurrently.
type ExecutionContext struct {
	Path    string
	Content []byte
	Tree    *tsparse.Tree
}

// Rule is the polymorphic interface both RegexRule and AstRule
// implement: a uniform {id, description, languages, severity, execute}
// capability set over a closed enumeration of two variants.
type Rule interface {
	ID() model.RuleID
	Description() string
	Languages() []model.Language
	Severity() model.Severity
	Execute(ctx ExecutionContext) ([]model.Violation, error)

	// RequiresAST reports whether the engine must supply a parsed Tree
	// in ExecutionContext before calling Execute.
	RequiresAST() bool
	// Language is the single language an AST rule requires, or "" for
	// a RegexRule (which may apply to every language or a restricted
	// list but never needs a parsed tree of one specific grammar).
	Language() model.Language

	includeExclude() (include, exclude model.GlobSet)
}

// ApplicableTo reports whether r should run against path:
//
//	(a) the file's detected language is not None
//	(b) the rule's language list is empty or contains that language
//	(c) the file is not matched by a rule-level exclude glob
//	(d) if include globs are present, the path matches at least one
//
// AST rules additionally require the file's language to equal the
// rule's single language (enforced by callers checking Language()
// before invoking an AST rule; languageMatches below already covers
// the common RequiresAST case since a single-language list is just a
// Languages() of length 1).
func ApplicableTo(r Rule, path string, lang model.Language, langKnown bool) bool {
	if !langKnown {
		return false
	}
	if !languageMatches(r, lang) {
		return false
	}

	include, exclude := r.includeExclude()
	if exclude.MatchAny(path) {
		return false
	}
	if len(include) > 0 && !include.MatchAny(path) {
		return false
	}
	return true
}

func languageMatches(r Rule, lang model.Language) bool {
	langs := r.Languages()
	if len(langs) == 0 {
		return true
	}
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}
