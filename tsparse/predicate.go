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

package tsparse

import (
	"fmt"
	"regexp"
)

// Tree-sitter query syntax lets a pattern carry textual predicates
// (`#eq?`, `#match?`, and their negations) that the core matcher
// cannot express structurally, e.g. "this identifier's text is
// exactly panic". go-tree-sitter's QueryCursor hands back every
// structural match regardless of these predicates; evaluating them is
// left to the caller. Without this, a query like
// `(call_expression function: (identifier) @callee (#eq? @callee
// "panic"))` would report every call expression, not just calls to
// panic. compilePredicates extracts the predicate clauses written
// into the query text; satisfies applies them per match.
type predicateKind int

const (
	predEq predicateKind = iota
	predNotEq
	predMatch
	predNotMatch
)

type predicate struct {
	kind     predicateKind
	capture  string
	literal  string
	capture2 string
	hasCap2  bool
	re       *regexp.Regexp
}

var predicatePattern = regexp.MustCompile(
	`#(not-)?(eq|match)\?\s+@(\w+)\s+(?:"((?:[^"\\]|\\.)*)"|@(\w+))`,
)

// compilePredicates scans a query's source text for every `#eq?`,
// `#not-eq?`, `#match?`, `#not-match?` clause, compiling any `#match?`
// regex. An invalid regex is an error here so rule loading rejects it
// up front instead of failing mid-execution. Predicates are applied to
// every match the query produces, which is sufficient for the
// single-pattern queries the built-in and custom rule catalogues use.
func compilePredicates(queryString string) ([]predicate, error) {
	var out []predicate
	for _, m := range predicatePattern.FindAllStringSubmatch(queryString, -1) {
		negated := m[1] == "not-"
		op := m[2]
		capture := m[3]
		literal := m[4]
		capture2 := m[5]

		p := predicate{capture: capture}
		if capture2 != "" {
			p.capture2 = capture2
			p.hasCap2 = true
		} else {
			p.literal = unescapeQueryString(literal)
		}

		switch {
		case op == "eq" && !negated:
			p.kind = predEq
		case op == "eq" && negated:
			p.kind = predNotEq
		case op == "match" && !negated, op == "match" && negated:
			re, err := regexp.Compile(p.literal)
			if err != nil {
				return nil, fmt.Errorf("invalid #match? pattern %q: %w", p.literal, err)
			}
			p.re = re
			p.kind = predMatch
			if negated {
				p.kind = predNotMatch
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func unescapeQueryString(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		out = append(out, s[i])
	}
	return string(out)
}

// satisfies reports whether match honours every predicate, resolving
// each predicate's capture name(s) against the match's captures by
// name (a query may capture the same name more than once per match;
// the first occurrence is used, matching tree-sitter's own semantics).
func satisfies(predicates []predicate, match Match) bool {
	for _, p := range predicates {
		text, ok := captureText(match, p.capture)
		if !ok {
			continue
		}

		switch p.kind {
		case predEq, predNotEq:
			var equal bool
			if p.hasCap2 {
				other, ok := captureText(match, p.capture2)
				equal = ok && other == text
			} else {
				equal = text == p.literal
			}
			if p.kind == predEq && !equal {
				return false
			}
			if p.kind == predNotEq && equal {
				return false
			}
		case predMatch, predNotMatch:
			matched := p.re.MatchString(text)
			if p.kind == predMatch && !matched {
				return false
			}
			if p.kind == predNotMatch && matched {
				return false
			}
		}
	}
	return true
}

func captureText(match Match, name string) (string, bool) {
	for _, c := range match.Captures {
		if c.Name == name {
			return string(c.Node.Text()), true
		}
	}
	return "", false
}
