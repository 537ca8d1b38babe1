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

package rule

import (
	"strings"
	"testing"

	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/tsparse"
)

func executeOn(t *testing.T, ruleDoc string, lang model.Language, src string) []model.Violation {
	t.Helper()

	r, err := LoadASTRule(strings.NewReader(ruleDoc), nil)
	if err != nil {
		t.Fatalf("LoadASTRule() error: %v", err)
	}

	cache := tsparse.NewCache()
	tree, err := cache.Parse(lang, []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	defer tree.Close()

	violations, err := r.Execute(ExecutionContext{Path: "f", Content: []byte(src), Tree: tree})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	return violations
}

func TestExceptClauseIsBare(t *testing.T) {
	doc := `
[rule]
id = "no-bare-except"
description = "bare except"
severity = "error"

[match]
query = """(except_clause) @violation"""
language = "python"
post_filter = "except_clause_is_bare"
`
	cases := []struct {
		name string
		src  string
		want int
	}{
		{"bare", "try:\n    f()\nexcept:\n    handle()\n", 1},
		{"typed", "try:\n    f()\nexcept ValueError:\n    handle()\n", 0},
		{"typed with alias", "try:\n    f()\nexcept ValueError as e:\n    handle(e)\n", 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := executeOn(t, doc, model.Python, c.src)
			if len(got) != c.want {
				t.Errorf("got %d violations, want %d", len(got), c.want)
			}
		})
	}
}

func TestBlockIsEmpty(t *testing.T) {
	doc := `
[rule]
id = "empty-catch"
description = "empty catch block"
severity = "error"

[match]
query = """(catch_clause body: (statement_block) @block) @violation"""
language = "javascript"
post_filter = "block_is_empty"
`
	cases := []struct {
		name string
		src  string
		want int
	}{
		{"empty", "try { f() } catch (e) {}\n", 1},
		{"non-empty", "try { f() } catch (e) { log(e) }\n", 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := executeOn(t, doc, model.JavaScript, c.src)
			if len(got) != c.want {
				t.Errorf("got %d violations, want %d", len(got), c.want)
			}
		})
	}
}

func TestClassNameNotException(t *testing.T) {
	doc := `
[rule]
id = "exception-naming"
description = "classes extending Error should be named *Error or *Exception"
severity = "warning"

[match]
query = """(class_declaration name: (identifier) @class_name (class_heritage (identifier) @superclass) (#eq? @superclass "Error")) @violation"""
language = "javascript"
post_filter = "class_name_not_exception"
`
	cases := []struct {
		name string
		src  string
		want int
	}{
		{"badly named", "class Oops extends Error {}\n", 1},
		{"suffixed Error", "class ParseError extends Error {}\n", 0},
		{"suffixed Exception", "class TimeoutException extends Error {}\n", 0},
		{"unrelated base", "class Oops extends Base {}\n", 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := executeOn(t, doc, model.JavaScript, c.src)
			if len(got) != c.want {
				t.Errorf("got %d violations, want %d", len(got), c.want)
			}
		})
	}
}
