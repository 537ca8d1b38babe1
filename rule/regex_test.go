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
)

const noTODORule = `
[rule]
id = "no-todo"
description = "TODO comments are not allowed"
severity = "warning"

[match]
pattern = "TODO"
`

func TestLoadRegexRuleAndExecute(t *testing.T) {
	r, err := LoadRegexRule(strings.NewReader(noTODORule))
	if err != nil {
		t.Fatalf("LoadRegexRule() error: %v", err)
	}

	if r.ID().String() != "no-todo" {
		t.Errorf("ID() = %q, want no-todo", r.ID())
	}

	content := []byte("line one\n// TODO fix this\nline three\n")
	violations, err := r.Execute(ExecutionContext{Path: "src/a.go", Content: content})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(violations))
	}

	v := violations[0]
	if v.Start.Line != 2 {
		t.Errorf("Start.Line = %d, want 2", v.Start.Line)
	}
	if v.Snippet != "TODO" {
		t.Errorf("Snippet = %q, want TODO", v.Snippet)
	}
	if v.Region.String() != "src" {
		t.Errorf("Region = %q, want src", v.Region.String())
	}
}

func TestLoadRegexRuleInvalidPattern(t *testing.T) {
	doc := `
[rule]
id = "bad"
description = "x"
severity = "error"

[match]
pattern = "("
`
	_, err := LoadRegexRule(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected error for invalid regex")
	}
}

func TestApplicabilityExcludeGlob(t *testing.T) {
	doc := `
[rule]
id = "no-todo"
description = "x"
severity = "warning"

[match]
pattern = "TODO"
exclude = ["**/*_test.go"]
`
	r, err := LoadRegexRule(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	if ApplicableTo(r, "pkg/foo_test.go", model.Go, true) {
		t.Error("expected exclude glob to reject foo_test.go")
	}
	if !ApplicableTo(r, "pkg/foo.go", model.Go, true) {
		t.Error("expected foo.go to be applicable")
	}
}

func TestApplicabilityUnknownLanguage(t *testing.T) {
	r, err := LoadRegexRule(strings.NewReader(noTODORule))
	if err != nil {
		t.Fatal(err)
	}
	if ApplicableTo(r, "README.md", "", false) {
		t.Error("expected undetected language to make the rule inapplicable")
	}
}
