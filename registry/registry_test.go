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

package registry

import (
	"testing"

	"github.com/imbue-ai/ratchets-sub000/config"
	"github.com/imbue-ai/ratchets-sub000/internal/testfixture"
	"github.com/imbue-ai/ratchets-sub000/model"
)

func TestBuildLoadsBuiltins(t *testing.T) {
	reg, err := Build(nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if reg.IsEmpty() {
		t.Fatal("expected built-in rules to be loaded")
	}

	id := model.MustRuleID("no-todo")
	if _, ok := reg.Get(id); !ok {
		t.Error("expected no-todo to be registered")
	}

	ids := reg.RuleIDs()
	for i := 1; i < len(ids); i++ {
		if !ids[i-1].Less(ids[i]) {
			t.Fatalf("RuleIDs() not sorted ascending at index %d", i)
		}
	}
}

func TestBuildAppliesConfigFilter(t *testing.T) {
	cfg, err := config.Parse([]byte(`
version = "1"

[rules]
no-todo = false
`))
	if err != nil {
		t.Fatalf("config.Parse() error: %v", err)
	}

	reg, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, ok := reg.Get(model.MustRuleID("no-todo")); ok {
		t.Error("expected no-todo to be filtered out")
	}
	if _, ok := reg.Get(model.MustRuleID("no-fixme")); !ok {
		t.Error("expected no-fixme to remain enabled")
	}
}

func TestBuildLoadsCustomRules(t *testing.T) {
	dir := testfixture.WriteTree(t, map[string]string{
		"regex/custom-no-print.toml": `
[rule]
id = "custom-no-print"
description = "no print statements"
severity = "warning"

[match]
pattern = "print\\("
`,
	})

	reg, err := Build(nil, dir)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, ok := reg.Get(model.MustRuleID("custom-no-print")); !ok {
		t.Error("expected custom rule to be registered")
	}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	dir := testfixture.WriteTree(t, map[string]string{
		"regex/dup.toml": `
[rule]
id = "no-todo"
description = "duplicate of a builtin"
severity = "warning"

[match]
pattern = "TODO"
`,
	})

	_, err := Build(nil, dir)
	if err == nil {
		t.Fatal("expected duplicate rule id to be rejected")
	}
}
