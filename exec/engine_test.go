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

package exec

import (
	"context"
	"testing"

	"github.com/imbue-ai/ratchets-sub000/internal/testfixture"
	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/registry"
	"github.com/imbue-ai/ratchets-sub000/walk"
)

func buildEngine(t *testing.T) *Engine {
	t.Helper()
	reg, err := registry.Build(nil)
	if err != nil {
		t.Fatalf("registry.Build() error: %v", err)
	}
	return New(reg)
}

// A read error must not abort the run; the file is logged and treated
// as empty instead.
func TestRunFileUnreadableFileTreatedAsEmpty(t *testing.T) {
	root := testfixture.WriteTree(t, map[string]string{})
	engine := buildEngine(t)

	violations, executed := engine.runFile(walk.Entry{
		Path:     root + "/does-not-exist.rs",
		Language: model.Rust,
	})
	if len(violations) != 0 {
		t.Errorf("got %d violations from an unreadable file, want 0", len(violations))
	}
	if executed == 0 {
		t.Error("expected applicable rules to still be attempted against the (empty) content")
	}
}

// A parse failure suppresses only the AST rules for that file; the
// applicable regex rules must still run against the raw text.
func TestRunFileASTParseFailureStillRunsRegexRules(t *testing.T) {
	root := testfixture.WriteTree(t, map[string]string{
		// Unparseable Go: no-panic (AST) must fail to parse, but
		// no-todo (regex) must still fire on this same file.
		"broken.go": "package ((( invalid\n// TODO fix this\n",
	})

	engine := buildEngine(t)
	result, err := engine.Run(context.Background(), []string{root}, walk.Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	var sawTodo bool
	for _, v := range result.Violations {
		if v.RuleID.String() == "no-todo" {
			sawTodo = true
		}
	}
	if !sawTodo {
		t.Error("expected regex rule no-todo to still run on a file whose AST failed to parse")
	}
}

func TestRunEmptyFileSetPasses(t *testing.T) {
	root := testfixture.WriteTree(t, map[string]string{})

	engine := buildEngine(t)
	result, err := engine.Run(context.Background(), []string{root}, walk.Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(result.Violations) != 0 {
		t.Errorf("got %d violations from an empty tree, want 0", len(result.Violations))
	}
}
