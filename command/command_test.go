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

package command

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imbue-ai/ratchets-sub000/internal/testfixture"
	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/region"
)

// chdir switches the test process into dir for the duration of the
// test, restoring the original working directory on cleanup. Region
// paths are always relative to the directory ratchet is invoked from,
// so exercising region inheritance end to end requires running from
// the fixture root.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(prev)
	})
}

const countsFile = "ratchet-counts.toml"

func newInputs() Inputs {
	return Inputs{
		CountsPath: countsFile,
		Roots:      []string{"."},
	}
}

// A fine-grained override absorbs its region's violations while the
// rest of the tree stays on the root budget.
func TestCheckInheritancePass(t *testing.T) {
	root := testfixture.WriteTree(t, map[string]string{
		"src/legacy/a.rs": "// TODO one\nfn f() {}\n// TODO two\n// TODO three\n",
		"src/main.rs":     "fn main() {}\n",
	})
	chdir(t, root)

	store := region.New()
	store.SetCount(model.MustRuleID("no-todo"), model.Root(), 0)
	store.SetCount(model.MustRuleID("no-todo"), model.NewRegionPath("src/legacy"), 15)
	require.NoError(t, store.Save(countsFile))

	result, err := Check(context.Background(), newInputs())
	require.NoError(t, err)
	assert.True(t, result.Aggregation.Passed)
	assert.Equal(t, ExitSuccess, result.ExitCode)

	var found bool
	for _, status := range result.Aggregation.Statuses {
		if status.RuleID.String() == "no-todo" && status.Region.String() == "src/legacy" {
			found = true
			assert.Equal(t, 3, status.ActualCount)
			assert.Equal(t, 15, status.Budget)
		}
	}
	assert.True(t, found, "expected a (no-todo, src/legacy) status")
}

// A violation outside every override falls back to the root budget
// and fails the check when that budget is exhausted.
func TestCheckInheritanceFail(t *testing.T) {
	root := testfixture.WriteTree(t, map[string]string{
		"src/legacy/a.rs": "fn f() {}\n",
		"src/main.rs":     "// TODO fix this\nfn main() {}\n",
	})
	chdir(t, root)

	store := region.New()
	store.SetCount(model.MustRuleID("no-todo"), model.Root(), 0)
	store.SetCount(model.MustRuleID("no-todo"), model.NewRegionPath("src/legacy"), 15)
	require.NoError(t, store.Save(countsFile))

	result, err := Check(context.Background(), newInputs())
	require.NoError(t, err)
	assert.False(t, result.Aggregation.Passed)
	assert.Equal(t, ExitBudgetExceeded, result.ExitCode)

	var found bool
	for _, status := range result.Aggregation.Statuses {
		if status.RuleID.String() == "no-todo" && status.Region.String() == "." {
			found = true
			assert.Equal(t, 1, status.ActualCount)
			assert.Equal(t, 0, status.Budget)
		}
	}
	assert.True(t, found, "expected a (no-todo, .) status")
}

// An absent budget file plus an omitted count bumps the root budget
// to the current actual count.
func TestBumpAutoDetect(t *testing.T) {
	root := testfixture.WriteTree(t, map[string]string{
		"a.rs": "// TODO one\n// TODO two\n",
	})
	chdir(t, root)

	store, err := Bump(context.Background(), newInputs(), BumpOptions{
		RuleID: model.MustRuleID("no-todo"),
		Region: model.Root(),
		Auto:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Budget(model.MustRuleID("no-todo"), "a.rs"))

	reloaded, err := region.Load(countsFile)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Budget(model.MustRuleID("no-todo"), "a.rs"))
}

// Bumping below the current actual count is rejected and writes
// nothing.
func TestBumpRejectsBelowActual(t *testing.T) {
	root := testfixture.WriteTree(t, map[string]string{
		"a.rs": "// TODO one\n// TODO two\n// TODO three\n",
	})
	chdir(t, root)

	_, err := Bump(context.Background(), newInputs(), BumpOptions{
		RuleID: model.MustRuleID("no-todo"),
		Region: model.Root(),
		Count:  1,
	})
	require.Error(t, err, "expected an error bumping below the current actual count")

	_, statErr := os.Stat(countsFile)
	assert.True(t, os.IsNotExist(statErr), "expected no counts file to be written")
}

// Tighten lowers a slack budget down to the actual count.
func TestTighten(t *testing.T) {
	root := testfixture.WriteTree(t, map[string]string{
		"a.rs": "// TODO one\n// TODO two\n// TODO three\n// TODO four\n",
	})
	chdir(t, root)

	store := region.New()
	store.SetCount(model.MustRuleID("no-todo"), model.Root(), 10)
	require.NoError(t, store.Save(countsFile))

	tightened, err := Tighten(context.Background(), newInputs(), TightenOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, tightened.Budget(model.MustRuleID("no-todo"), "a.rs"))
}

// An over-budget bucket blocks the whole operation and leaves the
// store untouched.
func TestTightenBlocked(t *testing.T) {
	root := testfixture.WriteTree(t, map[string]string{
		"a.rs": "// TODO one\n// TODO two\n// TODO three\n// TODO four\n// TODO five\n",
	})
	chdir(t, root)

	store := region.New()
	store.SetCount(model.MustRuleID("no-todo"), model.Root(), 2)
	require.NoError(t, store.Save(countsFile))

	_, err := Tighten(context.Background(), newInputs(), TightenOptions{})
	require.Error(t, err, "expected a TightenBlockedError")

	blocked, ok := err.(*TightenBlockedError)
	require.True(t, ok, "error type = %T, want *TightenBlockedError", err)
	require.Len(t, blocked.Offenders, 1)
	assert.Equal(t, 5, blocked.Offenders[0].ActualCount)
	assert.Equal(t, 2, blocked.Offenders[0].Budget)

	reloaded, err := region.Load(countsFile)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Budget(model.MustRuleID("no-todo"), "a.rs"), "store budget changed, want unchanged 2")
}
