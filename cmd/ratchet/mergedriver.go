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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/region"
)

// mergeDriverCmd implements a textual count-minimising merge: since a
// budget only ever moves down (tighten) or up by an explicit bump, a
// three-way conflict resolves to the pairwise minimum per (rule,
// region) across base, ours, and theirs. The result is written back
// to ours, matching git's merge.driver %A convention.
var mergeDriverCmd = &cobra.Command{
	Use:   "merge-driver <base> <ours> <theirs>",
	Short: "Git merge driver for the budget file: pairwise minimum per (rule, region)",
	Args:  cobra.ExactArgs(3),
	RunE:  runMergeDriver,
}

func init() {
	rootCmd.AddCommand(mergeDriverCmd)
}

func runMergeDriver(cmd *cobra.Command, args []string) error {
	basePath, oursPath, theirsPath := args[0], args[1], args[2]

	base, err := region.Load(basePath)
	if err != nil {
		return err
	}
	ours, err := region.Load(oursPath)
	if err != nil {
		return err
	}
	theirs, err := region.Load(theirsPath)
	if err != nil {
		return err
	}

	merged := region.New()
	for _, id := range allRuleIDs(base, ours, theirs) {
		for _, r := range allRegions(id, base, ours, theirs) {
			merged.SetCount(id, r, minCount(
				base.BudgetByRegion(id, r),
				ours.BudgetByRegion(id, r),
				theirs.BudgetByRegion(id, r),
			))
		}
	}

	if err := merged.Save(oursPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "merged budget file written to %s\n", oursPath)
	return nil
}

func allRuleIDs(stores ...*region.Store) []model.RuleID {
	seen := map[string]model.RuleID{}
	for _, s := range stores {
		for _, id := range s.RuleIDs() {
			seen[id.String()] = id
		}
	}
	out := make([]model.RuleID, 0, len(seen))
	for _, id := range seen {
		out = append(out, id)
	}
	return out
}

func allRegions(id model.RuleID, stores ...*region.Store) []model.RegionPath {
	seen := map[string]model.RegionPath{}
	for _, s := range stores {
		for _, r := range s.Tree(id).ConfiguredRegions() {
			seen[r.String()] = r
		}
	}
	out := make([]model.RegionPath, 0, len(seen))
	for _, r := range seen {
		out = append(out, r)
	}
	return out
}

func minCount(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
