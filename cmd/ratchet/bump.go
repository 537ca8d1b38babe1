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

	"github.com/imbue-ai/ratchets-sub000/command"
	"github.com/imbue-ai/ratchets-sub000/model"
)

var (
	bumpRegion string
	bumpCount  int
	bumpAll    bool
)

var bumpCmd = &cobra.Command{
	Use:   "bump [rule]",
	Short: "Raise a budget to cover the current actual violation count",
	Long: `bump raises one rule's budget at a region (or, with --all, every
enabled rule's root budget) to cover the current actual count. Omitting
--count auto-detects it by re-running the rule; a supplied --count below
the current actual count is rejected and the budget file is left
unchanged.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBump,
}

func init() {
	addWalkFlags(bumpCmd)
	bumpCmd.Flags().StringVar(&bumpRegion, "region", ".", "region to bump (defaults to the root)")
	bumpCmd.Flags().IntVar(&bumpCount, "count", -1, "new budget; omit to auto-detect the current actual count")
	bumpCmd.Flags().BoolVar(&bumpAll, "all", false, "bump every enabled rule's root budget to its current actual count")
	bumpCmd.MarkFlagsMutuallyExclusive("region", "all")
	rootCmd.AddCommand(bumpCmd)
}

func runBump(cmd *cobra.Command, args []string) error {
	in, err := buildInputs(nil)
	if err != nil {
		return err
	}

	opts := command.BumpOptions{All: bumpAll}

	if !bumpAll {
		if len(args) != 1 {
			return fmt.Errorf("bump requires a rule id unless --all is given")
		}
		id, err := model.NewRuleID(args[0])
		if err != nil {
			return err
		}
		opts.RuleID = id
		opts.Region = model.NewRegionPath(bumpRegion)
		opts.Auto = bumpCount < 0
		if !opts.Auto {
			opts.Count = bumpCount
		}
	}

	store, err := command.Bump(cmd.Context(), in, opts)
	if err != nil {
		return err
	}

	if bumpAll {
		fmt.Fprintln(cmd.OutOrStdout(), "bumped every enabled rule's root budget")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "bumped %s at %s to %d\n",
			opts.RuleID, opts.Region, store.BudgetByRegion(opts.RuleID, opts.Region))
	}
	return nil
}
