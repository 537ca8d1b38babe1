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

var tightenRegion string

var tightenCmd = &cobra.Command{
	Use:   "tighten [rule]",
	Short: "Lower every configured budget down to its current actual count",
	Long: `tighten lowers every configured (rule, region) budget down to its
current actual violation count, including regions with zero current
violations. If any configured pair is currently over budget, tighten
makes no changes at all and reports every offender.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTighten,
}

func init() {
	addWalkFlags(tightenCmd)
	tightenCmd.Flags().StringVar(&tightenRegion, "region", "", "restrict tightening to this region")
	rootCmd.AddCommand(tightenCmd)
}

func runTighten(cmd *cobra.Command, args []string) error {
	in, err := buildInputs(nil)
	if err != nil {
		return err
	}

	var opts command.TightenOptions
	if len(args) == 1 {
		id, err := model.NewRuleID(args[0])
		if err != nil {
			return err
		}
		opts.RuleID = id
		opts.HasRule = true
	}
	if tightenRegion != "" {
		opts.Region = model.NewRegionPath(tightenRegion)
		opts.HasRegion = true
	}

	_, err = command.Tighten(cmd.Context(), in, opts)
	if err != nil {
		if blocked, ok := err.(*command.TightenBlockedError); ok {
			for _, o := range blocked.Offenders {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s at %s: %d over budget %d\n",
					o.RuleID, o.Region, o.ActualCount, o.Budget)
			}
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "budgets tightened to current actual counts")
	return nil
}
