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
	"os"

	"github.com/spf13/cobra"

	"github.com/imbue-ai/ratchets-sub000/command"
	"github.com/imbue-ai/ratchets-sub000/internal/ratchetlog"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Run every active rule and compare violation counts to their budgets",
	Long: `check walks the given paths (the current directory by default),
runs every enabled rule, and fails if any (rule, region) bucket exceeds
its budget in ratchet-counts.toml. Budgets only move down automatically
(tighten) or up explicitly (bump); check never modifies the budget
file.`,
	Args: cobra.ArbitraryArgs,
	RunE: runCheck,
}

func init() {
	addWalkFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	in, err := buildInputs(args)
	if err != nil {
		return err
	}

	result, err := command.Check(cmd.Context(), in)
	if err != nil {
		return err
	}

	log := ratchetlog.Logger()
	for _, status := range result.Aggregation.Statuses {
		if status.Passed {
			continue
		}
		log.Warn().
			Str("rule", status.RuleID.String()).
			Str("region", status.Region.String()).
			Int("actual", status.ActualCount).
			Int("budget", status.Budget).
			Msg("over budget")
	}

	if result.Aggregation.Passed {
		fmt.Fprintf(cmd.OutOrStdout(), "ratchet check passed: %d file(s), %d rule(s), %d violation(s)\n",
			result.FilesChecked, result.RulesExecuted, result.Aggregation.TotalViolations)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "ratchet check failed: %d violation(s) over budget\n",
			result.Aggregation.ViolationsOverBudget)
	}

	if result.ExitCode != command.ExitSuccess {
		os.Exit(result.ExitCode)
	}
	return nil
}
