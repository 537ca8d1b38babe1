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
	"errors"

	"github.com/spf13/cobra"

	"github.com/imbue-ai/ratchets-sub000/command"
	"github.com/imbue-ai/ratchets-sub000/model"
)

var (
	colorMode  string
	configPath string
	countsPath string
	rulesDir   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "ratchet",
	Short:   "Progressive lint enforcement: budgets that only ever tighten",
	Version: "0.1.0",
	// main owns the single "Error: <message>" stderr line and the exit
	// code mapping; cobra's own reporting would duplicate it.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "auto|always|never; accepted but not applied: log coloring follows whether stderr is a terminal")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "ratchet.toml", "path to ratchet.toml")
	rootCmd.PersistentFlags().StringVar(&countsPath, "counts", "ratchet-counts.toml", "path to the budget file")
	rootCmd.PersistentFlags().StringVar(&rulesDir, "rules", "ratchets", "directory of custom rule definitions (regex/*.toml, ast/*.toml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log every skipped file with its skip reason")
}

// exitCodeFor maps a returned error onto the process exit codes. A
// nil error never reaches here; main only calls this once Execute()
// has already returned non-nil.
func exitCodeFor(err error) int {
	var blocked *command.TightenBlockedError
	if errors.As(err, &blocked) {
		return command.ExitBudgetExceeded
	}

	var modelErr *model.Error
	if errors.As(err, &modelErr) {
		if modelErr.Kind == model.ErrorKindConfigParse {
			return command.ExitConfigParseError
		}
	}

	return command.ExitConfigOrIOError
}
