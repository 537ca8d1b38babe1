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
	"os"

	"github.com/spf13/cobra"

	"github.com/imbue-ai/ratchets-sub000/command"
	"github.com/imbue-ai/ratchets-sub000/config"
	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/walk"
)

var (
	includePatterns []string
	excludePatterns []string
)

func addWalkFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&includePatterns, "include", nil, "only check files matching this glob (repeatable)")
	cmd.Flags().StringSliceVar(&excludePatterns, "exclude", nil, "skip files matching this glob (repeatable)")
}

// buildInputs assembles a command.Inputs from the persistent and
// per-command flags. A missing ratchet.toml is not an error: it means
// "use every built-in rule", matching config.RuleEnabled's
// nil-receiver default.
func buildInputs(roots []string) (command.Inputs, error) {
	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		return command.Inputs{}, err
	}

	includeRaw := includePatterns
	excludeRaw := excludePatterns
	if cfg != nil {
		includeRaw = append(append([]string{}, cfg.Include...), includeRaw...)
		excludeRaw = append(append([]string{}, cfg.Exclude...), excludeRaw...)
	}

	include, err := toGlobSet(includeRaw)
	if err != nil {
		return command.Inputs{}, err
	}
	exclude, err := toGlobSet(excludeRaw)
	if err != nil {
		return command.Inputs{}, err
	}

	if len(roots) == 0 {
		roots = []string{"."}
	}

	return command.Inputs{
		Config:     cfg,
		CountsPath: countsPath,
		RulesDir:   rulesDir,
		Roots:      roots,
		WalkOpts: walk.Options{
			Include: include,
			Exclude: exclude,
			Verbose: verbose,
		},
	}, nil
}

func loadConfigOrDefault(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return config.Load(path)
}

func toGlobSet(patterns []string) ([]model.GlobPattern, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make([]model.GlobPattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := model.NewGlobPattern(p)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}
