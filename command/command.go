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

// Package command orchestrates the core pipeline into the three
// operations check, bump, and tighten. It wires config.Config,
// registry.Registry, walk.Walker (via exec.Engine), region.Store, and
// aggregate.Aggregate into a single call each, and maps results onto
// process exit codes. Formatting and persistence of results stay with
// the caller.
package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/imbue-ai/ratchets-sub000/aggregate"
	"github.com/imbue-ai/ratchets-sub000/config"
	"github.com/imbue-ai/ratchets-sub000/exec"
	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/region"
	"github.com/imbue-ai/ratchets-sub000/registry"
	"github.com/imbue-ai/ratchets-sub000/walk"
)

// Process exit codes.
const (
	ExitSuccess          = 0
	ExitBudgetExceeded   = 1
	ExitConfigOrIOError  = 2
	ExitConfigParseError = 3
)

// Inputs bundles what every command needs to build its pipeline.
type Inputs struct {
	Config     *config.Config
	CountsPath string
	RulesDir   string
	Roots      []string
	WalkOpts   walk.Options
}

// CheckResult is check's outcome: the aggregation plus the exit code
// the caller should use.
type CheckResult struct {
	Aggregation   aggregate.Result
	FilesChecked  int
	RulesExecuted int
	ExitCode      int
}

// Check runs the full pipeline: load config + counts, build the
// registry, walk files, execute every applicable rule, aggregate, and
// decide pass/fail.
func Check(ctx context.Context, in Inputs) (*CheckResult, error) {
	store, err := region.Load(in.CountsPath)
	if err != nil {
		return nil, err
	}

	reg, err := registry.Build(in.Config, in.RulesDir)
	if err != nil {
		return nil, err
	}

	result, err := runEngine(ctx, reg, in)
	if err != nil {
		return nil, err
	}

	agg := aggregate.Aggregate(result.Violations, store)

	exitCode := ExitSuccess
	if !agg.Passed {
		exitCode = ExitBudgetExceeded
	}

	return &CheckResult{
		Aggregation:   agg,
		FilesChecked:  result.FilesChecked,
		RulesExecuted: result.RulesExecuted,
		ExitCode:      exitCode,
	}, nil
}

func runEngine(ctx context.Context, reg *registry.Registry, in Inputs) (*exec.Result, error) {
	engine := exec.New(reg)
	return engine.Run(ctx, in.Roots, in.WalkOpts)
}

// BumpOptions configures a Bump call.
type BumpOptions struct {
	RuleID model.RuleID
	Region model.RegionPath
	// Count is the requested new budget. Auto is true when the caller
	// omitted --count, meaning "use the current actual count". With
	// All set, Auto and Count are ignored and the auto semantics apply.
	Count int
	Auto  bool
	// All applies the auto semantics to every enabled rule at the
	// root region instead of a single rule/region, including rules
	// with no current violations.
	All bool
}

// Bump raises one rule's budget (or, with All, every enabled rule's
// root budget) to cover the current actual count. The new budget must
// be >= the actual count; Bump rejects a supplied --count that would
// lower it and leaves the counts file untouched.
func Bump(ctx context.Context, in Inputs, opts BumpOptions) (*region.Store, error) {
	store, err := region.Load(in.CountsPath)
	if err != nil {
		return nil, err
	}
	clone := store.Clone()

	reg, err := registry.Build(in.Config, in.RulesDir)
	if err != nil {
		return nil, err
	}

	if opts.All {
		for _, id := range reg.RuleIDs() {
			if err := bumpOne(ctx, reg, in, clone, id, model.Root(), 0, true); err != nil {
				return nil, err
			}
		}
		return clone, clone.Save(in.CountsPath)
	}

	if err := bumpOne(ctx, reg, in, clone, opts.RuleID, opts.Region, opts.Count, opts.Auto); err != nil {
		return nil, err
	}
	return clone, clone.Save(in.CountsPath)
}

// bumpOne re-runs execution restricted to id (via a temporary one-rule
// registry) to discover the current actual count in target, validates
// the requested budget against it, and applies the new budget to
// store.
func bumpOne(ctx context.Context, reg *registry.Registry, in Inputs, store *region.Store, id model.RuleID, target model.RegionPath, count int, auto bool) error {
	solo, ok := reg.Only(id)
	if !ok {
		return model.NewError(model.ErrorKindConfigValidation, fmt.Sprintf("unknown rule %q", id), nil)
	}

	execResult, err := runEngine(ctx, solo, in)
	if err != nil {
		return err
	}

	// Configure target before counting so violations under it bucket
	// against it rather than an ancestor; a deeper already-configured
	// region still keeps its own violations.
	store.SetCount(id, target, store.BudgetByRegion(id, target))

	actual := 0
	for _, v := range execResult.Violations {
		if store.FindConfiguredRegion(id, v.File) == target {
			actual++
		}
	}

	newBudget := count
	if auto {
		newBudget = actual
	} else if count < actual {
		return model.NewError(model.ErrorKindConfigValidation,
			fmt.Sprintf("rule %s: requested budget %d is below current actual count %d", id, count, actual), nil)
	}

	store.SetCount(id, target, newBudget)
	return nil
}

// TightenOptions configures a Tighten call. HasRule / HasRegion false
// means "every rule" / "every region" respectively; when set, only the
// pairs matching RuleID / Region are considered.
type TightenOptions struct {
	RuleID    model.RuleID
	HasRule   bool
	Region    model.RegionPath
	HasRegion bool
}

// TightenOffender describes a (rule, region) that blocked a tighten
// because it is currently over budget.
type TightenOffender struct {
	RuleID      model.RuleID
	Region      model.RegionPath
	ActualCount int
	Budget      int
}

// TightenBlockedError is returned when one or more buckets are over
// budget; tighten refuses to run at all in that case and the store is
// left unchanged.
type TightenBlockedError struct {
	Offenders []TightenOffender
}

func (e *TightenBlockedError) Error() string {
	return fmt.Sprintf("cannot tighten: %d rule/region pair(s) are over budget", len(e.Offenders))
}

// Tighten runs a full check, then lowers every configured (rule,
// region) budget down to its actual count, including regions with zero
// current violations. If any configured pair is currently over budget,
// Tighten makes no changes at all and returns a *TightenBlockedError
// listing every offender.
func Tighten(ctx context.Context, in Inputs, opts TightenOptions) (*region.Store, error) {
	checkResult, err := Check(ctx, in)
	if err != nil {
		return nil, err
	}

	store, err := region.Load(in.CountsPath)
	if err != nil {
		return nil, err
	}

	type key struct {
		ruleID model.RuleID
		region model.RegionPath
	}

	// The candidate set is the union of every (rule, region) the check
	// actually observed violations for, however small, plus every
	// already-configured region. Scoping the walk to store.RuleIDs()
	// alone would silently skip a rule that currently has violations
	// but has never been written to the counts file (its implicit
	// budget of 0 would never be compared against its actual count),
	// letting a tighten succeed while that rule is over budget.
	candidates := map[key]TightenOffender{}
	for _, status := range checkResult.Aggregation.Statuses {
		candidates[key{status.RuleID, status.Region}] = TightenOffender{
			RuleID:      status.RuleID,
			Region:      status.Region,
			ActualCount: status.ActualCount,
			Budget:      status.Budget,
		}
	}
	for _, id := range store.RuleIDs() {
		tree := store.Tree(id)
		for _, r := range tree.ConfiguredRegions() {
			k := key{id, r}
			if _, ok := candidates[k]; ok {
				continue
			}
			budget, _ := tree.Count(r)
			candidates[k] = TightenOffender{RuleID: id, Region: r, ActualCount: 0, Budget: budget}
		}
	}

	var offenders []TightenOffender
	var toLower []TightenOffender
	for k, c := range candidates {
		if opts.HasRule && k.ruleID != opts.RuleID {
			continue
		}
		if opts.HasRegion && k.region != opts.Region {
			continue
		}

		switch {
		case c.ActualCount > c.Budget:
			offenders = append(offenders, c)
		case c.ActualCount < c.Budget:
			toLower = append(toLower, c)
		}
	}

	if len(offenders) > 0 {
		sort.Slice(offenders, func(i, j int) bool {
			if offenders[i].RuleID != offenders[j].RuleID {
				return offenders[i].RuleID.Less(offenders[j].RuleID)
			}
			return offenders[i].Region.Less(offenders[j].Region)
		})
		return nil, &TightenBlockedError{Offenders: offenders}
	}

	clone := store.Clone()
	for _, o := range toLower {
		clone.SetCount(o.RuleID, o.Region, o.ActualCount)
	}

	return clone, clone.Save(in.CountsPath)
}
