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

// Package exec implements the parallel execution engine: one task per
// file, running every applicable rule against it, with bounded
// concurrency via an ants worker pool and errgroup-based cancellation
// propagation.
package exec

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/imbue-ai/ratchets-sub000/internal/ratchetlog"
	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/registry"
	"github.com/imbue-ai/ratchets-sub000/rule"
	"github.com/imbue-ai/ratchets-sub000/tsparse"
	"github.com/imbue-ai/ratchets-sub000/walk"
)

// Result is the outcome of a single Run: every violation produced by
// every rule over every file, plus the counters the summary line
// ("N files checked, M rules executed") is built from.
type Result struct {
	Violations    []model.Violation
	FilesChecked  int
	RulesExecuted int
}

// Engine fans file analysis out across a bounded worker pool.
type Engine struct {
	registry *registry.Registry
	parser   *tsparse.Cache
	walker   *walk.Walker
	poolSize int
}

// Option configures an Engine constructed by New.
type Option func(*Engine)

// WithPoolSize overrides the default worker count.
func WithPoolSize(n int) Option {
	return func(e *Engine) { e.poolSize = n }
}

// sharedParsers is the process-wide parser cache every Engine uses.
var sharedParsers = tsparse.NewCache()

// New builds an Engine over reg. Rules requiring an AST share one
// process-wide tsparse.Cache.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		parser:   sharedParsers,
		walker:   walk.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run walks roots, then executes every applicable rule against every
// yielded file concurrently. Per-file failures (unreadable content,
// unparsable AST, a rule erroring mid-query) are logged and isolated
// to that file; only walk and pool setup failures abort the run.
func (e *Engine) Run(ctx context.Context, roots []string, opts walk.Options) (*Result, error) {
	var entries []walk.Entry
	if err := e.walker.Walk(roots, opts, func(entry walk.Entry) {
		entries = append(entries, entry)
	}, func(rec walk.SkipRecord) {
		ratchetlog.Logger().Debug().Str("path", rec.Path).Str("reason", string(rec.Reason)).Msg("walk: skipped")
	}); err != nil {
		return nil, err
	}

	pool, err := newWorkerPool(e.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	group, groupCtx := errgroup.WithContext(ctx)

	var (
		mu            sync.Mutex
		violations    []model.Violation
		rulesExecuted int
	)

	var wg sync.WaitGroup
	wg.Add(len(entries))

	for _, entry := range entries {
		entry := entry

		submitErr := pool.Submit(func() {
			group.Go(func() error {
				defer wg.Done()

				if groupCtx.Err() != nil {
					return nil
				}

				fileViolations, executed := e.runFile(entry)

				mu.Lock()
				violations = append(violations, fileViolations...)
				rulesExecuted += executed
				mu.Unlock()

				return nil
			})
		})
		if submitErr != nil {
			wg.Done()
			return nil, submitErr
		}
	}

	wg.Wait()
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Violations:    violations,
		FilesChecked:  len(entries),
		RulesExecuted: rulesExecuted,
	}, nil
}

// runFile loads the file once, runs every applicable rule against it
// (parsing an AST at most once per language even if multiple AST rules
// share it), and returns the violations produced plus how many rules
// actually ran.
func (e *Engine) runFile(entry walk.Entry) ([]model.Violation, int) {
	content, err := readFile(entry.Path)
	if err != nil {
		ratchetlog.Logger().Warn().Err(err).Str("path", entry.Path).Msg("exec: treating unreadable file as empty")
		content = nil
	}

	var tree *tsparse.Tree
	astFailed := false
	defer func() {
		if tree != nil {
			tree.Close()
		}
	}()

	var violations []model.Violation
	executed := 0

	for _, r := range e.registry.Rules() {
		if !rule.ApplicableTo(r, entry.Path, entry.Language, true) {
			continue
		}

		ctx := rule.ExecutionContext{Path: entry.Path, Content: content}

		if r.RequiresAST() {
			if r.Language() != entry.Language {
				continue
			}
			if astFailed {
				continue
			}
			if tree == nil {
				tree, err = e.parser.Parse(r.Language(), content)
				if err != nil {
					ratchetlog.Logger().Warn().Err(err).Str("path", entry.Path).Msg("exec: skipping unparsable file")
					astFailed = true
					continue
				}
			}
			ctx.Tree = tree
		}

		fileViolations, err := r.Execute(ctx)
		if err != nil {
			ratchetlog.Logger().Warn().Err(err).
				Str("path", entry.Path).
				Str("rule", r.ID().String()).
				Msg("exec: rule failed, treating as zero violations for this file")
			continue
		}
		violations = append(violations, fileViolations...)
		executed++
	}

	return violations, executed
}
