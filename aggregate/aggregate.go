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

// Package aggregate groups a flat slice of Violations by (rule,
// effective region), resolves the effective region through a
// region.Store, compares the actual count against the stored budget,
// and rolls everything up into a Result.
package aggregate

import (
	"sort"

	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/region"
)

// Status is the per-(rule, region) outcome of comparing the actual
// violation count against its budget.
type Status struct {
	RuleID      model.RuleID
	Region      model.RegionPath
	ActualCount int
	Budget      int
	Passed      bool
	Violations  []model.Violation
}

// Result is the outcome of an aggregation run.
type Result struct {
	Statuses             []Status
	Passed               bool
	TotalViolations      int
	ViolationsOverBudget int
}

type bucketKey struct {
	ruleID model.RuleID
	region model.RegionPath
}

// Aggregate groups violations by (rule, effective region) as defined
// by store.FindConfiguredRegion, compares each bucket's size against
// store.BudgetByRegion, and returns the rolled-up Result.
//
// A violation's Region field may already carry the effective region
// if the engine's resolver rewrote it; either way this re-derives it
// from store so the two paths necessarily agree.
func Aggregate(violations []model.Violation, store *region.Store) Result {
	buckets := map[bucketKey][]model.Violation{}

	for _, v := range violations {
		effective := store.FindConfiguredRegion(v.RuleID, v.File)
		v.Region = effective

		key := bucketKey{ruleID: v.RuleID, region: effective}
		buckets[key] = append(buckets[key], v)
	}

	keys := make([]bucketKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ruleID != keys[j].ruleID {
			return keys[i].ruleID.Less(keys[j].ruleID)
		}
		return keys[i].region.Less(keys[j].region)
	})

	result := Result{Passed: true}
	for _, key := range keys {
		bucket := buckets[key]
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].File != bucket[j].File {
				return bucket[i].File < bucket[j].File
			}
			return bucket[i].Start.Line < bucket[j].Start.Line
		})

		budget := store.BudgetByRegion(key.ruleID, key.region)
		actual := len(bucket)
		passed := actual <= budget

		result.Statuses = append(result.Statuses, Status{
			RuleID:      key.ruleID,
			Region:      key.region,
			ActualCount: actual,
			Budget:      budget,
			Passed:      passed,
			Violations:  bucket,
		})

		result.TotalViolations += actual
		if !passed {
			result.Passed = false
			result.ViolationsOverBudget += actual - budget
		}
	}

	return result
}
