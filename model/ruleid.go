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

package model

import (
	"fmt"
	"regexp"
)

var ruleIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// RuleID is a validated newtype over a non-empty ASCII string matching
// [A-Za-z0-9_-]+. Equality and hashing (as a map key) are case-sensitive
// exact matches on the normalised string.
type RuleID struct {
	value string
}

// NewRuleID validates id and returns a RuleID, or ErrInvalidRuleID.
func NewRuleID(id string) (RuleID, error) {
	if !ruleIDPattern.MatchString(id) {
		return RuleID{}, NewError(ErrorKindInvalidRuleID,
			fmt.Sprintf("invalid rule id %q: must match [A-Za-z0-9_-]+", id), nil)
	}
	return RuleID{value: id}, nil
}

// MustRuleID is NewRuleID for callers that already know id is valid,
// such as compiled-in builtin rules. It panics on failure.
func MustRuleID(id string) RuleID {
	r, err := NewRuleID(id)
	if err != nil {
		panic(err)
	}
	return r
}

func (r RuleID) String() string {
	return r.value
}

func (r RuleID) Less(other RuleID) bool {
	return r.value < other.value
}
