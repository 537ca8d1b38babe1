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
	"errors"
	"testing"
)

func TestNewRuleIDValid(t *testing.T) {
	for _, id := range []string{"no-todo", "no_unwrap", "Rule123", "a"} {
		if _, err := NewRuleID(id); err != nil {
			t.Errorf("NewRuleID(%q) returned unexpected error: %v", id, err)
		}
	}
}

func TestNewRuleIDInvalid(t *testing.T) {
	for _, id := range []string{"", "has space", "has.dot", "emoji🙂"} {
		_, err := NewRuleID(id)
		if err == nil {
			t.Errorf("NewRuleID(%q) expected error, got nil", id)
			continue
		}
		if !errors.Is(err, ErrInvalidRuleID) {
			t.Errorf("NewRuleID(%q) error kind = %v, want ErrInvalidRuleID", id, err)
		}
	}
}
