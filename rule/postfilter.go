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

package rule

import (
	"strings"

	"github.com/imbue-ai/ratchets-sub000/tsparse"
)

// PostFilter decides, given a single query Match, whether that match
// should be kept (true) or discarded (false). Tree-sitter queries
// cannot express every predicate ("text does not end with..."), so a
// closed, compiled-in catalogue of named filters stands in for inline
// rule code, which would open a sandboxing problem.
type PostFilter func(match tsparse.Match) bool

// postFilters is the closed set of post-filters rules may reference by
// name. Extend it by adding an entry here; rule TOML can never define
// one inline.
var postFilters = map[string]PostFilter{
	"class_name_not_exception": classNameNotException,
	"except_clause_is_bare":    exceptClauseIsBare,
	"block_is_empty":           blockIsEmpty,
}

// LookupPostFilter returns the named filter, or false if name is not
// in the closed catalogue.
func LookupPostFilter(name string) (PostFilter, bool) {
	f, ok := postFilters[name]
	return f, ok
}

// exceptClauseIsBare keeps only matches whose @violation capture is an
// except clause with no exception type, i.e. "except" directly followed
// by ":". The python grammar puts no field on the optional type
// expression, so a query alone cannot distinguish bare from typed.
func exceptClauseIsBare(match tsparse.Match) bool {
	for _, c := range match.Captures {
		if c.Name != "violation" {
			continue
		}
		rest := strings.TrimPrefix(string(c.Node.Text()), "except")
		rest = strings.TrimLeft(rest, " \t")
		return strings.HasPrefix(rest, ":")
	}
	return false
}

// blockIsEmpty keeps only matches whose @block capture contains no
// statements at all.
func blockIsEmpty(match tsparse.Match) bool {
	for _, c := range match.Captures {
		if c.Name == "block" {
			return c.Node.NamedChildCount() == 0
		}
	}
	return false
}

// classNameNotException rejects matches whose @class_name capture text
// ends with "Exception" or "Error".
func classNameNotException(match tsparse.Match) bool {
	for _, c := range match.Captures {
		if c.Name != "class_name" {
			continue
		}
		text := string(c.Node.Text())
		if strings.HasSuffix(text, "Exception") || strings.HasSuffix(text, "Error") {
			return false
		}
	}
	return true
}
