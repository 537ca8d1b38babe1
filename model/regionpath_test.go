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

import "testing"

func TestNewRegionPathNormalisation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "."},
		{".", "."},
		{"/", "."},
		{"./src", "src"},
		{"src/", "src"},
		{"src//", "src"},
		{`src\legacy`, "src/legacy"},
		{"src/legacy/parser", "src/legacy/parser"},
	}

	for _, c := range cases {
		got := NewRegionPath(c.in).String()
		if got != c.want {
			t.Errorf("NewRegionPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRegionPathRoundTrip(t *testing.T) {
	inputs := []string{"", ".", "/", "src/legacy", `a\b\c`, "./a/b/"}
	for _, in := range inputs {
		once := NewRegionPath(in).String()
		twice := NewRegionPath(once).String()
		if once != twice {
			t.Errorf("normalise not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestRegionPathAncestors(t *testing.T) {
	got := NewRegionPath("src/legacy/parser").Ancestors()
	want := []string{"src/legacy/parser", "src/legacy", "src", "."}

	if len(got) != len(want) {
		t.Fatalf("Ancestors() returned %d entries, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].String() != w {
			t.Errorf("Ancestors()[%d] = %q, want %q", i, got[i].String(), w)
		}
	}
}

func TestRegionOfFile(t *testing.T) {
	if got := RegionOfFile("src/main.rs").String(); got != "src" {
		t.Errorf("RegionOfFile(src/main.rs) = %q, want src", got)
	}
	if got := RegionOfFile("main.rs").String(); got != "." {
		t.Errorf("RegionOfFile(main.rs) = %q, want .", got)
	}
}
