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

package langdetect

import (
	"testing"

	"github.com/imbue-ai/ratchets-sub000/model"
)

func TestDetect(t *testing.T) {
	d := New()

	cases := []struct {
		path string
		want model.Language
		ok   bool
	}{
		{"main.go", model.Go, true},
		{"src/lib.rs", model.Rust, true},
		{"app.ts", model.TypeScript, true},
		{"app.tsx", model.TypeScript, true},
		{"index.js", model.JavaScript, true},
		{"script.py", model.Python, true},
		{"README.md", "", false},
		{"binary.exe", "", false},
	}

	for _, c := range cases {
		got, ok := d.Detect(c.path)
		if ok != c.ok {
			t.Errorf("Detect(%q) ok = %v, want %v", c.path, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("Detect(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}
