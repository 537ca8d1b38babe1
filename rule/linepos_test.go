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

import "testing"

func TestLineColumn(t *testing.T) {
	content := []byte("abc\ndefg\nh")
	lt := newLineTable(content)

	cases := []struct {
		offset   int
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{4, 2, 1},
		{8, 2, 5},
		{9, 3, 1},
	}

	for _, c := range cases {
		line, col := lt.LineColumn(c.offset)
		if line != c.line || col != c.col {
			t.Errorf("LineColumn(%d) = (%d,%d), want (%d,%d)", c.offset, line, col, c.line, c.col)
		}
	}
}
