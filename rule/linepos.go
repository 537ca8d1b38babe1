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

import "sort"

// lineTable precomputes the byte offset of every newline in content so
// byte offsets can be converted to 1-indexed (line, column) pairs by
// binary search.
type lineTable struct {
	// newlineOffsets[i] is the byte offset of the i-th '\n' in content.
	newlineOffsets []int
}

func newLineTable(content []byte) *lineTable {
	var offsets []int
	for i, b := range content {
		if b == '\n' {
			offsets = append(offsets, i)
		}
	}
	return &lineTable{newlineOffsets: offsets}
}

// LineColumn converts a 0-indexed byte offset to a 1-indexed
// (line, column) pair.
func (lt *lineTable) LineColumn(byteOffset int) (line, column int) {
	// lineIndex is the index of the first newline at or after
	// byteOffset; that newline ends the line byteOffset sits on.
	lineIndex := sort.Search(len(lt.newlineOffsets), func(i int) bool {
		return lt.newlineOffsets[i] >= byteOffset
	})

	lineStart := 0
	if lineIndex > 0 {
		lineStart = lt.newlineOffsets[lineIndex-1] + 1
	}

	return lineIndex + 1, byteOffset - lineStart + 1
}
