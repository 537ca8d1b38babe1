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

// Package langdetect maps a file path to ratchet's closed Language enum
// using enry's linguist-derived file-type database.
package langdetect

import (
	"path/filepath"

	enry "github.com/go-enry/go-enry/v2"

	"github.com/imbue-ai/ratchets-sub000/model"
)

// enryToModel maps enry's canonical language names down to ratchet's
// closed five-language enum. Anything enry reports outside this table
// is "not detected" for ratchet's purposes and the file is skipped.
var enryToModel = map[string]model.Language{
	"Go":         model.Go,
	"Rust":       model.Rust,
	"TypeScript": model.TypeScript,
	"TSX":        model.TypeScript,
	"JavaScript": model.JavaScript,
	"JSX":        model.JavaScript,
	"Python":     model.Python,
}

// Detector is a pure, thread-safe, stateless file-type lookup. The
// zero value is ready to use; construction cost (building enry's
// internal tables) happens once in enry's own package init.
type Detector struct{}

// New returns a ready-to-use Detector.
func New() *Detector {
	return &Detector{}
}

// Detect returns the Language for path, and false if no supported
// language was recognised.
func (d *Detector) Detect(path string) (model.Language, bool) {
	base := filepath.Base(path)

	for _, candidate := range enry.GetLanguagesByFilename(base, nil, nil) {
		if lang, ok := enryToModel[candidate]; ok {
			return lang, true
		}
	}

	// An extension can be ambiguous (".rs" is both Rust and
	// RenderScript in the linguist database); any candidate inside the
	// supported set wins.
	for _, candidate := range enry.GetLanguagesByExtension(base, nil, nil) {
		if lang, ok := enryToModel[candidate]; ok {
			return lang, true
		}
	}

	return "", false
}
