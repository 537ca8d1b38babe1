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

// Package walk implements the file walker: recursive traversal
// honouring a .gitignore cascade, include/exclude globs, an
// unconditional .git/ exclusion, and language detection.
package walk

import (
	"io/fs"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/imbue-ai/ratchets-sub000/internal/ratchetlog"
	"github.com/imbue-ai/ratchets-sub000/langdetect"
	"github.com/imbue-ai/ratchets-sub000/model"
)

// SkipReason explains why a candidate path was not yielded, for the
// walker's verbose diagnostic mode.
type SkipReason string

const (
	ExcludedByPattern  SkipReason = "excluded_by_pattern"
	NoMatchingLanguage SkipReason = "no_matching_language"
	NotAFile           SkipReason = "not_a_file"
)

// Entry is a file the walker yields for execution.
type Entry struct {
	Path     string
	Language model.Language
}

// SkipRecord is a diagnostic record emitted in verbose mode for a path
// that was not yielded.
type SkipRecord struct {
	Path   string
	Reason SkipReason
}

// Options configures a single Walk call.
type Options struct {
	Include []model.GlobPattern
	Exclude []model.GlobPattern
	Verbose bool
}

// gitDirExclude is enforced unconditionally in addition to any
// caller-supplied exclude set.
const gitDirExclude = "**/.git/**"

// Walker traverses a set of root paths, yielding Entry values for
// files that pass the gitignore cascade, the include/exclude glob
// sets, and language detection.
type Walker struct {
	detector *langdetect.Detector
}

// New builds a Walker using the default Detector.
func New() *Walker {
	return &Walker{detector: langdetect.New()}
}

// Walk traverses roots and invokes yield for every matching Entry, and
// (if opts.Verbose) skip for every rejected candidate. A path that
// cannot be read is logged as a warning and skipped; the walk goes on
// and Walk returns nil.
func (w *Walker) Walk(roots []string, opts Options, yield func(Entry), skip func(SkipRecord)) error {
	exclude := append(append([]model.GlobPattern{}, opts.Exclude...), mustGlob(gitDirExclude))

	for _, root := range roots {
		cascade := newIgnoreCascade(root)

		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				ratchetlog.Logger().Warn().Err(err).Str("path", path).Msg("walk: skipping unreadable path")
				return nil
			}
			if entry.IsDir() {
				cascade.enterDir(path)
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)

			w.considerFile(path, rel, entry, cascade, exclude, opts, yield, skip)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) considerFile(
	path, rel string,
	entry fs.DirEntry,
	cascade *ignoreCascade,
	exclude []model.GlobPattern,
	opts Options,
	yield func(Entry),
	skip func(SkipRecord),
) {
	if !isRegularFile(entry) {
		w.skip(skip, opts, path, NotAFile)
		return
	}

	if model.GlobSet(exclude).MatchAny(rel) || cascade.ignored(rel) {
		w.skip(skip, opts, path, ExcludedByPattern)
		return
	}

	if len(opts.Include) > 0 && !model.GlobSet(opts.Include).MatchAny(rel) {
		w.skip(skip, opts, path, ExcludedByPattern)
		return
	}

	lang, ok := w.detector.Detect(path)
	if !ok {
		w.skip(skip, opts, path, NoMatchingLanguage)
		return
	}

	yield(Entry{Path: path, Language: lang})
}

func (w *Walker) skip(skip func(SkipRecord), opts Options, path string, reason SkipReason) {
	if opts.Verbose && skip != nil {
		skip(SkipRecord{Path: path, Reason: reason})
	}
}

func isRegularFile(entry fs.DirEntry) bool {
	if entry.IsDir() {
		return false
	}
	// entry.Info() follows a symlink; a broken one fails here and is
	// correctly rejected rather than yielded.
	info, err := entry.Info()
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func mustGlob(pattern string) model.GlobPattern {
	g, err := model.NewGlobPattern(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// scopedIgnore is one .gitignore matcher anchored to the directory that
// declared it. dir is root-relative ("." for the walk root); patterns
// apply only to that directory's descendants and are tested relative to
// it, the way git itself scopes a nested .gitignore.
type scopedIgnore struct {
	dir     string
	matcher *gitignore.GitIgnore
}

// ignoreCascade accumulates .gitignore matchers root-to-leaf. A nearer
// .gitignore adds to (never removes from) the cascade, and a matcher
// never applies outside the subtree of the directory that declared it,
// so a sibling's patterns cannot leak across the tree.
type ignoreCascade struct {
	root   string
	scopes []scopedIgnore
}

func newIgnoreCascade(root string) *ignoreCascade {
	return &ignoreCascade{root: root}
}

func (c *ignoreCascade) enterDir(dir string) {
	m, err := gitignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return
	}
	rel, err := filepath.Rel(c.root, dir)
	if err != nil {
		return
	}
	c.scopes = append(c.scopes, scopedIgnore{dir: filepath.ToSlash(rel), matcher: m})
}

func (c *ignoreCascade) ignored(relPath string) bool {
	if strings.HasPrefix(relPath, ".git/") || relPath == ".git" {
		return true
	}
	for _, s := range c.scopes {
		sub := relPath
		if s.dir != "." {
			prefix := s.dir + "/"
			if !strings.HasPrefix(relPath, prefix) {
				continue
			}
			sub = relPath[len(prefix):]
		}
		if s.matcher.MatchesPath(sub) {
			return true
		}
	}
	return false
}
