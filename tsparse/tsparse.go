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

// Package tsparse wraps tree-sitter parsing and query execution behind
// a small, thread-safe surface: a per-language Cache hands out parsers,
// Parse produces a Tree, and Tree.Query runs a compiled S-expression
// query and returns its named captures. Node pairs a tree-sitter node
// with the source bytes it was parsed from so callers can slice out
// exact byte ranges.
package tsparse

import (
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tsgo "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tsjavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tspython "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tsrust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/imbue-ai/ratchets-sub000/model"
)

// languageFactory returns the raw tree-sitter-language for lang, or
// nil if unsupported.
func languageFactory(lang model.Language) *sitter.Language {
	switch lang {
	case model.Go:
		return sitter.NewLanguage(tsgo.Language())
	case model.Rust:
		return sitter.NewLanguage(tsrust.Language())
	case model.TypeScript:
		return sitter.NewLanguage(tstypescript.LanguageTypescript())
	case model.JavaScript:
		return sitter.NewLanguage(tsjavascript.Language())
	case model.Python:
		return sitter.NewLanguage(tspython.Language())
	default:
		return nil
	}
}

// Cache is a process-wide, thread-safe repository of tree-sitter
// parsers keyed by Language. It hands out a freshly-reset parser per
// call from a sync.Pool rather than instantiating one per file;
// correctness never depends on which parser a call receives.
type Cache struct {
	mu    sync.Mutex
	langs map[model.Language]*sitter.Language
	pools map[model.Language]*sync.Pool
}

// NewCache builds an empty Cache; languages are resolved lazily on
// first use so unsupported-language lookups fail at Parse time, not at
// construction.
func NewCache() *Cache {
	return &Cache{
		langs: map[model.Language]*sitter.Language{},
		pools: map[model.Language]*sync.Pool{},
	}
}

func (c *Cache) poolFor(lang model.Language) (*sync.Pool, *sitter.Language, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pool, ok := c.pools[lang]; ok {
		return pool, c.langs[lang], nil
	}

	sl := languageFactory(lang)
	if sl == nil {
		return nil, nil, fmt.Errorf("tsparse: unsupported language %q", lang)
	}

	pool := &sync.Pool{
		New: func() any {
			p := sitter.NewParser()
			if err := p.SetLanguage(sl); err != nil {
				// SetLanguage only fails on an ABI mismatch between the
				// core library and a grammar binding; a misconfigured
				// build, not a runtime condition callers can recover
				// from file to file.
				panic(fmt.Sprintf("tsparse: set language %s: %v", lang, err))
			}
			return p
		},
	}

	c.langs[lang] = sl
	c.pools[lang] = pool
	return pool, sl, nil
}

// Parse parses src as lang and returns the resulting Tree. The parser
// used internally is returned to the pool before Parse returns, so the
// returned Tree owns its own lifetime independent of the Cache.
func (c *Cache) Parse(lang model.Language, src []byte) (*Tree, error) {
	pool, sl, err := c.poolFor(lang)
	if err != nil {
		return nil, err
	}

	parser := pool.Get().(*sitter.Parser)
	defer pool.Put(parser)

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("tsparse: parse failed for language %s", lang)
	}

	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("tsparse: syntax error parsing %s source", lang)
	}

	return &Tree{tree: tree, root: root, src: src, lang: sl, langTag: lang}, nil
}

// Tree wraps a parsed tree-sitter tree together with the source bytes
// it was parsed from and the Language it belongs to, so a query can be
// compiled and byte ranges sliced without the caller threading src
// through every call.
type Tree struct {
	tree    *sitter.Tree
	root    *sitter.Node
	src     []byte
	lang    *sitter.Language
	langTag model.Language
}

// Root returns the wrapped root Node.
func (t *Tree) Root() *Node {
	return &Node{node: t.root, src: t.src}
}

// Language returns the Language this tree was parsed as.
func (t *Tree) Language() model.Language {
	return t.langTag
}

// Close releases the underlying tree-sitter tree. Safe to call once a
// Tree is no longer needed; a nil or already-closed Tree is a no-op.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Capture is one named capture from a single query match.
type Capture struct {
	Name string
	Node *Node
}

// Match is the set of captures produced by one query match.
type Match struct {
	Captures []Capture
}

// Query compiles queryString against the tree's language and executes
// it over the root node, returning every match in source order.
func (t *Tree) Query(queryString string) ([]Match, error) {
	query, queryErr := sitter.NewQuery(t.lang, queryString)
	if queryErr != nil {
		return nil, fmt.Errorf("compile query: %w", queryErr)
	}
	defer query.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	predicates, err := compilePredicates(queryString)
	if err != nil {
		return nil, err
	}

	names := query.CaptureNames()
	matches := cursor.Matches(query, t.root, t.src)

	var results []Match
	for {
		m := matches.Next()
		if m == nil {
			break
		}

		match := Match{Captures: make([]Capture, 0, len(m.Captures))}
		for i := range m.Captures {
			capture := m.Captures[i]
			name := ""
			if int(capture.Index) < len(names) {
				name = names[capture.Index]
			}
			match.Captures = append(match.Captures, Capture{
				Name: name,
				Node: &Node{node: &capture.Node, src: t.src},
			})
		}

		if !satisfies(predicates, match) {
			continue
		}
		results = append(results, match)
	}
	return results, nil
}

// ValidateQuery compiles queryString against lang without executing
// it, so AstRule construction can reject a query that does not
// compile against the language's grammar.
func ValidateQuery(lang model.Language, queryString string) error {
	sl := languageFactory(lang)
	if sl == nil {
		return fmt.Errorf("tsparse: unsupported language %q", lang)
	}
	query, queryErr := sitter.NewQuery(sl, queryString)
	if queryErr != nil {
		return queryErr
	}
	query.Close()

	if _, err := compilePredicates(queryString); err != nil {
		return err
	}
	return nil
}
