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
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/imbue-ai/ratchets-sub000/model"
	"github.com/imbue-ai/ratchets-sub000/tsparse"
)

// AstRule matches a tree-sitter S-expression query against a parsed
// AST, optionally post-filtering matches and selecting a named
// capture as the reported violation.
type AstRule struct {
	id          model.RuleID
	description string
	severity    model.Severity
	language    model.Language
	include     model.GlobSet
	exclude     model.GlobSet
	query       string
	postFilter  PostFilter
}

var _ Rule = (*AstRule)(nil)

func (r *AstRule) ID() model.RuleID           { return r.id }
func (r *AstRule) Description() string        { return r.description }
func (r *AstRule) Languages() []model.Language { return []model.Language{r.language} }
func (r *AstRule) Severity() model.Severity    { return r.severity }
func (r *AstRule) RequiresAST() bool           { return true }
func (r *AstRule) Language() model.Language    { return r.language }
func (r *AstRule) includeExclude() (model.GlobSet, model.GlobSet) {
	return r.include, r.exclude
}

// Execute runs the compiled query against ctx.Tree, which the engine
// supplies already parsed (a rule never re-parses the file itself),
// applies the post-filter if any, and emits one Violation per
// surviving match, selecting the @violation capture if present or the
// first capture otherwise.
func (r *AstRule) Execute(ctx ExecutionContext) ([]model.Violation, error) {
	if ctx.Tree == nil {
		return nil, fmt.Errorf("ast rule %s: no parsed tree supplied", r.id)
	}

	matches, err := ctx.Tree.Query(r.query)
	if err != nil {
		return nil, fmt.Errorf("ast rule %s: execute query: %w", r.id, err)
	}

	var violations []model.Violation
	for _, match := range matches {
		if r.postFilter != nil && !r.postFilter(match) {
			continue
		}

		node := selectViolationNode(match)
		if node == nil {
			continue
		}

		startLine, startCol := node.StartLineColumn()
		endLine, endCol := node.EndLineColumn()

		violations = append(violations, model.Violation{
			RuleID:  r.id,
			File:    ctx.Path,
			Start:   model.Position{Line: startLine, Column: startCol},
			End:     model.Position{Line: endLine, Column: endCol},
			Snippet: string(node.Text()),
			Message: r.description,
			Region:  model.RegionOfFile(ctx.Path),
		})
	}
	return violations, nil
}

func selectViolationNode(match tsparse.Match) *tsparse.Node {
	for _, c := range match.Captures {
		if c.Name == "violation" {
			return c.Node
		}
	}
	if len(match.Captures) > 0 {
		return match.Captures[0].Node
	}
	return nil
}

// astDocument is the TOML shape of an AST rule file.
type astDocument struct {
	Rule struct {
		ID          string `toml:"id"`
		Description string `toml:"description"`
		Severity    string `toml:"severity"`
	} `toml:"rule"`
	Match struct {
		Query      string   `toml:"query"`
		Language   string   `toml:"language"`
		Include    []string `toml:"include"`
		Exclude    []string `toml:"exclude"`
		PostFilter string   `toml:"post_filter"`
	} `toml:"match"`
}

// LoadASTRule parses an AST rule TOML document. patterns resolves
// "@name" include/exclude entries against the main config's
// [patterns] table; pass nil if the rule defines no such entries.
func LoadASTRule(r io.Reader, patterns map[string]model.GlobPattern) (*AstRule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewError(model.ErrorKindConfigIO, "read ast rule document", err)
	}

	var doc astDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, model.NewError(model.ErrorKindConfigParse, "parse ast rule document", err)
	}

	id, err := model.NewRuleID(doc.Rule.ID)
	if err != nil {
		return nil, err
	}

	severity := model.Severity(doc.Rule.Severity)
	if doc.Rule.Severity == "" {
		severity = model.SeverityWarning
	}
	if !severity.Valid() {
		return nil, model.NewError(model.ErrorKindConfigValidation,
			fmt.Sprintf("rule %s: invalid severity %q", id, doc.Rule.Severity), nil)
	}

	lang := model.Language(doc.Match.Language)
	if !lang.Valid() {
		return nil, model.NewError(model.ErrorKindConfigValidation,
			fmt.Sprintf("rule %s: unknown language %q", id, doc.Match.Language), nil)
	}

	if err := tsparse.ValidateQuery(lang, doc.Match.Query); err != nil {
		return nil, model.NewError(model.ErrorKindInvalidQuery,
			fmt.Sprintf("rule %s: query does not compile for %s", id, lang), err)
	}

	include, err := resolveGlobs(id, doc.Match.Include, patterns)
	if err != nil {
		return nil, err
	}
	exclude, err := resolveGlobs(id, doc.Match.Exclude, patterns)
	if err != nil {
		return nil, err
	}

	var pf PostFilter
	if doc.Match.PostFilter != "" {
		f, ok := LookupPostFilter(doc.Match.PostFilter)
		if !ok {
			return nil, model.NewError(model.ErrorKindInvalidRuleDefinition,
				fmt.Sprintf("rule %s: unknown post_filter %q", id, doc.Match.PostFilter), nil)
		}
		pf = f
	}

	return &AstRule{
		id:          id,
		description: doc.Rule.Description,
		severity:    severity,
		language:    lang,
		include:     include,
		exclude:     exclude,
		query:       doc.Match.Query,
		postFilter:  pf,
	}, nil
}

// resolveGlobs compiles each entry, resolving an "@name" entry against
// patterns instead of compiling it as a literal glob.
func resolveGlobs(id model.RuleID, entries []string, patterns map[string]model.GlobPattern) (model.GlobSet, error) {
	set := make(model.GlobSet, 0, len(entries))
	for _, entry := range entries {
		if name, ok := strings.CutPrefix(entry, "@"); ok {
			g, ok := patterns[name]
			if !ok {
				return nil, model.NewError(model.ErrorKindInvalidRuleDefinition,
					fmt.Sprintf("rule %s: unknown pattern group %q", id, name), nil)
			}
			set = append(set, g)
			continue
		}

		g, err := model.NewGlobPattern(entry)
		if err != nil {
			return nil, err
		}
		set = append(set, g)
	}
	return set, nil
}
