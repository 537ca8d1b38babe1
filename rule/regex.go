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
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"github.com/imbue-ai/ratchets-sub000/model"
)

// RegexRule matches a compiled regular expression against raw file
// content, emitting one Violation per non-overlapping match in
// left-to-right order.
type RegexRule struct {
	id          model.RuleID
	description string
	severity    model.Severity
	languages   []model.Language
	include     model.GlobSet
	exclude     model.GlobSet
	pattern     *regexp.Regexp
}

var _ Rule = (*RegexRule)(nil)

func (r *RegexRule) ID() model.RuleID             { return r.id }
func (r *RegexRule) Description() string          { return r.description }
func (r *RegexRule) Languages() []model.Language   { return r.languages }
func (r *RegexRule) Severity() model.Severity      { return r.severity }
func (r *RegexRule) RequiresAST() bool             { return false }
func (r *RegexRule) Language() model.Language      { return "" }
func (r *RegexRule) includeExclude() (model.GlobSet, model.GlobSet) {
	return r.include, r.exclude
}

// Execute scans ctx.Content left to right, emitting one Violation per
// non-overlapping match.
func (r *RegexRule) Execute(ctx ExecutionContext) ([]model.Violation, error) {
	indexes := r.pattern.FindAllIndex(ctx.Content, -1)
	if indexes == nil {
		return nil, nil
	}

	lt := newLineTable(ctx.Content)
	violations := make([]model.Violation, 0, len(indexes))

	for _, idx := range indexes {
		startLine, startCol := lt.LineColumn(idx[0])
		endLine, endCol := lt.LineColumn(idx[1])

		violations = append(violations, model.Violation{
			RuleID:  r.id,
			File:    ctx.Path,
			Start:   model.Position{Line: startLine, Column: startCol},
			End:     model.Position{Line: endLine, Column: endCol},
			Snippet: string(ctx.Content[idx[0]:idx[1]]),
			Message: r.description,
			Region:  model.RegionOfFile(ctx.Path),
		})
	}
	return violations, nil
}

// regexDocument is the TOML shape of a regex rule file.
type regexDocument struct {
	Rule struct {
		ID          string `toml:"id"`
		Description string `toml:"description"`
		Severity    string `toml:"severity"`
	} `toml:"rule"`
	Match struct {
		Pattern   string   `toml:"pattern"`
		Languages []string `toml:"languages"`
		Include   []string `toml:"include"`
		Exclude   []string `toml:"exclude"`
	} `toml:"match"`
}

// LoadRegexRule parses a regex rule TOML document, compiling its
// pattern and globs and validating its id.
func LoadRegexRule(r io.Reader) (*RegexRule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewError(model.ErrorKindConfigIO, "read regex rule document", err)
	}

	var doc regexDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, model.NewError(model.ErrorKindConfigParse, "parse regex rule document", err)
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

	pattern, err := regexp.Compile(doc.Match.Pattern)
	if err != nil {
		return nil, model.NewError(model.ErrorKindInvalidRegex,
			fmt.Sprintf("rule %s: invalid pattern", id), err)
	}

	languages, err := parseLanguages(id, doc.Match.Languages)
	if err != nil {
		return nil, err
	}

	include, err := model.NewGlobSet(doc.Match.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := model.NewGlobSet(doc.Match.Exclude)
	if err != nil {
		return nil, err
	}

	return &RegexRule{
		id:          id,
		description: doc.Rule.Description,
		severity:    severity,
		languages:   languages,
		include:     include,
		exclude:     exclude,
		pattern:     pattern,
	}, nil
}

func parseLanguages(id model.RuleID, raw []string) ([]model.Language, error) {
	langs := make([]model.Language, 0, len(raw))
	for _, l := range raw {
		lang := model.Language(l)
		if !lang.Valid() {
			return nil, model.NewError(model.ErrorKindConfigValidation,
				fmt.Sprintf("rule %s: unknown language %q", id, l), nil)
		}
		langs = append(langs, lang)
	}
	return langs, nil
}
