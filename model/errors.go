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

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a model-level failure so command-line callers can
// map it to an exit code without string matching.
type ErrorKind int

const (
	// ErrorKindUnknown is the zero value; never constructed deliberately.
	ErrorKindUnknown ErrorKind = iota
	ErrorKindConfigIO
	ErrorKindConfigParse
	ErrorKindConfigValidation
	ErrorKindInvalidRuleID
	ErrorKindInvalidRegex
	ErrorKindInvalidQuery
	ErrorKindInvalidGlob
	ErrorKindInvalidRuleDefinition
	ErrorKindBudgetExceeded
	ErrorKindIO
)

// Sentinel errors for errors.Is comparisons. Error.Unwrap exposes one of
// these so callers never need to inspect Kind directly if they only care
// about the category.
var (
	ErrConfigIO               = errors.New("config io error")
	ErrConfigParse            = errors.New("config parse error")
	ErrConfigValidation       = errors.New("config validation error")
	ErrInvalidRuleID          = errors.New("invalid rule id")
	ErrInvalidRegex           = errors.New("invalid regex")
	ErrInvalidQuery           = errors.New("invalid tree-sitter query")
	ErrInvalidGlob            = errors.New("invalid glob pattern")
	ErrInvalidRuleDefinition  = errors.New("invalid rule definition")
	ErrBudgetExceeded         = errors.New("budget exceeded")
	ErrIO                     = errors.New("io error")
)

var kindSentinel = map[ErrorKind]error{
	ErrorKindConfigIO:              ErrConfigIO,
	ErrorKindConfigParse:           ErrConfigParse,
	ErrorKindConfigValidation:      ErrConfigValidation,
	ErrorKindInvalidRuleID:         ErrInvalidRuleID,
	ErrorKindInvalidRegex:          ErrInvalidRegex,
	ErrorKindInvalidQuery:          ErrInvalidQuery,
	ErrorKindInvalidGlob:           ErrInvalidGlob,
	ErrorKindInvalidRuleDefinition: ErrInvalidRuleDefinition,
	ErrorKindBudgetExceeded:        ErrBudgetExceeded,
	ErrorKindIO:                    ErrIO,
}

// Error is a structured error carrying its Kind alongside a human message
// and an optional wrapped cause, consumed at the command exit-code boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if sentinel, ok := kindSentinel[e.Kind]; ok {
		if e.Cause != nil {
			return fmt.Errorf("%w: %w", sentinel, e.Cause)
		}
		return sentinel
	}
	return e.Cause
}

// NewError builds an *Error, optionally wrapping cause.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}
