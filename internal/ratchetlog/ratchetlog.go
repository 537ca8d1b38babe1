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

// Package ratchetlog provides the process-wide structured logger,
// console-formatted in a terminal and newline-delimited JSON otherwise,
// the same split tally and the bearer reference tooling in this corpus
// make on stderr between interactive and CI output.
package ratchetlog

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Logger returns the process-wide logger. First call determines
// whether stderr is a TTY and configures accordingly.
func Logger() *zerolog.Logger {
	once.Do(func() {
		var writer zerolog.ConsoleWriter
		if isatty.IsTerminal(os.Stderr.Fd()) {
			writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
			logger = zerolog.New(writer).With().Timestamp().Logger()
			return
		}
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	})
	return &logger
}
