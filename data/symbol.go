// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package data

import (
	"strings"
)

// Symbol is a ticker in the form the quote API accepts
type Symbol string

// Canonicalize converts a raw ticker into the provider's symbol form. Share
// class punctuation (BRK.B, BF-B, BF/B) and whitespace are removed and the
// result is upper-cased.
func Canonicalize(raw string) Symbol {
	builder := strings.Builder{}
	builder.Grow(len(raw))

	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		switch {
		case r >= 'A' && r <= 'Z':
			builder.WriteRune(r)
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
		}
	}

	return Symbol(builder.String())
}

func (symbol Symbol) String() string {
	return string(symbol)
}
