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
package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvsnapshot/data"
	"github.com/rs/zerolog"
)

// ConstituentFile reads the index constituents from a CSV file with the same
// header as the wikipedia table
type ConstituentFile struct {
	Path string
}

func (file *ConstituentFile) Constituents(ctx context.Context) ([]*data.Constituent, error) {
	fh, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer fh.Close()

	constituents := []*data.Constituent{}
	if err := gocsv.UnmarshalFile(fh, &constituents); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrFetch, ErrMalformedPayload, err)
	}

	zerolog.Ctx(ctx).Info().Str("FileName", file.Path).Int("NumConstituents", len(constituents)).Msg("read constituents from file")

	return constituents, nil
}
