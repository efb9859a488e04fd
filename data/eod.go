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
	"time"
)

// PriceBar is a single daily candle for a symbol
type PriceBar struct {
	Date   time.Time
	Symbol Symbol
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// FromEpochMillis converts a provider timestamp to a UTC calendar time
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
