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
package financials

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/lician/finsync/data"
)

var (
	ErrInvalidPair = errors.New("invalid ticker pair, expected TICKER.EXCHANGE")
)

// Pair identifies a listing by ticker and exchange code
type Pair struct {
	Ticker   string `csv:"ticker" json:"ticker"`
	Exchange string `csv:"exchange" json:"exchange"`
}

func (pair Pair) String() string {
	return data.Symbol(pair.Ticker, pair.Exchange)
}

// ParsePair parses a provider symbol such as SAP.XETRA or BRK.B.US. The
// exchange is everything after the last dot.
func ParsePair(symbol string) (Pair, error) {
	symbol = strings.TrimSpace(symbol)
	idx := strings.LastIndex(symbol, ".")
	if idx <= 0 || idx == len(symbol)-1 {
		return Pair{}, fmt.Errorf("%w: %q", ErrInvalidPair, symbol)
	}

	return Pair{
		Ticker:   strings.ToUpper(symbol[:idx]),
		Exchange: strings.ToUpper(symbol[idx+1:]),
	}, nil
}

// ParsePairs parses every symbol. Duplicates are preserved.
func ParsePairs(symbols []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(symbols))
	for _, symbol := range symbols {
		pair, err := ParsePair(symbol)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// LoadPairsCSV reads pairs from a CSV document with a ticker,exchange header
func LoadPairsCSV(r io.Reader) ([]Pair, error) {
	pairs := make([]*Pair, 0, 100)
	if err := gocsv.Unmarshal(r, &pairs); err != nil {
		return nil, err
	}

	result := make([]Pair, 0, len(pairs))
	for idx, pair := range pairs {
		ticker := strings.ToUpper(strings.TrimSpace(pair.Ticker))
		exchange := strings.ToUpper(strings.TrimSpace(pair.Exchange))
		if ticker == "" || exchange == "" {
			return nil, fmt.Errorf("%w: line %d", ErrInvalidPair, idx+2)
		}
		result = append(result, Pair{Ticker: ticker, Exchange: exchange})
	}

	return result, nil
}
