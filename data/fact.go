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

// Fact is a single line item of a statement row in long format. Facts are
// the unit of the parquet and csv exports.
type Fact struct {
	EntityKey    string  `csv:"entity_key" json:"entity_key" parquet:"name=entity_key, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Ticker       string  `csv:"ticker" json:"ticker" parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Exchange     string  `csv:"exchange" json:"exchange" parquet:"name=exchange, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Statement    string  `csv:"statement" json:"statement" parquet:"name=statement, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	PeriodType   string  `csv:"period_type" json:"period_type" parquet:"name=period_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ReportPeriod string  `csv:"report_period" json:"report_period" parquet:"name=report_period, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Currency     string  `csv:"currency" json:"currency" parquet:"name=currency, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	LineItem     string  `csv:"line_item" json:"line_item" parquet:"name=line_item, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Value        float64 `csv:"value" json:"value" parquet:"name=value, type=DOUBLE"`
}

// headerColumns are not line items and never become facts
var headerColumns = map[string]bool{
	"entity_key":    true,
	"ticker":        true,
	"exchange":      true,
	"report_period": true,
	"period_type":   true,
	"currency":      true,
	"filing_date":   true,
	"source":        true,
	"updated_at":    true,
	"fiscal_period": true,
}

// FactsFrom flattens rows into facts, one per reported amount. Amounts that
// were not reported are omitted.
func FactsFrom(rows ...Row) []*Fact {
	facts := make([]*Fact, 0, len(rows)*16)
	for _, row := range rows {
		header := row.Header()
		for _, field := range row.Fields() {
			if headerColumns[field.Column] {
				continue
			}

			var val float64
			switch v := field.Value.(type) {
			case *float64:
				if v == nil {
					continue
				}
				val = *v
			case float64:
				val = v
			default:
				continue
			}

			facts = append(facts, &Fact{
				EntityKey:    header.EntityKey,
				Ticker:       header.Ticker,
				Exchange:     header.Exchange,
				Statement:    string(row.Statement()),
				PeriodType:   string(header.PeriodType),
				ReportPeriod: header.ReportPeriod.Format("2006-01-02"),
				Currency:     header.Currency,
				LineItem:     field.Column,
				Value:        val,
			})
		}
	}

	return facts
}
