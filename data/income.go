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
	"github.com/rs/zerolog"
)

// IncomeStatement is a single reporting period of a company's income
// statement. Every amount is reported in Currency and is nil when the
// provider did not report it.
type IncomeStatement struct {
	RowHeader

	// FiscalPeriod tags the period within its year: FY2023 for annual rows
	// and Q3 2023 for quarterly rows.
	FiscalPeriod string `db:"fiscal_period"`

	// [Income Statement] Total revenue recognized during the period
	Revenue *float64 `db:"revenue"`

	// [Income Statement] Cost of goods and services sold
	CostOfRevenue *float64 `db:"cost_of_revenue"`

	// [Income Statement] Revenue less cost of revenue
	GrossProfit *float64 `db:"gross_profit"`

	// [Income Statement] Total operating expenses
	OperatingExpense *float64 `db:"operating_expense"`

	// [Income Statement] Selling, general and administrative expense
	SellingGeneralAdministrative *float64 `db:"sga"`

	// [Income Statement] Research and development expense
	ResearchDevelopment *float64 `db:"research_development"`

	DepreciationAmortization *float64 `db:"depreciation_amortization"`
	OperatingIncome          *float64 `db:"operating_income"`
	InterestExpense          *float64 `db:"interest_expense"`
	InterestIncome           *float64 `db:"interest_income"`
	IncomeBeforeTax          *float64 `db:"income_before_tax"`
	IncomeTaxExpense         *float64 `db:"income_tax_expense"`
	NetIncome                *float64 `db:"net_income"`

	// [Income Statement] Net income available to common shareholders
	NetIncomeCommon *float64 `db:"net_income_common"`

	EBIT   *float64 `db:"ebit"`
	EBITDA *float64 `db:"ebitda"`
}

func (income *IncomeStatement) Table() string {
	return IncomeStatementsTable
}

func (income *IncomeStatement) Statement() StatementType {
	return IncomeStatementType
}

func (income *IncomeStatement) Header() *RowHeader {
	return &income.RowHeader
}

func (income *IncomeStatement) Describe() string {
	return income.describe(IncomeStatementType)
}

func (income *IncomeStatement) Fields() []Field {
	return append(income.RowHeader.fields(),
		Field{"fiscal_period", income.FiscalPeriod},
		Field{"revenue", income.Revenue},
		Field{"cost_of_revenue", income.CostOfRevenue},
		Field{"gross_profit", income.GrossProfit},
		Field{"operating_expense", income.OperatingExpense},
		Field{"sga", income.SellingGeneralAdministrative},
		Field{"research_development", income.ResearchDevelopment},
		Field{"depreciation_amortization", income.DepreciationAmortization},
		Field{"operating_income", income.OperatingIncome},
		Field{"interest_expense", income.InterestExpense},
		Field{"interest_income", income.InterestIncome},
		Field{"income_before_tax", income.IncomeBeforeTax},
		Field{"income_tax_expense", income.IncomeTaxExpense},
		Field{"net_income", income.NetIncome},
		Field{"net_income_common", income.NetIncomeCommon},
		Field{"ebit", income.EBIT},
		Field{"ebitda", income.EBITDA},
	)
}

func (income *IncomeStatement) MarshalZerologObject(e *zerolog.Event) {
	income.RowHeader.MarshalZerologObject(e)
	e.Str("FiscalPeriod", income.FiscalPeriod)
	logAmount(e, "Revenue", income.Revenue)
	logAmount(e, "NetIncome", income.NetIncome)
}

func logAmount(e *zerolog.Event, key string, val *float64) {
	if val == nil {
		e.Interface(key, nil)
		return
	}
	e.Float64(key, *val)
}
