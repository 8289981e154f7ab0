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

// BalanceSheet is a company's financial position at the end of a reporting
// period. Amounts are nil when not reported by the provider, except for
// TotalDebt which is always derived.
type BalanceSheet struct {
	RowHeader

	TotalAssets          *float64 `db:"total_assets"`
	CurrentAssets        *float64 `db:"current_assets"`
	CashAndEquivalents   *float64 `db:"cash_and_equivalents"`
	ShortTermInvestments *float64 `db:"short_term_investments"`
	Inventory            *float64 `db:"inventory"`
	AccountsReceivable   *float64 `db:"accounts_receivable"`
	NonCurrentAssets     *float64 `db:"non_current_assets"`

	// [Balance Sheet] Property, plant and equipment net of depreciation
	PropertyPlantEquipment *float64 `db:"ppe"`
	Goodwill               *float64 `db:"goodwill"`
	Intangibles            *float64 `db:"intangibles"`

	// [Balance Sheet] Long-term investments
	Investments *float64 `db:"investments"`

	TotalLiabilities      *float64 `db:"total_liabilities"`
	CurrentLiabilities    *float64 `db:"current_liabilities"`
	AccountsPayable       *float64 `db:"accounts_payable"`
	CurrentDebt           *float64 `db:"current_debt"`
	NonCurrentLiabilities *float64 `db:"non_current_liabilities"`
	LongTermDebt          *float64 `db:"long_term_debt"`

	// [Balance Sheet] CurrentDebt + LongTermDebt where a missing component
	// counts as zero. Never taken from the provider.
	TotalDebt float64 `db:"total_debt"`

	ShareholdersEquity                  *float64 `db:"shareholders_equity"`
	CommonStock                         *float64 `db:"common_stock"`
	RetainedEarnings                    *float64 `db:"retained_earnings"`
	TreasuryStock                       *float64 `db:"treasury_stock"`
	AccumulatedOtherComprehensiveIncome *float64 `db:"accumulated_oci"`
	OutstandingShares                   *float64 `db:"outstanding_shares"`
}

func (balance *BalanceSheet) Table() string {
	return BalanceSheetsTable
}

func (balance *BalanceSheet) Statement() StatementType {
	return BalanceSheetType
}

func (balance *BalanceSheet) Header() *RowHeader {
	return &balance.RowHeader
}

func (balance *BalanceSheet) Describe() string {
	return balance.describe(BalanceSheetType)
}

func (balance *BalanceSheet) Fields() []Field {
	return append(balance.RowHeader.fields(),
		Field{"total_assets", balance.TotalAssets},
		Field{"current_assets", balance.CurrentAssets},
		Field{"cash_and_equivalents", balance.CashAndEquivalents},
		Field{"short_term_investments", balance.ShortTermInvestments},
		Field{"inventory", balance.Inventory},
		Field{"accounts_receivable", balance.AccountsReceivable},
		Field{"non_current_assets", balance.NonCurrentAssets},
		Field{"ppe", balance.PropertyPlantEquipment},
		Field{"goodwill", balance.Goodwill},
		Field{"intangibles", balance.Intangibles},
		Field{"investments", balance.Investments},
		Field{"total_liabilities", balance.TotalLiabilities},
		Field{"current_liabilities", balance.CurrentLiabilities},
		Field{"accounts_payable", balance.AccountsPayable},
		Field{"current_debt", balance.CurrentDebt},
		Field{"non_current_liabilities", balance.NonCurrentLiabilities},
		Field{"long_term_debt", balance.LongTermDebt},
		Field{"total_debt", balance.TotalDebt},
		Field{"shareholders_equity", balance.ShareholdersEquity},
		Field{"common_stock", balance.CommonStock},
		Field{"retained_earnings", balance.RetainedEarnings},
		Field{"treasury_stock", balance.TreasuryStock},
		Field{"accumulated_oci", balance.AccumulatedOtherComprehensiveIncome},
		Field{"outstanding_shares", balance.OutstandingShares},
	)
}

func (balance *BalanceSheet) MarshalZerologObject(e *zerolog.Event) {
	balance.RowHeader.MarshalZerologObject(e)
	logAmount(e, "TotalAssets", balance.TotalAssets)
	e.Float64("TotalDebt", balance.TotalDebt)
}
