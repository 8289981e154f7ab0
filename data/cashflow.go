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

// CashFlow is a company's cash flow statement for a reporting period
type CashFlow struct {
	RowHeader

	NetIncome                *float64 `db:"net_income"`
	DepreciationAmortization *float64 `db:"depreciation_amortization"`
	StockBasedCompensation   *float64 `db:"stock_based_compensation"`
	ChangeInWorkingCapital   *float64 `db:"change_in_working_capital"`
	OperatingCashFlow        *float64 `db:"operating_cash_flow"`
	CapitalExpenditure       *float64 `db:"capex"`
	InvestingCashFlow        *float64 `db:"investing_cash_flow"`
	FinancingCashFlow        *float64 `db:"financing_cash_flow"`
	DividendsPaid            *float64 `db:"dividends_paid"`
	StockRepurchase          *float64 `db:"stock_repurchase"`

	// DebtIssuance is set only when net borrowing was positive
	DebtIssuance *float64 `db:"debt_issuance"`

	// DebtRepayment is the absolute value of negative net borrowing
	DebtRepayment *float64 `db:"debt_repayment"`

	FxEffect      *float64 `db:"fx_effect"`
	ChangeInCash  *float64 `db:"change_in_cash"`
	BeginningCash *float64 `db:"beginning_cash"`
	EndingCash    *float64 `db:"ending_cash"`
	FreeCashFlow  *float64 `db:"free_cash_flow"`
}

func (cashFlow *CashFlow) Table() string {
	return CashFlowsTable
}

func (cashFlow *CashFlow) Statement() StatementType {
	return CashFlowType
}

func (cashFlow *CashFlow) Header() *RowHeader {
	return &cashFlow.RowHeader
}

func (cashFlow *CashFlow) Describe() string {
	return cashFlow.describe(CashFlowType)
}

func (cashFlow *CashFlow) Fields() []Field {
	return append(cashFlow.RowHeader.fields(),
		Field{"net_income", cashFlow.NetIncome},
		Field{"depreciation_amortization", cashFlow.DepreciationAmortization},
		Field{"stock_based_compensation", cashFlow.StockBasedCompensation},
		Field{"change_in_working_capital", cashFlow.ChangeInWorkingCapital},
		Field{"operating_cash_flow", cashFlow.OperatingCashFlow},
		Field{"capex", cashFlow.CapitalExpenditure},
		Field{"investing_cash_flow", cashFlow.InvestingCashFlow},
		Field{"financing_cash_flow", cashFlow.FinancingCashFlow},
		Field{"dividends_paid", cashFlow.DividendsPaid},
		Field{"stock_repurchase", cashFlow.StockRepurchase},
		Field{"debt_issuance", cashFlow.DebtIssuance},
		Field{"debt_repayment", cashFlow.DebtRepayment},
		Field{"fx_effect", cashFlow.FxEffect},
		Field{"change_in_cash", cashFlow.ChangeInCash},
		Field{"beginning_cash", cashFlow.BeginningCash},
		Field{"ending_cash", cashFlow.EndingCash},
		Field{"free_cash_flow", cashFlow.FreeCashFlow},
	)
}

func (cashFlow *CashFlow) MarshalZerologObject(e *zerolog.Event) {
	cashFlow.RowHeader.MarshalZerologObject(e)
	logAmount(e, "OperatingCashFlow", cashFlow.OperatingCashFlow)
	logAmount(e, "FreeCashFlow", cashFlow.FreeCashFlow)
}
