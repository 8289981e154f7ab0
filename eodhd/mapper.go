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
package eodhd

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lician/finsync/data"
)

// MapIncomeStatement converts an EODHD income record into an income
// statement row
func MapIncomeStatement(ticker, exchange string, record *IncomeRecord, periodType data.PeriodType) *data.IncomeStatement {
	if record == nil {
		record = &IncomeRecord{}
	}

	header := rowHeader(ticker, exchange, &record.RecordHeader, periodType)
	return &data.IncomeStatement{
		RowHeader:                    header,
		FiscalPeriod:                 FiscalPeriod(header.ReportPeriod, periodType),
		Revenue:                      record.TotalRevenue.Ptr(),
		CostOfRevenue:                record.CostOfRevenue.Ptr(),
		GrossProfit:                  record.GrossProfit.Ptr(),
		OperatingExpense:             record.TotalOperatingExpenses.Ptr(),
		SellingGeneralAdministrative: record.SellingGeneralAdministrative.Ptr(),
		ResearchDevelopment:          record.ResearchDevelopment.Ptr(),
		DepreciationAmortization:     record.DepreciationAndAmortization.Ptr(),
		OperatingIncome:              record.OperatingIncome.Ptr(),
		InterestExpense:              record.InterestExpense.Ptr(),
		InterestIncome:               record.InterestIncome.Ptr(),
		IncomeBeforeTax:              record.IncomeBeforeTax.Ptr(),
		IncomeTaxExpense:             record.IncomeTaxExpense.Ptr(),
		NetIncome:                    record.NetIncome.Ptr(),
		NetIncomeCommon:              record.NetIncomeApplicableToCommonShares.Ptr(),
		EBIT:                         record.EBIT.Ptr(),
		EBITDA:                       record.EBITDA.Ptr(),
	}
}

// MapBalanceSheet converts an EODHD balance sheet record into a balance
// sheet row. Total debt is always derived from its short and long term
// components.
func MapBalanceSheet(ticker, exchange string, record *BalanceRecord, periodType data.PeriodType) *data.BalanceSheet {
	if record == nil {
		record = &BalanceRecord{}
	}

	cash := record.CashAndEquivalents
	if !cash.Valid() {
		cash = record.Cash
	}

	return &data.BalanceSheet{
		RowHeader:                           rowHeader(ticker, exchange, &record.RecordHeader, periodType),
		TotalAssets:                         record.TotalAssets.Ptr(),
		CurrentAssets:                       record.TotalCurrentAssets.Ptr(),
		CashAndEquivalents:                  cash.Ptr(),
		ShortTermInvestments:                record.ShortTermInvestments.Ptr(),
		Inventory:                           record.Inventory.Ptr(),
		AccountsReceivable:                  record.NetReceivables.Ptr(),
		NonCurrentAssets:                    record.NonCurrentAssetsTotal.Ptr(),
		PropertyPlantEquipment:              record.PropertyPlantAndEquipmentNet.Ptr(),
		Goodwill:                            record.GoodWill.Ptr(),
		Intangibles:                         record.IntangibleAssets.Ptr(),
		Investments:                         record.LongTermInvestments.Ptr(),
		TotalLiabilities:                    record.TotalLiab.Ptr(),
		CurrentLiabilities:                  record.TotalCurrentLiabilities.Ptr(),
		AccountsPayable:                     record.AccountsPayable.Ptr(),
		CurrentDebt:                         record.ShortTermDebt.Ptr(),
		NonCurrentLiabilities:               record.NonCurrentLiabilitiesTotal.Ptr(),
		LongTermDebt:                        record.LongTermDebtTotal.Ptr(),
		TotalDebt:                           record.ShortTermDebt.Or(0) + record.LongTermDebtTotal.Or(0),
		ShareholdersEquity:                  record.TotalStockholderEquity.Ptr(),
		CommonStock:                         record.CommonStock.Ptr(),
		RetainedEarnings:                    record.RetainedEarnings.Ptr(),
		TreasuryStock:                       record.TreasuryStock.Ptr(),
		AccumulatedOtherComprehensiveIncome: record.AccumulatedOtherComprehensiveIncome.Ptr(),
		OutstandingShares:                   record.CommonStockSharesOutstanding.Ptr(),
	}
}

// MapCashFlow converts an EODHD cash flow record into a cash flow row. Net
// borrowing is split into issuance (positive) and repayment (negative).
func MapCashFlow(ticker, exchange string, record *CashFlowRecord, periodType data.PeriodType) *data.CashFlow {
	if record == nil {
		record = &CashFlowRecord{}
	}

	issuance, repayment := splitNetBorrowings(record.NetBorrowings)

	return &data.CashFlow{
		RowHeader:                rowHeader(ticker, exchange, &record.RecordHeader, periodType),
		NetIncome:                record.NetIncome.Ptr(),
		DepreciationAmortization: record.Depreciation.Ptr(),
		StockBasedCompensation:   record.StockBasedCompensation.Ptr(),
		ChangeInWorkingCapital:   record.ChangeInWorkingCapital.Ptr(),
		OperatingCashFlow:        record.TotalCashFromOperatingActivities.Ptr(),
		CapitalExpenditure:       record.CapitalExpenditures.Ptr(),
		InvestingCashFlow:        record.TotalCashflowsFromInvestingActivities.Ptr(),
		FinancingCashFlow:        record.TotalCashFromFinancingActivities.Ptr(),
		DividendsPaid:            record.DividendsPaid.Ptr(),
		StockRepurchase:          record.SalePurchaseOfStock.Ptr(),
		DebtIssuance:             issuance,
		DebtRepayment:            repayment,
		FxEffect:                 record.ExchangeRateChanges.Ptr(),
		ChangeInCash:             record.ChangeInCash.Ptr(),
		BeginningCash:            record.BeginPeriodCashFlow.Ptr(),
		EndingCash:               record.EndPeriodCashFlow.Ptr(),
		FreeCashFlow:             record.FreeCashFlow.Ptr(),
	}
}

// FiscalPeriod tags a report date with its fiscal period: FY2023 for annual
// reports and Q3 2023 for quarterly reports. The quarter is the calendar
// quarter of the report date.
func FiscalPeriod(reportDate time.Time, periodType data.PeriodType) string {
	if reportDate.IsZero() {
		return ""
	}

	if periodType == data.Quarterly {
		quarter := (int(reportDate.Month())-1)/3 + 1
		return fmt.Sprintf("Q%d %d", quarter, reportDate.Year())
	}

	return fmt.Sprintf("FY%d", reportDate.Year())
}

func splitNetBorrowings(netBorrowings Number) (issuance, repayment *float64) {
	v := netBorrowings.Or(0)
	switch {
	case v > 0:
		return &v, nil
	case v < 0:
		abs := math.Abs(v)
		return nil, &abs
	default:
		return nil, nil
	}
}

func rowHeader(ticker, exchange string, record *RecordHeader, periodType data.PeriodType) data.RowHeader {
	reportDate, _ := record.ReportDate()

	return data.RowHeader{
		EntityKey:    data.EntityKey(ticker, exchange),
		Ticker:       strings.ToUpper(strings.TrimSpace(ticker)),
		Exchange:     strings.ToUpper(strings.TrimSpace(exchange)),
		ReportPeriod: reportDate,
		PeriodType:   periodType,
		Currency:     record.CurrencySymbol,
		FilingDate:   record.Filed(),
		Source:       data.SourceEODHD,
		UpdatedAt:    time.Now().UTC(),
	}
}
