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
	"bytes"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Number is an amount reported by EODHD. The API reports amounts as JSON
// numbers, numeric strings, empty strings or null; anything that is not a
// number is treated as not reported.
type Number struct {
	value float64
	valid bool
}

// NumberOf returns a reported amount
func NumberOf(v float64) Number {
	return Number{value: v, valid: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}

	raw := bytes.TrimSpace(b)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil
		}
		raw = []byte(strings.TrimSpace(str))
	}

	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil
	}

	*n = Number{value: v, valid: true}
	return nil
}

// Valid reports if the provider reported the amount
func (n Number) Valid() bool {
	return n.valid
}

// Ptr returns a copy of the amount or nil if it was not reported
func (n Number) Ptr() *float64 {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

// Or returns the amount or def if it was not reported
func (n Number) Or(def float64) float64 {
	if !n.valid {
		return def
	}
	return n.value
}

// Periods maps a period key (usually the report date) to its record. EODHD
// sends an empty JSON array instead of an object when a bucket is empty.
type Periods[T any] map[string]*T

func (periods *Periods[T]) UnmarshalJSON(b []byte) error {
	if emptyBody(b) {
		*periods = nil
		return nil
	}

	records := make(map[string]*T)
	if err := json.Unmarshal(b, &records); err != nil {
		return err
	}

	*periods = records
	return nil
}

// emptyBody reports if an object valued field was sent as null or as an
// array, which EODHD uses for sections without data
func emptyBody(b []byte) bool {
	raw := bytes.TrimSpace(b)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null")) || raw[0] == '['
}

// Keys returns the period keys in ascending order
func (periods Periods[T]) Keys() []string {
	keys := make([]string, 0, len(periods))
	for key := range periods {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Statement holds the yearly and quarterly records of one statement type
type Statement[T any] struct {
	CurrencySymbol string     `json:"currency_symbol"`
	Yearly         Periods[T] `json:"yearly"`
	Quarterly      Periods[T] `json:"quarterly"`
}

type plainStatement[T any] Statement[T]

func (statement *Statement[T]) UnmarshalJSON(b []byte) error {
	*statement = Statement[T]{}
	if emptyBody(b) {
		return nil
	}
	return json.Unmarshal(b, (*plainStatement[T])(statement))
}

// Len returns the number of records in both buckets
func (statement *Statement[T]) Len() int {
	return len(statement.Yearly) + len(statement.Quarterly)
}

// Financials is the Financials section of a fundamentals document
type Financials struct {
	IncomeStatement Statement[IncomeRecord]   `json:"Income_Statement"`
	BalanceSheet    Statement[BalanceRecord]  `json:"Balance_Sheet"`
	CashFlow        Statement[CashFlowRecord] `json:"Cash_Flow"`
}

type plainFinancials Financials

func (financials *Financials) UnmarshalJSON(b []byte) error {
	*financials = Financials{}
	if emptyBody(b) {
		return nil
	}
	return json.Unmarshal(b, (*plainFinancials)(financials))
}

// Empty reports if no statement carries any record
func (financials *Financials) Empty() bool {
	return financials.IncomeStatement.Len()+financials.BalanceSheet.Len()+financials.CashFlow.Len() == 0
}

// Fundamentals is the subset of the EODHD fundamentals document consumed by
// the sync. General is passed through untouched.
type Fundamentals struct {
	General    map[string]any `json:"General"`
	Financials *Financials    `json:"Financials"`
}

// RecordHeader holds the fields shared by every statement record
type RecordHeader struct {
	Date           string `json:"date"`
	FilingDate     string `json:"filing_date"`
	CurrencySymbol string `json:"currency_symbol"`
}

const dateLayout = "2006-01-02"

// ReportDate parses the end date of the reporting period. ok is false when
// the date is missing or not a valid date.
func (header *RecordHeader) ReportDate() (date time.Time, ok bool) {
	if header.Date == "" {
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(header.Date))
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// HasDate reports if the provider sent a report date, parseable or not
func (header *RecordHeader) HasDate() bool {
	return strings.TrimSpace(header.Date) != ""
}

// Filed returns the filing date or nil when it is missing or invalid
func (header *RecordHeader) Filed() *time.Time {
	if header.FilingDate == "" {
		return nil
	}
	filed, err := time.Parse(dateLayout, strings.TrimSpace(header.FilingDate))
	if err != nil {
		return nil
	}
	return &filed
}

func (header *RecordHeader) inheritCurrency(currency string) {
	if header.CurrencySymbol == "" {
		header.CurrencySymbol = currency
	}
}

// IncomeRecord is a single period of the EODHD Income_Statement
type IncomeRecord struct {
	RecordHeader

	TotalRevenue                      Number `json:"totalRevenue"`
	CostOfRevenue                     Number `json:"costOfRevenue"`
	GrossProfit                       Number `json:"grossProfit"`
	TotalOperatingExpenses            Number `json:"totalOperatingExpenses"`
	SellingGeneralAdministrative      Number `json:"sellingGeneralAdministrative"`
	ResearchDevelopment               Number `json:"researchDevelopment"`
	DepreciationAndAmortization       Number `json:"depreciationAndAmortization"`
	OperatingIncome                   Number `json:"operatingIncome"`
	InterestExpense                   Number `json:"interestExpense"`
	InterestIncome                    Number `json:"interestIncome"`
	IncomeBeforeTax                   Number `json:"incomeBeforeTax"`
	IncomeTaxExpense                  Number `json:"incomeTaxExpense"`
	NetIncome                         Number `json:"netIncome"`
	NetIncomeApplicableToCommonShares Number `json:"netIncomeApplicableToCommonShares"`
	EBIT                              Number `json:"ebit"`
	EBITDA                            Number `json:"ebitda"`
}

// BalanceRecord is a single period of the EODHD Balance_Sheet
type BalanceRecord struct {
	RecordHeader

	TotalAssets                         Number `json:"totalAssets"`
	TotalCurrentAssets                  Number `json:"totalCurrentAssets"`
	CashAndEquivalents                  Number `json:"cashAndEquivalents"`
	Cash                                Number `json:"cash"`
	ShortTermInvestments                Number `json:"shortTermInvestments"`
	Inventory                           Number `json:"inventory"`
	NetReceivables                      Number `json:"netReceivables"`
	NonCurrentAssetsTotal               Number `json:"nonCurrentAssetsTotal"`
	PropertyPlantAndEquipmentNet        Number `json:"propertyPlantAndEquipmentNet"`
	GoodWill                            Number `json:"goodWill"`
	IntangibleAssets                    Number `json:"intangibleAssets"`
	LongTermInvestments                 Number `json:"longTermInvestments"`
	TotalLiab                           Number `json:"totalLiab"`
	TotalCurrentLiabilities             Number `json:"totalCurrentLiabilities"`
	AccountsPayable                     Number `json:"accountsPayable"`
	ShortTermDebt                       Number `json:"shortTermDebt"`
	NonCurrentLiabilitiesTotal          Number `json:"nonCurrentLiabilitiesTotal"`
	LongTermDebtTotal                   Number `json:"longTermDebtTotal"`
	TotalStockholderEquity              Number `json:"totalStockholderEquity"`
	CommonStock                         Number `json:"commonStock"`
	RetainedEarnings                    Number `json:"retainedEarnings"`
	TreasuryStock                       Number `json:"treasuryStock"`
	AccumulatedOtherComprehensiveIncome Number `json:"accumulatedOtherComprehensiveIncome"`
	CommonStockSharesOutstanding        Number `json:"commonStockSharesOutstanding"`
}

// CashFlowRecord is a single period of the EODHD Cash_Flow statement
type CashFlowRecord struct {
	RecordHeader

	NetIncome                             Number `json:"netIncome"`
	Depreciation                          Number `json:"depreciation"`
	StockBasedCompensation                Number `json:"stockBasedCompensation"`
	ChangeInWorkingCapital                Number `json:"changeInWorkingCapital"`
	TotalCashFromOperatingActivities      Number `json:"totalCashFromOperatingActivities"`
	CapitalExpenditures                   Number `json:"capitalExpenditures"`
	TotalCashflowsFromInvestingActivities Number `json:"totalCashflowsFromInvestingActivities"`
	TotalCashFromFinancingActivities      Number `json:"totalCashFromFinancingActivities"`
	DividendsPaid                         Number `json:"dividendsPaid"`
	SalePurchaseOfStock                   Number `json:"salePurchaseOfStock"`
	NetBorrowings                         Number `json:"netBorrowings"`
	ExchangeRateChanges                   Number `json:"exchangeRateChanges"`
	ChangeInCash                          Number `json:"changeInCash"`
	BeginPeriodCashFlow                   Number `json:"beginPeriodCashFlow"`
	EndPeriodCashFlow                     Number `json:"endPeriodCashFlow"`
	FreeCashFlow                          Number `json:"freeCashFlow"`
}

// normalize copies the statement level currency onto records that do not
// report their own
func (financials *Financials) normalize() {
	for _, record := range financials.IncomeStatement.Yearly {
		inherit(record, &financials.IncomeStatement, func(r *IncomeRecord) *RecordHeader { return &r.RecordHeader })
	}
	for _, record := range financials.IncomeStatement.Quarterly {
		inherit(record, &financials.IncomeStatement, func(r *IncomeRecord) *RecordHeader { return &r.RecordHeader })
	}
	for _, record := range financials.BalanceSheet.Yearly {
		inherit(record, &financials.BalanceSheet, func(r *BalanceRecord) *RecordHeader { return &r.RecordHeader })
	}
	for _, record := range financials.BalanceSheet.Quarterly {
		inherit(record, &financials.BalanceSheet, func(r *BalanceRecord) *RecordHeader { return &r.RecordHeader })
	}
	for _, record := range financials.CashFlow.Yearly {
		inherit(record, &financials.CashFlow, func(r *CashFlowRecord) *RecordHeader { return &r.RecordHeader })
	}
	for _, record := range financials.CashFlow.Quarterly {
		inherit(record, &financials.CashFlow, func(r *CashFlowRecord) *RecordHeader { return &r.RecordHeader })
	}
}

func inherit[T any](record *T, statement *Statement[T], header func(*T) *RecordHeader) {
	if record == nil {
		return
	}
	header(record).inheritCurrency(statement.CurrencySymbol)
}
