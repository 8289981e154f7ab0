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
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/gosimple/slug"
	"github.com/lician/finsync/data"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type Format string

const (
	Parquet Format = "parquet"
	CSV     Format = "csv"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
)

// Source is a store that can read back statements of a listing
type Source interface {
	IncomeStatements(ctx context.Context, entityKey string) ([]*data.IncomeStatement, error)
	BalanceSheets(ctx context.Context, entityKey string) ([]*data.BalanceSheet, error)
	CashFlows(ctx context.Context, entityKey string) ([]*data.CashFlow, error)
}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case Parquet, CSV:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// Facts reads every stored statement of entityKey as long format facts
func Facts(ctx context.Context, src Source, entityKey string) ([]*data.Fact, error) {
	rows := make([]data.Row, 0, 64)

	income, err := src.IncomeStatements(ctx, entityKey)
	if err != nil {
		return nil, err
	}
	for _, row := range income {
		rows = append(rows, row)
	}

	balance, err := src.BalanceSheets(ctx, entityKey)
	if err != nil {
		return nil, err
	}
	for _, row := range balance {
		rows = append(rows, row)
	}

	cashFlow, err := src.CashFlows(ctx, entityKey)
	if err != nil {
		return nil, err
	}
	for _, row := range cashFlow {
		rows = append(rows, row)
	}

	return data.FactsFrom(rows...), nil
}

// FileName returns the export file name of symbol, e.g. sap-xetra-20240131.parquet
func FileName(symbol string, format Format, asOf time.Time) string {
	return fmt.Sprintf("%s-%s.%s", slug.Make(symbol), asOf.Format("20060102"), format)
}

// Write saves facts to dir in the requested format and returns the file path
func Write(facts []*data.Fact, dir, symbol string, format Format) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	fn := filepath.Join(dir, FileName(symbol, format, time.Now()))

	var err error
	switch format {
	case Parquet:
		err = WriteParquet(facts, fn)
	case CSV:
		err = WriteCSV(facts, fn)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	return fn, err
}

// WriteParquet saves facts as a zstd compressed parquet file
func WriteParquet(facts []*data.Fact, fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(data.Fact), 4)
	if err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, fact := range facts {
		if err = pw.Write(fact); err != nil {
			log.Error().Err(err).Str("EntityKey", fact.EntityKey).Str("LineItem", fact.LineItem).
				Str("ReportPeriod", fact.ReportPeriod).Msg("parquet write failed for fact")
			return err
		}
	}

	if err = pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return err
	}

	log.Info().Int("NumRecords", len(facts)).Str("FileName", fn).Msg("parquet write finished")
	return nil
}

// WriteCSV saves facts as a csv file with a header row
func WriteCSV(facts []*data.Fact, fn string) error {
	fh, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer fh.Close()

	if err := gocsv.MarshalFile(&facts, fh); err != nil {
		return err
	}

	log.Info().Int("NumRecords", len(facts)).Str("FileName", fn).Msg("csv write finished")
	return nil
}
