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
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/gosimple/slug"
	"github.com/penny-vault/pvsnapshot/data"
	"github.com/rs/zerolog"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatBoth    = "both"

	ConstituentsFileName = "sp500list.csv"
	PriceCSVFileName     = "market_data.csv"
	PriceParquetFileName = "market_data.parquet"
	FundamentalsFileName = "fundamentals_data.csv"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
)

// Uploader copies an exported file to remote storage under dirname
type Uploader interface {
	Upload(ctx context.Context, fn, dirname string) error
}

// Exporter writes the datasets of a run to a dated directory and optionally
// uploads the files
type Exporter struct {
	Dir      string
	Format   string
	Uploader Uploader

	// Now is the clock used to name the export directory
	Now func() time.Time
}

type priceBarRecord struct {
	Date   string  `csv:"Date"`
	Symbol string  `csv:"Symbol"`
	Open   float64 `csv:"Open"`
	High   float64 `csv:"High"`
	Low    float64 `csv:"Low"`
	Close  float64 `csv:"Close"`
	Volume float64 `csv:"Volume"`
}

type priceBarParquet struct {
	Date   string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Symbol string  `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Open   float64 `parquet:"name=open, type=DOUBLE"`
	High   float64 `parquet:"name=high, type=DOUBLE"`
	Low    float64 `parquet:"name=low, type=DOUBLE"`
	Close  float64 `parquet:"name=close, type=DOUBLE"`
	Volume float64 `parquet:"name=volume, type=DOUBLE"`
}

// Export writes the universe, price and fundamentals files
func (exporter *Exporter) Export(ctx context.Context, constituents []*data.Constituent, dataset *data.Dataset) error {
	logger := zerolog.Ctx(ctx)

	format := exporter.Format
	if format == "" {
		format = FormatCSV
	}

	if format != FormatCSV && format != FormatParquet && format != FormatBoth {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	now := time.Now
	if exporter.Now != nil {
		now = exporter.Now
	}

	dirname := slug.Make(now().Format("2006-01-02 150405"))
	outDir := filepath.Join(exporter.Dir, dirname)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	var files []string

	fn := filepath.Join(outDir, ConstituentsFileName)
	if err := WriteConstituents(constituents, fn); err != nil {
		return err
	}
	files = append(files, fn)

	if format == FormatCSV || format == FormatBoth {
		fn = filepath.Join(outDir, PriceCSVFileName)
		if err := WritePriceBarsCSV(dataset.PriceBars, fn); err != nil {
			return err
		}
		files = append(files, fn)
	}

	if format == FormatParquet || format == FormatBoth {
		fn = filepath.Join(outDir, PriceParquetFileName)
		if err := WritePriceBarsParquet(dataset.PriceBars, fn); err != nil {
			return err
		}
		files = append(files, fn)
	}

	fn = filepath.Join(outDir, FundamentalsFileName)
	if err := WriteFundamentals(dataset.Columns(), dataset.Fundamentals, fn); err != nil {
		return err
	}
	files = append(files, fn)

	logger.Info().Str("Dir", outDir).Int("NumFiles", len(files)).Msg("exported datasets")

	if exporter.Uploader != nil {
		for _, fn := range files {
			if err := exporter.Uploader.Upload(ctx, fn, dirname); err != nil {
				return err
			}
		}
	}

	return nil
}

// WriteConstituents saves the universe in the same layout ConstituentFile reads
func WriteConstituents(constituents []*data.Constituent, fn string) error {
	fh, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer fh.Close()

	return gocsv.MarshalFile(&constituents, fh)
}

func WritePriceBarsCSV(bars []*data.PriceBar, fn string) error {
	records := make([]*priceBarRecord, len(bars))
	for idx, bar := range bars {
		records[idx] = &priceBarRecord{
			Date:   bar.Date.Format("2006-01-02 15:04:05"),
			Symbol: bar.Symbol.String(),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		}
	}

	fh, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer fh.Close()

	return gocsv.MarshalFile(&records, fh)
}

func WritePriceBarsParquet(bars []*data.PriceBar, fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(priceBarParquet), 4)
	if err != nil {
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, bar := range bars {
		record := &priceBarParquet{
			Date:   bar.Date.Format("2006-01-02"),
			Symbol: bar.Symbol.String(),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		}

		if err := pw.Write(record); err != nil {
			return err
		}
	}

	return pw.WriteStop()
}

// WriteFundamentals saves the aligned rows with the symbol in the first
// column followed by the reference columns. Empty values are written blank.
func WriteFundamentals(columns data.Columns, rows []data.FundamentalsRow, fn string) error {
	fh, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer fh.Close()

	csvWriter := gocsv.NewSafeCSVWriter(csv.NewWriter(fh))

	header := []string{data.FundamentalsSymbolColumn}
	for _, col := range columns {
		if col != data.FundamentalsSymbolColumn {
			header = append(header, col)
		}
	}

	if err := csvWriter.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{row.Symbol.String()}
		for _, col := range header[1:] {
			value, _ := row.Get(col)
			record = append(record, formatValue(value))
		}

		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()

	return csvWriter.Error()
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
