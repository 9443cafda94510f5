package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/epeers/portfolio-optimizer/internal/models"
	"github.com/epeers/portfolio-optimizer/internal/quant"
)

// ParsePriceCSV parses a closing price CSV into a series sorted oldest first.
// Required columns: date, close. Other columns are ignored, as are rows with
// an empty date.
func ParsePriceCSV(r io.Reader, ticker string) (*models.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIdx := make(map[string]int)
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"date", "close"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}
	dateIdx, closeIdx := colIdx["date"], colIdx["close"]

	series := &models.PriceSeries{Ticker: ticker}
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		if dateIdx >= len(record) || strings.TrimSpace(record[dateIdx]) == "" {
			continue
		}
		if closeIdx >= len(record) {
			return nil, fmt.Errorf("row %d: missing close", rowNum)
		}

		date, err := models.ParseFlexibleDate(strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q", rowNum, record[dateIdx])
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[closeIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid close %q", rowNum, record[closeIdx])
		}
		series.Points = append(series.Points, models.PricePoint{Date: date, Close: closePrice})
	}

	sort.SliceStable(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})
	return series, nil
}

// loadPriceDir reads <TICKER>.csv from dir for every holding. Tickers without
// a file are left out of the map so the optimizer reports them as dropped.
func loadPriceDir(dir string, holdings []models.Holding) (map[string]*models.PriceSeries, error) {
	series := make(map[string]*models.PriceSeries, len(holdings))
	for _, h := range holdings {
		ticker := quant.NormalizeTicker(h.Ticker)
		f, err := os.Open(filepath.Join(dir, ticker+".csv"))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s, err := ParsePriceCSV(f, ticker)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s.csv: %w", ticker, err)
		}
		series[ticker] = s
	}
	return series, nil
}
