// Package report writes pipeline outputs as CSV and XLSX files and
// summarizes inflation by essential status.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/retail"
	"github.com/francescacollu/prison-inflation/internal/util"
)

// RequireInput errors when a stage's input file is missing, naming the
// command that produces it.
func RequireInput(path, producedBy string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("missing input %s (run %q first): %w", path, producedBy, err)
	}
	return nil
}

// Null numeric fields round-trip as empty CSV fields.

func WriteListings(path string, listings []internal.Listing) error {
	rows := [][]string{{"year", "category", "item_name", "size", "price_min", "price_max"}}
	for _, l := range listings {
		rows = append(rows, []string{
			strconv.Itoa(l.Year),
			l.Category,
			l.ItemName,
			l.Size,
			formatFloat(l.PriceMin),
			formatFloat(l.PriceMax),
		})
	}
	return writeCSV(path, rows)
}

func ReadListings(path string) ([]internal.Listing, error) {
	header, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	out := make([]internal.Listing, 0, len(records))
	for i, rec := range records {
		year, err := strconv.Atoi(header.get(rec, "year"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad year: %w", path, i+2, err)
		}
		priceMin, err := strconv.ParseFloat(header.get(rec, "price_min"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad price_min: %w", path, i+2, err)
		}
		priceMax, err := strconv.ParseFloat(header.get(rec, "price_max"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad price_max: %w", path, i+2, err)
		}
		out = append(out, internal.Listing{
			Year:     year,
			Category: header.get(rec, "category"),
			ItemName: header.get(rec, "item_name"),
			Size:     header.get(rec, "size"),
			PriceMin: priceMin,
			PriceMax: priceMax,
		})
	}
	return out, nil
}

func WriteCPI(path string, observations []internal.CPIObservation) error {
	rows := [][]string{{"cpi_type", "year", "value"}}
	for _, o := range observations {
		rows = append(rows, []string{o.CPIType, strconv.Itoa(o.Year), formatFloat(o.Value)})
	}
	return writeCSV(path, rows)
}

func ReadCPI(path string) ([]internal.CPIObservation, error) {
	header, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	out := make([]internal.CPIObservation, 0, len(records))
	for i, rec := range records {
		year, err := strconv.Atoi(header.get(rec, "year"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad year: %w", path, i+2, err)
		}
		value, err := strconv.ParseFloat(header.get(rec, "value"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad value: %w", path, i+2, err)
		}
		out = append(out, internal.CPIObservation{
			CPIType: header.get(rec, "cpi_type"),
			Year:    year,
			Value:   value,
		})
	}
	return out, nil
}

func WriteInflation(path string, records []internal.InflationRecord) error {
	rows := [][]string{{
		"year", "level", "item_name", "size", "category", "cpi_category",
		"essential", "avg_price", "yoy_inflation_pct", "cumulative_inflation_pct",
	}}
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Year),
			r.Level,
			r.ItemName,
			r.Size,
			r.Category,
			r.CPICategory,
			string(r.Essential),
			formatFloat(r.Price),
			formatFloatPtr(r.YoYPct),
			formatFloatPtr(r.CumulativePct),
		})
	}
	return writeCSV(path, rows)
}

func ReadInflation(path string) ([]internal.InflationRecord, error) {
	header, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	out := make([]internal.InflationRecord, 0, len(records))
	for i, rec := range records {
		year, err := strconv.Atoi(header.get(rec, "year"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad year: %w", path, i+2, err)
		}
		price, err := strconv.ParseFloat(header.get(rec, "avg_price"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad avg_price: %w", path, i+2, err)
		}
		yoy, err := parseFloatPtr(header.get(rec, "yoy_inflation_pct"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad yoy_inflation_pct: %w", path, i+2, err)
		}
		cum, err := parseFloatPtr(header.get(rec, "cumulative_inflation_pct"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad cumulative_inflation_pct: %w", path, i+2, err)
		}
		out = append(out, internal.InflationRecord{
			Year:          year,
			Level:         header.get(rec, "level"),
			ItemName:      header.get(rec, "item_name"),
			Size:          header.get(rec, "size"),
			Category:      header.get(rec, "category"),
			CPICategory:   header.get(rec, "cpi_category"),
			Essential:     internal.EssentialStatus(header.get(rec, "essential")),
			Price:         price,
			YoYPct:        yoy,
			CumulativePct: cum,
		})
	}
	return out, nil
}

func WriteCPIInflation(path string, records []internal.CPIInflationRecord) error {
	rows := [][]string{{"cpi_type", "year", "value", "yoy_inflation_pct", "cumulative_inflation_pct"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.CPIType,
			strconv.Itoa(r.Year),
			formatFloat(r.Value),
			formatFloatPtr(r.YoYPct),
			formatFloatPtr(r.CumulativePct),
		})
	}
	return writeCSV(path, rows)
}

func WriteComparisons(path string, rows []internal.ComparisonRow) error {
	records := [][]string{{
		"year", "level", "cpi_type",
		"commissary_yoy_pct", "cpi_yoy_pct", "yoy_diff_pct",
		"commissary_cum_pct", "cpi_cum_pct", "cum_diff_pct",
	}}
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Year),
			r.Level,
			r.CPIType,
			formatFloatPtr(r.CommissaryYoYPct),
			formatFloatPtr(r.CPIYoYPct),
			formatFloatPtr(r.YoYDiffPct),
			formatFloatPtr(r.CommissaryCumPct),
			formatFloatPtr(r.CPICumPct),
			formatFloatPtr(r.CumDiffPct),
		})
	}
	return writeCSV(path, records)
}

func WriteRetailComparisons(path string, rows []retail.Comparison) error {
	records := [][]string{{
		"item_name", "size", "category", "commissary_price",
		"retail_item", "retail_size", "retail_price", "query", "score", "markup_pct",
	}}
	for _, r := range rows {
		records = append(records, []string{
			r.ItemName,
			r.Size,
			r.Category,
			formatFloat(r.CommissaryPrice),
			r.RetailItem,
			r.RetailSize,
			formatFloat(r.RetailPrice),
			r.Query,
			formatFloat(r.Score),
			formatFloatPtr(r.MarkupPct),
		})
	}
	return writeCSV(path, records)
}

func WriteRetailPrices(path string, prices []internal.RetailPrice) error {
	rows := [][]string{{"query", "item_name", "size", "price", "unit_price", "unit", "aisle"}}
	for _, p := range prices {
		rows = append(rows, []string{
			p.Query,
			p.ItemName,
			p.Size,
			formatFloat(p.Price),
			formatFloatPtr(p.UnitPrice),
			util.DerefString(p.Unit),
			util.DerefString(p.Aisle),
		})
	}
	return writeCSV(path, rows)
}

type headerIndex map[string]int

func (h headerIndex) get(rec []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func readCSV(path string) (headerIndex, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("read %s: empty file", path)
	}

	header := headerIndex{}
	for i, name := range all[0] {
		header[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return header, all[1:], nil
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func parseFloatPtr(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return util.FloatPtr(v), nil
}
