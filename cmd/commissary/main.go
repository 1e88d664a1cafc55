package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/basket"
	"github.com/francescacollu/prison-inflation/internal/bls"
	"github.com/francescacollu/prison-inflation/internal/config"
	"github.com/francescacollu/prison-inflation/internal/inflation"
	"github.com/francescacollu/prison-inflation/internal/ingest"
	"github.com/francescacollu/prison-inflation/internal/normalize"
	"github.com/francescacollu/prison-inflation/internal/report"
	"github.com/francescacollu/prison-inflation/internal/retail"
	"github.com/francescacollu/prison-inflation/internal/rules"
	"github.com/francescacollu/prison-inflation/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	tables, err := rules.Load()
	must(err)

	cmd := os.Args[1]
	switch cmd {
	case "cpi:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		start := fs.Int("start", cfg.RequiredStartYear, "first year")
		end := fs.Int("end", cfg.RequiredEndYear, "last year")
		apu := fs.Bool("apu", false, "also fetch regional average-price series")
		_ = fs.Parse(os.Args[2:])

		// The v2 timeseries endpoint rejects unregistered requests.
		must(cfg.Require("BLS_API_KEY", cfg.BLSAPIKey))

		client := bls.NewClient(cfg)
		obs, err := client.FetchCPI(context.Background(), *start, *end)
		must(err)
		if *apu {
			prices, err := client.FetchAveragePrices(context.Background(), *start, *end)
			must(err)
			obs = append(obs, prices...)
		}
		must(db.UpsertCPI(obs))
		must(report.WriteCPI(cpiPath(cfg), obs))
		must(db.InsertRun(cmd, map[string]int{"observations": len(obs)}))
		fmt.Printf("cpi fetch done years=%d..%d observations=%d\n", *start, *end, len(obs))

		have := map[string]bool{}
		for _, o := range obs {
			have[o.CPIType] = true
		}
		for _, cpiType := range append([]string{rules.DefaultCPIType}, tables.CPITypes()...) {
			if !have[cpiType] {
				fmt.Printf("warning: no observations for series %q\n", cpiType)
			}
		}

	case "ingest:pdf":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "price list pdf path")
		year := fs.Int("year", 0, "price list year")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" || *year == 0 {
			must(fmt.Errorf("--file and --year are required"))
		}

		raw, err := ingest.ExtractPDF(*file, *year)
		must(err)
		listings := cleanRawListings(raw)
		must(db.ReplaceListings(*year, internal.SourcePDF, listings))
		must(db.InsertRun(cmd, map[string]int{"raw": len(raw), "kept": len(listings)}))
		fmt.Printf("pdf ingest done year=%d raw=%d kept=%d\n", *year, len(raw), len(listings))

	case "ingest:csv":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "listings csv path")
		year := fs.Int("year", 0, "price list year")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" || *year == 0 {
			must(fmt.Errorf("--file and --year are required"))
		}

		rows, err := report.ReadListings(*file)
		must(err)
		listings := make([]internal.Listing, 0, len(rows))
		for _, l := range rows {
			name, size := normalize.Clean(l.ItemName, l.Size)
			if name == "" {
				continue
			}
			l.ItemName, l.Size = name, size
			l.Year = *year
			listings = append(listings, l)
		}
		must(db.ReplaceListings(*year, internal.SourceCSV, listings))
		must(db.InsertRun(cmd, map[string]int{"raw": len(rows), "kept": len(listings)}))
		fmt.Printf("csv ingest done year=%d raw=%d kept=%d\n", *year, len(rows), len(listings))

	case "ingest:retail":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "saved search-result dump (.txt or .html)")
		query := fs.String("query", "", "search query the dump came from")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" || strings.TrimSpace(*query) == "" {
			must(fmt.Errorf("--file and --query are required"))
		}

		prices, err := ingest.LoadRetailFile(*file, *query)
		must(err)
		must(db.ReplaceRetailPrices(*query, prices))
		must(report.WriteRetailPrices(filepath.Join(cfg.OutputDir, "retail_"+*query+".csv"), prices))
		must(db.InsertRun(cmd, map[string]int{"products": len(prices)}))
		fmt.Printf("retail ingest done query=%s products=%d\n", *query, len(prices))

	case "clean":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		in := fs.String("in", "", "listings csv to clean")
		out := fs.String("out", "", "cleaned csv path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*in) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--in and --out are required"))
		}

		rows, err := report.ReadListings(*in)
		must(err)
		cleaned := make([]internal.Listing, 0, len(rows))
		for _, l := range rows {
			name, size := normalize.Clean(l.ItemName, l.Size)
			if name == "" {
				continue
			}
			l.ItemName, l.Size = name, size
			cleaned = append(cleaned, l)
		}
		must(report.WriteListings(*out, cleaned))
		fmt.Printf("clean done in=%d out=%d\n", len(rows), len(cleaned))

	case "basket:filter":
		listings, err := db.ListListings()
		must(err)
		sel := basket.Select(listings, cfg.RequiredYears())
		must(report.WriteListings(basketPath(cfg), sel.Listings))
		must(db.InsertRun(cmd, map[string]int{
			"observed":  sel.ObservedItems,
			"kept":      sel.KeptItems,
			"excluded":  sel.ExcludedItems,
			"duplicate": sel.DuplicateRows,
		}))
		fmt.Printf("basket filter done items=%d kept=%d excluded=%d duplicate_rows=%d\n",
			sel.ObservedItems, sel.KeptItems, sel.ExcludedItems, sel.DuplicateRows)

	case "inflation:calc":
		must(report.RequireInput(basketPath(cfg), "basket:filter"))
		listings, err := report.ReadListings(basketPath(cfg))
		must(err)

		results, cpiRecords, comparisons := calculate(db, cfg, tables, listings)
		must(writeInflationLevels(cfg, results))
		must(report.WriteCPIInflation(filepath.Join(cfg.OutputDir, "cpi_inflation.csv"), cpiRecords))
		must(report.WriteComparisons(filepath.Join(cfg.OutputDir, "comparison.csv"), comparisons))
		must(db.InsertRun(cmd, map[string]int{
			"item_records": len(results.ItemLevel),
			"cpi_records":  len(cpiRecords),
			"comparisons":  len(comparisons),
		}))
		fmt.Printf("inflation calc done baseline=%d items=%d cpi=%d comparisons=%d\n",
			cfg.RequiredStartYear, len(results.ItemLevel), len(cpiRecords), len(comparisons))

	case "compare:retail":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", cfg.RequiredEndYear, "commissary price year to compare")
		minScore := fs.Float64("min-score", retail.DefaultMinScore, "weakest name match kept")
		_ = fs.Parse(os.Args[2:])

		listings, err := db.ListListings()
		must(err)
		prices, err := db.ListAllRetailPrices()
		must(err)
		if len(prices) == 0 {
			must(fmt.Errorf("no retail prices in %s (run \"ingest:retail\" first)", cfg.DBPath))
		}

		rows := retail.Compare(listings, prices, *year, *minScore)
		must(report.WriteRetailComparisons(filepath.Join(cfg.OutputDir, "retail_comparison.csv"), rows))
		must(db.InsertRun(cmd, map[string]int{"matched": len(rows), "retail_products": len(prices)}))
		fmt.Printf("retail compare done year=%d matched=%d products=%d\n", *year, len(rows), len(prices))

	case "essential:report":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		movers := fs.Int("movers", 5, "top/bottom movers per class")
		_ = fs.Parse(os.Args[2:])

		must(report.RequireInput(itemLevelPath(cfg), "inflation:calc"))
		items, err := report.ReadInflation(itemLevelPath(cfg))
		must(err)
		summaries, year, err := report.SummarizeEssential(items, *movers)
		must(err)
		must(report.WriteEssentialSummary(filepath.Join(cfg.OutputDir, "essential_summary.csv"), summaries, year))
		fmt.Print(report.FormatEssentialSummary(summaries, year))

	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "commissary_inflation.xlsx"), "output xlsx path")
		_ = fs.Parse(os.Args[2:])

		listings, err := db.ListListings()
		must(err)
		sel := basket.Select(listings, cfg.RequiredYears())
		results, cpiRecords, comparisons := calculate(db, cfg, tables, sel.Listings)
		must(report.ExportXLSX(report.Workbook{
			ItemLevel:        results.ItemLevel,
			CategoryLevel:    results.CategoryLevel,
			CPICategoryLevel: results.CPICategoryLevel,
			Overall:          results.Overall,
			CPI:              cpiRecords,
			Comparisons:      comparisons,
		}, *out))
		fmt.Printf("exported workbook to %s\n", *out)

	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		movers := fs.Int("movers", 5, "top/bottom movers per class")
		_ = fs.Parse(os.Args[2:])

		listings, err := db.ListListings()
		must(err)
		if len(listings) == 0 {
			must(fmt.Errorf("no listings in %s (run \"ingest:pdf\" first)", cfg.DBPath))
		}

		sel := basket.Select(listings, cfg.RequiredYears())
		must(report.WriteListings(basketPath(cfg), sel.Listings))
		fmt.Printf("basket: items=%d kept=%d excluded=%d duplicate_rows=%d\n",
			sel.ObservedItems, sel.KeptItems, sel.ExcludedItems, sel.DuplicateRows)

		results, cpiRecords, comparisons := calculate(db, cfg, tables, sel.Listings)
		must(writeInflationLevels(cfg, results))
		must(report.WriteCPIInflation(filepath.Join(cfg.OutputDir, "cpi_inflation.csv"), cpiRecords))
		must(report.WriteComparisons(filepath.Join(cfg.OutputDir, "comparison.csv"), comparisons))

		summaries, year, err := report.SummarizeEssential(results.ItemLevel, *movers)
		must(err)
		must(report.WriteEssentialSummary(filepath.Join(cfg.OutputDir, "essential_summary.csv"), summaries, year))
		fmt.Print(report.FormatEssentialSummary(summaries, year))

		must(report.ExportXLSX(report.Workbook{
			ItemLevel:        results.ItemLevel,
			CategoryLevel:    results.CategoryLevel,
			CPICategoryLevel: results.CPICategoryLevel,
			Overall:          results.Overall,
			CPI:              cpiRecords,
			Comparisons:      comparisons,
		}, filepath.Join(cfg.OutputDir, "commissary_inflation.xlsx")))
		must(db.InsertRun(cmd, map[string]int{
			"kept_items":   sel.KeptItems,
			"item_records": len(results.ItemLevel),
			"comparisons":  len(comparisons),
		}))
		fmt.Printf("run done output=%s\n", cfg.OutputDir)

	default:
		usage()
		os.Exit(1)
	}
}

// calculate derives every inflation series from a basket of listings plus
// whatever CPI observations are in the database.
func calculate(db *storage.DB, cfg config.Config, tables *rules.Tables, listings []internal.Listing) (inflation.Results, []internal.CPIInflationRecord, []internal.ComparisonRow) {
	obs := inflation.BuildObservations(listings, tables)
	results := inflation.Calculate(obs, cfg.RequiredStartYear, tables)

	cpiObs, err := db.ListCPI()
	must(err)
	cpiRecords := inflation.CalculateCPI(cpiObs, cfg.RequiredStartYear)
	comparisons := inflation.Compare(cpiRecords, results)
	return results, cpiRecords, comparisons
}

func cleanRawListings(raw []internal.RawListing) []internal.Listing {
	out := make([]internal.Listing, 0, len(raw))
	for _, r := range raw {
		name, size := normalize.Clean(r.RawText, r.Size)
		if name == "" {
			continue
		}
		out = append(out, internal.Listing{
			Year:     r.Year,
			Category: r.Category,
			ItemName: name,
			Size:     size,
			PriceMin: r.PriceMin,
			PriceMax: r.PriceMax,
		})
	}
	return out
}

// writeInflationLevels emits one CSV per aggregation level.
func writeInflationLevels(cfg config.Config, results inflation.Results) error {
	levels := []struct {
		name    string
		records []internal.InflationRecord
	}{
		{"item_level", results.ItemLevel},
		{"category_level", results.CategoryLevel},
		{"cpi_category_level", results.CPICategoryLevel},
		{"overall", results.Overall},
	}
	for _, level := range levels {
		if err := report.WriteInflation(filepath.Join(cfg.OutputDir, level.name+".csv"), level.records); err != nil {
			return err
		}
	}
	return nil
}

func basketPath(cfg config.Config) string {
	return filepath.Join(cfg.OutputDir, "basket_listings.csv")
}

func itemLevelPath(cfg config.Config) string {
	return filepath.Join(cfg.OutputDir, "item_level.csv")
}

func cpiPath(cfg config.Config) string {
	return filepath.Join(cfg.OutputDir, "cpi.csv")
}

func usage() {
	fmt.Println("usage: commissary <command>")
	fmt.Println("commands:")
	fmt.Println("  cpi:fetch [--start=2019] [--end=2025] [--apu]")
	fmt.Println("  ingest:pdf --file=pricelist.pdf --year=2021")
	fmt.Println("  ingest:csv --file=listings.csv --year=2021")
	fmt.Println("  ingest:retail --file=results.txt|results.html --query=coffee")
	fmt.Println("  clean --in=raw.csv --out=cleaned.csv")
	fmt.Println("  basket:filter")
	fmt.Println("  inflation:calc")
	fmt.Println("  compare:retail [--year=2025] [--min-score=0.55]")
	fmt.Println("  essential:report [--movers=5]")
	fmt.Println("  export:xlsx [--out=...xlsx]")
	fmt.Println("  run [--movers=5]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
