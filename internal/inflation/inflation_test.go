package inflation

import (
	"math"
	"testing"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/basket"
	"github.com/francescacollu/prison-inflation/internal/rules"
)

func mustTables(t *testing.T) *rules.Tables {
	t.Helper()
	tables, err := rules.Load()
	if err != nil {
		t.Fatalf("rules.Load: %v", err)
	}
	return tables
}

func listing(name, size, category string, year int, price float64) internal.Listing {
	return internal.Listing{
		Year:     year,
		Category: category,
		ItemName: name,
		Size:     size,
		PriceMin: price,
		PriceMax: price,
	}
}

func approx(got *float64, want float64) bool {
	return got != nil && math.Abs(*got-want) < 1e-9
}

func TestFixedBasketEndToEnd(t *testing.T) {
	// Item A priced in both years, item B only in the first: the basket is
	// {A}, and B is wholly excluded.
	tables := mustTables(t)
	required := []int{2019, 2020}
	listings := []internal.Listing{
		listing("Item A", "", "INSTANT FOODS", 2019, 10.00),
		listing("Item A", "", "INSTANT FOODS", 2020, 12.00),
		listing("Item B", "", "INSTANT FOODS", 2019, 5.00),
	}

	sel := basket.Select(listings, required)
	if sel.KeptItems != 1 || sel.ExcludedItems != 1 {
		t.Fatalf("unexpected selection: %+v", sel)
	}

	obs := BuildObservations(sel.Listings, tables)
	results := Calculate(obs, 2019, tables)

	if len(results.ItemLevel) != 2 {
		t.Fatalf("item level has %d records, want 2", len(results.ItemLevel))
	}

	r2019 := results.ItemLevel[0]
	r2020 := results.ItemLevel[1]
	if r2019.Year != 2019 || r2020.Year != 2020 {
		t.Fatalf("records out of order: %+v", results.ItemLevel)
	}
	if !approx(r2019.CumulativePct, 0) {
		t.Fatalf("baseline cumulative = %v, want 0", r2019.CumulativePct)
	}
	if r2019.YoYPct != nil {
		t.Fatalf("baseline yoy = %v, want nil", *r2019.YoYPct)
	}
	if !approx(r2020.CumulativePct, 20.0) {
		t.Fatalf("2020 cumulative = %v, want 20", r2020.CumulativePct)
	}
	if !approx(r2020.YoYPct, 20.0) {
		t.Fatalf("2020 yoy = %v, want 20", r2020.YoYPct)
	}
}

func TestBaselineInvariantAllLevels(t *testing.T) {
	tables := mustTables(t)
	listings := []internal.Listing{
		listing("Ramen Noodles", "3 oz", "INSTANT FOODS", 2019, 0.25),
		listing("Ramen Noodles", "3 oz", "INSTANT FOODS", 2020, 0.30),
		listing("Bar Soap", "4 oz", "HYGIENE", 2019, 1.00),
		listing("Bar Soap", "4 oz", "HYGIENE", 2020, 1.10),
		listing("Twix", "2 oz", "CANDY", 2019, 1.50),
		listing("Twix", "2 oz", "CANDY", 2020, 1.80),
	}
	obs := BuildObservations(listings, tables)
	results := Calculate(obs, 2019, tables)

	for _, level := range [][]internal.InflationRecord{results.ItemLevel, results.CategoryLevel, results.CPICategoryLevel, results.Overall} {
		for _, rec := range level {
			if rec.Year != 2019 {
				continue
			}
			if !approx(rec.CumulativePct, 0) {
				t.Fatalf("%s %s/%s: baseline cumulative = %v, want 0", rec.Level, rec.Category, rec.CPICategory, rec.CumulativePct)
			}
			if rec.YoYPct != nil {
				t.Fatalf("%s: baseline yoy not nil", rec.Level)
			}
		}
	}
}

func TestMissingPriorYearYieldsNilYoY(t *testing.T) {
	tables := mustTables(t)
	listings := []internal.Listing{
		listing("Stamps", "", "CORRESPONDENCE", 2019, 0.55),
		listing("Stamps", "", "CORRESPONDENCE", 2021, 0.63),
	}
	obs := BuildObservations(listings, tables)
	results := Calculate(obs, 2019, tables)

	for _, rec := range results.ItemLevel {
		if rec.Year == 2021 && rec.YoYPct != nil {
			t.Fatalf("yoy for gap year = %v, want nil", *rec.YoYPct)
		}
		if rec.Year == 2021 && !approx(rec.CumulativePct, (0.63-0.55)/0.55*100) {
			t.Fatalf("cumulative for 2021 = %v", rec.CumulativePct)
		}
	}
}

func TestZeroBaselineYieldsNil(t *testing.T) {
	tables := mustTables(t)
	listings := []internal.Listing{
		listing("Freebie", "", "MISCELLANEOUS", 2019, 0),
		listing("Freebie", "", "MISCELLANEOUS", 2020, 1.00),
	}
	obs := BuildObservations(listings, tables)
	results := Calculate(obs, 2019, tables)

	for _, rec := range results.ItemLevel {
		if rec.CumulativePct != nil {
			t.Fatalf("cumulative over zero baseline = %v, want nil", *rec.CumulativePct)
		}
	}
	for _, rec := range results.Overall {
		if rec.Year == 2020 && rec.YoYPct != nil {
			t.Fatalf("yoy over zero baseline mean = %v, want nil", *rec.YoYPct)
		}
	}
}

func TestGroupLevelInflatesTheMean(t *testing.T) {
	// Two items with very different magnitudes: the group series is the
	// mean price inflated, not the mean of the item inflation rates.
	tables := mustTables(t)
	listings := []internal.Listing{
		listing("Cheap Item", "", "SNACKS", 2019, 1.00),
		listing("Cheap Item", "", "SNACKS", 2020, 2.00), // +100%
		listing("Dear Item", "", "SNACKS", 2019, 10.00),
		listing("Dear Item", "", "SNACKS", 2020, 10.00), // +0%
	}
	obs := BuildObservations(listings, tables)
	results := Calculate(obs, 2019, tables)

	var got *float64
	for _, rec := range results.CategoryLevel {
		if rec.Category == "SNACKS" && rec.Year == 2020 {
			got = rec.CumulativePct
		}
	}
	// Mean price moves 5.5 -> 6.0: +9.0909...%, not the +50% a rate
	// average would give.
	if !approx(got, (6.0-5.5)/5.5*100) {
		t.Fatalf("group cumulative = %v, want %v", got, (6.0-5.5)/5.5*100)
	}
}

func TestPriceAvgFromRange(t *testing.T) {
	tables := mustTables(t)
	obs := BuildObservations([]internal.Listing{{
		Year: 2019, Category: "HYGIENE", ItemName: "Razor", Size: "",
		PriceMin: 1.00, PriceMax: 3.00,
	}}, tables)
	if len(obs) != 1 || obs[0].PriceAvg != 2.00 {
		t.Fatalf("unexpected observations: %+v", obs)
	}
	if obs[0].CPICategory != "Personal care" {
		t.Fatalf("cpi category = %q", obs[0].CPICategory)
	}
}

func TestCalculateCPI(t *testing.T) {
	obs := []internal.CPIObservation{
		{Year: 2019, CPIType: "CPI-U", Value: 255.7},
		{Year: 2020, CPIType: "CPI-U", Value: 258.8},
		{Year: 2021, CPIType: "CPI-U", Value: 271.0},
		{Year: 2020, CPIType: "Orphan", Value: 100.0}, // no baseline year
	}
	records := CalculateCPI(obs, 2019)

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (orphan series dropped)", len(records))
	}
	if records[0].Year != 2019 || records[0].YoYPct != nil || !approx(records[0].CumulativePct, 0) {
		t.Fatalf("unexpected baseline record: %+v", records[0])
	}
	wantYoY := (258.8 - 255.7) / 255.7 * 100
	if !approx(records[1].YoYPct, wantYoY) {
		t.Fatalf("2020 yoy = %v, want %v", records[1].YoYPct, wantYoY)
	}
}

func TestCompare(t *testing.T) {
	tables := mustTables(t)
	listings := []internal.Listing{
		listing("Ramen Noodles", "3 oz", "INSTANT FOODS", 2019, 1.00),
		listing("Ramen Noodles", "3 oz", "INSTANT FOODS", 2020, 1.10),
	}
	obs := BuildObservations(listings, tables)
	results := Calculate(obs, 2019, tables)

	cpi := CalculateCPI([]internal.CPIObservation{
		{Year: 2019, CPIType: "CPI-U", Value: 100},
		{Year: 2020, CPIType: "CPI-U", Value: 105},
		{Year: 2019, CPIType: "Food at home", Value: 200},
		{Year: 2020, CPIType: "Food at home", Value: 208},
	}, 2019)

	rows := Compare(cpi, results)

	var overall2020, food2020 *internal.ComparisonRow
	for i := range rows {
		r := &rows[i]
		if r.Level == LevelOverall && r.Year == 2020 {
			overall2020 = r
		}
		if r.Level == LevelCPICategory && r.CPIType == "Food at home" && r.Year == 2020 {
			food2020 = r
		}
	}
	if overall2020 == nil || food2020 == nil {
		t.Fatalf("missing comparison rows: %+v", rows)
	}
	if !approx(overall2020.CumDiffPct, 10.0-5.0) {
		t.Fatalf("overall cum diff = %v, want 5", overall2020.CumDiffPct)
	}
	if !approx(food2020.CumDiffPct, 10.0-4.0) {
		t.Fatalf("food cum diff = %v, want 6", food2020.CumDiffPct)
	}

	// Baseline rows carry nil yoy on both sides; the diff stays nil.
	for _, r := range rows {
		if r.Year == 2019 && r.YoYDiffPct != nil {
			t.Fatalf("baseline yoy diff = %v, want nil", *r.YoYDiffPct)
		}
	}
}
