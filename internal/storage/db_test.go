package storage

import (
	"path/filepath"
	"testing"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReplaceListingsIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	listings := []internal.Listing{
		{Year: 2020, Category: "INSTANT FOODS", ItemName: "Ramen Noodles", Size: "3 oz", PriceMin: 0.25, PriceMax: 0.25},
		{Year: 2020, Category: "HYGIENE", ItemName: "Bar Soap", Size: "4 oz", PriceMin: 1.10, PriceMax: 1.10},
	}

	for i := 0; i < 2; i++ {
		if err := db.ReplaceListings(2020, internal.SourcePDF, listings); err != nil {
			t.Fatalf("ReplaceListings: %v", err)
		}
	}

	got, err := db.ListListings()
	if err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d listings after re-ingest, want 2", len(got))
	}
	if got[0].ItemName != "Bar Soap" || got[1].ItemName != "Ramen Noodles" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestUpsertCPIOverwrites(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertCPI([]internal.CPIObservation{{Year: 2020, CPIType: "CPI-U", Value: 258.0}}); err != nil {
		t.Fatalf("UpsertCPI: %v", err)
	}
	if err := db.UpsertCPI([]internal.CPIObservation{{Year: 2020, CPIType: "CPI-U", Value: 258.8}}); err != nil {
		t.Fatalf("UpsertCPI: %v", err)
	}

	got, err := db.ListCPI()
	if err != nil {
		t.Fatalf("ListCPI: %v", err)
	}
	if len(got) != 1 || got[0].Value != 258.8 {
		t.Fatalf("unexpected cpi rows: %+v", got)
	}
}

func TestRetailPricesRoundTrip(t *testing.T) {
	db := openTestDB(t)

	prices := []internal.RetailPrice{{
		Query:     "coffee",
		ItemName:  "CAFE Ole Medium Roast Coffee",
		Size:      "12 ct",
		Price:     7.98,
		UnitPrice: util.FloatPtr(0.66),
		Unit:      util.StringPtr("ct"),
	}}
	if err := db.ReplaceRetailPrices("coffee", prices); err != nil {
		t.Fatalf("ReplaceRetailPrices: %v", err)
	}

	got, err := db.ListRetailPrices("coffee")
	if err != nil {
		t.Fatalf("ListRetailPrices: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d prices, want 1", len(got))
	}
	if got[0].UnitPrice == nil || *got[0].UnitPrice != 0.66 || got[0].Aisle != nil {
		t.Fatalf("nullable columns mangled: %+v", got[0])
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	missing, err := db.GetMetadata("last_cpi_fetch")
	if err != nil || missing != nil {
		t.Fatalf("missing key: %v, %v", missing, err)
	}

	if err := db.SetMetadata("last_cpi_fetch", "2025-08-25"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	got, err := db.GetMetadata("last_cpi_fetch")
	if err != nil || got == nil || *got != "2025-08-25" {
		t.Fatalf("GetMetadata: %v, %v", got, err)
	}
}

func TestListAllRetailPrices(t *testing.T) {
	db := openTestDB(t)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	must(db.ReplaceRetailPrices("coffee", []internal.RetailPrice{
		{Query: "coffee", ItemName: "HEB Instant Coffee", Size: "4 oz", Price: 3.00},
	}))
	must(db.ReplaceRetailPrices("ramen", []internal.RetailPrice{
		{Query: "ramen", ItemName: "Maruchan Ramen Noodles", Size: "3 oz", Price: 0.50},
	}))

	got, err := db.ListAllRetailPrices()
	if err != nil {
		t.Fatalf("ListAllRetailPrices: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d prices, want 2", len(got))
	}
	if got[0].Query != "coffee" || got[1].Query != "ramen" {
		t.Fatalf("unexpected order: %+v", got)
	}
}
