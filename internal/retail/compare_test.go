package retail

import (
	"math"
	"testing"

	"github.com/francescacollu/prison-inflation/internal"
)

func commissaryListing(name, size string, year int, price float64) internal.Listing {
	return internal.Listing{
		Year:     year,
		Category: "INSTANT FOODS",
		ItemName: name,
		Size:     size,
		PriceMin: price,
		PriceMax: price,
	}
}

func retailPrice(name, size, query string, price float64) internal.RetailPrice {
	return internal.RetailPrice{Query: query, ItemName: name, Size: size, Price: price}
}

func TestCompareMatchesBestCandidate(t *testing.T) {
	listings := []internal.Listing{
		commissaryListing("Ramen Noodles Chili", "3 oz", 2025, 0.95),
		commissaryListing("Ramen Noodles Chili", "3 oz", 2024, 0.80), // other year, ignored
	}
	prices := []internal.RetailPrice{
		retailPrice("Maruchan Ramen Noodles Chili Flavor", "3 oz", "ramen", 0.50),
		retailPrice("Folgers Classic Roast Coffee", "33.7 oz", "coffee", 14.97),
	}

	got := Compare(listings, prices, 2025, DefaultMinScore)
	if len(got) != 1 {
		t.Fatalf("got %d comparisons, want 1: %+v", len(got), got)
	}

	c := got[0]
	if c.ItemName != "Ramen Noodles Chili" || c.RetailItem != "Maruchan Ramen Noodles Chili Flavor" {
		t.Fatalf("unexpected pairing: %+v", c)
	}
	if c.CommissaryPrice != 0.95 || c.RetailPrice != 0.50 {
		t.Fatalf("unexpected prices: %+v", c)
	}
	if c.MarkupPct == nil || math.Abs(*c.MarkupPct-(0.95-0.50)/0.50*100) > 1e-9 {
		t.Fatalf("markup = %v, want 90", c.MarkupPct)
	}
	if c.Query != "ramen" {
		t.Fatalf("query not carried: %+v", c)
	}
}

func TestCompareDropsWeakMatches(t *testing.T) {
	listings := []internal.Listing{
		commissaryListing("Typewriter Ribbon", "", 2025, 7.00),
	}
	prices := []internal.RetailPrice{
		retailPrice("Whole Milk", "1 gal", "milk", 3.49),
	}

	if got := Compare(listings, prices, 2025, DefaultMinScore); len(got) != 0 {
		t.Fatalf("expected no comparisons, got %+v", got)
	}
}

func TestCompareAveragesDuplicateRows(t *testing.T) {
	listings := []internal.Listing{
		commissaryListing("Instant Coffee", "4 oz", 2025, 4.00),
		commissaryListing("Instant Coffee", "4 oz", 2025, 5.00),
	}
	prices := []internal.RetailPrice{
		retailPrice("HEB Instant Coffee", "4 oz", "coffee", 3.00),
	}

	got := Compare(listings, prices, 2025, DefaultMinScore)
	if len(got) != 1 {
		t.Fatalf("got %d comparisons, want 1", len(got))
	}
	if got[0].CommissaryPrice != 4.50 {
		t.Fatalf("commissary price = %v, want 4.50", got[0].CommissaryPrice)
	}
}

func TestCompareZeroRetailPriceYieldsNilMarkup(t *testing.T) {
	listings := []internal.Listing{
		commissaryListing("Instant Coffee", "4 oz", 2025, 4.00),
	}
	prices := []internal.RetailPrice{
		retailPrice("HEB Instant Coffee", "4 oz", "coffee", 0),
	}

	got := Compare(listings, prices, 2025, DefaultMinScore)
	if len(got) != 1 {
		t.Fatalf("got %d comparisons, want 1", len(got))
	}
	if got[0].MarkupPct != nil {
		t.Fatalf("markup over zero retail price = %v, want nil", *got[0].MarkupPct)
	}
}
