package ingest

import "testing"

func TestParseItemLine(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		wantName string
		wantSize string
		wantMin  float64
		wantMax  float64
		wantOK   bool
	}{
		{name: "single price with size", line: "Ramen Noodles-3 oz 0.25", wantName: "Ramen Noodles", wantSize: "3 oz", wantMin: 0.25, wantMax: 0.25, wantOK: true},
		{name: "price range", line: "Typewriter Ribbon $5.00-$7.00", wantName: "Typewriter Ribbon", wantSize: "", wantMin: 5.00, wantMax: 7.00, wantOK: true},
		{name: "range without dollar signs", line: "Tennis Shoes 24.95-39.95", wantName: "Tennis Shoes", wantSize: "", wantMin: 24.95, wantMax: 39.95, wantOK: true},
		{name: "facility codes stripped", line: "EK Tuna Pouch-4.5 oz 1.80", wantName: "Tuna Pouch", wantSize: "4.5 oz", wantMin: 1.80, wantMax: 1.80, wantOK: true},
		{name: "parenthesized count", line: "Aspirin (100 ct) 2.35", wantName: "Aspirin", wantSize: "100 ct", wantMin: 2.35, wantMax: 2.35, wantOK: true},
		{name: "dimension size", line: "Drawing Pad-9x12 3.50", wantName: "Drawing Pad", wantSize: "9x12", wantMin: 3.50, wantMax: 3.50, wantOK: true},
		{name: "inches size", line: `Comb-5" 0.40`, wantName: "Comb", wantSize: `5"`, wantMin: 0.40, wantMax: 0.40, wantOK: true},
		{name: "whole dollar price", line: "Radio 20", wantName: "Radio", wantSize: "", wantMin: 20, wantMax: 20, wantOK: true},
		{name: "no trailing price", line: "Thank you for shopping", wantOK: false},
		{name: "empty after codes", line: "E ", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseItemLine(tc.line, "MISCELLANEOUS", 2021)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if got.RawText != tc.wantName || got.Size != tc.wantSize {
				t.Fatalf("got (%q, %q), want (%q, %q)", got.RawText, got.Size, tc.wantName, tc.wantSize)
			}
			if got.PriceMin != tc.wantMin || got.PriceMax != tc.wantMax {
				t.Fatalf("got prices (%v, %v), want (%v, %v)", got.PriceMin, got.PriceMax, tc.wantMin, tc.wantMax)
			}
			if got.Year != 2021 || got.Category != "MISCELLANEOUS" {
				t.Fatalf("year/category not carried: %+v", got)
			}
		})
	}
}

func TestParseLinesTracksCategories(t *testing.T) {
	lines := []string{
		"INSTANT FOODS",
		"Ramen Noodles-3 oz 0.25",
		"Chili Soup (12 oz) 1.95",
		"HYGIENE",
		"Bar Soap-4 oz 1.10",
		"",
		"OTC MEDICATIONS, VITAMINS, ETC",
		"Aspirin (100 ct) 2.35",
	}

	got := ParseLines(lines, 2020)
	if len(got) != 4 {
		t.Fatalf("got %d listings, want 4", len(got))
	}

	wantCategories := []string{"INSTANT FOODS", "INSTANT FOODS", "HYGIENE", "OTC MEDICATIONS, VITAMINS, ETC"}
	for i, listing := range got {
		if listing.Category != wantCategories[i] {
			t.Fatalf("listing %d category = %q, want %q", i, listing.Category, wantCategories[i])
		}
	}
}
