// Package basket implements the fixed-basket selection: only items priced
// in every required year enter the inflation math, so the basket
// composition is constant across all periods.
package basket

import (
	"sort"
	"strconv"

	"github.com/francescacollu/prison-inflation/internal"
)

type Selection struct {
	Listings      []internal.Listing
	ObservedItems int
	KeptItems     int
	ExcludedItems int
	DuplicateRows int
}

// Select keeps the listings of items observed in every required year.
// There is no partial credit: an item missing even one year is excluded
// for all years, including years where it was observed. Duplicate
// (item_id, year) rows are kept, not merged; their count is surfaced so
// upstream extraction problems stay visible.
func Select(listings []internal.Listing, requiredYears []int) Selection {
	yearsByItem := map[string]map[int]struct{}{}
	rowsSeen := map[string]int{}
	duplicates := 0

	for _, l := range listings {
		id := l.ItemID()
		if yearsByItem[id] == nil {
			yearsByItem[id] = map[int]struct{}{}
		}
		yearsByItem[id][l.Year] = struct{}{}

		key := id + "\x00" + strconv.Itoa(l.Year)
		rowsSeen[key]++
		if rowsSeen[key] == 2 {
			duplicates++
		}
	}

	kept := map[string]struct{}{}
	for id, years := range yearsByItem {
		if coversAll(years, requiredYears) {
			kept[id] = struct{}{}
		}
	}

	out := make([]internal.Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := kept[l.ItemID()]; ok {
			out = append(out, l)
		}
	}

	return Selection{
		Listings:      out,
		ObservedItems: len(yearsByItem),
		KeptItems:     len(kept),
		ExcludedItems: len(yearsByItem) - len(kept),
		DuplicateRows: duplicates,
	}
}

// ItemIDs lists the basket membership, sorted for stable output.
func (s Selection) ItemIDs() []string {
	seen := map[string]struct{}{}
	for _, l := range s.Listings {
		seen[l.ItemID()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func coversAll(years map[int]struct{}, required []int) bool {
	for _, y := range required {
		if _, ok := years[y]; !ok {
			return false
		}
	}
	return true
}
