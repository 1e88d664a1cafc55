// Package inflation derives year-over-year and cumulative price change
// series from fixed-basket price observations, at item, category, CPI
// category and overall granularity.
//
// Aggregated levels average the price first and inflate the average: the
// group price level for a year is the mean of price_avg across the
// group's rows, and the cumulative/yoy formulas are applied to that
// series against its own baseline-year mean. This is not a roll-up of
// item-level inflation rates and can diverge from one when price
// magnitudes differ within a group.
package inflation

import (
	"sort"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/rules"
	"github.com/francescacollu/prison-inflation/internal/util"
)

const (
	LevelItem        = "item"
	LevelCategory    = "category"
	LevelCPICategory = "cpi_category"
	LevelOverall     = "overall"
)

type Results struct {
	ItemLevel        []internal.InflationRecord
	CategoryLevel    []internal.InflationRecord
	CPICategoryLevel []internal.InflationRecord
	Overall          []internal.InflationRecord
}

// BuildObservations derives one PriceObservation per listing row, with
// price_avg = (price_min + price_max) / 2 and the CPI category annotated.
// Duplicate (item_id, year) rows are carried through unmerged.
func BuildObservations(listings []internal.Listing, tables *rules.Tables) []internal.PriceObservation {
	out := make([]internal.PriceObservation, 0, len(listings))
	for _, l := range listings {
		out = append(out, internal.PriceObservation{
			ItemID:      l.ItemID(),
			ItemName:    l.ItemName,
			Size:        l.Size,
			Category:    l.Category,
			CPICategory: tables.CPICategory(l.Category),
			Year:        l.Year,
			PriceMin:    l.PriceMin,
			PriceMax:    l.PriceMax,
			PriceAvg:    (l.PriceMin + l.PriceMax) / 2,
		})
	}
	return out
}

// Calculate produces inflation series at all four levels against the
// given baseline year (the minimum of the required range). A missing or
// zero baseline price yields nil percentages, never an error.
func Calculate(observations []internal.PriceObservation, baselineYear int, tables *rules.Tables) Results {
	return Results{
		ItemLevel:        calculateItems(observations, baselineYear, tables),
		CategoryLevel:    calculateGroups(observations, baselineYear, LevelCategory, func(o internal.PriceObservation) string { return o.Category }),
		CPICategoryLevel: calculateGroups(observations, baselineYear, LevelCPICategory, func(o internal.PriceObservation) string { return o.CPICategory }),
		Overall:          calculateGroups(observations, baselineYear, LevelOverall, func(internal.PriceObservation) string { return LevelOverall }),
	}
}

func calculateItems(observations []internal.PriceObservation, baselineYear int, tables *rules.Tables) []internal.InflationRecord {
	byItem := map[string][]internal.PriceObservation{}
	order := []string{}
	for _, o := range observations {
		if _, ok := byItem[o.ItemID]; !ok {
			order = append(order, o.ItemID)
		}
		byItem[o.ItemID] = append(byItem[o.ItemID], o)
	}
	sort.Strings(order)

	out := []internal.InflationRecord{}
	for _, id := range order {
		series := byItem[id]
		sort.SliceStable(series, func(i, j int) bool { return series[i].Year < series[j].Year })

		baseline, hasBaseline := firstAtYear(series, baselineYear)
		first := series[0]
		status := tables.Classify(first.ItemName, first.Category)

		for _, o := range series {
			rec := internal.InflationRecord{
				Year:        o.Year,
				Level:       LevelItem,
				ItemName:    o.ItemName,
				Size:        o.Size,
				Category:    o.Category,
				CPICategory: o.CPICategory,
				Essential:   status,
				Price:       o.PriceAvg,
			}
			if hasBaseline {
				rec.CumulativePct = pctChange(o.PriceAvg, baseline.PriceAvg)
			}
			if o.Year > baselineYear {
				if prev, ok := firstAtYear(series, o.Year-1); ok {
					rec.YoYPct = pctChange(o.PriceAvg, prev.PriceAvg)
				}
			}
			out = append(out, rec)
		}
	}
	return out
}

func calculateGroups(observations []internal.PriceObservation, baselineYear int, level string, key func(internal.PriceObservation) string) []internal.InflationRecord {
	type yearGroup struct {
		sum   float64
		count int
	}
	means := map[string]map[int]yearGroup{}
	cpiByGroup := map[string]string{}
	years := map[int]struct{}{}

	for _, o := range observations {
		k := key(o)
		if means[k] == nil {
			means[k] = map[int]yearGroup{}
			cpiByGroup[k] = o.CPICategory
		}
		g := means[k][o.Year]
		g.sum += o.PriceAvg
		g.count++
		means[k][o.Year] = g
		years[o.Year] = struct{}{}
	}

	groups := make([]string, 0, len(means))
	for k := range means {
		groups = append(groups, k)
	}
	sort.Strings(groups)

	yearList := make([]int, 0, len(years))
	for y := range years {
		yearList = append(yearList, y)
	}
	sort.Ints(yearList)

	out := []internal.InflationRecord{}
	for _, y := range yearList {
		for _, k := range groups {
			g, ok := means[k][y]
			if !ok || g.count == 0 {
				continue
			}
			avg := g.sum / float64(g.count)
			rec := internal.InflationRecord{
				Year:  y,
				Level: level,
				Price: avg,
			}
			switch level {
			case LevelCategory:
				rec.Category = k
				rec.CPICategory = cpiByGroup[k]
			case LevelCPICategory:
				rec.CPICategory = k
			}

			if base, ok := means[k][baselineYear]; ok && base.count > 0 {
				rec.CumulativePct = pctChange(avg, base.sum/float64(base.count))
			}
			if y > baselineYear {
				if prev, ok := means[k][y-1]; ok && prev.count > 0 {
					rec.YoYPct = pctChange(avg, prev.sum/float64(prev.count))
				}
			}
			out = append(out, rec)
		}
	}
	return out
}

// pctChange returns the percent change of value over base, or nil when the
// base is zero. A zero baseline is a data-quality condition to surface
// downstream, not an arithmetic error.
func pctChange(value, base float64) *float64 {
	if base == 0 {
		return nil
	}
	return util.FloatPtr((value - base) / base * 100)
}

func firstAtYear(series []internal.PriceObservation, year int) (internal.PriceObservation, bool) {
	for _, o := range series {
		if o.Year == year {
			return o, true
		}
	}
	return internal.PriceObservation{}, false
}
