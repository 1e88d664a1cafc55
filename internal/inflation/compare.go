package inflation

import (
	"sort"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/rules"
	"github.com/francescacollu/prison-inflation/internal/util"
)

// Compare joins commissary inflation against CPI inflation: the overall
// series against the all-items index, then each commissary CPI category
// against its matching series. Years present on only one side are
// skipped; nil percentages propagate into nil diffs.
func Compare(cpiRecords []internal.CPIInflationRecord, results Results) []internal.ComparisonRow {
	cpiByTypeYear := map[string]map[int]internal.CPIInflationRecord{}
	for _, r := range cpiRecords {
		if cpiByTypeYear[r.CPIType] == nil {
			cpiByTypeYear[r.CPIType] = map[int]internal.CPIInflationRecord{}
		}
		cpiByTypeYear[r.CPIType][r.Year] = r
	}

	out := []internal.ComparisonRow{}

	for _, comm := range sortedByYear(results.Overall) {
		cpi, ok := cpiByTypeYear[rules.DefaultCPIType][comm.Year]
		if !ok {
			continue
		}
		out = append(out, buildRow(comm.Year, LevelOverall, rules.DefaultCPIType, comm, cpi))
	}

	for _, comm := range sortedByYear(results.CPICategoryLevel) {
		if comm.CPICategory == rules.DefaultCPIType {
			continue // already covered by the overall join
		}
		cpi, ok := cpiByTypeYear[comm.CPICategory][comm.Year]
		if !ok {
			continue
		}
		out = append(out, buildRow(comm.Year, LevelCPICategory, comm.CPICategory, comm, cpi))
	}

	return out
}

func buildRow(year int, level, cpiType string, comm internal.InflationRecord, cpi internal.CPIInflationRecord) internal.ComparisonRow {
	return internal.ComparisonRow{
		Year:             year,
		Level:            level,
		CPIType:          cpiType,
		CommissaryYoYPct: comm.YoYPct,
		CPIYoYPct:        cpi.YoYPct,
		YoYDiffPct:       diff(comm.YoYPct, cpi.YoYPct),
		CommissaryCumPct: comm.CumulativePct,
		CPICumPct:        cpi.CumulativePct,
		CumDiffPct:       diff(comm.CumulativePct, cpi.CumulativePct),
	}
}

func diff(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return util.FloatPtr(*a - *b)
}

func sortedByYear(records []internal.InflationRecord) []internal.InflationRecord {
	out := make([]internal.InflationRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CPICategory != out[j].CPICategory {
			return out[i].CPICategory < out[j].CPICategory
		}
		return out[i].Year < out[j].Year
	})
	return out
}
