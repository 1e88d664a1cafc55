package inflation

import (
	"sort"

	"github.com/francescacollu/prison-inflation/internal"
)

// CalculateCPI derives inflation series from annual CPI values, one series
// per cpi_type. A series with no value at the baseline year is dropped:
// there is nothing to anchor its cumulative change to.
func CalculateCPI(observations []internal.CPIObservation, baselineYear int) []internal.CPIInflationRecord {
	bySeries := map[string][]internal.CPIObservation{}
	for _, o := range observations {
		bySeries[o.CPIType] = append(bySeries[o.CPIType], o)
	}

	types := make([]string, 0, len(bySeries))
	for t := range bySeries {
		types = append(types, t)
	}
	sort.Strings(types)

	out := []internal.CPIInflationRecord{}
	for _, cpiType := range types {
		series := bySeries[cpiType]
		sort.SliceStable(series, func(i, j int) bool { return series[i].Year < series[j].Year })

		baseline, ok := cpiAtYear(series, baselineYear)
		if !ok {
			continue
		}

		for _, o := range series {
			rec := internal.CPIInflationRecord{
				Year:          o.Year,
				CPIType:       o.CPIType,
				Value:         o.Value,
				CumulativePct: pctChange(o.Value, baseline.Value),
			}
			if o.Year > baselineYear {
				if prev, ok := cpiAtYear(series, o.Year-1); ok {
					rec.YoYPct = pctChange(o.Value, prev.Value)
				}
			}
			out = append(out, rec)
		}
	}
	return out
}

func cpiAtYear(series []internal.CPIObservation, year int) (internal.CPIObservation, bool) {
	for _, o := range series {
		if o.Year == year {
			return o, true
		}
	}
	return internal.CPIObservation{}, false
}
