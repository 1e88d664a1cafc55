package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/francescacollu/prison-inflation/internal"
)

// Mover is one item ranked by cumulative inflation.
type Mover struct {
	ItemName      string
	Size          string
	Category      string
	CumulativePct float64
}

// ClassSummary describes the cumulative-inflation distribution of one
// essential class at the latest observed year.
type ClassSummary struct {
	Status internal.EssentialStatus
	Items  int

	MeanCumPct   float64
	MedianCumPct float64
	StdDevCumPct float64
	Q1CumPct     float64
	Q3CumPct     float64

	ShareAbove50Pct float64
	ShareNegative   float64

	TopMovers    []Mover
	BottomMovers []Mover
}

// SummarizeEssential builds per-class distributions from item-level
// records at the latest year carrying cumulative figures. Items whose
// cumulative percentage is nil (missing or zero baseline) are left out
// of the distributions.
func SummarizeEssential(itemLevel []internal.InflationRecord, moverCount int) ([]ClassSummary, int, error) {
	latest := 0
	for _, rec := range itemLevel {
		if rec.CumulativePct != nil && rec.Year > latest {
			latest = rec.Year
		}
	}
	if latest == 0 {
		return nil, 0, fmt.Errorf("no item records with cumulative inflation")
	}

	byStatus := map[internal.EssentialStatus][]Mover{}
	for _, rec := range itemLevel {
		if rec.Year != latest || rec.CumulativePct == nil {
			continue
		}
		byStatus[rec.Essential] = append(byStatus[rec.Essential], Mover{
			ItemName:      rec.ItemName,
			Size:          rec.Size,
			Category:      rec.Category,
			CumulativePct: *rec.CumulativePct,
		})
	}

	statuses := make([]internal.EssentialStatus, 0, len(byStatus))
	for s := range byStatus {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	out := make([]ClassSummary, 0, len(statuses))
	for _, status := range statuses {
		movers := byStatus[status]
		summary, err := summarizeClass(status, movers, moverCount)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, summary)
	}
	return out, latest, nil
}

func summarizeClass(status internal.EssentialStatus, movers []Mover, moverCount int) (ClassSummary, error) {
	values := make(stats.Float64Data, len(movers))
	above50, negative := 0, 0
	for i, m := range movers {
		values[i] = m.CumulativePct
		if m.CumulativePct > 50 {
			above50++
		}
		if m.CumulativePct < 0 {
			negative++
		}
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return ClassSummary{}, fmt.Errorf("summarize %s: %w", status, err)
	}
	median, err := stats.Median(values)
	if err != nil {
		return ClassSummary{}, fmt.Errorf("summarize %s: %w", status, err)
	}
	// A single-item class has no sample deviation or quartiles; report
	// zeros rather than failing the whole summary.
	var stddev, q1, q3 float64
	if len(values) > 1 {
		stddev, _ = stats.StandardDeviationSample(values)
	}
	if quartiles, err := stats.Quartile(values); err == nil {
		q1, q3 = quartiles.Q1, quartiles.Q3
	}

	sort.SliceStable(movers, func(i, j int) bool { return movers[i].CumulativePct > movers[j].CumulativePct })
	top := append([]Mover(nil), movers[:min(moverCount, len(movers))]...)
	bottom := append([]Mover(nil), movers[max(0, len(movers)-moverCount):]...)
	sort.SliceStable(bottom, func(i, j int) bool { return bottom[i].CumulativePct < bottom[j].CumulativePct })

	n := float64(len(movers))
	return ClassSummary{
		Status:          status,
		Items:           len(movers),
		MeanCumPct:      mean,
		MedianCumPct:    median,
		StdDevCumPct:    stddev,
		Q1CumPct:        q1,
		Q3CumPct:        q3,
		ShareAbove50Pct: float64(above50) / n * 100,
		ShareNegative:   float64(negative) / n * 100,
		TopMovers:       top,
		BottomMovers:    bottom,
	}, nil
}

// FormatEssentialSummary renders the per-class report for terminal output.
func FormatEssentialSummary(summaries []ClassSummary, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cumulative inflation by essential status, %d\n", year)
	for _, s := range summaries {
		fmt.Fprintf(&b, "\n%s (%d items)\n", s.Status, s.Items)
		fmt.Fprintf(&b, "  mean=%.2f%% median=%.2f%% stddev=%.2f%% q1=%.2f%% q3=%.2f%%\n",
			s.MeanCumPct, s.MedianCumPct, s.StdDevCumPct, s.Q1CumPct, s.Q3CumPct)
		fmt.Fprintf(&b, "  above +50%%: %.1f%%  below 0%%: %.1f%%\n", s.ShareAbove50Pct, s.ShareNegative)
		if len(s.TopMovers) > 0 {
			fmt.Fprintf(&b, "  top movers:\n")
			for _, m := range s.TopMovers {
				fmt.Fprintf(&b, "    %+8.2f%%  %s\n", m.CumulativePct, moverLabel(m))
			}
		}
		if len(s.BottomMovers) > 0 {
			fmt.Fprintf(&b, "  bottom movers:\n")
			for _, m := range s.BottomMovers {
				fmt.Fprintf(&b, "    %+8.2f%%  %s\n", m.CumulativePct, moverLabel(m))
			}
		}
	}
	return b.String()
}

// WriteEssentialSummary persists the per-class distribution as CSV.
func WriteEssentialSummary(path string, summaries []ClassSummary, year int) error {
	rows := [][]string{{
		"year", "essential", "items",
		"mean_cum_pct", "median_cum_pct", "stddev_cum_pct", "q1_cum_pct", "q3_cum_pct",
		"share_above_50_pct", "share_negative_pct",
	}}
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(year),
			string(s.Status),
			strconv.Itoa(s.Items),
			formatFloat(s.MeanCumPct),
			formatFloat(s.MedianCumPct),
			formatFloat(s.StdDevCumPct),
			formatFloat(s.Q1CumPct),
			formatFloat(s.Q3CumPct),
			formatFloat(s.ShareAbove50Pct),
			formatFloat(s.ShareNegative),
		})
	}
	return writeCSV(path, rows)
}

func moverLabel(m Mover) string {
	if m.Size == "" {
		return m.ItemName
	}
	return m.ItemName + " (" + m.Size + ")"
}
