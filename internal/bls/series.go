package bls

import "fmt"

// CPI-U series for the US city average, not seasonally adjusted. The map
// key is the label the rest of the pipeline joins on.
var CPISeries = map[string]string{
	"CPI-U":           "CUUR0000SA0",
	"Food at home":    "CUUR0000SAF11",
	"Personal care":   "CUUR0000SEGA",
	"Apparel":         "CUUR0000SAA",
	"Medicinal drugs": "CUUR0000SEMD",
	"Recreation":      "CUUR0000SERA",
}

// Average-price (APU) series templates; the %s slot takes the census
// region code (0300 = South).
var averagePriceSeries = map[string]string{
	"Ground coffee (per lb)":    "APU%s717311",
	"White bread (per lb)":      "APU%s702111",
	"Ground chuck (per lb)":     "APU%s703112",
	"Eggs, grade A (per dozen)": "APU%s708111",
	"Milk, whole (per gal)":     "APU%s709112",
}

// AveragePriceSeries resolves the APU series IDs for a census region.
func AveragePriceSeries(regionCode string) map[string]string {
	out := make(map[string]string, len(averagePriceSeries))
	for label, tmpl := range averagePriceSeries {
		out[label] = fmt.Sprintf(tmpl, regionCode)
	}
	return out
}
