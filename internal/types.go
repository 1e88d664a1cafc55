package internal

type ListingSource string

const (
	SourcePDF        ListingSource = "pdf"
	SourceRetailText ListingSource = "retail_text"
	SourceRetailHTML ListingSource = "retail_html"
	SourceCSV        ListingSource = "csv"
)

// RawListing is one row scraped from a price list, before cleaning.
type RawListing struct {
	Year     int
	Category string
	RawText  string
	Size     string
	PriceMin float64
	PriceMax float64
	Source   ListingSource
}

// Listing is a cleaned commissary row: the item name has price residue
// stripped and the size is canonical.
type Listing struct {
	Year     int
	Category string
	ItemName string
	Size     string
	PriceMin float64
	PriceMax float64
}

// ItemID is the item identity key: item_name + "|" + size.
func (l Listing) ItemID() string {
	return l.ItemName + "|" + l.Size
}

// PriceObservation is one price point per item per year.
type PriceObservation struct {
	ItemID      string
	ItemName    string
	Size        string
	Category    string
	CPICategory string
	Year        int
	PriceMin    float64
	PriceMax    float64
	PriceAvg    float64
}

type EssentialStatus string

const (
	Essential    EssentialStatus = "essential"
	NonEssential EssentialStatus = "non-essential"
)

// InflationRecord is one entity/year point of an inflation series. The
// entity is an item, a category, a CPI category, or "overall" depending
// on the level. YoYPct is nil at the baseline year and whenever the
// prior-year observation is absent; CumulativePct is nil when the
// baseline price is missing or zero.
type InflationRecord struct {
	Year          int
	Level         string
	ItemName      string
	Size          string
	Category      string
	CPICategory   string
	Essential     EssentialStatus
	Price         float64
	YoYPct        *float64
	CumulativePct *float64
}

// CPIObservation is one annual CPI (or average price) value.
type CPIObservation struct {
	Year    int
	CPIType string
	Value   float64
}

// CPIInflationRecord mirrors InflationRecord for a CPI series.
type CPIInflationRecord struct {
	Year          int
	CPIType       string
	Value         float64
	YoYPct        *float64
	CumulativePct *float64
}

// ComparisonRow joins commissary inflation against a CPI series for one year.
type ComparisonRow struct {
	Year             int
	Level            string
	CPIType          string
	CommissaryYoYPct *float64
	CPIYoYPct        *float64
	YoYDiffPct       *float64
	CommissaryCumPct *float64
	CPICumPct        *float64
	CumDiffPct       *float64
}

// RetailPrice is one product scraped from a retail (HEB) search dump.
type RetailPrice struct {
	Query     string
	ItemName  string
	Size      string
	Price     float64
	UnitPrice *float64
	Unit      *string
	Aisle     *string
}
