package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/util"
)

var (
	reResultsMarker = regexp.MustCompile(`\d+\s+results`)
	reDollarPrice   = regexp.MustCompile(`\$(\d+\.\d+)`)
	reUnitPrice     = regexp.MustCompile(`\(\$\s*(\d+\.?\d*)\s*/\s*(\w+)\)`)
	reAisle         = regexp.MustCompile(`^Aisle\s+(\S+)`)
)

// LoadRetailFile parses a saved retail search-result dump, dispatching on
// the file extension: .html/.htm pages are parsed as tables, anything
// else as a plain-text dump.
func LoadRetailFile(path, query string) ([]internal.RetailPrice, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read retail dump: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return ParseRetailHTML(string(blob), query)
	default:
		return ParseRetailText(splitLines(string(blob)), query), nil
	}
}

// ParseRetailText walks a copy-pasted search-result dump. Each product is
// an "Add <name> to list" marker followed by a "<name>, <size>" line, a
// "$<price>" line, an optional "each" line, an optional "($<unit price> /
// <unit>)" line and an optional "Aisle <n>" line. Products without a
// price are dropped.
func ParseRetailText(lines []string, query string) []internal.RetailPrice {
	// A "N results" header, when present, marks where listings start.
	start := 0
	for i, line := range lines {
		if reResultsMarker.MatchString(line) {
			start = i + 1
			break
		}
	}

	out := []internal.RetailPrice{}
	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "Add ") || !strings.HasSuffix(line, " to list") {
			continue
		}

		p := internal.RetailPrice{
			Query:    query,
			ItemName: strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "Add "), " to list")),
		}

		if i+1 < len(lines) {
			name, size := splitNameSize(strings.TrimSpace(lines[i+1]))
			if name != "" {
				p.ItemName = name
			}
			p.Size = size
		}

		havePrice := false
		for j := i + 1; j < len(lines) && j <= i+10; j++ {
			check := strings.TrimSpace(lines[j])
			if strings.HasPrefix(check, "Add ") && strings.HasSuffix(check, " to list") {
				break
			}
			switch {
			case strings.HasPrefix(check, "($"):
				if m := reUnitPrice.FindStringSubmatch(check); m != nil && p.UnitPrice == nil {
					if v, ok := util.ParsePrice(m[1]); ok {
						p.UnitPrice = util.FloatPtr(v)
						p.Unit = util.StringPtr(m[2])
					}
				}
			case strings.HasPrefix(check, "$") && !havePrice:
				if m := reDollarPrice.FindStringSubmatch(check); m != nil {
					if v, ok := util.ParsePrice(m[1]); ok {
						p.Price = v
						havePrice = true
					}
				}
			default:
				if m := reAisle.FindStringSubmatch(check); m != nil && p.Aisle == nil {
					p.Aisle = util.StringPtr(m[1])
				}
			}
		}

		if havePrice {
			out = append(out, p)
		}
	}
	return out
}

// ParseRetailHTML extracts products from tables in a saved results page,
// locating columns by header name rather than position.
func ParseRetailHTML(html, query string) ([]internal.RetailPrice, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse retail html: %w", err)
	}

	out := []internal.RetailPrice{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.ToLower(strings.TrimSpace(cell.Text())))
		})

		nameIdx := findHeaderIndex(headers, []string{"item", "name", "product"})
		sizeIdx := findHeaderIndex(headers, []string{"size"})
		priceIdx := findHeaderIndex(headers, []string{"price"})
		unitIdx := findHeaderIndex(headers, []string{"unit"})

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(cell.Text()))
			})
			if len(cells) == 0 {
				return
			}

			name := pickCell(cells, nameIdx, 0)
			priceCell := pickCell(cells, priceIdx, -1)
			price, ok := util.ParsePrice(strings.TrimPrefix(priceCell, "$"))
			if name == "" || !ok {
				return
			}

			p := internal.RetailPrice{
				Query:    query,
				ItemName: name,
				Size:     pickCell(cells, sizeIdx, -1),
				Price:    price,
			}
			if unitCell := pickCell(cells, unitIdx, -1); unitCell != "" {
				if m := reUnitPrice.FindStringSubmatch(unitCell); m != nil {
					if v, ok := util.ParsePrice(m[1]); ok {
						p.UnitPrice = util.FloatPtr(v)
						p.Unit = util.StringPtr(m[2])
					}
				}
			}
			out = append(out, p)
		})
	})

	return out, nil
}

func splitNameSize(line string) (string, string) {
	if idx := strings.Index(line, ","); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
	}
	return strings.TrimSpace(line), ""
}

func findHeaderIndex(headers []string, probes []string) int {
	for i, h := range headers {
		for _, probe := range probes {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

func pickCell(cells []string, idx int, fallback int) string {
	if idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	if fallback >= 0 && fallback < len(cells) {
		return strings.TrimSpace(cells[fallback])
	}
	return ""
}
