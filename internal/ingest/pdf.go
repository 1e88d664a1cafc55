// Package ingest extracts raw price listings from commissary price-list
// PDFs and retail search-result dumps.
package ingest

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/util"
)

var (
	// Facility availability codes prefixing some item lines.
	reFacilityCodes = regexp.MustCompile(`^[EGHK]+\s+`)

	rePriceRange  = regexp.MustCompile(`\$?(\d+\.?\d{0,2})\s*-\s*\$?(\d+\.?\d{0,2})$`)
	rePriceCents  = regexp.MustCompile(`\$?(\d+\.\d{2})$`)
	rePriceWhole  = regexp.MustCompile(`\$?(\d+)$`)
	reCategory    = regexp.MustCompile(`^[A-Z][A-Z\s,/&-]+$`)
	reAnyLowercase = regexp.MustCompile(`[a-z]`)
)

// Inline size tails tried in order against the price-stripped line; the
// first match is removed from the name and kept as the raw size.
var inlineSizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[-\s](\d+\.?\d*\s*oz)$`),
	regexp.MustCompile(`(?i)[-\s](\d+\.?\d*\s*lb)$`),
	regexp.MustCompile(`(?i)[-\s](\d+\s*pk)$`),
	regexp.MustCompile(`(?i)\((\d+\s*pk)\)$`),
	regexp.MustCompile(`(?i)\((\d+\s*ct)\)$`),
	regexp.MustCompile(`(?i)\((\d+\s*piece)\)$`),
	regexp.MustCompile(`(?i)\((\d+\s*tabs)\)$`),
	regexp.MustCompile(`(?i)\((\d+\s*tablets)\)$`),
	regexp.MustCompile(`(?i)\((\d+\s*bags)\)$`),
	regexp.MustCompile(`(?i)\((\d+\s*sheet)\)$`),
	regexp.MustCompile(`(?i)\((\d+\s*sht)\)$`),
	regexp.MustCompile(`(?i)[-\s](\d+\.?\d*")$`),
	regexp.MustCompile(`(?i)[-\s](\d+x\d+)$`),
}

// ExtractPDF pulls raw listings out of a commissary price-list PDF. Lines
// that carry no parseable trailing price are skipped; all-caps lines with
// no digits switch the current category.
func ExtractPDF(path string, year int) ([]internal.RawListing, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price list: %w", err)
	}
	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	lines := []string{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		lines = append(lines, splitLines(text)...)
	}

	return ParseLines(lines, year), nil
}

// ParseLines walks price-list lines, tracking the current category header.
func ParseLines(lines []string, year int) []internal.RawListing {
	out := []internal.RawListing{}
	category := "UNKNOWN"

	for _, line := range lines {
		line = util.NormalizeSpaces(line)
		if line == "" {
			continue
		}
		if isCategoryHeader(line) {
			category = line
			continue
		}
		if listing, ok := ParseItemLine(line, category, year); ok {
			out = append(out, listing)
		}
	}
	return out
}

// ParseItemLine parses one "<name> [size] <price or range>" line. Lines
// without a trailing price are not items.
func ParseItemLine(line, category string, year int) (internal.RawListing, bool) {
	line = strings.TrimSpace(line)
	line = reFacilityCodes.ReplaceAllString(line, "")
	if line == "" {
		return internal.RawListing{}, false
	}

	var priceMin, priceMax float64
	var rest string

	if m := rePriceRange.FindStringSubmatchIndex(line); m != nil {
		lo, err1 := strconv.ParseFloat(line[m[2]:m[3]], 64)
		hi, err2 := strconv.ParseFloat(line[m[4]:m[5]], 64)
		if err1 != nil || err2 != nil {
			return internal.RawListing{}, false
		}
		priceMin, priceMax = lo, hi
		rest = strings.TrimSpace(line[:m[0]])
	} else if m := rePriceCents.FindStringSubmatchIndex(line); m != nil {
		p, err := strconv.ParseFloat(line[m[2]:m[3]], 64)
		if err != nil {
			return internal.RawListing{}, false
		}
		priceMin, priceMax = p, p
		rest = strings.TrimSpace(line[:m[0]])
	} else if m := rePriceWhole.FindStringSubmatchIndex(line); m != nil {
		p, err := strconv.ParseFloat(line[m[2]:m[3]], 64)
		if err != nil {
			return internal.RawListing{}, false
		}
		priceMin, priceMax = p, p
		rest = strings.TrimSpace(line[:m[0]])
	} else {
		return internal.RawListing{}, false
	}

	if rest == "" {
		return internal.RawListing{}, false
	}

	size := ""
	name := rest
	for _, re := range inlineSizePatterns {
		if m := re.FindStringSubmatchIndex(rest); m != nil {
			size = strings.TrimSpace(rest[m[2]:m[3]])
			name = strings.Trim(rest[:m[0]], " -")
			break
		}
	}

	return internal.RawListing{
		Year:     year,
		Category: category,
		RawText:  name,
		Size:     size,
		PriceMin: priceMin,
		PriceMax: priceMax,
		Source:   internal.SourcePDF,
	}, true
}

func isCategoryHeader(line string) bool {
	if reAnyLowercase.MatchString(line) || strings.ContainsAny(line, "0123456789$") {
		return false
	}
	return reCategory.MatchString(line)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
