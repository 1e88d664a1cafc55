package normalize

import (
	"regexp"
	"strings"

	"github.com/francescacollu/prison-inflation/internal/util"
)

// Ordered size patterns, first match wins. Dimensions come before generic
// unit quantities so "9 X 12" is captured whole instead of being misread
// as a trailing "12" with a stray "9 X" left in the name.
var sizePatterns = []*regexp.Regexp{
	// Dimensions with various separators: 9 X 12, 8x11, 9 x 12.
	regexp.MustCompile(`(?i)\s+(\d+\s*x\s*\d+)`),
	regexp.MustCompile(`(?i)\s+(\d+x\d+(?:\s*["'])?)`),
	// Parenthesized unit and count quantities: (12 oz), (10 pk), (50 sheets).
	regexp.MustCompile(`(?i)\((\d+\.?\d*\s*(?:oz|lb|gal|ml|kg|g|mg|l))\)`),
	regexp.MustCompile(`(?i)\((\d+\s*(?:pk|ct|piece|tab|tablet|sheet|bag|color|sht)s?)\)`),
	// Hyphen or space separated at end; a trailing container word is discarded.
	regexp.MustCompile(`(?i)[-\s](\d+\.?\d*\s*(?:oz|lb|gal|ml|kg|g|mg|l))\s*(?:bottle|can|jar|pack)?$`),
	regexp.MustCompile(`(?i)[-\s](\d+\s*(?:pk|ct|piece|tab|tablet|sheet|bag|color|sht)s?)\s*$`),
	// Bare quantities at end without separator.
	regexp.MustCompile(`(?i)\s+(\d+\.?\d*\s*(?:oz|lb|gal|ml|kg|g|mg|l))$`),
	regexp.MustCompile(`(?i)\s+(\d+\s*(?:pk|ct|piece|tab|tablet|sheet|bag|color|sht)s?)$`),
	// Inch/quote measurements at end: 3".
	regexp.MustCompile(`(?i)\s+(\d+\.?\d*\s*["'])$`),
}

var (
	reTrailingPrice = regexp.MustCompile(`\s*\$?\d+\.\d{2}-\s*$`)
	reTrailingInt   = regexp.MustCompile(`\s+\d+$`)
	reEndsInDim     = regexp.MustCompile(`[xX]\s*$`)

	reDimension = regexp.MustCompile(`(\d+\.?\d*)\s*x\s*(\d+\.?\d*)`)
	// Excludes x from the unit letters so dimension tokens are not split.
	reUnitSpacing = regexp.MustCompile(`(\d+\.?\d*)\s*([a-wy-z]+)`)
)

// Clean strips trailing price residue from a raw item name, extracts a size
// when none was supplied, and canonicalizes both. A string that matches no
// size pattern yields an empty size and a whitespace-cleaned name; that is
// a normal outcome, not an error.
func Clean(rawName, size string) (string, string) {
	name := reTrailingPrice.ReplaceAllString(rawName, "")

	// Extract the size before stripping standalone trailing numbers, so
	// numbers that belong to a dimension are not eaten.
	if size == "" {
		for _, re := range sizePatterns {
			m := re.FindStringSubmatch(name)
			if m == nil {
				continue
			}
			size = util.NormalizeSpaces(m[1])
			name = re.ReplaceAllString(name, "")
			break
		}
	}

	// Remaining trailing integers look like price residue, unless the name
	// now ends in a dimension marker (would eat the second number of an
	// unresolved dimension).
	if !reEndsInDim.MatchString(name) {
		name = reTrailingInt.ReplaceAllString(name, "")
	}

	if size != "" {
		size = StandardizeSize(size)
	}

	return util.NormalizeSpaces(name), size
}

// StandardizeSize lowercases a size token, joins dimensions to "NxM" with no
// internal spaces, and puts exactly one space between a number and its unit.
// The dimension join must run before unit spacing or dimension tokens get
// corrupted.
func StandardizeSize(size string) string {
	s := util.NormalizeSpaces(size)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = reDimension.ReplaceAllString(s, "${1}x${2}")
	s = reUnitSpacing.ReplaceAllString(s, "${1} ${2}")
	return util.NormalizeSpaces(s)
}
