// Package retail matches commissary items against retail store prices and
// computes the commissary markup over the retail price.
package retail

import (
	"sort"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/util"
)

// DefaultMinScore is the weakest name match still reported.
const DefaultMinScore = 0.55

// Comparison pairs one commissary item with its best-scoring retail
// counterpart. MarkupPct is nil when the retail price is zero.
type Comparison struct {
	ItemName        string
	Size            string
	Category        string
	CommissaryPrice float64
	RetailItem      string
	RetailSize      string
	RetailPrice     float64
	Query           string
	Score           float64
	MarkupPct       *float64
}

// Compare matches each commissary item priced in the given year against
// the retail products, keeping the best candidate at or above minScore.
// Items with no retail counterpart are dropped rather than reported with
// an empty match.
func Compare(listings []internal.Listing, prices []internal.RetailPrice, year int, minScore float64) []Comparison {
	type item struct {
		listing internal.Listing
		sum     float64
		count   int
	}
	items := map[string]*item{}
	order := []string{}
	for _, l := range listings {
		if l.Year != year {
			continue
		}
		id := l.ItemID()
		if items[id] == nil {
			items[id] = &item{listing: l}
			order = append(order, id)
		}
		items[id].sum += (l.PriceMin + l.PriceMax) / 2
		items[id].count++
	}
	sort.Strings(order)

	type candidate struct {
		price  internal.RetailPrice
		norm   string
		tokens []string
	}
	candidates := make([]candidate, 0, len(prices))
	for _, p := range prices {
		candidates = append(candidates, candidate{
			price:  p,
			norm:   util.NormalizeName(p.ItemName),
			tokens: util.Tokenize(p.ItemName),
		})
	}

	out := []Comparison{}
	for _, id := range order {
		it := items[id]
		norm := util.NormalizeName(it.listing.ItemName)
		tokens := util.Tokenize(it.listing.ItemName)

		best := -1
		bestScore := 0.0
		for i, c := range candidates {
			score := scoreNames(norm, c.norm, tokens, c.tokens)
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 || bestScore < minScore {
			continue
		}

		matched := candidates[best].price
		commissaryPrice := it.sum / float64(it.count)
		cmp := Comparison{
			ItemName:        it.listing.ItemName,
			Size:            it.listing.Size,
			Category:        it.listing.Category,
			CommissaryPrice: commissaryPrice,
			RetailItem:      matched.ItemName,
			RetailSize:      matched.Size,
			RetailPrice:     matched.Price,
			Query:           matched.Query,
			Score:           bestScore,
		}
		if matched.Price != 0 {
			cmp.MarkupPct = util.FloatPtr((commissaryPrice - matched.Price) / matched.Price * 100)
		}
		out = append(out, cmp)
	}
	return out
}

// scoreNames blends bigram similarity with token coverage of the
// commissary name; bigrams dominate so word order and fillers matter less.
func scoreNames(a, b string, aTokens, bTokens []string) float64 {
	dice := util.DiceCoefficient(a, b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return dice
	}

	set := map[string]struct{}{}
	for _, t := range bTokens {
		set[t] = struct{}{}
	}
	overlap := 0
	for _, t := range aTokens {
		if _, ok := set[t]; ok {
			overlap++
		}
	}
	tokenScore := float64(overlap) / float64(len(aTokens))
	return 0.65*dice + 0.35*tokenScore
}
