package catalog

import (
	"sort"
	"strings"
	"unicode"
)

const (
	exactWeight  = 3
	prefixWeight = 1
)

// Search ranks products by how well their names match query.
// A name token equal to a query token scores exactWeight; a name token
// starting with a query token scores prefixWeight. Products scoring zero
// are dropped. Ties keep catalog order. An empty query returns nil.
func Search(products []Product, query string) []Product {
	queryTokens := tokenize(normalize(query))
	if len(queryTokens) == 0 {
		return nil
	}

	type scoredProduct struct {
		product Product
		score   int
	}

	var scored []scoredProduct
	for _, p := range products {
		nameTokens := tokenize(normalize(p.Name))

		score, matched := 0, 0
		for _, qt := range queryTokens {
			best := 0
			for _, nt := range nameTokens {
				switch {
				case nt == qt:
					best = exactWeight
				case strings.HasPrefix(nt, qt) && best < prefixWeight:
					best = prefixWeight
				}
			}
			if best > 0 {
				matched++
			}
			score += best
		}

		// Every query token must hit something, otherwise "ice latte" would
		// list every product containing "latte".
		if matched < len(queryTokens) {
			continue
		}
		scored = append(scored, scoredProduct{product: p, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := make([]Product, len(scored))
	for i, s := range scored {
		out[i] = s.product
	}
	return out
}

// normalize lowercases s and replaces non-alphanumeric runes with spaces.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

func tokenize(s string) []string {
	return strings.Fields(s)
}
