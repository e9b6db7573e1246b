package verify

import "strings"

// QueryStrategy formulates the search query for a round. Round 1 always
// receives the raw claim text; later rounds receive the previous round's
// shortfall so they can broaden or narrow. Implementations must never
// return round 1's exact query for a later round.
type QueryStrategy func(round int, claimText string, supportingSoFar int) string

// DefaultQueryStrategy issues the raw claim text in round 1 and broadens
// in later rounds by dropping stopwords and progressively trimming the
// least-significant trailing terms.
func DefaultQueryStrategy(round int, claimText string, supportingSoFar int) string {
	if round <= 1 {
		return claimText
	}

	terms := significantTerms(claimText)
	if len(terms) == 0 {
		// Degenerate claim text; quote it so round 1 is never re-issued
		// verbatim
		return "\"" + strings.ToLower(strings.TrimSpace(claimText)) + "\""
	}

	// Each extra round trims one more trailing term, down to a floor of 3
	keep := len(terms) - (round - 2)
	if keep < 3 {
		keep = 3
	}
	if keep > len(terms) {
		keep = len(terms)
	}

	query := strings.Join(terms[:keep], " ")
	if query == claimText {
		if len(terms) > 1 {
			query = strings.Join(terms[:len(terms)-1], " ")
		} else {
			query = "\"" + terms[0] + "\""
		}
	}
	return query
}
