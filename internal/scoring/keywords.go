package scoring

import "strings"

// fundingKeywords is the curated multilingual funding-terminology set. A
// handful of non-English equivalents are included since the generator's
// AI-optimized template and criteria both carry a Language field.
var fundingKeywords = []string{
	"grant", "grants", "scholarship", "scholarships", "fellowship", "fellowships",
	"funding", "fund", "award", "awards", "subsidy", "subsidies", "loan", "loans",
	"bursary", "stipend", "endowment", "sponsorship",
	// Spanish
	"beca", "becas", "subvencion", "subvención",
	// French
	"bourse", "subvention",
	// German
	"stipendium", "förderung", "foerderung",
}

// geographicTerms are region-indicating words checked against the target
// geography list. These are generic
// qualifiers; specific region names from the request's criteria are
// matched directly by HasGeographicMatch.
var geographicTerms = []string{
	"national", "regional", "international", "global", "worldwide",
	"developing countries", "least developed",
}

// orgTypeTerms are the organization-type indicator words (ministry,
// foundation, commission, council, and friends).
var orgTypeTerms = []string{
	"ministry", "foundation", "commission", "council", "agency",
	"institute", "federation", "association", "trust", "nonprofit",
	"non-profit", "ngo",
}

// functionWords is a small set of common English function words used by
// the "unnatural keyword list" anti-spam check.
var functionWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "for": true, "in": true, "on": true, "with": true, "is": true,
	"are": true, "this": true, "that": true, "by": true, "from": true, "at": true,
}

// gamblingEssayMillTerms is the curated scammer-industry set for the
// cross-category anti-spam check.
var gamblingEssayMillTerms = []string{
	"casino", "poker", "betting", "slots", "jackpot", "wager",
	"essay writing service", "essay mill", "buy essays", "paper writing",
}

var educationTerms = []string{
	"university", "college", "school", "student", "academic", "education",
	"degree", "tuition",
}

// tokenize lowercases s and splits it into alphanumeric words, discarding
// punctuation, for use by every keyword/ratio check in this package.
func tokenize(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return words
}

// containsAny reports whether text (lowercased) contains any of terms as
// a substring match, so phrase-level terms like "least developed" work.
func containsAny(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// HasFundingKeyword reports whether text contains a funding-keyword term.
func HasFundingKeyword(text string) bool {
	return containsAny(text, fundingKeywords)
}

// HasGeographicMatch reports whether text mentions a target region. regions
// is the request's geographic-eligibility criteria; the generic geographicTerms set is also consulted so a
// result praising "international development" scores even without naming a
// specific country.
func HasGeographicMatch(text string, regions []string) bool {
	if containsAny(text, regions) {
		return true
	}
	return containsAny(text, geographicTerms)
}

// HasOrgTypeMatch reports whether text contains an organization-type
// term.
func HasOrgTypeMatch(text string) bool {
	return containsAny(text, orgTypeTerms)
}
