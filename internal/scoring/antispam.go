package scoring

import (
	"math"
	"strings"
)

// AntiSpamPolicy selects how a detected anti-spam signal is handled:
// pre-filter (drop), score-zero (keep low), or disabled.
type AntiSpamPolicy string

const (
	AntiSpamPreFilter AntiSpamPolicy = "PRE_FILTER"
	AntiSpamScoreZero AntiSpamPolicy = "SCORE_ZERO"
	AntiSpamDisabled  AntiSpamPolicy = "DISABLED"
)

// AntiSpamFlags records which sub-checks fired for one result,
// independent of the policy applied.
type AntiSpamFlags struct {
	KeywordStuffing       bool
	DomainMetadataMismatch bool
	UnnaturalKeywordList   bool
	CrossCategory          bool
}

// Any reports whether at least one sub-check detected spam.
func (f AntiSpamFlags) Any() bool {
	return f.KeywordStuffing || f.DomainMetadataMismatch || f.UnnaturalKeywordList || f.CrossCategory
}

// DetectAntiSpam runs the four optional pre-filter sub-checks against a
// result's host/title/description.
func DetectAntiSpam(host, title, description string) AntiSpamFlags {
	combined := title + " " + description
	return AntiSpamFlags{
		KeywordStuffing:        uniqueWordRatio(combined) < 0.5,
		DomainMetadataMismatch: domainMetadataCosine(host, combined) < 0.15,
		UnnaturalKeywordList:   countFunctionWords(combined) < 2,
		CrossCategory:          containsAny(host, gamblingEssayMillTerms) && containsAny(combined, educationTerms),
	}
}

// uniqueWordRatio is the ratio of distinct tokens to total tokens in text,
// the basis for the "keyword stuffing" check. Empty text has no stuffing signal and returns 1.0.
func uniqueWordRatio(text string) float64 {
	words := tokenize(text)
	if len(words) == 0 {
		return 1.0
	}
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[w] = true
	}
	return float64(len(seen)) / float64(len(words))
}

// countFunctionWords counts how many of the curated common-English
// function words appear in text.
func countFunctionWords(text string) int {
	count := 0
	for _, w := range tokenize(text) {
		if functionWords[w] {
			count++
		}
	}
	return count
}

// domainMetadataCosine computes a bag-of-words cosine similarity between
// the host's own keyword bag (its labels split on '.' and '-') and the
// combined title+description bag, the basis for the "domain-metadata
// mismatch" check. A host with no label overlap at all with
// its own metadata returns 0.0.
func domainMetadataCosine(host, combined string) float64 {
	hostWords := splitHostWords(host)
	textWords := tokenize(combined)
	if len(hostWords) == 0 || len(textWords) == 0 {
		return 0.0
	}

	hostVec := wordCounts(hostWords)
	textVec := wordCounts(textWords)

	var dot, hostNorm, textNorm float64
	for w, c := range hostVec {
		hostNorm += float64(c * c)
		if tc, ok := textVec[w]; ok {
			dot += float64(c * tc)
		}
	}
	for _, c := range textVec {
		textNorm += float64(c * c)
	}
	if hostNorm == 0 || textNorm == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(hostNorm) * math.Sqrt(textNorm))
}

func splitHostWords(host string) []string {
	var words []string
	for _, label := range strings.FieldsFunc(host, func(r rune) bool {
		return r == '.' || r == '-'
	}) {
		words = append(words, tokenize(label)...)
	}
	return words
}

func wordCounts(words []string) map[string]int {
	m := make(map[string]int, len(words))
	for _, w := range words {
		m[w]++
	}
	return m
}
