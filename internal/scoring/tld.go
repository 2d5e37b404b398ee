// Package scoring implements the confidence-scoring and anti-spam rules:
// fixed-point arithmetic over metadata-only signals, reproducible
// regardless of processing order. Scores are integer hundredths
// internally and in the store's columns (INTEGER, 0..100); they become
// scale-2 decimals only at the presentation boundary.
package scoring

import "strings"

// TLDTier is the ordinal classification of a top-level domain that biases
// confidence.
type TLDTier int

const (
	TierSpam          TLDTier = 5 // known-spam suffixes: -0.20
	TierInformational TLDTier = 4 // 0.00
	TierCommercial    TLDTier = 3 // .com/.net: +0.08
	TierOrganizational TLDTier = 2 // .org: +0.15
	TierInstitutional TLDTier = 1 // .ngo/.gov/.edu: +0.20
)

// tldScores maps a TLD (without leading dot) to its fixed-point
// hundredths contribution.
var tldScores = map[string]int64{
	"ngo": 20,
	"gov": 20,
	"edu": 20,
	"org": 15,
	"com": 8,
	"net": 8,
	// informational TLDs score 0 and need no entry
	"xyz":    -20,
	"top":    -20,
	"loan":   -20,
	"click":  -20,
	"work":   -20,
	"review": -20,
	"stream": -20,
	"gq":     -20,
	"tk":     -20,
	"ml":     -20,
	"ga":     -20,
	"cf":     -20,
}

// informationalTLDs score 0.00 but are recognized so operators can audit
// classification coverage; absence from tldScores already yields 0.
var informationalTLDs = map[string]bool{
	"info": true,
	"biz":  true,
	"io":   true,
	"co":   true,
}

// spamTLDs is the tier-5 rejection set consulted by the pipeline's
// spam-TLD filter stage, distinct from (but a subset
// of) the negative-scoring entries above: filtering happens before scoring
// ever runs.
var spamTLDs = map[string]bool{
	"xyz":    true,
	"top":    true,
	"loan":   true,
	"click":  true,
	"work":   true,
	"review": true,
	"stream": true,
	"gq":     true,
	"tk":     true,
	"ml":     true,
	"ga":     true,
	"cf":     true,
}

// TLD extracts the top-level domain label from a normalized host.
func TLD(host string) string {
	host = strings.TrimSuffix(host, ".")
	parts := strings.Split(host, ".")
	if len(parts) == 0 {
		return ""
	}
	return strings.ToLower(parts[len(parts)-1])
}

// IsSpamTLD reports whether host's TLD is in the tier-5 spam-suffix table
// consulted by the pipeline's spam-TLD filter stage.
func IsSpamTLD(host string) bool {
	return spamTLDs[TLD(host)]
}

// TLDScore returns the fixed-point hundredths bias for host's TLD.
// Unrecognized and informational TLDs score zero.
func TLDScore(host string) int64 {
	return tldScores[TLD(host)]
}
