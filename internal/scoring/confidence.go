package scoring

import (
	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
)

// scale is the fixed-point denominator: all scores are integer
// hundredths.
const scale = 100

// clamp bounds a fixed-point hundredths value to [0, 100].
func clamp(v int64) int64 {
	if v > scale {
		return scale
	}
	if v < 0 {
		return 0
	}
	return v
}

// Input bundles the metadata-only signals the confidence rule consumes.
// Null/empty fields contribute zero, never an error.
type Input struct {
	Title           string
	Description     string
	Host            string
	TargetRegions   []string
	OrgTypeRequired bool // reserved: request explicitly asked for org-type match; unused in v1 scoring, kept for forward compatibility with SearchCriteria.RecipientTypes
}

// Judgment is the per-judge breakdown behind a candidate's aggregate
// confidence, expressed purely in fixed-point
// hundredths.
type Judgment struct {
	TLDScore          int64
	FundingKeywords   int64
	GeographicScore   int64
	OrgTypeScore      int64
	CompoundBonus     int64
	Aggregate         int64
	KeywordsFound     []string
}

// Score computes the confidence rule: TLD tier base, plus
// funding-keyword/geographic/org-type signal bonuses, plus a compound
// bonus when three or more signals co-occur, clamped to [0.00, 1.00] at
// scale 2. It is pure and deterministic: identical inputs always produce
// identical output regardless of call order.
func Score(in Input) Judgment {
	j := Judgment{TLDScore: TLDScore(in.Host)}

	titleKW := in.Title != "" && HasFundingKeyword(in.Title)
	descKW := in.Description != "" && HasFundingKeyword(in.Description)
	combined := in.Title + " " + in.Description

	if titleKW {
		j.FundingKeywords += 15
		j.KeywordsFound = append(j.KeywordsFound, "title_funding_keyword")
	}
	if descKW {
		j.FundingKeywords += 10
		j.KeywordsFound = append(j.KeywordsFound, "description_funding_keyword")
	}

	geo := (in.Title != "" || in.Description != "") && HasGeographicMatch(combined, in.TargetRegions)
	if geo {
		j.GeographicScore = 15
		j.KeywordsFound = append(j.KeywordsFound, "geographic_match")
	}

	org := (in.Title != "" || in.Description != "") && HasOrgTypeMatch(combined)
	if org {
		j.OrgTypeScore = 15
		j.KeywordsFound = append(j.KeywordsFound, "org_type_match")
	}

	// Compound bonus: 3+ of {title-keyword, description-keyword,
	// geographic, org-type} present.
	signals := 0
	for _, present := range []bool{titleKW, descKW, geo, org} {
		if present {
			signals++
		}
	}
	if signals >= 3 {
		j.CompoundBonus = 15
	}

	sum := j.TLDScore + j.FundingKeywords + j.GeographicScore + j.OrgTypeScore + j.CompoundBonus
	j.Aggregate = clamp(sum)
	return j
}

// ToMetadataJudgment converts a scoring Judgment into the persisted
// fd.MetadataJudgment row for a candidate.
func (j Judgment) ToMetadataJudgment(candidateID pid.CandidateID, engine string) fd.MetadataJudgment {
	return fd.MetadataJudgment{
		CandidateID:              candidateID,
		FundingKeywordsScore:     j.FundingKeywords,
		DomainCredibilityScore:   j.TLDScore,
		GeographicRelevanceScore: j.GeographicScore,
		OrganizationTypeScore:    j.OrgTypeScore,
		Aggregate:                j.Aggregate,
		KeywordsFound:            j.KeywordsFound,
		Engine:                   engine,
	}
}
