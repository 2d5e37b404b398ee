package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_CompoundBonus(t *testing.T) {
	j := Score(Input{
		Title:         "European Commission Grants for Bulgaria",
		Description:   "Apply for funding and scholarships today",
		Host:          "example.ngo",
		TargetRegions: []string{"Bulgaria"},
	})
	assert.Equal(t, int64(90), j.Aggregate)
}

func TestScore_SpamTLDClamp(t *testing.T) {
	j := Score(Input{
		Title:       "Grants Available",
		Description: "Scholarships offered",
		Host:        "spam-site.xyz",
	})
	assert.Equal(t, int64(5), j.Aggregate)
}

func TestScore_EmptyInputsNeverFail(t *testing.T) {
	j := Score(Input{})
	assert.Equal(t, int64(0), j.Aggregate)
}

func TestScore_ClampsToRange(t *testing.T) {
	for _, host := range []string{"a.ngo", "a.com", "a.xyz", "a.unknown"} {
		j := Score(Input{
			Title:         "Grant foundation ministry council",
			Description:   "funding scholarship award subsidy",
			Host:          host,
			TargetRegions: []string{"national"},
		})
		assert.GreaterOrEqual(t, j.Aggregate, int64(0))
		assert.LessOrEqual(t, j.Aggregate, int64(100))
	}
}

func TestScore_Deterministic(t *testing.T) {
	in := Input{Title: "Grants for Africa", Description: "funding", Host: "x.org", TargetRegions: []string{"Africa"}}
	first := Score(in)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Score(in))
	}
}

func TestIsSpamTLD(t *testing.T) {
	assert.True(t, IsSpamTLD("spam-site.xyz"))
	assert.False(t, IsSpamTLD("example.ngo"))
}

func TestDetectAntiSpam_CrossCategory(t *testing.T) {
	flags := DetectAntiSpam("casino-wins.com", "University Scholarship Program", "for students at our school")
	assert.True(t, flags.CrossCategory)
}

func TestDetectAntiSpam_KeywordStuffing(t *testing.T) {
	flags := DetectAntiSpam("example.com", "grant grant grant grant grant", "")
	assert.True(t, flags.KeywordStuffing)
}
