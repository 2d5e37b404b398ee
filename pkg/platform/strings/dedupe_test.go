package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil slice", nil, nil},
		{"empty slice", []string{}, []string{}},
		{
			"generated query list keeps rank order",
			[]string{"grant funding nonprofits", "scholarship programs", "grant funding nonprofits"},
			[]string{"grant funding nonprofits", "scholarship programs"},
		},
		{
			"trims whitespace and drops blank entries",
			[]string{"  grants bulgaria ", "", "  ", "ngo funding"},
			[]string{"grants bulgaria", "ngo funding"},
		},
		{
			"case is preserved",
			[]string{"Bulgaria", "bulgaria"},
			[]string{"Bulgaria", "bulgaria"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil slice", nil, nil},
		{
			"folds case before deduping",
			[]string{"Education", "education", "EDUCATION", "health"},
			[]string{"education", "health"},
		},
		{
			"trims and drops empties",
			[]string{" Nonprofit ", "", "nonprofit"},
			[]string{"nonprofit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimLower(tt.input))
		})
	}
}
