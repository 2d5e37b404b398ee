package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundingdiscovery/pkg/fderrors"
)

func TestParseSessionID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseSessionID("")
		require.Error(t, err)
		assert.True(t, fderrors.HasCode(err, fderrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseSessionID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, fderrors.HasCode(err, fderrors.CodeInvalidInput))
	})

	t.Run("rejects nil uuid", func(t *testing.T) {
		_, err := ParseSessionID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, fderrors.HasCode(err, fderrors.CodeInvalidInput))
	})

	t.Run("accepts valid uuid", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseSessionID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, SessionID(valid), id)
	})
}

func TestTypeDistinction(t *testing.T) {
	sessionID := NewSessionID()
	domainID := NewDomainID()

	assert.NotEqual(t, uuid.UUID(sessionID), uuid.UUID(domainID))
}

func TestIDJSONRoundTrip(t *testing.T) {
	type payload struct {
		Session SessionID `json:"session"`
		Domain  DomainID  `json:"domain"`
	}
	original := payload{Session: NewSessionID(), Domain: NewDomainID()}

	encoded, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), original.Session.String(),
		"ids must serialize as canonical uuid strings")

	var decoded payload
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original, decoded)
}

func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"sql injection attempt", "'; DROP TABLE domain;--", true},
		{"path traversal", "../../../etc/passwd", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"empty string", "", true},
		{"nil uuid", uuid.Nil.String(), true},
		{"whitespace only", "   ", true},
		{"uppercase valid uuid", "550E8400-E29B-41D4-A716-446655440000", false},
		{"valid uuid lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCandidateID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, fderrors.HasCode(err, fderrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid uuid", func(t *testing.T) {
		_, errSession := ParseSessionID(validUUID)
		_, errDomain := ParseDomainID(validUUID)
		_, errCandidate := ParseCandidateID(validUUID)
		_, errEnhancement := ParseEnhancementID(validUUID)

		require.NoError(t, errSession)
		require.NoError(t, errDomain)
		require.NoError(t, errCandidate)
		require.NoError(t, errEnhancement)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errSession := ParseSessionID(input)
			_, errDomain := ParseDomainID(input)
			_, errCandidate := ParseCandidateID(input)

			require.Error(t, errSession)
			require.Error(t, errDomain)
			require.Error(t, errCandidate)
		})
	}
}
