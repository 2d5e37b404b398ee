// Package domain defines the typed identifiers shared by every component of
// the funding-discovery core. Each entity gets its own Go type over
// uuid.UUID so the compiler rejects passing a CandidateID where a SessionID
// is expected.
package domain

import (
	"strings"

	"github.com/google/uuid"

	"fundingdiscovery/pkg/fderrors"
)

type SessionID uuid.UUID
type DomainID uuid.UUID
type CandidateID uuid.UUID
type EnhancementID uuid.UUID
type ErrorID uuid.UUID
type SearchQueryID uuid.UUID
type QueryGenSessionID uuid.UUID

func (id SessionID) String() string           { return uuid.UUID(id).String() }
func (id DomainID) String() string            { return uuid.UUID(id).String() }
func (id CandidateID) String() string         { return uuid.UUID(id).String() }
func (id EnhancementID) String() string       { return uuid.UUID(id).String() }
func (id ErrorID) String() string             { return uuid.UUID(id).String() }
func (id SearchQueryID) String() string       { return uuid.UUID(id).String() }
func (id QueryGenSessionID) String() string   { return uuid.UUID(id).String() }

func NewSessionID() SessionID         { return SessionID(uuid.New()) }
func NewDomainID() DomainID           { return DomainID(uuid.New()) }
func NewCandidateID() CandidateID     { return CandidateID(uuid.New()) }
func NewEnhancementID() EnhancementID { return EnhancementID(uuid.New()) }
func NewErrorID() ErrorID             { return ErrorID(uuid.New()) }
func NewSearchQueryID() SearchQueryID { return SearchQueryID(uuid.New()) }
func NewQueryGenSessionID() QueryGenSessionID {
	return QueryGenSessionID(uuid.New())
}

// Defining the ID types over uuid.UUID drops uuid's own encoding methods,
// so each type carries its own text marshalling: events and API payloads
// must serialize IDs as canonical UUID strings, not byte arrays.
func (id SessionID) MarshalText() ([]byte, error)         { return []byte(uuid.UUID(id).String()), nil }
func (id DomainID) MarshalText() ([]byte, error)          { return []byte(uuid.UUID(id).String()), nil }
func (id CandidateID) MarshalText() ([]byte, error)       { return []byte(uuid.UUID(id).String()), nil }
func (id EnhancementID) MarshalText() ([]byte, error)     { return []byte(uuid.UUID(id).String()), nil }
func (id ErrorID) MarshalText() ([]byte, error)           { return []byte(uuid.UUID(id).String()), nil }
func (id SearchQueryID) MarshalText() ([]byte, error)     { return []byte(uuid.UUID(id).String()), nil }
func (id QueryGenSessionID) MarshalText() ([]byte, error) { return []byte(uuid.UUID(id).String()), nil }

func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = SessionID(u)
	return err
}

func (id *DomainID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = DomainID(u)
	return err
}

func (id *CandidateID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = CandidateID(u)
	return err
}

func (id *EnhancementID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = EnhancementID(u)
	return err
}

func (id *ErrorID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = ErrorID(u)
	return err
}

func (id *SearchQueryID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = SearchQueryID(u)
	return err
}

func (id *QueryGenSessionID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = QueryGenSessionID(u)
	return err
}

// parseTyped applies the shared validation invariant ("valid, non-empty,
// non-nil UUID") used by every typed ID in this package.
func parseTyped(raw string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return uuid.Nil, fderrors.New(fderrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, fderrors.Wrap(fderrors.CodeInvalidInput, "id is not a valid uuid", err)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, fderrors.New(fderrors.CodeInvalidInput, "id must not be the nil uuid")
	}
	return parsed, nil
}

func ParseSessionID(raw string) (SessionID, error) {
	u, err := parseTyped(raw)
	return SessionID(u), err
}

func ParseDomainID(raw string) (DomainID, error) {
	u, err := parseTyped(raw)
	return DomainID(u), err
}

func ParseCandidateID(raw string) (CandidateID, error) {
	u, err := parseTyped(raw)
	return CandidateID(u), err
}

func ParseEnhancementID(raw string) (EnhancementID, error) {
	u, err := parseTyped(raw)
	return EnhancementID(u), err
}

func ParseErrorID(raw string) (ErrorID, error) {
	u, err := parseTyped(raw)
	return ErrorID(u), err
}

func ParseSearchQueryID(raw string) (SearchQueryID, error) {
	u, err := parseTyped(raw)
	return SearchQueryID(u), err
}

func ParseQueryGenSessionID(raw string) (QueryGenSessionID, error) {
	u, err := parseTyped(raw)
	return QueryGenSessionID(u), err
}
