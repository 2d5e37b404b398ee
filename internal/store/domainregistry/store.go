// Package domainregistry implements the domain & candidate store's host
// registry half: the contracts extractDomain, shouldProcess,
// registerOrGet, updateQuality, blacklist, markNoFunds, and recordFailure.
package domainregistry

import (
	"context"
	"net/url"
	"strings"

	fd "fundingdiscovery/internal/domain"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
)

// Store is the transactional contract over the Domain entity. Both the
// in-memory and Postgres implementations satisfy it.
type Store interface {
	// RegisterOrGet is idempotent: it creates the domain with DISCOVERED
	// status on first sight and returns the existing row otherwise.
	RegisterOrGet(ctx context.Context, host string, sessionID pid.SessionID) (fd.Domain, error)

	// Get looks up a domain by normalized host.
	Get(ctx context.Context, host string) (fd.Domain, error)

	// ShouldProcess applies the registry's skip rules.
	ShouldProcess(ctx context.Context, host string) (bool, error)

	// UpdateQuality folds a scored result into the domain's running
	// quality counters and transitions status.
	UpdateQuality(ctx context.Context, host string, confidence int64, isHighQuality bool) error

	// Blacklist stickily marks a domain BLACKLISTED.
	Blacklist(ctx context.Context, host, reason, actor string) error

	// Unblacklist is the administrative override required before a
	// blacklisted host can be processed again.
	Unblacklist(ctx context.Context, host string) error

	// MarkNoFunds transitions an existing domain to NO_FUNDS_THIS_YEAR.
	MarkNoFunds(ctx context.Context, host string, year int, notes string) error

	// RecordFailure increments the failure count, transitions to
	// PROCESSING_FAILED, and sets retry_after by exponential backoff.
	RecordFailure(ctx context.Context, host string, reason string) error
}

// ExtractDomain implements the store contract: lowercase host, strip
// leading "www.", fail with CodeInvalidInput on missing/malformed host.
func ExtractDomain(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", fderrors.New(fderrors.CodeInvalidInput, "url has no extractable host")
	}
	host := u.Hostname()
	if host == "" {
		return "", fderrors.New(fderrors.CodeInvalidInput, "url has no extractable host")
	}
	return fd.NormalizeHost(host), nil
}

// ErrNotFound is returned when a host has never been registered.
var ErrNotFound = fderrors.New(fderrors.CodeNotFound, "domain not found")
