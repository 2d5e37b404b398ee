package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/domainregistry"
	"fundingdiscovery/pkg/fderrors"
	"fundingdiscovery/pkg/httputil"
)

// CacheInvalidator is the slice of cache.BlacklistCache the admin surface
// needs: dropping a host's entry after a blacklist-affecting mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, host string)
}

// AdminHandler exposes the administrator mutation paths the Domain
// invariant requires: BLACKLISTED is sticky unless explicitly
// un-blacklisted, so both directions need an actor-facing endpoint.
type AdminHandler struct {
	domains domainregistry.Store
	cache   CacheInvalidator
}

func NewAdminHandler(domains domainregistry.Store, cache CacheInvalidator) *AdminHandler {
	return &AdminHandler{domains: domains, cache: cache}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/admin/domains/{host}/blacklist", h.HandleBlacklist)
	r.Post("/admin/domains/{host}/unblacklist", h.HandleUnblacklist)
}

type blacklistRequest struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

func (req blacklistRequest) Validate() error {
	if req.Actor == "" {
		return fderrors.New(fderrors.CodeInvalidInput, "actor is required")
	}
	return nil
}

func (h *AdminHandler) HandleBlacklist(w http.ResponseWriter, r *http.Request) {
	host := fd.NormalizeHost(chi.URLParam(r, "host"))
	if host == "" {
		httputil.WriteError(w, fderrors.New(fderrors.CodeInvalidInput, "host is required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[blacklistRequest](w, r, nil, r.Context(), "")
	if !ok {
		return
	}

	if err := h.domains.Blacklist(r.Context(), host, req.Reason, req.Actor); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(r.Context(), host)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"host": host, "status": string(fd.DomainStatusBlacklisted)})
}

func (h *AdminHandler) HandleUnblacklist(w http.ResponseWriter, r *http.Request) {
	host := fd.NormalizeHost(chi.URLParam(r, "host"))
	if host == "" {
		httputil.WriteError(w, fderrors.New(fderrors.CodeInvalidInput, "host is required"))
		return
	}

	if err := h.domains.Unblacklist(r.Context(), host); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(r.Context(), host)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"host": host, "status": string(fd.DomainStatusDiscovered)})
}
