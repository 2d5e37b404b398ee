package httptransport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/candidate"
	"fundingdiscovery/internal/store/enhancement"
	pid "fundingdiscovery/pkg/domain"
	"fundingdiscovery/pkg/fderrors"
	"fundingdiscovery/pkg/httputil"
	"fundingdiscovery/pkg/requestcontext"
)

// CandidatesHandler implements the GET/PUT candidate endpoints. Status
// transitions are appended to the enhancement log when one is configured,
// so review decisions stay auditable.
type CandidatesHandler struct {
	store        candidate.Store
	enhancements enhancement.Store
}

func NewCandidatesHandler(store candidate.Store) *CandidatesHandler {
	return &CandidatesHandler{store: store}
}

// WithEnhancementLog wires the append-only audit log for status
// transitions.
func (h *CandidatesHandler) WithEnhancementLog(store enhancement.Store) *CandidatesHandler {
	h.enhancements = store
	return h
}

func (h *CandidatesHandler) Register(r chi.Router) {
	r.Get("/candidates", h.HandleList)
	r.Put("/candidates/{id}/approve", h.handleTransition(fd.CandidateStatusApproved))
	r.Put("/candidates/{id}/reject", h.handleTransition(fd.CandidateStatusRejected))
}

type candidateResponse struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"` // scale-2 decimal at the presentation boundary
	SourceURL  string  `json:"sourceUrl"`
	Engine     string  `json:"engine"`
	Title      string  `json:"title"`
	CreatedAt  int64   `json:"createdAt"`
}

type listResponse struct {
	Items []candidateResponse `json:"items"`
	Total int                 `json:"total"`
	Page  int                 `json:"page"`
	Size  int                 `json:"size"`
}

// HandleList implements GET /api/candidates, paged and filtered: size
// bounded [1, 100], page 0-indexed, confidence a decimal in [0,1]
// translated to the store's fixed-point hundredths representation.
func (h *CandidatesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := candidate.Filter{
		SortBy:        q.Get("sortBy"),
		SortDirection: q.Get("sortDirection"),
	}

	if v := q.Get("status"); v != "" {
		status := fd.CandidateStatus(v)
		filter.Status = &status
	}
	if v := q.Get("searchEngine"); v != "" {
		filter.SearchEngine = &v
	}
	if v := q.Get("minConfidence"); v != "" {
		decimal, err := strconv.ParseFloat(v, 64)
		if err != nil || decimal < 0 || decimal > 1 {
			httputil.WriteError(w, fderrors.New(fderrors.CodeInvalidInput, "minConfidence must be a decimal in [0,1]"))
			return
		}
		hundredths := int64(decimal*100 + 0.5)
		filter.MinConfidence = &hundredths
	}
	if v := q.Get("startDate"); v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteError(w, fderrors.New(fderrors.CodeInvalidInput, "startDate must be a unix timestamp"))
			return
		}
		filter.StartDate = &ts
	}
	if v := q.Get("endDate"); v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteError(w, fderrors.New(fderrors.CodeInvalidInput, "endDate must be a unix timestamp"))
			return
		}
		filter.EndDate = &ts
	}

	page := 0
	if v := q.Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			page = parsed
		}
	}
	size := 20
	if v := q.Get("size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			size = parsed
		}
	}
	if size < 1 || size > 100 {
		httputil.WriteError(w, fderrors.New(fderrors.CodeInvalidInput, "size must be between 1 and 100"))
		return
	}
	filter.Page, filter.Size = page, size

	rows, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items := make([]candidateResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, candidateResponse{
			ID:         row.ID.String(),
			Status:     string(row.Status),
			Confidence: float64(row.Confidence) / 100,
			SourceURL:  row.SourceURL,
			Engine:     row.Engine,
			Title:      row.Metadata.Title,
			CreatedAt:  row.CreatedAt.Unix(),
		})
	}

	httputil.WriteJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, Size: size})
}

// handleTransition builds the approve/reject handler pair: 404 when
// unknown, 400 when already in the target state.
func (h *CandidatesHandler) handleTransition(target fd.CandidateStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")
		candidateID, err := pid.ParseCandidateID(raw)
		if err != nil {
			httputil.WriteError(w, fderrors.Wrap(fderrors.CodeInvalidInput, "invalid candidate id", err))
			return
		}

		prior, err := h.store.Get(r.Context(), candidateID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		if err := h.store.UpdateStatus(r.Context(), candidateID, target); err != nil {
			httputil.WriteError(w, err)
			return
		}

		if h.enhancements != nil {
			_, _ = h.enhancements.Append(r.Context(), fd.EnhancementRecord{
				CandidateID:    candidateID,
				Actor:          requestcontext.RequestID(r.Context()),
				Type:           fd.EnhancementTypeManual,
				FieldName:      "status",
				OriginalValue:  string(prior.Status),
				SuggestedValue: string(target),
				CreatedAt:      requestcontext.Now(r.Context()),
			})
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"id":     candidateID.String(),
			"status": string(target),
		})
	}
}
