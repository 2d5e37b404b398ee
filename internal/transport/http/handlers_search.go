package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/pkg/fderrors"
	"fundingdiscovery/pkg/httputil"
	fdstrings "fundingdiscovery/pkg/platform/strings"
	"fundingdiscovery/pkg/requestcontext"
)

// SessionStarter is the narrow slice of *orchestrator.Orchestrator this
// handler depends on.
type SessionStarter interface {
	StartSession(ctx context.Context, criteria fd.SearchCriteria) (fd.DiscoverySession, int, error)
}

// SearchHandler implements POST /api/search/execute.
type SearchHandler struct {
	orchestrator SessionStarter
	logger       *slog.Logger
}

func NewSearchHandler(orchestrator SessionStarter, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{orchestrator: orchestrator, logger: logger}
}

func (h *SearchHandler) Register(r chi.Router) {
	r.Post("/search/execute", h.HandleExecute)
}

// executeRequest is the POST /api/search/execute body.
type executeRequest struct {
	Categories         []string `json:"categories"`
	Geographies        []string `json:"geographies"`
	RecipientTypes     []string `json:"recipientTypes"`
	ProjectScale       string   `json:"projectScale"`
	Language           string   `json:"language"`
	MaxResultsPerQuery int      `json:"maxResultsPerQuery"`
}

// Validate requires at least one entry in each criteria set and
// 10 <= maxResultsPerQuery <= 100.
func (req executeRequest) Validate() error {
	if len(req.Categories) == 0 {
		return fderrors.New(fderrors.CodeInvalidInput, "at least one category is required")
	}
	if len(req.Geographies) == 0 {
		return fderrors.New(fderrors.CodeInvalidInput, "at least one geography is required")
	}
	if len(req.RecipientTypes) == 0 {
		return fderrors.New(fderrors.CodeInvalidInput, "at least one recipient type is required")
	}
	if req.MaxResultsPerQuery < 10 || req.MaxResultsPerQuery > 100 {
		return fderrors.New(fderrors.CodeInvalidInput, "maxResultsPerQuery must be between 10 and 100")
	}
	return nil
}

type executeResponse struct {
	SessionID        string `json:"sessionId"`
	QueriesGenerated int    `json:"queriesGenerated"`
	Status           string `json:"status"`
	Message          string `json:"message"`
}

// HandleExecute returns {sessionId, queriesGenerated, status:
// "INITIATED", message} with HTTP 200 on success, having published one
// SearchRequestEvent per (engine, query); on validation failure it
// returns HTTP 400 with no side effects.
func (h *SearchHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[executeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sess, queriesGenerated, err := h.orchestrator.StartSession(ctx, fd.SearchCriteria{
		Categories:         fdstrings.DedupeAndTrimLower(req.Categories),
		Geographies:        fdstrings.DedupeAndTrim(req.Geographies),
		RecipientTypes:     fdstrings.DedupeAndTrimLower(req.RecipientTypes),
		ProjectScale:       req.ProjectScale,
		Language:           req.Language,
		MaxResultsPerQuery: req.MaxResultsPerQuery,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, executeResponse{
		SessionID:        sess.ID.String(),
		QueriesGenerated: queriesGenerated,
		Status:           "INITIATED",
		Message:          "search session started",
	})
}
