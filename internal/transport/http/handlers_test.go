package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/candidate"
	pid "fundingdiscovery/pkg/domain"
)

// fakeOrchestrator is a minimal SessionStarter test double.
type fakeOrchestrator struct {
	err error
}

func (f *fakeOrchestrator) StartSession(ctx context.Context, criteria fd.SearchCriteria) (fd.DiscoverySession, int, error) {
	if f.err != nil {
		return fd.DiscoverySession{}, 0, f.err
	}
	return fd.DiscoverySession{ID: pid.NewSessionID(), Status: fd.SessionStatusRunning}, 6, nil
}

type HandlersSuite struct {
	suite.Suite
	router      http.Handler
	candidates  *candidate.MemoryStore
	orchestrator *fakeOrchestrator
}

func (s *HandlersSuite) SetupTest() {
	s.candidates = candidate.NewMemoryStore()
	s.orchestrator = &fakeOrchestrator{}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		NewSearchHandler(s.orchestrator, logger).Register(api)
		NewCandidatesHandler(s.candidates).Register(api)
	})
	s.router = r
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) TestExecute_ValidRequest() {
	body, _ := json.Marshal(map[string]any{
		"categories":         []string{"education"},
		"geographies":        []string{"Europe"},
		"recipientTypes":     []string{"nonprofit"},
		"maxResultsPerQuery": 20,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/search/execute", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp executeResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(s.T(), "INITIATED", resp.Status)
	assert.Equal(s.T(), 6, resp.QueriesGenerated)
}

func (s *HandlersSuite) TestExecute_MissingCategoriesReturns400() {
	body, _ := json.Marshal(map[string]any{
		"geographies":        []string{"Europe"},
		"recipientTypes":     []string{"nonprofit"},
		"maxResultsPerQuery": 20,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/search/execute", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestExecute_MaxResultsOutOfRangeReturns400() {
	body, _ := json.Marshal(map[string]any{
		"categories":         []string{"education"},
		"geographies":        []string{"Europe"},
		"recipientTypes":     []string{"nonprofit"},
		"maxResultsPerQuery": 5,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/search/execute", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestListCandidates_EmptyStore() {
	req := httptest.NewRequest(http.MethodGet, "/api/candidates", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp listResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(s.T(), 0, resp.Total)
}

func (s *HandlersSuite) TestListCandidates_InvalidSizeReturns400() {
	req := httptest.NewRequest(http.MethodGet, "/api/candidates?size=500", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestApprove_UnknownCandidateReturns404() {
	id := pid.NewCandidateID()
	req := httptest.NewRequest(http.MethodPut, "/api/candidates/"+id.String()+"/approve", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *HandlersSuite) TestApprove_AlreadyInStateReturns400() {
	row, err := s.candidates.Create(context.Background(), fd.FundingSourceCandidate{
		SessionID: pid.NewSessionID(), DomainID: pid.NewDomainID(), Status: fd.CandidateStatusApproved,
	})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPut, "/api/candidates/"+row.ID.String()+"/approve", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestApprove_LegalTransitionSucceeds() {
	row, err := s.candidates.Create(context.Background(), fd.FundingSourceCandidate{
		SessionID: pid.NewSessionID(), DomainID: pid.NewDomainID(), Status: fd.CandidateStatusPendingCrawl,
	})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPut, "/api/candidates/"+row.ID.String()+"/approve", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
}
