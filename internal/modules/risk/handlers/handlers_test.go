package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainmaker/riskd/internal/domain"
)

type stubService struct {
	report *domain.RiskReport
	err    error
}

func (s stubService) Analyze(userID int64) (*domain.RiskReport, error) {
	return s.report, s.err
}

type stubSnapshots struct {
	id  string
	err error
}

func (s stubSnapshots) Save(userID int64, report *domain.RiskReport) (string, error) {
	return s.id, s.err
}

func newTestRouter(service AnalysisService, snapshots SnapshotWriter) *chi.Mux {
	h := NewHandler(service, snapshots, zerolog.Nop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func sampleReport() *domain.RiskReport {
	return &domain.RiskReport{
		RiskMetrics:         domain.RiskMetrics{RiskScore: "A", VaRScaled: 75, HorizonDays: 90},
		TotalPortfolioValue: 1500,
	}
}

func TestHandleAnalyzeSuccess(t *testing.T) {
	router := newTestRouter(stubService{report: sampleReport()}, stubSnapshots{id: "snap-1"})

	req := httptest.NewRequest(http.MethodGet, "/risk/users/1/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data     domain.RiskReport      `json:"data"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "A", body.Data.RiskMetrics.RiskScore)
	assert.InDelta(t, 1500.0, body.Data.TotalPortfolioValue, 1e-9)
	assert.Equal(t, "snap-1", body.Metadata["snapshot_id"])
	assert.NotEmpty(t, body.Metadata["timestamp"])
}

func TestHandleAnalyzeSnapshotFailureDoesNotFailRequest(t *testing.T) {
	router := newTestRouter(stubService{report: sampleReport()},
		stubSnapshots{err: fmt.Errorf("cache database unavailable")})

	req := httptest.NewRequest(http.MethodGet, "/risk/users/1/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	metadata := body["metadata"].(map[string]interface{})
	assert.NotContains(t, metadata, "snapshot_id")
}

func TestHandleAnalyzeErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing profile", fmt.Errorf("%w: user 1", domain.ErrMissingProfile), http.StatusNotFound},
		{"empty holdings", fmt.Errorf("%w: user 1", domain.ErrEmptyHoldings), http.StatusUnprocessableEntity},
		{"no price data", fmt.Errorf("%w: none stored", domain.ErrNoPriceData), http.StatusUnprocessableEntity},
		{"degenerate risk", fmt.Errorf("%w: zero variance", domain.ErrDegenerateRisk), http.StatusUnprocessableEntity},
		{"fetch failure", fmt.Errorf("profile store unreachable"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(stubService{err: tc.err}, nil)

			req := httptest.NewRequest(http.MethodGet, "/risk/users/1/report", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleAnalyzeInvalidUserID(t *testing.T) {
	router := newTestRouter(stubService{report: sampleReport()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/risk/users/abc/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
