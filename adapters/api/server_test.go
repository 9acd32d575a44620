package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"insightflow/domain/core"
	"insightflow/domain/dataset"
	"insightflow/domain/insight"
	"insightflow/internal/config"
	"insightflow/internal/engine"
	"insightflow/internal/errors"
	"insightflow/internal/recommend"
)

// MockAnalyzer is a testify mock of ports.Analyzer
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Create(ctx context.Context, ds *dataset.Dataset) (core.EngineID, error) {
	args := m.Called(ctx, ds)
	return args.Get(0).(core.EngineID), args.Error(1)
}

func (m *MockAnalyzer) Delete(ctx context.Context, id core.EngineID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAnalyzer) Explain(ctx context.Context, id core.EngineID, req engine.ExplainRequest) (*engine.ExplainResult, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.ExplainResult), args.Error(1)
}

func (m *MockAnalyzer) Recommend(ctx context.Context, id core.EngineID, views []insight.View) (*recommend.Result, error) {
	args := m.Called(ctx, id, views)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommend.Result), args.Error(1)
}

func (m *MockAnalyzer) Relations(ctx context.Context, id core.EngineID) (*engine.Relations, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.Relations), args.Error(1)
}

func (m *MockAnalyzer) Neighbors(ctx context.Context, id core.EngineID, kind dataset.AnalyticType, seeds []string, k int, threshold float64) ([]string, error) {
	args := m.Called(ctx, id, kind, seeds, k, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newTestServer(a *MockAnalyzer) http.Handler {
	cfg := config.Default().Server
	cfg.MaxUploadRows = 3
	return NewServer(a, cfg).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(&MockAnalyzer{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(&MockAnalyzer{}), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateDataset(t *testing.T) {
	a := &MockAnalyzer{}
	a.On("Create", mock.Anything, mock.MatchedBy(func(ds *dataset.Dataset) bool {
		f, err := ds.Catalog.Get("sales")
		return err == nil && f.SemanticType == dataset.Quantitative && ds.Len() == 2
	})).Return(core.EngineID("e1"), nil)

	body := `{"rows":[{"region":"A","sales":1},{"region":"B","sales":"2.5"}]}`
	rec := do(t, newTestServer(a), http.MethodPost, "/api/datasets", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "e1", decode(t, rec)["id"])
	a.AssertExpectations(t)
}

func TestCreateDataset_ExplicitFields(t *testing.T) {
	a := &MockAnalyzer{}
	a.On("Create", mock.Anything, mock.MatchedBy(func(ds *dataset.Dataset) bool {
		f, err := ds.Catalog.Get("qty")
		return err == nil && f.SemanticType == dataset.Ordinal && f.Name == "Quantity"
	})).Return(core.EngineID("e2"), nil)

	body := `{"fields":[{"fid":"qty","name":"Quantity","semanticType":"ordinal","analyticType":"dimension"}],"rows":[{"qty":1}]}`
	rec := do(t, newTestServer(a), http.MethodPost, "/api/datasets", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	a.AssertExpectations(t)
}

func TestCreateDataset_Rejected(t *testing.T) {
	h := newTestServer(&MockAnalyzer{})
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"rows missing", `{"fields":[]}`},
		{"too many rows", `{"rows":[{},{},{},{}]}`},
		{"bad semantic type", `{"fields":[{"fid":"a","semanticType":"weird","analyticType":"dimension"}],"rows":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/datasets", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, errors.CodeInvalidInput, decode(t, rec)["code"])
		})
	}
}

func TestExplain(t *testing.T) {
	a := &MockAnalyzer{}
	result := &engine.ExplainResult{Insights: []insight.InsightSpace{{Type: insight.ChildrenOutlier, Score: 0.5}}}
	a.On("Explain", mock.Anything, core.EngineID("e1"), mock.MatchedBy(func(req engine.ExplainRequest) bool {
		return len(req.Predicates) == 2 &&
			req.Predicates[0].Kind == insight.Discrete &&
			req.Predicates[1].Kind == insight.Continuous &&
			req.Threshold != nil && *req.Threshold == 0.1 &&
			len(req.Measures) == 1 && req.Measures[0].Aggregator == insight.Mean
	})).Return(result, nil)

	body := `{
		"predicates": [{"key":"region","values":["A"]}, {"key":"sales","range":[1,10]}],
		"dimensions": ["region"],
		"measures": ["sales:mean"],
		"threshold": 0.1
	}`
	rec := do(t, newTestServer(a), http.MethodPost, "/api/datasets/e1/explain", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	insights := decode(t, rec)["insights"].([]any)
	assert.Len(t, insights, 1)
	a.AssertExpectations(t)
}

func TestExplain_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown engine", errors.WithCode(errors.CodeNotFound, core.ErrEngineNotFound), http.StatusNotFound},
		{"unknown field", errors.Wrap(core.NewFieldNotFoundError("x"), "explain failed"), http.StatusBadRequest},
		{"internal", errors.InternalError("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &MockAnalyzer{}
			a.On("Explain", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
			rec := do(t, newTestServer(a), http.MethodPost, "/api/datasets/e1/explain", `{"measures":["sales"]}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestExplain_BadMeasure(t *testing.T) {
	rec := do(t, newTestServer(&MockAnalyzer{}), http.MethodPost, "/api/datasets/e1/explain", `{"measures":[{"key":"sales","op":"median"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNeighbors(t *testing.T) {
	a := &MockAnalyzer{}
	a.On("Neighbors", mock.Anything, core.EngineID("e1"), dataset.Measure, []string{"sales"}, 2, 0.2).
		Return([]string{"quantity"}, nil)

	rec := do(t, newTestServer(a), http.MethodGet, "/api/datasets/e1/neighbors?kind=measure&seeds=sales&k=2&threshold=0.2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"quantity"}, decode(t, rec)["neighbors"])

	rec = do(t, newTestServer(a), http.MethodGet, "/api/datasets/e1/neighbors?kind=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommend(t *testing.T) {
	a := &MockAnalyzer{}
	views := []insight.View{{Fields: []string{"sales"}, Locked: true}, {Fields: []string{"*"}}}
	a.On("Recommend", mock.Anything, core.EngineID("e1"), views).
		Return(&recommend.Result{Views: []insight.View{views[0], {Fields: []string{"quantity"}}}}, nil)

	rec := do(t, newTestServer(a), http.MethodPost, "/api/datasets/e1/recommend", `{"views":[{"fields":["sales"],"locked":true},{"fields":["*"]}]}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	a.AssertExpectations(t)
}

func TestReport(t *testing.T) {
	a := &MockAnalyzer{}
	a.On("Relations", mock.Anything, core.EngineID("e1")).Return(&engine.Relations{
		Fields: []dataset.Field{{ID: "a"}, {ID: "b"}},
		Matrix: [][]float64{{1, 0.4}, {0.4, 1}},
	}, nil)
	a.On("Explain", mock.Anything, core.EngineID("e1"), mock.Anything).Return(&engine.ExplainResult{}, nil)

	rec := do(t, newTestServer(a), http.MethodGet, "/api/datasets/e1/report?dimensions=a&measures=b:sum", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Strongest relations")
	assert.Contains(t, rec.Body.String(), "Insights")
	a.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	a := &MockAnalyzer{}
	a.On("Delete", mock.Anything, core.EngineID("e1")).Return(nil)
	a.On("Delete", mock.Anything, core.EngineID("e2")).Return(errors.WithCode(errors.CodeNotFound, core.ErrEngineNotFound))

	h := newTestServer(a)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/datasets/e1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/datasets/e2", "").Code)
}
