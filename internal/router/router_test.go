package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Totarae/AdLinker/internal/auth"
	"github.com/Totarae/AdLinker/internal/handlers"
	"github.com/Totarae/AdLinker/internal/linkapi"
	"github.com/Totarae/AdLinker/internal/model"
	"github.com/Totarae/AdLinker/internal/router"
	"github.com/Totarae/AdLinker/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noopBulk struct{}

func (noopBulk) Create(context.Context, *model.LinkRequest) (*model.BatchResult, error) {
	return &model.BatchResult{Results: []model.CreationAttempt{}}, nil
}

type noopReporter struct{}

func (noopReporter) Report(context.Context, model.ReportFilter) (*model.ReportResponse, error) {
	return &model.ReportResponse{}, nil
}

type noopClient struct{}

func (noopClient) Domains(context.Context) ([]string, error) { return nil, nil }
func (noopClient) Campaigns(context.Context, int, int) (*linkapi.CampaignPage, error) {
	return &linkapi.CampaignPage{}, nil
}
func (noopClient) AddCampaign(context.Context, string, string, *bool) (*linkapi.Result, error) {
	return &linkapi.Result{OK: true}, nil
}
func (noopClient) CreateCustom(context.Context, map[string]any) (*linkapi.Result, error) {
	return &linkapi.Result{OK: true}, nil
}

// TestRouter_SessionFlow проверяет весь путь: отказ без куки,
// вход и доступ с выпущенной кукой.
func TestRouter_SessionFlow(t *testing.T) {
	a := auth.New("test-secret", "admin", "pass")
	h := handlers.NewHandler(noopBulk{}, noopReporter{}, noopClient{}, storage.NewFilePubStore(""),
		a, nil, zap.NewNop(), "adtracking.link", "in-memory")
	r := router.NewRouter(h, a, zap.NewNop())

	srv := httptest.NewServer(r)
	defer srv.Close()

	// Без сессии API закрыт
	resp, err := http.Get(srv.URL + "/api/pubs")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Вход
	body, _ := json.Marshal(model.LoginRequest{Username: "admin", Password: "pass"})
	resp, err = http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	// С кукой API открыт
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/pubs", nil)
	require.NoError(t, err)
	req.AddCookie(cookies[0])

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_PingOpen(t *testing.T) {
	a := auth.New("test-secret", "admin", "pass")
	h := handlers.NewHandler(noopBulk{}, noopReporter{}, noopClient{}, storage.NewFilePubStore(""),
		a, nil, zap.NewNop(), "adtracking.link", "in-memory")
	r := router.NewRouter(h, a, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
