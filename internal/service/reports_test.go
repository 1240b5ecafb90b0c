package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Totarae/AdLinker/internal/linkapi"
	"github.com/Totarae/AdLinker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubReportsClient struct {
	links         []linkapi.LinkEntry
	linksErr      error
	stats         map[int]*linkapi.LinkStats
	campaigns     []linkapi.CampaignEntry
	campaignsErr  error
	campaignCalls int
}

func (s *stubReportsClient) Links(context.Context) ([]linkapi.LinkEntry, error) {
	return s.links, s.linksErr
}

func (s *stubReportsClient) Campaigns(context.Context, int, int) (*linkapi.CampaignPage, error) {
	s.campaignCalls++
	if s.campaignsErr != nil {
		return nil, s.campaignsErr
	}
	return &linkapi.CampaignPage{Campaigns: s.campaigns, CurrentPage: 1, MaxPage: 1}, nil
}

func (s *stubReportsClient) Stats(_ context.Context, id int) (*linkapi.LinkStats, error) {
	if st, ok := s.stats[id]; ok {
		return st, nil
	}
	return nil, errors.New("stats unavailable")
}

func testEntries() []linkapi.LinkEntry {
	return []linkapi.LinkEntry{
		{ID: 1, ShortURL: "adtracking.link/spring-fb", LongURL: "https://example.com/a", Clicks: 10, Title: "Spring FB", Campaign: json.RawMessage(`1`)},
		{ID: 2, ShortURL: "adtracking.link/spring-gg", LongURL: "https://example.com/b", Clicks: 5, Description: "google placement", Campaign: json.RawMessage(`1`)},
		{ID: 3, ShortURL: "adtracking.link/winter", LongURL: "https://example.com/c", Clicks: 2, Campaign: json.RawMessage(`"2"`)},
	}
}

func newReportsService(client *stubReportsClient) *ReportsService {
	svc := NewReportsService(client, zap.NewNop())
	return svc
}

func TestReport_Enrichment(t *testing.T) {
	client := &stubReportsClient{
		links: testEntries(),
		campaigns: []linkapi.CampaignEntry{
			{ID: 1, Name: "Spring Sale"},
			{ID: 2, Name: "Winter Promo"},
		},
		stats: map[int]*linkapi.LinkStats{
			1: {UniqueClicks: 7, TopCountries: map[string]int{"US": 5}},
		},
	}
	svc := newReportsService(client)

	resp, err := svc.Report(context.Background(), model.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Links, 3)

	assert.Equal(t, "Spring Sale", resp.Links[0].Campaign)
	assert.Equal(t, 7, resp.Links[0].UniqueClicks)
	assert.Equal(t, 5, resp.Links[0].TopCountries["US"])
	// Строковый id кампании тоже разрешается в имя
	assert.Equal(t, "Winter Promo", resp.Links[2].Campaign)
	// Недоступная статистика деградирует до нулей, отчёт не падает
	assert.Equal(t, 0, resp.Links[1].UniqueClicks)

	assert.Equal(t, 3, resp.Summary.TotalLinks)
	assert.Equal(t, 17, resp.Summary.TotalClicks)
	assert.Equal(t, 7, resp.Summary.TotalUniqueClicks)
	assert.Len(t, resp.Campaigns, 2)
}

func TestReport_CampaignFilter(t *testing.T) {
	client := &stubReportsClient{
		links:     testEntries(),
		campaigns: []linkapi.CampaignEntry{{ID: 1, Name: "Spring Sale"}, {ID: 2, Name: "Winter Promo"}},
	}
	svc := newReportsService(client)

	resp, err := svc.Report(context.Background(), model.ReportFilter{Campaign: "spring"})
	require.NoError(t, err)
	assert.Len(t, resp.Links, 2)

	// Значение "all" отключает фильтр
	resp, err = svc.Report(context.Background(), model.ReportFilter{Campaign: "all"})
	require.NoError(t, err)
	assert.Len(t, resp.Links, 3)
}

func TestReport_Search(t *testing.T) {
	client := &stubReportsClient{links: testEntries()}
	svc := newReportsService(client)

	resp, err := svc.Report(context.Background(), model.ReportFilter{Search: "GOOGLE"})
	require.NoError(t, err)
	require.Len(t, resp.Links, 1)
	assert.Equal(t, 2, resp.Links[0].ID)
}

func TestReport_Pagination(t *testing.T) {
	client := &stubReportsClient{links: testEntries()}
	svc := newReportsService(client)

	resp, err := svc.Report(context.Background(), model.ReportFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Links, 1)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.False(t, resp.Pagination.HasNextPage)
	assert.True(t, resp.Pagination.HasPrevPage)
}

// TestReport_CampaignCacheTTL: имена кампаний запрашиваются один раз
// в пределах TTL и повторно после его истечения.
func TestReport_CampaignCacheTTL(t *testing.T) {
	client := &stubReportsClient{
		links:     testEntries(),
		campaigns: []linkapi.CampaignEntry{{ID: 1, Name: "Spring Sale"}},
	}
	svc := newReportsService(client)

	current := time.Now()
	svc.now = func() time.Time { return current }

	_, err := svc.Report(context.Background(), model.ReportFilter{})
	require.NoError(t, err)
	_, err = svc.Report(context.Background(), model.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, client.campaignCalls)

	current = current.Add(campaignCacheTTL + time.Second)
	_, err = svc.Report(context.Background(), model.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, client.campaignCalls)
}

// TestReport_CampaignsUnavailable: отказ списка кампаний не роняет отчёт.
func TestReport_CampaignsUnavailable(t *testing.T) {
	client := &stubReportsClient{
		links:        testEntries(),
		campaignsErr: errors.New("service down"),
	}
	svc := newReportsService(client)

	resp, err := svc.Report(context.Background(), model.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Links, 3)
	assert.Equal(t, "No Campaign", resp.Links[0].Campaign)
	assert.Empty(t, resp.Campaigns)
}

func TestReport_LinksError(t *testing.T) {
	client := &stubReportsClient{linksErr: errors.New("boom")}
	svc := newReportsService(client)

	_, err := svc.Report(context.Background(), model.ReportFilter{})
	assert.Error(t, err)
}
