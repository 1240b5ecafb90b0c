package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Totarae/AdLinker/internal/linkapi"
	"github.com/Totarae/AdLinker/internal/model"
	"go.uber.org/zap"
)

const (
	campaignCacheTTL   = 5 * time.Minute
	defaultReportLimit = 1000
	noCampaignLabel    = "No Campaign"
)

// ReportsClient запросы к внешнему API, нужные для построения отчёта.
type ReportsClient interface {
	Links(ctx context.Context) ([]linkapi.LinkEntry, error)
	Campaigns(ctx context.Context, limit, page int) (*linkapi.CampaignPage, error)
	Stats(ctx context.Context, id int) (*linkapi.LinkStats, error)
}

// campaignCache кеш соответствия id кампании её имени с меткой истечения.
// Явный объект с собственным мьютексом, а не переменная уровня пакета:
// так кеш подменяется в тестах и живёт в границах сервиса.
type campaignCache struct {
	mu      sync.Mutex
	names   map[int]string
	expires time.Time
}

// ReportsService собирает отчёт по кликам: полный список ссылок,
// имена кампаний и детальная статистика, затем фильтрация и пагинация.
type ReportsService struct {
	Client ReportsClient
	Logger *zap.Logger

	cache campaignCache
	ttl   time.Duration
	now   func() time.Time
}

// NewReportsService создаёт сервис отчётов.
func NewReportsService(client ReportsClient, logger *zap.Logger) *ReportsService {
	return &ReportsService{
		Client: client,
		Logger: logger,
		ttl:    campaignCacheTTL,
		now:    time.Now,
	}
}

// campaignNames возвращает карту id->имя кампании, обновляя кеш по TTL.
// Ошибка внешнего сервиса деградирует до пустой карты: отчёт строится
// без имён кампаний, а не падает целиком.
func (s *ReportsService) campaignNames(ctx context.Context) map[int]string {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	if s.cache.names != nil && s.now().Before(s.cache.expires) {
		return s.cache.names
	}

	page, err := s.Client.Campaigns(ctx, 1000, 1)
	if err != nil {
		s.Logger.Warn("campaign names unavailable", zap.Error(err))
		if s.cache.names != nil {
			return s.cache.names // отдаём устаревший кеш, он лучше пустого
		}
		return map[int]string{}
	}

	names := make(map[int]string, len(page.Campaigns))
	for _, c := range page.Campaigns {
		names[c.ID] = c.Name
	}
	s.cache.names = names
	s.cache.expires = s.now().Add(s.ttl)
	return names
}

// enrich дополняет ссылку именем кампании и детальной статистикой.
func (s *ReportsService) enrich(ctx context.Context, entry linkapi.LinkEntry, names map[int]string) model.LinkReport {
	report := model.LinkReport{
		ID:           entry.ID,
		Alias:        entry.Alias,
		ShortURL:     entry.ShortURL,
		LongURL:      entry.LongURL,
		Clicks:       entry.Clicks,
		Title:        entry.Title,
		Description:  entry.Description,
		Campaign:     noCampaignLabel,
		TopCountries: map[string]int{},
		TopReferrers: map[string]int{},
		TopBrowsers:  map[string]int{},
		CreatedAt:    entry.Date,
	}

	if id, ok := entry.CampaignID(); ok {
		if name, found := names[id]; found {
			report.Campaign = name
		}
	}

	stats, err := s.Client.Stats(ctx, entry.ID)
	if err != nil {
		// Отказ детальной статистики не роняет отчёт, остаются нули
		s.Logger.Debug("link stats unavailable", zap.Int("id", entry.ID), zap.Error(err))
		return report
	}
	report.UniqueClicks = stats.UniqueClicks
	if stats.TopCountries != nil {
		report.TopCountries = stats.TopCountries
	}
	if stats.TopReferrers != nil {
		report.TopReferrers = stats.TopReferrers
	}
	if stats.TopBrowsers != nil {
		report.TopBrowsers = stats.TopBrowsers
	}
	return report
}

func matchesFilter(link *model.LinkReport, filter *model.ReportFilter) bool {
	if filter.Campaign != "" && filter.Campaign != "all" {
		if !strings.Contains(strings.ToLower(link.Campaign), strings.ToLower(filter.Campaign)) {
			return false
		}
	}
	if filter.Search != "" {
		q := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(link.Description), q) &&
			!strings.Contains(strings.ToLower(link.LongURL), q) &&
			!strings.Contains(strings.ToLower(link.ShortURL), q) &&
			!strings.Contains(strings.ToLower(link.Title), q) {
			return false
		}
	}
	return true
}

// Report строит отчёт по кликам с фильтрацией, сводкой и пагинацией.
func (s *ReportsService) Report(ctx context.Context, filter model.ReportFilter) (*model.ReportResponse, error) {
	names := s.campaignNames(ctx)

	entries, err := s.Client.Links(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.LinkReport, 0, len(entries))
	for _, entry := range entries {
		link := s.enrich(ctx, entry, names)
		if matchesFilter(&link, &filter) {
			filtered = append(filtered, link)
		}
	}

	summary := model.ReportSummary{
		TotalLinks:  len(filtered),
		ClicksByURL: make(map[string]model.ClickStat, len(filtered)),
	}
	for _, link := range filtered {
		summary.TotalClicks += link.Clicks
		summary.TotalUniqueClicks += link.UniqueClicks
		title := link.Title
		if title == "" {
			title = link.Description
		}
		if title == "" {
			title = link.ShortURL
		}
		summary.ClicksByURL[link.ShortURL] = model.ClickStat{
			Title:        title,
			Clicks:       link.Clicks,
			UniqueClicks: link.UniqueClicks,
		}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = defaultReportLimit
	}

	totalPages := (len(filtered) + limit - 1) / limit
	start := (page - 1) * limit
	end := start + limit
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	campaigns := make([]model.Campaign, 0, len(names))
	for id, name := range names {
		campaigns = append(campaigns, model.Campaign{ID: id, Name: name})
	}
	sort.Slice(campaigns, func(i, j int) bool { return campaigns[i].ID < campaigns[j].ID })

	return &model.ReportResponse{
		Links:   filtered[start:end],
		Summary: summary,
		Pagination: model.ReportPagination{
			Page:        page,
			Limit:       limit,
			TotalPages:  totalPages,
			HasNextPage: end < len(filtered),
			HasPrevPage: page > 1,
		},
		Campaigns: campaigns,
	}, nil
}
