package model

// LinkReport представляет одну ссылку в отчёте по кликам,
// обогащённую именем кампании и детальной статистикой.
type LinkReport struct {
	ID           int            `json:"id"`
	Alias        string         `json:"alias"`
	ShortURL     string         `json:"shorturl"`
	LongURL      string         `json:"longurl"`
	Clicks       int            `json:"clicks"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Campaign     string         `json:"campaign"`
	UniqueClicks int            `json:"uniqueClicks"`
	TopCountries map[string]int `json:"topCountries"`
	TopReferrers map[string]int `json:"topReferrers"`
	TopBrowsers  map[string]int `json:"topBrowsers"`
	CreatedAt    string         `json:"createdAt"`
}

// ClickStat агрегированные клики по одному короткому URL.
type ClickStat struct {
	Title        string `json:"title"`
	Clicks       int    `json:"clicks"`
	UniqueClicks int    `json:"uniqueClicks"`
}

// ReportSummary сводная статистика по отфильтрованному набору ссылок.
type ReportSummary struct {
	TotalLinks        int                  `json:"totalLinks"`
	TotalClicks       int                  `json:"totalClicks"`
	TotalUniqueClicks int                  `json:"totalUniqueClicks"`
	ClicksByURL       map[string]ClickStat `json:"clicksByUrl"`
}

// ReportPagination описывает страницу отчёта.
type ReportPagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Campaign пара идентификатор-имя кампании внешнего сервиса.
type Campaign struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ReportResponse полный ответ отчёта по кликам.
type ReportResponse struct {
	Links      []LinkReport     `json:"links"`
	Summary    ReportSummary    `json:"summary"`
	Pagination ReportPagination `json:"pagination"`
	Campaigns  []Campaign       `json:"campaigns"`
}

// ReportFilter параметры фильтрации отчёта.
type ReportFilter struct {
	Campaign string
	Search   string
	Page     int
	Limit    int
}
