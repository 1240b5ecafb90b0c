package linkapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMaxRetries = 3
	defaultTimeout    = 15 * time.Second
)

// ExhaustedMessage сообщение синтетической ошибки при исчерпании повторов.
const ExhaustedMessage = "rate limit: retries exhausted"

// Result представляет терминальный исход одной операции внешнего API.
// Нулевой маркер ошибки сервиса (0, "0" или отсутствие поля) сводится
// к флагу OK ещё на границе клиента, выше сырой маркер никто не проверяет.
type Result struct {
	OK      bool
	Data    json.RawMessage
	Message string
}

// Client выполняет запросы к внешнему сервису коротких ссылок.
// Учётные данные неизменяемы, клиент безопасен для конкурентного использования.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries int
}

// Option настраивает клиента.
type Option func(*Client)

// WithMaxRetries задаёт число попыток при ответе 429.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithHTTPClient подменяет транспорт (используется в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout задаёт таймаут одного исходящего запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New создаёт клиента внешнего API коротких ссылок.
func New(baseURL, apiKey string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope общий конверт ответов внешнего API. Поле error непоследовательно:
// встречаются число, строка и отсутствие поля, поэтому принимаем RawMessage.
type envelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// errorMarkerZero возвращает true, если маркер ошибки отсутствует
// или равен 0 / "0".
func errorMarkerZero(raw json.RawMessage) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	s := string(bytes.Trim(raw, `"`))
	return s == "0"
}

// classify сводит HTTP-статус и тело ответа к единому флагу успеха.
func classify(status int, body []byte) (ok bool, msg string) {
	var env envelope
	_ = json.Unmarshal(body, &env)

	if status < 200 || status >= 300 {
		if env.Message != "" {
			return false, env.Message
		}
		return false, fmt.Sprintf("external service returned status %d", status)
	}
	if !errorMarkerZero(env.Error) {
		if env.Message != "" {
			return false, env.Message
		}
		return false, "external service reported an error"
	}
	return true, ""
}

// retryDelay возвращает паузу перед повтором: значение Retry-After в секундах,
// если заголовок содержит корректное число, иначе 2^attempt секунд.
func retryDelay(retryAfter string, attempt int) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Duration(1<<attempt) * time.Second
}

// wait приостанавливает выполнение на delay с учётом отмены контекста.
func wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do выполняет запрос и возвращает статус, тело и заголовок Retry-After.
// Сетевые ошибки (таймаут, отказ соединения) возвращаются как error —
// это отдельная категория отказа, отличная от отказа самого сервиса.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, string, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return 0, nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, "", fmt.Errorf("link API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, "", fmt.Errorf("link API response read failed: %w", err)
	}
	return resp.StatusCode, data, resp.Header.Get("Retry-After"), nil
}

type addLinkPayload struct {
	URL    string `json:"url"`
	Custom string `json:"custom"`
	Domain string `json:"domain"`
}

// CreateLink создаёт короткую ссылку с заданным слагом.
// При ответе 429 повторяет запрос до maxRetries раз, выдерживая паузу
// из Retry-After или экспоненциального отступа. Любой другой неуспех
// терминален и не повторяется. Возвращает error только для сетевых сбоев.
func (c *Client) CreateLink(ctx context.Context, longURL, customSlug, domain string) (*Result, error) {
	body, err := json.Marshal(addLinkPayload{URL: longURL, Custom: customSlug, Domain: domain})
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		status, data, retryAfter, err := c.do(ctx, http.MethodPost, "/url/add", body)
		if err != nil {
			return nil, err
		}

		if status == http.StatusTooManyRequests {
			delay := retryDelay(retryAfter, attempt)
			c.logger.Warn("link API rate limited",
				zap.String("slug", customSlug),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			if err := wait(ctx, delay); err != nil {
				return nil, fmt.Errorf("retry wait interrupted: %w", err)
			}
			continue
		}

		ok, msg := classify(status, data)
		return &Result{OK: ok, Data: data, Message: msg}, nil
	}

	c.logger.Error("link API retries exhausted", zap.String("slug", customSlug))
	synthetic, _ := json.Marshal(map[string]any{"error": 1, "message": ExhaustedMessage})
	return &Result{OK: false, Data: synthetic, Message: ExhaustedMessage}, nil
}

// CreateCustom создаёт одиночную ссылку с расширенными полями,
// передавая их внешнему сервису как есть. Без повторов: вызывается
// из интерактивной формы, где ошибку сразу видит пользователь.
func (c *Client) CreateCustom(ctx context.Context, payload map[string]any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	status, data, _, err := c.do(ctx, http.MethodPost, "/url/add", body)
	if err != nil {
		return nil, err
	}
	ok, msg := classify(status, data)
	return &Result{OK: ok, Data: data, Message: msg}, nil
}

// Domains возвращает список брендированных доменов.
func (c *Client) Domains(ctx context.Context) ([]string, error) {
	status, data, _, err := c.do(ctx, http.MethodGet, "/domains?limit=100&page=1", nil)
	if err != nil {
		return nil, err
	}
	if ok, msg := classify(status, data); !ok {
		return nil, fmt.Errorf("domains request rejected: %s", msg)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("domains response parse failed: %w", err)
	}

	// Сервис отдаёт элементы то объектами {domain|name}, то строками
	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("domains response parse failed: %w", err)
	}

	domains := make([]string, 0, len(items))
	for _, item := range items {
		var obj struct {
			Domain string `json:"domain"`
			Name   string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err == nil {
			if obj.Domain != "" {
				domains = append(domains, obj.Domain)
				continue
			}
			if obj.Name != "" {
				domains = append(domains, obj.Name)
				continue
			}
		}
		var s string
		if err := json.Unmarshal(item, &s); err == nil && s != "" {
			domains = append(domains, s)
		}
	}
	return domains, nil
}

// CampaignEntry кампания внешнего сервиса.
type CampaignEntry struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Public  bool            `json:"public"`
	Rotator json.RawMessage `json:"rotator"`
	List    string          `json:"list"`
}

// CampaignPage страница списка кампаний.
type CampaignPage struct {
	Campaigns   []CampaignEntry `json:"campaigns"`
	Result      int             `json:"result"`
	CurrentPage int             `json:"currentpage"`
	MaxPage     int             `json:"maxpage"`
}

// Campaigns возвращает страницу списка кампаний.
func (c *Client) Campaigns(ctx context.Context, limit, page int) (*CampaignPage, error) {
	path := fmt.Sprintf("/campaigns?limit=%d&page=%d", limit, page)
	status, data, _, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if ok, msg := classify(status, data); !ok {
		return nil, fmt.Errorf("campaigns request rejected: %s", msg)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("campaigns response parse failed: %w", err)
	}
	page1 := &CampaignPage{CurrentPage: 1, MaxPage: 1}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, page1); err != nil {
			return nil, fmt.Errorf("campaigns response parse failed: %w", err)
		}
	}
	return page1, nil
}

// AddCampaign создаёт кампанию во внешнем сервисе.
func (c *Client) AddCampaign(ctx context.Context, name, slug string, public *bool) (*Result, error) {
	payload := map[string]any{"name": name}
	if slug != "" {
		payload["slug"] = slug
	}
	if public != nil {
		payload["public"] = *public
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	status, data, _, err := c.do(ctx, http.MethodPost, "/campaign/add", body)
	if err != nil {
		return nil, err
	}
	ok, msg := classify(status, data)
	return &Result{OK: ok, Data: data, Message: msg}, nil
}

// LinkEntry одна ссылка в выдаче /urls.
type LinkEntry struct {
	ID          int             `json:"id"`
	Alias       string          `json:"alias"`
	ShortURL    string          `json:"shorturl"`
	LongURL     string          `json:"longurl"`
	Clicks      int             `json:"clicks"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Campaign    json.RawMessage `json:"campaign"`
}

// CampaignID извлекает числовой идентификатор кампании,
// который сервис отдаёт то числом, то строкой.
func (e *LinkEntry) CampaignID() (int, bool) {
	if len(e.Campaign) == 0 || string(e.Campaign) == "null" {
		return 0, false
	}
	var id int
	if err := json.Unmarshal(e.Campaign, &id); err == nil {
		return id, true
	}
	var s string
	if err := json.Unmarshal(e.Campaign, &s); err == nil {
		if id, convErr := strconv.Atoi(s); convErr == nil {
			return id, true
		}
	}
	return 0, false
}

type linksPage struct {
	URLs        []LinkEntry `json:"urls"`
	CurrentPage int         `json:"currentpage"`
	MaxPage     int         `json:"maxpage"`
}

// Links обходит все страницы /urls и возвращает полный список ссылок.
func (c *Client) Links(ctx context.Context) ([]LinkEntry, error) {
	var all []LinkEntry
	for page := 1; ; page++ {
		path := fmt.Sprintf("/urls?limit=100&page=%d&order=date", page)
		status, data, _, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if ok, msg := classify(status, data); !ok {
			return nil, fmt.Errorf("links request rejected: %s", msg)
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("links response parse failed: %w", err)
		}
		var pg linksPage
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &pg); err != nil {
				return nil, fmt.Errorf("links response parse failed: %w", err)
			}
		}
		all = append(all, pg.URLs...)

		if pg.CurrentPage == 0 || pg.MaxPage == 0 || pg.CurrentPage >= pg.MaxPage {
			break
		}
	}
	return all, nil
}

// LinkStats детальная статистика одной ссылки.
type LinkStats struct {
	UniqueClicks int            `json:"uniqueClicks"`
	TopCountries map[string]int `json:"topCountries"`
	TopReferrers map[string]int `json:"topReferrers"`
	TopBrowsers  map[string]int `json:"topBrowsers"`
}

// Stats возвращает детальную статистику ссылки по её идентификатору.
func (c *Client) Stats(ctx context.Context, id int) (*LinkStats, error) {
	status, data, _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/url/%d", id), nil)
	if err != nil {
		return nil, err
	}
	if ok, msg := classify(status, data); !ok {
		return nil, fmt.Errorf("stats request rejected: %s", msg)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("stats response parse failed: %w", err)
	}
	stats := &LinkStats{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, stats); err != nil {
			return nil, fmt.Errorf("stats response parse failed: %w", err)
		}
	}
	return stats, nil
}
