package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Totarae/AdLinker/internal/auth"
	"github.com/Totarae/AdLinker/internal/database"
	"github.com/Totarae/AdLinker/internal/linkapi"
	"github.com/Totarae/AdLinker/internal/model"
	"github.com/Totarae/AdLinker/internal/service"
	"github.com/Totarae/AdLinker/internal/storage"
	"go.uber.org/zap"
)

// BulkCreator создаёт пакет коротких ссылок.
type BulkCreator interface {
	Create(ctx context.Context, req *model.LinkRequest) (*model.BatchResult, error)
}

// Reporter строит отчёт по кликам.
type Reporter interface {
	Report(ctx context.Context, filter model.ReportFilter) (*model.ReportResponse, error)
}

// APIClient операции внешнего сервиса, проксируемые напрямую.
type APIClient interface {
	Domains(ctx context.Context) ([]string, error)
	Campaigns(ctx context.Context, limit, page int) (*linkapi.CampaignPage, error)
	AddCampaign(ctx context.Context, name, slug string, public *bool) (*linkapi.Result, error)
	CreateCustom(ctx context.Context, payload map[string]any) (*linkapi.Result, error)
}

// Handler обрабатывает HTTP-запросы приложения.
type Handler struct {
	Bulk          BulkCreator
	Reports       Reporter
	Client        APIClient
	Pubs          storage.PubStore
	Auth          *auth.Auth
	DB            database.DBInterface
	Logger        *zap.Logger
	DefaultDomain string
	Mode          string
}

// NewHandler создаёт обработчик со всеми зависимостями.
func NewHandler(bulk BulkCreator, reports Reporter, client APIClient, pubs storage.PubStore,
	a *auth.Auth, db database.DBInterface, logger *zap.Logger, defaultDomain, mode string) *Handler {
	return &Handler{
		Bulk:          bulk,
		Reports:       reports,
		Client:        client,
		Pubs:          pubs,
		Auth:          a,
		DB:            db,
		Logger:        logger,
		DefaultDomain: defaultDomain,
		Mode:          mode,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// Login проверяет учётные данные и выпускает сессионную куку.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if !h.Auth.ValidateCredentials(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := h.Auth.IssueSession(w, req.Username); err != nil {
		h.Logger.Error("failed to issue session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout сбрасывает сессионную куку.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Auth.ClearSession(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CreateBatch принимает запрос на пакетное создание ссылок
// и возвращает результат по каждому изданию.
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req model.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Bulk.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("bulk creation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetPubs возвращает список изданий.
func (h *Handler) GetPubs(w http.ResponseWriter, r *http.Request) {
	pubs, err := h.Pubs.GetPubs(r.Context())
	if err != nil {
		h.Logger.Error("failed to get publications", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get publications")
		return
	}
	if pubs == nil {
		pubs = []string{}
	}
	writeJSON(w, http.StatusOK, model.PubsPayload{Pubs: pubs})
}

// SetPubs заменяет список изданий.
func (h *Handler) SetPubs(w http.ResponseWriter, r *http.Request) {
	var req model.PubsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Pubs.SetPubs(r.Context(), req.Pubs); err != nil {
		h.Logger.Error("failed to update publications", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update publications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": len(storage.Clean(req.Pubs))})
}

// GetDomains возвращает брендированные домены с доменом по умолчанию
// первым в списке. Отказ внешнего сервиса деградирует до одного
// домена по умолчанию.
func (h *Handler) GetDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.Client.Domains(r.Context())
	if err != nil || len(domains) == 0 {
		if err != nil {
			h.Logger.Warn("failed to fetch branded domains", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, model.DomainsResponse{
			OK:            false,
			Domains:       []string{h.DefaultDomain},
			DefaultDomain: h.DefaultDomain,
			Error:         "failed to fetch branded domains",
		})
		return
	}

	hasDefault := false
	for _, d := range domains {
		if d == h.DefaultDomain {
			hasDefault = true
			break
		}
	}
	if !hasDefault {
		domains = append([]string{h.DefaultDomain}, domains...)
	}

	writeJSON(w, http.StatusOK, model.DomainsResponse{
		OK:            true,
		Domains:       domains,
		DefaultDomain: h.DefaultDomain,
	})
}

// GetCampaigns проксирует список кампаний внешнего сервиса.
func (h *Handler) GetCampaigns(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 100)
	page := intQuery(r, "page", 1)

	campaigns, err := h.Client.Campaigns(r.Context(), limit, page)
	if err != nil {
		h.Logger.Error("failed to fetch campaigns", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to fetch campaigns")
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// AddCampaign создаёт кампанию во внешнем сервисе.
func (h *Handler) AddCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Slug   string `json:"slug"`
		Public *bool  `json:"public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "campaign name is required")
		return
	}

	res, err := h.Client.AddCampaign(r.Context(), req.Name, req.Slug, req.Public)
	if err != nil {
		h.Logger.Error("failed to create campaign", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to create campaign")
		return
	}
	if !res.OK {
		writeError(w, http.StatusBadRequest, res.Message)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(res.Data)
}

// Report строит отчёт по кликам с фильтрацией и пагинацией.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	filter := model.ReportFilter{
		Campaign: r.URL.Query().Get("campaign"),
		Search:   r.URL.Query().Get("search"),
		Page:     intQuery(r, "page", 1),
		Limit:    intQuery(r, "limit", 1000),
	}

	resp, err := h.Reports.Report(r.Context(), filter)
	if err != nil {
		h.Logger.Error("failed to build report", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to fetch links")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Shorten создаёт одиночную короткую ссылку с расширенными полями.
func (h *Handler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req model.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}
	if parsed, err := url.Parse(req.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		writeError(w, http.StatusBadRequest, "invalid URL format")
		return
	}

	payload := map[string]any{"url": req.URL}
	addIfSet := func(key, value string) {
		if value != "" {
			payload[key] = value
		}
	}
	addIfSet("custom", req.Custom)
	addIfSet("domain", req.Domain)
	addIfSet("campaign", req.Campaign)
	addIfSet("description", req.Description)
	addIfSet("metatitle", req.MetaTitle)
	addIfSet("metadescription", req.MetaDescription)
	addIfSet("type", req.Type)
	addIfSet("password", req.Password)
	addIfSet("expiry", req.Expiry)
	addIfSet("status", req.Status)

	res, err := h.Client.CreateCustom(r.Context(), payload)
	if err != nil {
		h.Logger.Error("failed to create short link", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to create short link")
		return
	}
	if !res.OK {
		writeJSON(w, http.StatusBadRequest, model.ShortenResponse{OK: false, Message: res.Message, Data: res.Data})
		return
	}

	writeJSON(w, http.StatusOK, model.ShortenResponse{
		OK:       true,
		ShortURL: extractShortURL(res.Data, req.Domain, req.Custom, h.DefaultDomain),
		Data:     res.Data,
	})
}

// extractShortURL достаёт короткий URL из ответа сервиса,
// при отсутствии собирает его из домена и слага.
func extractShortURL(data json.RawMessage, domain, custom, defaultDomain string) string {
	var fields struct {
		ShortURL string `json:"shorturl"`
		Short    string `json:"short"`
		URL      string `json:"url"`
	}
	_ = json.Unmarshal(data, &fields)
	switch {
	case fields.ShortURL != "":
		return fields.ShortURL
	case fields.Short != "":
		return fields.Short
	case fields.URL != "":
		return fields.URL
	}
	if domain == "" {
		domain = defaultDomain
	}
	return domain + "/" + custom
}

// Ping проверяет доступность хранилища.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if h.Mode != "database" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := h.DB.Ping(r.Context()); err != nil {
		h.Logger.Error("database ping failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func intQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 {
		return def
	}
	return val
}
