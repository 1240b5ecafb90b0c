package router

import (
	"github.com/Totarae/AdLinker/internal/auth"
	"github.com/Totarae/AdLinker/internal/handlers"
	"github.com/Totarae/AdLinker/internal/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, a *auth.Auth, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие
	r.Use(middleware.SessionMiddleware(a))      // Сессионный шлюз

	r.Post("/api/auth/login", handler.Login)
	r.Post("/api/auth/logout", handler.Logout)
	r.Post("/api/create", handler.CreateBatch)
	r.Get("/api/pubs", handler.GetPubs)
	r.Post("/api/pubs", handler.SetPubs)
	r.Get("/api/domains", handler.GetDomains)
	r.Get("/api/campaigns", handler.GetCampaigns)
	r.Post("/api/campaigns", handler.AddCampaign)
	r.Get("/api/reports", handler.Report)
	r.Post("/api/shorten", handler.Shorten)
	r.Get("/ping", handler.Ping)
	return r
}
