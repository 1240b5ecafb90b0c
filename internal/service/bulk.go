package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Totarae/AdLinker/internal/linkapi"
	"github.com/Totarae/AdLinker/internal/model"
	"github.com/Totarae/AdLinker/internal/slug"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrValidation возвращается при отклонении запроса до начала батча.
var ErrValidation = errors.New("invalid link request")

// LinkCreator создаёт одну короткую ссылку во внешнем сервисе.
type LinkCreator interface {
	CreateLink(ctx context.Context, longURL, customSlug, domain string) (*linkapi.Result, error)
}

// BulkService раскладывает один запрос на серию обращений к внешнему API:
// по одной ссылке на каждое издание. Попытки независимы, отказ одной
// не прерывает остальные.
type BulkService struct {
	Client        LinkCreator
	Logger        *zap.Logger
	DefaultDomain string
}

// NewBulkService создаёт сервис пакетного создания ссылок.
func NewBulkService(client LinkCreator, logger *zap.Logger, defaultDomain string) *BulkService {
	return &BulkService{
		Client:        client,
		Logger:        logger,
		DefaultDomain: defaultDomain,
	}
}

// validate отклоняет запрос до любых сетевых вызовов.
func validate(req *model.LinkRequest) error {
	if strings.TrimSpace(req.LongURL) == "" {
		return fmt.Errorf("%w: longUrl is required", ErrValidation)
	}
	if strings.TrimSpace(req.Campaign) == "" {
		return fmt.Errorf("%w: campaign is required", ErrValidation)
	}
	if strings.TrimSpace(req.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	parsed, err := url.Parse(req.LongURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: longUrl must be an absolute http(s) URL", ErrValidation)
	}
	return nil
}

// Create создаёт по одной короткой ссылке на каждое издание запроса.
// Пустой список изданий означает одну ссылку без сегмента издания.
// Результат всегда содержит запись на каждое издание: успехи и отказы
// соседствуют, порядок совпадает с порядком изданий в запросе.
func (s *BulkService) Create(ctx context.Context, req *model.LinkRequest) (*model.BatchResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	domain := strings.TrimSpace(req.Domain)
	if domain == "" {
		domain = s.DefaultDomain
	}

	pubs := req.Publications
	if len(pubs) == 0 {
		pubs = []string{model.PubNone}
	}

	batchID := uuid.NewString()
	campaignSlug := slug.Normalize(req.Campaign)
	dateSlug := slug.Normalize(req.Date)

	result := &model.BatchResult{Results: make([]model.CreationAttempt, 0, len(pubs))}
	for _, pub := range pubs {
		pubSlug := ""
		if pub != model.PubNone {
			pubSlug = slug.Normalize(pub)
		}
		linkSlug := slug.Build(campaignSlug, pubSlug, dateSlug)

		attempt := model.CreationAttempt{
			Pub:      pub,
			Slug:     linkSlug,
			ShortURL: domain + "/" + linkSlug,
		}

		res, err := s.Client.CreateLink(ctx, req.LongURL, linkSlug, domain)
		switch {
		case err != nil:
			// Сетевой сбой или отмена: внешний сервис — источник истины,
			// успехом такую попытку считать нельзя
			attempt.Error = fmt.Sprintf("network failure: %v", err)
			s.Logger.Error("link creation transport failure",
				zap.String("batch_id", batchID),
				zap.String("pub", pub),
				zap.String("slug", linkSlug),
				zap.Error(err),
			)
		case !res.OK:
			attempt.Data = res.Data
			attempt.Error = res.Message
			s.Logger.Warn("link creation rejected",
				zap.String("batch_id", batchID),
				zap.String("pub", pub),
				zap.String("slug", linkSlug),
				zap.String("reason", res.Message),
			)
		default:
			attempt.OK = true
			attempt.Data = res.Data
		}

		result.Results = append(result.Results, attempt)
	}

	s.Logger.Info("bulk link batch finished",
		zap.String("batch_id", batchID),
		zap.Int("total", len(result.Results)),
	)
	return result, nil
}
