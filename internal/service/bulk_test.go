package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Totarae/AdLinker/internal/linkapi"
	"github.com/Totarae/AdLinker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubCreator подменяет клиента внешнего API в тестах.
type stubCreator struct {
	rejectSlugs  map[string]string // slug -> сообщение отказа сервиса
	networkSlugs map[string]bool   // slug -> сетевой сбой
	calls        []string
	domains      []string
}

func (s *stubCreator) CreateLink(_ context.Context, _, customSlug, domain string) (*linkapi.Result, error) {
	s.calls = append(s.calls, customSlug)
	s.domains = append(s.domains, domain)

	if s.networkSlugs[customSlug] {
		return nil, errors.New("dial tcp: connection refused")
	}
	if msg, rejected := s.rejectSlugs[customSlug]; rejected {
		return &linkapi.Result{OK: false, Data: json.RawMessage(`{"error":1}`), Message: msg}, nil
	}
	return &linkapi.Result{OK: true, Data: json.RawMessage(fmt.Sprintf(`{"error":0,"shorturl":"%s/%s"}`, domain, customSlug))}, nil
}

func newBulkService(creator *stubCreator) *BulkService {
	return NewBulkService(creator, zap.NewNop(), "adtracking.link")
}

func validRequest() *model.LinkRequest {
	return &model.LinkRequest{
		LongURL:      "https://example.com/x",
		Campaign:     "Spring Sale",
		Date:         "2025-08-21",
		Domain:       "adtracking.link",
		Publications: []string{"Facebook", "Google"},
	}
}

func TestBulkCreate_Slugs(t *testing.T) {
	creator := &stubCreator{}
	svc := newBulkService(creator)

	result, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	assert.Equal(t, "spring-sale-facebook-2025-08-21", result.Results[0].Slug)
	assert.Equal(t, "spring-sale-google-2025-08-21", result.Results[1].Slug)
	assert.Equal(t, "Facebook", result.Results[0].Pub)
	assert.Equal(t, "adtracking.link/spring-sale-facebook-2025-08-21", result.Results[0].ShortURL)
	assert.True(t, result.Results[0].OK)
	assert.True(t, result.Results[1].OK)
}

// TestBulkCreate_PartialFailure: отказ одного издания не трогает остальные.
func TestBulkCreate_PartialFailure(t *testing.T) {
	creator := &stubCreator{rejectSlugs: map[string]string{
		"spring-sale-b-2025-08-21": "alias already taken",
	}}
	svc := newBulkService(creator)

	req := validRequest()
	req.Publications = []string{"a", "b", "c"}

	result, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Results, 3)

	assert.True(t, result.Results[0].OK)
	assert.False(t, result.Results[1].OK)
	assert.Equal(t, "alias already taken", result.Results[1].Error)
	assert.True(t, result.Results[2].OK)
	assert.Len(t, creator.calls, 3)
}

// TestBulkCreate_EmptyPublications: пустой список изданий даёт ровно одну
// запись без сегмента издания в слаге.
func TestBulkCreate_EmptyPublications(t *testing.T) {
	creator := &stubCreator{}
	svc := newBulkService(creator)

	req := validRequest()
	req.Publications = nil

	result, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	assert.Equal(t, model.PubNone, result.Results[0].Pub)
	assert.Equal(t, "spring-sale-2025-08-21", result.Results[0].Slug)
}

func TestBulkCreate_NetworkFailureCategory(t *testing.T) {
	creator := &stubCreator{networkSlugs: map[string]bool{
		"spring-sale-facebook-2025-08-21": true,
	}}
	svc := newBulkService(creator)

	result, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	// Сетевой сбой отличим от отказа самого сервиса
	assert.False(t, result.Results[0].OK)
	assert.Contains(t, result.Results[0].Error, "network failure")
	assert.Nil(t, result.Results[0].Data)
	assert.True(t, result.Results[1].OK)
}

func TestBulkCreate_DefaultDomain(t *testing.T) {
	creator := &stubCreator{}
	svc := newBulkService(creator)

	req := validRequest()
	req.Domain = "   "

	result, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "adtracking.link", creator.domains[0])
	assert.Equal(t, "adtracking.link/spring-sale-facebook-2025-08-21", result.Results[0].ShortURL)
}

func TestBulkCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.LinkRequest)
	}{
		{"нет longUrl", func(r *model.LinkRequest) { r.LongURL = "" }},
		{"нет кампании", func(r *model.LinkRequest) { r.Campaign = " " }},
		{"нет даты", func(r *model.LinkRequest) { r.Date = "" }},
		{"относительный URL", func(r *model.LinkRequest) { r.LongURL = "/just/a/path" }},
		{"не http-схема", func(r *model.LinkRequest) { r.LongURL = "ftp://example.com/f" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &stubCreator{}
			svc := newBulkService(creator)

			req := validRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
			// До валидации никаких сетевых вызовов
			assert.Empty(t, creator.calls)
		})
	}
}
