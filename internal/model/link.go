package model

import "encoding/json"

// PubNone обозначает запись батча без издания: слаг строится
// только из кампании и даты.
const PubNone = "none"

// LinkRequest представляет запрос на пакетное создание коротких ссылок.
type LinkRequest struct {
	LongURL      string   `json:"longUrl"`
	Campaign     string   `json:"campaign"`
	Date         string   `json:"date"`
	Domain       string   `json:"domain"`
	Publications []string `json:"pubs"`
}

// CreationAttempt представляет результат создания одной короткой ссылки.
// Запись неизменяема после создания; повторные попытки выполняются
// внутри клиента внешнего API, а не на уровне батча.
type CreationAttempt struct {
	Pub      string          `json:"pub"`
	Slug     string          `json:"slug"`
	ShortURL string          `json:"shortUrl"`
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// BatchResult содержит по одной записи на каждое издание из запроса.
type BatchResult struct {
	Results []CreationAttempt `json:"results"`
}
