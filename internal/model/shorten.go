package model

import "encoding/json"

// ShortenRequest представляет запрос на создание одиночной короткой ссылки
// с расширенными полями внешнего сервиса.
type ShortenRequest struct {
	URL             string `json:"url"`
	Custom          string `json:"custom,omitempty"`
	Domain          string `json:"domain,omitempty"`
	Campaign        string `json:"campaign,omitempty"`
	Description     string `json:"description,omitempty"`
	MetaTitle       string `json:"metatitle,omitempty"`
	MetaDescription string `json:"metadescription,omitempty"`
	Type            string `json:"type,omitempty"`
	Password        string `json:"password,omitempty"`
	Expiry          string `json:"expiry,omitempty"`
	Status          string `json:"status,omitempty"`
}

// ShortenResponse представляет ответ с созданной короткой ссылкой.
type ShortenResponse struct {
	OK       bool            `json:"ok"`
	ShortURL string          `json:"shortUrl,omitempty"`
	ID       int64           `json:"id,omitempty"`
	Message  string          `json:"message,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}
