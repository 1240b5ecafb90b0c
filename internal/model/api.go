package model

// LoginRequest учётные данные формы входа.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PubsPayload список изданий для построения слагов.
type PubsPayload struct {
	Pubs []string `json:"pubs"`
}

// DomainsResponse список брендированных доменов для выбора в форме.
type DomainsResponse struct {
	OK            bool     `json:"ok"`
	Domains       []string `json:"domains"`
	DefaultDomain string   `json:"defaultDomain"`
	Error         string   `json:"error,omitempty"`
}
