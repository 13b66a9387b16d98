// Package fastpass contiene los DTOs de /v1/fastpass.
package fastpass

// IssueRequest es el body de POST /v1/fastpass/url. Fields acepta sólo
// strings; otro tipo es INVALID_FORMAT.
type IssueRequest struct {
	Email  string         `json:"email"`
	Name   string         `json:"name"`
	UID    string         `json:"uid"`
	Fields map[string]any `json:"fields,omitempty"`
}

type URLResponse struct {
	URL       string `json:"url"`
	Nonce     string `json:"nonce"`
	Timestamp int64  `json:"timestamp"`
}

type VerifyRequest struct {
	URL string `json:"url"`
}

type VerifyResponse struct {
	Valid     bool              `json:"valid"`
	UID       string            `json:"uid"`
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	Claims    map[string]string `json:"claims"`
	Nonce     string            `json:"nonce"`
	Timestamp int64             `json:"timestamp"`
}
