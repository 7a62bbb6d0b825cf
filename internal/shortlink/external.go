package shortlink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	bitlyEndpoint   = "https://api-ssl.bitly.com/v4/shorten"
	shortIOEndpoint = "https://api.short.io/links"
)

// Shortener wraps a third-party URL shortening service.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// NewShortener returns the client for provider, or nil when provider is
// empty or unknown.
func NewShortener(provider, bitlyToken, shortIOKey, shortIODomain string) Shortener {
	client := &http.Client{Timeout: 8 * time.Second}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "bitly":
		return &Bitly{Token: bitlyToken, Endpoint: bitlyEndpoint, HTTP: client}
	case "shortio", "short.io":
		return &ShortIO{APIKey: shortIOKey, Domain: shortIODomain, Endpoint: shortIOEndpoint, HTTP: client}
	}
	return nil
}

type Bitly struct {
	Token    string
	Endpoint string
	HTTP     *http.Client
}

func (b *Bitly) Shorten(ctx context.Context, longURL string) (string, error) {
	if b.Token == "" {
		return "", errors.New("bitly: missing token")
	}
	var out struct {
		Link    string `json:"link"`
		Message string `json:"message"`
	}
	status, err := postJSON(ctx, b.HTTP, b.Endpoint, "Bearer "+b.Token, map[string]string{"long_url": longURL}, &out)
	if err != nil {
		return "", fmt.Errorf("bitly: %w", err)
	}
	if status < 200 || status > 299 {
		return "", fmt.Errorf("bitly: status %d: %s", status, out.Message)
	}
	if out.Link == "" {
		return "", errors.New("bitly: empty link in response")
	}
	return out.Link, nil
}

type ShortIO struct {
	APIKey   string
	Domain   string
	Endpoint string
	HTTP     *http.Client
}

func (s *ShortIO) Shorten(ctx context.Context, longURL string) (string, error) {
	if s.APIKey == "" || s.Domain == "" {
		return "", errors.New("short.io: missing api key or domain")
	}
	var out struct {
		ShortURL       string `json:"shortURL"`
		SecureShortURL string `json:"secureShortURL"`
		Message        string `json:"message"`
		Description    string `json:"description"`
	}
	body := map[string]string{"originalURL": longURL, "domain": s.Domain}
	status, err := postJSON(ctx, s.HTTP, s.Endpoint, s.APIKey, body, &out)
	if err != nil {
		return "", fmt.Errorf("short.io: %w", err)
	}
	if status < 200 || status > 299 {
		msg := out.Message
		if msg == "" {
			msg = out.Description
		}
		return "", fmt.Errorf("short.io: status %d: %s", status, msg)
	}
	switch {
	case out.ShortURL != "":
		return out.ShortURL, nil
	case out.SecureShortURL != "":
		return out.SecureShortURL, nil
	}
	return "", errors.New("short.io: empty link in response")
}

// postJSON sends body and decodes the response into out when it is JSON.
// It returns the HTTP status.
func postJSON(ctx context.Context, client *http.Client, endpoint, authorization string, body, out any) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorization)

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	// error bodies are not always JSON
	_ = json.Unmarshal(data, out)
	return resp.StatusCode, nil
}
