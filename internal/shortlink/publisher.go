package shortlink

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var localHost = regexp.MustCompile(`^(localhost:\d+|127\.0\.0\.1(:\d+)?)`)

// Share is what a client gets back for a shared entry.
type Share struct {
	Code     string `json:"code"`
	ShortURL string `json:"shortUrl"`
	External bool   `json:"external"`
}

// Publisher turns a code into a URL to hand out.
type Publisher struct {
	// BaseURL, when set, overrides the request origin.
	BaseURL string
	// Provider is the configured external provider name. A configured
	// provider makes external shortening mandatory outside local hosts.
	Provider string
	External Shortener

	log *zap.Logger
}

func NewPublisher(baseURL, provider string, external Shortener) *Publisher {
	return &Publisher{
		BaseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Provider: strings.ToLower(strings.TrimSpace(provider)),
		External: external,
		log:      zap.L().With(zap.String("component", "shortlink.Publisher")),
	}
}

// Path is the in-app path that resolves code.
func Path(code string) string {
	return "/s/" + url.PathEscape(code)
}

// IsLocalHost reports whether host is a local development address.
func IsLocalHost(host string) bool {
	return localHost.MatchString(host)
}

// Publish builds the share URL for code. host and proto describe the
// incoming request; proto is usually X-Forwarded-Proto and may be empty.
func (p *Publisher) Publish(ctx context.Context, code, host, proto string) (Share, error) {
	path := Path(code)

	origin := p.BaseURL
	if origin == "" && proto != "" && host != "" {
		origin = proto + "://" + host
	}

	var absolute string
	if origin != "" {
		absolute = origin + path
	}

	var external string
	if absolute != "" && p.External != nil {
		short, err := p.External.Shorten(ctx, absolute)
		if err != nil {
			p.log.Warn("external shortener failed", zap.String("provider", p.Provider), zap.Error(err))
		} else {
			external = short
		}
	}

	if external == "" && p.Provider != "" && !IsLocalHost(host) {
		return Share{}, ErrExternalFailed
	}

	s := Share{Code: code, ShortURL: path}
	switch {
	case external != "":
		s.ShortURL = external
		s.External = true
	case absolute != "":
		s.ShortURL = absolute
	}
	return s, nil
}
