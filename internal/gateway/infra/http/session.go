package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	"github.com/klwxsrx/go-rpc-gateway/internal/pkg/auth"
)

const DefaultSessionMaxAge = time.Hour

var (
	ErrInsecureSameSiteNone = errors.New("session cookie with SameSite=None must be secure")
	errMalformedSession     = errors.New("session token is not well-formed")
)

var sameSiteModes = map[string]http.SameSite{
	"strict": http.SameSiteStrictMode,
	"lax":    http.SameSiteLaxMode,
	"none":   http.SameSiteNoneMode,
}

// SessionCookiePolicy is one deployment-wide policy for issuing and clearing the session cookie.
type SessionCookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

func ParseSameSite(mode string) (http.SameSite, error) {
	sameSite, ok := sameSiteModes[strings.ToLower(strings.TrimSpace(mode))]
	if !ok {
		return 0, fmt.Errorf("unknown SameSite mode %q", mode)
	}

	return sameSite, nil
}

type SessionCookies struct {
	policy SessionCookiePolicy
}

func NewSessionCookies(policy SessionCookiePolicy) (SessionCookies, error) {
	if policy.SameSite == http.SameSiteNoneMode && !policy.Secure {
		return SessionCookies{}, ErrInsecureSameSiteNone
	}
	if policy.SameSite == 0 {
		policy.SameSite = http.SameSiteLaxMode
	}
	if policy.MaxAge <= 0 {
		policy.MaxAge = DefaultSessionMaxAge
	}

	return SessionCookies{policy: policy}, nil
}

func (c SessionCookies) Issue(token service.SessionToken) (*http.Cookie, error) {
	if !auth.IsWellFormed(string(token)) {
		return nil, errMalformedSession
	}

	cookie := c.cookie()
	cookie.Value = string(token)
	cookie.MaxAge = int(c.policy.MaxAge.Seconds())
	return cookie, nil
}

func (c SessionCookies) Clear() *http.Cookie {
	cookie := c.cookie()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}

func (c SessionCookies) cookie() *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.policy.Secure,
		SameSite: c.policy.SameSite,
	}
}
