package http

import (
	"net/http"
	"net/url"
	"strings"
)

const acceptHTML = "text/html"

// Redirects builds browser redirect targets under the deployment base path.
type Redirects struct {
	basePath string
}

func NewRedirects(basePath string) Redirects {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	return Redirects{basePath: basePath}
}

func (r Redirects) Landing() string {
	return r.basePath + "/auth/home"
}

func (r Redirects) LoginForm(errorMessage string) string {
	return withError(r.basePath+"/auth/login", errorMessage)
}

func (r Redirects) RegisterForm(errorMessage string) string {
	return withError(r.basePath+"/auth/register", errorMessage)
}

func (r Redirects) PaymentFailed() string {
	return r.basePath + "/order/paymentFailed"
}

func (r Redirects) VerifyTransaction(reference string) string {
	return r.basePath + "/order/verify/" + url.PathEscape(reference)
}

func isBrowser(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), acceptHTML)
}

func withError(path, errorMessage string) string {
	if errorMessage == "" {
		return path
	}

	return path + "?" + url.Values{"error": {errorMessage}}.Encode()
}
