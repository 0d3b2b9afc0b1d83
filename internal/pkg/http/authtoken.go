package http

import (
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/pkg/auth"
	pkgauth "github.com/klwxsrx/go-rpc-gateway/pkg/auth"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

func SessionCookieTokenProvider(r *http.Request) (pkgauth.Token, bool) {
	value, err := pkghttp.ParseRequest(r, pkghttp.CookieValue[string](auth.SessionCookieName), nil)
	if err != nil {
		return nil, false
	}

	return auth.SessionToken{Value: value}, true
}
