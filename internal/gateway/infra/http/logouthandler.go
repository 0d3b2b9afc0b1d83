package http

import (
	"net/http"

	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

type LogoutHandler struct {
	cookies   SessionCookies
	redirects Redirects
}

func NewLogoutHandler(cookies SessionCookies, redirects Redirects) LogoutHandler {
	return LogoutHandler{
		cookies:   cookies,
		redirects: redirects,
	}
}

func (h LogoutHandler) Method() string {
	return http.MethodPost
}

func (h LogoutHandler) Path() string {
	return "/auth/logout"
}

func (h LogoutHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	w.SetCookie(h.cookies.Clear())
	if isBrowser(r) {
		w.Redirect(h.redirects.LoginForm(""))
		return nil
	}

	w.SetJSONBody(pkghttp.MessageOut{Message: "Logout successful"})
	return nil
}
