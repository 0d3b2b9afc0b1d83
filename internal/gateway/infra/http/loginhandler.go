package http

import (
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

type LoginHandler struct {
	sessionIssue
}

func NewLoginHandler(authService service.Auth, cookies SessionCookies, redirects Redirects) LoginHandler {
	return LoginHandler{sessionIssue{
		issue:          authService.Login,
		cookies:        cookies,
		successStatus:  http.StatusOK,
		successMessage: "Login successful",
		landing:        redirects.Landing(),
		form:           redirects.LoginForm,
	}}
}

func (h LoginHandler) Method() string {
	return http.MethodPost
}

func (h LoginHandler) Path() string {
	return "/auth/login"
}

func (h LoginHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	return h.handle(w, r)
}
