package http

import (
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

type RegisterHandler struct {
	sessionIssue
}

func NewRegisterHandler(authService service.Auth, cookies SessionCookies, redirects Redirects) RegisterHandler {
	return RegisterHandler{sessionIssue{
		issue:          authService.Register,
		cookies:        cookies,
		successStatus:  http.StatusCreated,
		successMessage: "Registration successful",
		landing:        redirects.Landing(),
		form:           redirects.RegisterForm,
	}}
}

func (h RegisterHandler) Method() string {
	return http.MethodPost
}

func (h RegisterHandler) Path() string {
	return "/auth/register"
}

func (h RegisterHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	return h.handle(w, r)
}
