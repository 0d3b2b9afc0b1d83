package http

import (
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	"github.com/klwxsrx/go-rpc-gateway/internal/pkg/auth"
	pkgauth "github.com/klwxsrx/go-rpc-gateway/pkg/auth"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

type GetProfileHandler struct {
	authService service.Auth
}

func NewGetProfileHandler(authService service.Auth) GetProfileHandler {
	return GetProfileHandler{authService: authService}
}

func (h GetProfileHandler) Method() string {
	return http.MethodGet
}

func (h GetProfileHandler) Path() string {
	return "/auth/profile"
}

func (h GetProfileHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	principal, ok := pkgauth.GetPrincipal[auth.Principal](r.Context())
	if !ok {
		w.SetStatusCode(http.StatusUnauthorized)
		return pkgauth.ErrUnauthenticated
	}

	profile, err := h.authService.Profile(r.Context(), principal.UserID)
	if err != nil {
		return writeFailure(w, service.DestinationAuth, err)
	}

	w.SetJSONBody(profile)
	return nil
}
