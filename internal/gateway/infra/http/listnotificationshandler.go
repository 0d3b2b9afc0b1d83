package http

import (
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	"github.com/klwxsrx/go-rpc-gateway/internal/pkg/auth"
	pkgauth "github.com/klwxsrx/go-rpc-gateway/pkg/auth"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

type ListNotificationsHandler struct {
	notificationService service.Notification
}

func NewListNotificationsHandler(notificationService service.Notification) ListNotificationsHandler {
	return ListNotificationsHandler{notificationService: notificationService}
}

func (h ListNotificationsHandler) Method() string {
	return http.MethodGet
}

func (h ListNotificationsHandler) Path() string {
	return "/notification/list"
}

func (h ListNotificationsHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	principal, ok := pkgauth.GetPrincipal[auth.Principal](r.Context())
	if !ok {
		w.SetStatusCode(http.StatusUnauthorized)
		return pkgauth.ErrUnauthenticated
	}

	notifications, err := h.notificationService.List(r.Context(), principal.UserID, sessionToken(r))
	if err != nil {
		return writeFailure(w, service.DestinationNotification, err)
	}

	w.SetJSONBody(notificationsOut{Data: notifications})
	return nil
}

type notificationsOut struct {
	Data rpc.Response `json:"data"`
}
