package http

import (
	"encoding/json"
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

type CreateNotificationHandler struct {
	notificationService service.Notification
}

func NewCreateNotificationHandler(notificationService service.Notification) CreateNotificationHandler {
	return CreateNotificationHandler{notificationService: notificationService}
}

func (h CreateNotificationHandler) Method() string {
	return http.MethodPost
}

func (h CreateNotificationHandler) Path() string {
	return "/notification/create"
}

func (h CreateNotificationHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	notification, err := pkghttp.ParseRequest(r, pkghttp.JSONBody[map[string]json.RawMessage](), nil)
	if err != nil {
		return err
	}

	err = h.notificationService.Create(r.Context(), notification, sessionToken(r))
	if err != nil {
		return writeFailure(w, service.DestinationNotification, err)
	}

	w.SetStatusCode(http.StatusCreated).SetJSONBody(pkghttp.MessageOut{Message: "Notification created"})
	return nil
}
