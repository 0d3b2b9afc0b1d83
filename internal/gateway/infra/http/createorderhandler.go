package http

import (
	"encoding/json"
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

type CreateOrderHandler struct {
	orderService service.Order
}

func NewCreateOrderHandler(orderService service.Order) CreateOrderHandler {
	return CreateOrderHandler{orderService: orderService}
}

func (h CreateOrderHandler) Method() string {
	return http.MethodPost
}

func (h CreateOrderHandler) Path() string {
	return "/order/createOrder"
}

// Handle forwards the raw session token as the order backend verifies it on its own.
func (h CreateOrderHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	order, err := pkghttp.ParseRequest(r, pkghttp.JSONBody[json.RawMessage](), nil)
	if err != nil {
		return err
	}

	result, err := h.orderService.CreateOrder(r.Context(), order, sessionToken(r))
	if err != nil {
		return writeFailure(w, service.DestinationOrder, err)
	}

	w.SetJSONBody(result)
	return nil
}
