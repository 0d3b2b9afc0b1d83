package http

import (
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

type GetOrdersHandler struct {
	orderService service.Order
}

func NewGetOrdersHandler(orderService service.Order) GetOrdersHandler {
	return GetOrdersHandler{orderService: orderService}
}

func (h GetOrdersHandler) Method() string {
	return http.MethodGet
}

func (h GetOrdersHandler) Path() string {
	return "/order/notification"
}

func (h GetOrdersHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	orders, err := h.orderService.Orders(r.Context(), sessionToken(r))
	if err != nil {
		return writeFailure(w, service.DestinationOrder, err)
	}

	w.SetJSONBody(ordersOut{Notifications: orders})
	return nil
}

type ordersOut struct {
	Notifications rpc.Response `json:"notifications"`
}
