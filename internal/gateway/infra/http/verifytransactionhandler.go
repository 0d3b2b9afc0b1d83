package http

import (
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

type VerifyTransactionHandler struct {
	orderService service.Order
	redirects    Redirects
}

func NewVerifyTransactionHandler(orderService service.Order, redirects Redirects) VerifyTransactionHandler {
	return VerifyTransactionHandler{
		orderService: orderService,
		redirects:    redirects,
	}
}

func (h VerifyTransactionHandler) Method() string {
	return http.MethodGet
}

func (h VerifyTransactionHandler) Path() string {
	return "/order/verify/{reference}"
}

func (h VerifyTransactionHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	reference, err := pkghttp.ParseRequest(r, pkghttp.PathParameter[string]("reference"), nil)
	if err != nil {
		return err
	}

	paid, err := h.orderService.VerifyTransaction(r.Context(), reference)
	if err != nil {
		return writeFailure(w, service.DestinationOrder, err)
	}

	if paid {
		w.Redirect(h.redirects.Landing())
		return nil
	}

	w.Redirect(h.redirects.PaymentFailed())
	return nil
}
