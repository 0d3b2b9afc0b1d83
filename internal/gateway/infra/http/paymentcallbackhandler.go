package http

import (
	"net/http"

	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

type PaymentCallbackHandler struct {
	redirects Redirects
}

func NewPaymentCallbackHandler(redirects Redirects) PaymentCallbackHandler {
	return PaymentCallbackHandler{redirects: redirects}
}

func (h PaymentCallbackHandler) Method() string {
	return http.MethodGet
}

func (h PaymentCallbackHandler) Path() string {
	return "/order/callback"
}

func (h PaymentCallbackHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	reference, err := pkghttp.ParseRequest(r, pkghttp.QueryParameter[string]("reference"), nil)
	if err != nil {
		w.SetStatusCode(http.StatusBadRequest).SetTextBody("Missing reference")
		return err
	}

	w.Redirect(h.redirects.VerifyTransaction(reference))
	return nil
}
