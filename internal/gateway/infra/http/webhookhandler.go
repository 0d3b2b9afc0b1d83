package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

const (
	maxWebhookBodySize     = 1 << 20
	webhookFailureMessage  = "Webhook handling failed"
	webhookTooLargeMessage = "Webhook payload too large"
)

var errInvalidWebhookSignature = errors.New("invalid webhook signature")

type WebhookHandler struct {
	orderService service.Order
	signature    WebhookSignature
	logger       log.Logger
}

func NewWebhookHandler(orderService service.Order, signature WebhookSignature, logger log.Logger) WebhookHandler {
	return WebhookHandler{
		orderService: orderService,
		signature:    signature,
		logger:       logger,
	}
}

func (h WebhookHandler) Method() string {
	return http.MethodPost
}

func (h WebhookHandler) Path() string {
	return "/order/webhook"
}

// Handle acknowledges every event the order backend received, failures the backend
// reports are only logged. The sender never sees failure details.
func (h WebhookHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxWebhookBodySize))
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		w.SetStatusCode(http.StatusRequestEntityTooLarge).SetJSONBody(pkghttp.MessageOut{Message: webhookTooLargeMessage})
		return fmt.Errorf("%w: webhook body exceeds %d bytes", pkghttp.ErrParsingError, maxBytesErr.Limit)
	}
	if err != nil {
		w.SetStatusCode(http.StatusBadRequest).SetJSONBody(pkghttp.MessageOut{Message: webhookFailureMessage})
		return fmt.Errorf("read webhook body: %w", err)
	}

	if !h.signature.Verify(body, r.Header.Get(WebhookSignatureHeader)) {
		w.SetStatusCode(http.StatusUnauthorized)
		return errInvalidWebhookSignature
	}

	if !json.Valid(body) {
		w.SetStatusCode(http.StatusBadRequest).SetJSONBody(pkghttp.MessageOut{Message: webhookFailureMessage})
		return fmt.Errorf("%w: webhook body is not json", pkghttp.ErrParsingError)
	}

	err = h.orderService.HandleWebhook(r.Context(), body)
	if rpc.IsRemote(err) {
		h.logger.WithError(err).Warn(r.Context(), "webhook event failed on order backend")
		err = nil
	}
	if err != nil {
		w.SetStatusCode(http.StatusBadRequest).SetJSONBody(pkghttp.MessageOut{Message: webhookFailureMessage})
		return err
	}

	w.SetTextBody("ok")
	return nil
}
