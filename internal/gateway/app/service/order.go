package service

import (
	"context"
	"encoding/json"

	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

const (
	CommandCreateOrder       = "create_order"
	CommandGetOrders         = "get_orders"
	CommandVerifyTransaction = "verify_transaction"
	CommandHandleWebhook     = "handle_webhook"

	transactionStatusSuccess = "success"
)

type (
	Order interface {
		CreateOrder(ctx context.Context, order json.RawMessage, token string) (rpc.Response, error)
		Orders(ctx context.Context, token string) (rpc.Response, error)
		// VerifyTransaction reports whether the payment behind reference succeeded. It has
		// no side effects in the gateway, repeated calls give the same answer for the same reply.
		VerifyTransaction(ctx context.Context, reference string) (bool, error)
		HandleWebhook(ctx context.Context, event json.RawMessage) error
	}

	// transactionOut is the payment provider verification reply relayed by the order backend:
	// {status: true, data: {status: "success"}} for a paid transaction.
	transactionOut struct {
		Status bool `json:"status"`
		Data   *struct {
			Status string `json:"status"`
		} `json:"data"`
	}

	orderService struct {
		client rpc.Client
	}
)

func NewOrder(client rpc.Client) Order {
	return orderService{client: client}
}

func (s orderService) CreateOrder(ctx context.Context, order json.RawMessage, token string) (rpc.Response, error) {
	return s.client.Call(ctx, CommandCreateOrder, struct {
		DTO   json.RawMessage `json:"dto"`
		Token string          `json:"token"`
	}{
		DTO:   order,
		Token: token,
	})
}

func (s orderService) Orders(ctx context.Context, token string) (rpc.Response, error) {
	return s.client.Call(ctx, CommandGetOrders, struct {
		Token string `json:"token"`
	}{Token: token})
}

func (s orderService) VerifyTransaction(ctx context.Context, reference string) (bool, error) {
	response, err := s.client.Call(ctx, CommandVerifyTransaction, struct {
		Reference string `json:"reference"`
	}{Reference: reference})
	if err != nil {
		return false, err
	}
	if response.IsEmpty() {
		return false, nil
	}

	var out transactionOut
	err = response.Decode(&out)
	if err != nil {
		return false, malformedResponse(s.client.Destination(), CommandVerifyTransaction, err)
	}

	return out.Status && out.Data != nil && out.Data.Status == transactionStatusSuccess, nil
}

func (s orderService) HandleWebhook(ctx context.Context, event json.RawMessage) error {
	_, err := s.client.Call(ctx, CommandHandleWebhook, struct {
		Event json.RawMessage `json:"event"`
	}{Event: event})
	return err
}
