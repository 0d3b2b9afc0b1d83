package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

const (
	CommandCreateNotification = "create_notification"
	CommandGetNotifications   = "get_notifications"
)

type (
	Notification interface {
		// Create forwards the notification fields together with the caller token.
		Create(ctx context.Context, notification map[string]json.RawMessage, token string) error
		List(ctx context.Context, userID, token string) (rpc.Response, error)
	}

	notificationService struct {
		client rpc.Client
	}
)

func NewNotification(client rpc.Client) Notification {
	return notificationService{client: client}
}

func (s notificationService) Create(ctx context.Context, notification map[string]json.RawMessage, token string) error {
	encodedToken, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	payload := make(map[string]json.RawMessage, len(notification)+1)
	for key, value := range notification {
		payload[key] = value
	}
	payload["token"] = encodedToken

	_, err = s.client.Call(ctx, CommandCreateNotification, payload)
	return err
}

func (s notificationService) List(ctx context.Context, userID, token string) (rpc.Response, error) {
	return s.client.Call(ctx, CommandGetNotifications, struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}{
		UserID: userID,
		Token:  token,
	})
}
