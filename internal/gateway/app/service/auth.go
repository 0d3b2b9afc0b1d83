package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/klwxsrx/go-rpc-gateway/internal/pkg/auth"
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

const (
	CommandLoginUser     = "login_user"
	CommandRegisterUser  = "register_user"
	CommandGetProfile    = "get_profile"
	CommandUpdateProfile = "update-profile"
)

var errMalformedAccessToken = errors.New("access token is not a well-formed token")

type (
	Auth interface {
		Login(ctx context.Context, credentials json.RawMessage) (SessionToken, error)
		Register(ctx context.Context, profile json.RawMessage) (SessionToken, error)
		Profile(ctx context.Context, userID string) (rpc.Response, error)
		UpdateProfile(ctx context.Context, in UpdateProfileIn) (rpc.Response, error)
	}

	SessionToken string

	UpdateProfileIn struct {
		Body    any
		File    *ProfileImage
		Cookies map[string]string
	}

	// ProfileImage keeps the uploaded-file field names backends already read.
	ProfileImage struct {
		FieldName    string `json:"fieldname"`
		OriginalName string `json:"originalname"`
		MimeType     string `json:"mimetype"`
		Size         int64  `json:"size"`
		Buffer       []byte `json:"buffer"`
	}

	accessTokenOut struct {
		AccessToken string `json:"access_token"`
	}

	authService struct {
		client rpc.Client
	}
)

func NewAuth(client rpc.Client) Auth {
	return authService{client: client}
}

func (s authService) Login(ctx context.Context, credentials json.RawMessage) (SessionToken, error) {
	return s.issueSession(ctx, CommandLoginUser, credentials)
}

func (s authService) Register(ctx context.Context, profile json.RawMessage) (SessionToken, error) {
	return s.issueSession(ctx, CommandRegisterUser, profile)
}

func (s authService) Profile(ctx context.Context, userID string) (rpc.Response, error) {
	return s.client.Call(ctx, CommandGetProfile, struct {
		UserID string `json:"userId"`
	}{UserID: userID})
}

func (s authService) UpdateProfile(ctx context.Context, in UpdateProfileIn) (rpc.Response, error) {
	return s.client.Call(ctx, CommandUpdateProfile, struct {
		Body    any               `json:"body"`
		File    *ProfileImage     `json:"file"`
		Cookies map[string]string `json:"cookies"`
	}{
		Body:    in.Body,
		File:    in.File,
		Cookies: in.Cookies,
	})
}

func (s authService) issueSession(ctx context.Context, command string, payload json.RawMessage) (SessionToken, error) {
	response, err := s.client.Call(ctx, command, payload)
	if err != nil {
		return "", err
	}

	var out accessTokenOut
	err = response.Decode(&out)
	if err != nil {
		return "", malformedResponse(s.client.Destination(), command, err)
	}
	if !auth.IsWellFormed(out.AccessToken) {
		return "", malformedResponse(s.client.Destination(), command, errMalformedAccessToken)
	}

	return SessionToken(out.AccessToken), nil
}
