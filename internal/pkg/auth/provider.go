package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/klwxsrx/go-rpc-gateway/pkg/auth"
	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
	pkgtime "github.com/klwxsrx/go-rpc-gateway/pkg/time"
)

type cookieProvider struct {
	codec  Codec
	logger log.Logger
}

// NewCookieProvider verifies session tokens with the injected codec.
func NewCookieProvider(codec Codec, logger log.Logger) auth.Provider[Principal] {
	return cookieProvider{
		codec:  codec,
		logger: logger,
	}
}

func (p cookieProvider) Authenticate(ctx context.Context, token auth.Token) (auth.Authentication[Principal], error) {
	sessionToken, ok := token.(SessionToken)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported token type %s", auth.ErrUnauthenticated, token.Type())
	}

	principal, err := p.codec.Verify(ctx, sessionToken.Value)
	return result(ctx, p.logger, principal, err)
}

type strictProvider struct {
	secrets SecretSource
	clock   pkgtime.Clock
	logger  log.Logger
}

// NewStrictProvider reads the signing secret on every request and verifies the token inline.
func NewStrictProvider(secrets SecretSource, clock pkgtime.Clock, logger log.Logger) auth.Provider[Principal] {
	return strictProvider{
		secrets: secrets,
		clock:   clock,
		logger:  logger,
	}
}

func (p strictProvider) Authenticate(ctx context.Context, token auth.Token) (auth.Authentication[Principal], error) {
	sessionToken, ok := token.(SessionToken)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported token type %s", auth.ErrUnauthenticated, token.Type())
	}
	if sessionToken.Value == "" {
		return result(ctx, p.logger, Principal{}, ErrMissingToken)
	}

	secret, err := p.secrets.Secret(ctx)
	if err != nil {
		return result(ctx, p.logger, Principal{}, err)
	}

	principal, err := VerifyToken(sessionToken.Value, secret, p.clock.Now(ctx))
	return result(ctx, p.logger, principal, err)
}

func result(ctx context.Context, logger log.Logger, principal Principal, err error) (auth.Authentication[Principal], error) {
	switch {
	case errors.Is(err, auth.ErrMisconfigured):
		logger.WithError(err).Error(ctx, "token verification is misconfigured")
		return nil, err
	case err != nil:
		logger.WithError(err).Info(ctx, "session token rejected")
		return nil, fmt.Errorf("%w: %w", auth.ErrUnauthenticated, err)
	}

	return auth.Auth[Principal]{AuthPrincipal: &principal}, nil
}
