package auth

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrMisconfigured   = errors.New("authentication is misconfigured")
)

type (
	// Provider turns a token extracted from a request into an authentication.
	// Errors wrapping ErrUnauthenticated reject the caller; any other error is a server fault.
	Provider[T Principal] interface {
		Authenticate(context.Context, Token) (Authentication[T], error)
	}

	Token interface {
		Type() PrincipalType
	}

	Authentication[T Principal] interface {
		IsAuthenticated() bool
		Principal() *T
	}

	Principal interface {
		Type() PrincipalType
		ID() *string
	}

	Auth[T Principal] struct {
		AuthPrincipal *T
	}

	PrincipalType string
)

func (a Auth[T]) IsAuthenticated() bool {
	return a.AuthPrincipal != nil
}

func (a Auth[T]) Principal() *T {
	return a.AuthPrincipal
}
