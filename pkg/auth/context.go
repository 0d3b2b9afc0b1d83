package auth

import (
	"context"
	"errors"
)

const authenticationContextKey contextKey = iota

type contextKey int

var errAuthenticationNotFound = errors.New("authentication not found")

func WithAuthentication[T Principal](ctx context.Context, auth Authentication[T]) context.Context {
	var principal *Principal
	if auth.Principal() != nil {
		p := Principal(*auth.Principal())
		principal = &p
	}

	return context.WithValue(ctx, authenticationContextKey, Auth[Principal]{principal})
}

func GetAuthentication[T Principal](ctx context.Context) (Authentication[T], bool) {
	authentication, ok := ctx.Value(authenticationContextKey).(Auth[Principal])
	if !ok {
		return nil, false
	}

	if authentication.AuthPrincipal == nil {
		return Auth[T]{}, true
	}

	principal, ok := (*authentication.AuthPrincipal).(T)
	if !ok {
		return nil, false
	}

	return Auth[T]{AuthPrincipal: &principal}, true
}

// GetPrincipal reports false for anonymous requests as well as for requests without authentication.
func GetPrincipal[T Principal](ctx context.Context) (T, bool) {
	authentication, ok := GetAuthentication[T](ctx)
	if !ok || !authentication.IsAuthenticated() {
		var empty T
		return empty, false
	}

	return *authentication.Principal(), true
}

func IsAuthenticated(ctx context.Context) (bool, error) {
	result, ok := ctx.Value(authenticationContextKey).(Auth[Principal])
	if !ok {
		return false, errAuthenticationNotFound
	}

	return result.IsAuthenticated(), nil
}
