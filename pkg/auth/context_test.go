package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/go-rpc-gateway/pkg/auth"
)

type testPrincipal struct {
	id string
}

func (p testPrincipal) Type() auth.PrincipalType {
	return "test"
}

func (p testPrincipal) ID() *string {
	return &p.id
}

func TestContext_RoundTripsPrincipal(t *testing.T) {
	ctx := auth.WithAuthentication[testPrincipal](context.Background(), auth.Auth[testPrincipal]{
		AuthPrincipal: &testPrincipal{id: "u-1"},
	})

	isAuthenticated, err := auth.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, isAuthenticated)

	principal, ok := auth.GetPrincipal[testPrincipal](ctx)
	require.True(t, ok)
	assert.Equal(t, "u-1", principal.id)
}

func TestContext_Anonymous(t *testing.T) {
	ctx := auth.WithAuthentication[testPrincipal](context.Background(), auth.Auth[testPrincipal]{})

	isAuthenticated, err := auth.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, isAuthenticated)

	_, ok := auth.GetPrincipal[testPrincipal](ctx)
	assert.False(t, ok)
}

func TestContext_Missing(t *testing.T) {
	_, err := auth.IsAuthenticated(context.Background())
	assert.Error(t, err)

	_, ok := auth.GetAuthentication[testPrincipal](context.Background())
	assert.False(t, ok)
}
