package auth

import (
	"github.com/klwxsrx/go-rpc-gateway/pkg/auth"
)

const SessionCookieName = "Authentication"

type SessionToken struct {
	Value string
}

func (t SessionToken) Type() auth.PrincipalType {
	return PrincipalTypeUser
}
