package auth

import (
	"github.com/klwxsrx/go-rpc-gateway/pkg/auth"
)

const PrincipalTypeUser auth.PrincipalType = "user"

// Principal is the caller identity taken from verified token claims. It is never persisted.
type Principal struct {
	UserID string
	Email  string
	Name   string
}

func (p Principal) Type() auth.PrincipalType {
	return PrincipalTypeUser
}

func (p Principal) ID() *string {
	if p.UserID == "" {
		return nil
	}

	id := p.UserID
	return &id
}
