//go:generate ${TOOLS_BIN}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "SecretSource=SecretSource"
package auth

import (
	"context"
	"fmt"
	"os"

	"github.com/klwxsrx/go-rpc-gateway/pkg/auth"
)

type SecretSource interface {
	Secret(context.Context) ([]byte, error)
}

type staticSecret []byte

func NewStaticSecretSource(secret string) SecretSource {
	return staticSecret(secret)
}

func (s staticSecret) Secret(context.Context) ([]byte, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: signing secret is empty", auth.ErrMisconfigured)
	}

	return s, nil
}

type envSecret string

// NewEnvSecretSource reads the variable on every call, so rotated or removed secrets apply immediately.
func NewEnvSecretSource(name string) SecretSource {
	return envSecret(name)
}

func (s envSecret) Secret(context.Context) ([]byte, error) {
	value := os.Getenv(string(s))
	if value == "" {
		return nil, fmt.Errorf("%w: %s is not set", auth.ErrMisconfigured, string(s))
	}

	return []byte(value), nil
}
