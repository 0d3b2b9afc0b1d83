package lazy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klwxsrx/go-rpc-gateway/pkg/lazy"
)

func TestLoader_LoadsOnce(t *testing.T) {
	calls := 0
	loader := lazy.New(func() (int, error) {
		calls++
		return 7, nil
	})

	called := false
	loader.IfLoaded(func(int) { called = true })
	assert.False(t, called)

	assert.Equal(t, 7, loader.MustLoad())
	assert.Equal(t, 7, loader.MustLoad())
	assert.Equal(t, 1, calls)

	loader.IfLoaded(func(v int) { called = v == 7 })
	assert.True(t, called)
}

func TestLoader_MustLoadPanicsOnError(t *testing.T) {
	loader := lazy.New(func() (string, error) {
		return "", errors.New("no config")
	})

	assert.Panics(t, func() { loader.MustLoad() })
	_, err := loader.Load()
	assert.ErrorContains(t, err, "no config")
}
