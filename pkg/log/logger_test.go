package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
)

func TestLogger_WritesContextFieldsAndError(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New(log.LevelDebug, log.WithOutput(buf))

	ctx := logger.WithContext(context.Background(), log.Fields{"requestID": "r-1"})
	logger.WithField("destination", "auth").WithError(errors.New("boom")).Warn(ctx, "rpc call failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "rpc call failed", entry["msg"])
	assert.Equal(t, "r-1", entry["requestID"])
	assert.Equal(t, "auth", entry["destination"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLogger_SkipsBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New(log.LevelError, log.WithOutput(buf))

	logger.Info(context.Background(), "ignored")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.LevelDebug, log.ParseLevel("debug"))
	assert.Equal(t, log.LevelWarn, log.ParseLevel(" WARN "))
	assert.Equal(t, log.LevelDisabled, log.ParseLevel("disabled"))
	assert.Equal(t, log.LevelInfo, log.ParseLevel("verbose"))
}
