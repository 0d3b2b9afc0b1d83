package strings_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/go-rpc-gateway/pkg/strings"
)

func TestParseTypedValue(t *testing.T) {
	b, err := strings.ParseTypedValue[bool]("true")
	require.NoError(t, err)
	assert.True(t, b)

	i, err := strings.ParseTypedValue[int]("42")
	require.NoError(t, err)
	assert.Equal(t, 42, i)

	d, err := strings.ParseTypedValue[time.Duration]("1500ms")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	id := uuid.New()
	parsedID, err := strings.ParseTypedValue[uuid.UUID](id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsedID)

	ts, err := strings.ParseTypedValue[time.Time]("1700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), ts.Unix())

	_, err = strings.ParseTypedValue[int]("forty-two")
	assert.Error(t, err)
}

func TestToScreamingSnakeCase(t *testing.T) {
	assert.Equal(t, "AUTH", strings.ToScreamingSnakeCase("auth"))
	assert.Equal(t, "ORDER_HISTORY", strings.ToScreamingSnakeCase("orderHistory"))
}
