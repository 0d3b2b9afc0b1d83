package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/go-rpc-gateway/internal/pkg/auth"
	pkgauth "github.com/klwxsrx/go-rpc-gateway/pkg/auth"
	pkgtime "github.com/klwxsrx/go-rpc-gateway/pkg/time"
)

const testSecret = "test-secret"

var testPrincipal = auth.Principal{
	UserID: "64f1c0ffee",
	Email:  "jane@example.com",
	Name:   "Jane",
}

func TestCodec_Verify_RoundTrip(t *testing.T) {
	clock := pkgtime.NewAdjustableClock()
	codec := auth.NewCodec(auth.NewStaticSecretSource(testSecret), clock)
	ctx := context.Background()

	token, err := codec.Encode(ctx, testPrincipal, time.Hour)
	require.NoError(t, err)

	principal, err := codec.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, testPrincipal, principal)
}

func TestCodec_Verify_Returns(t *testing.T) {
	clock := pkgtime.NewAdjustableClock()
	codec := auth.NewCodec(auth.NewStaticSecretSource(testSecret), clock)
	issuedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	token, err := codec.Encode(clock.Set(context.Background(), issuedAt), testPrincipal, time.Hour)
	require.NoError(t, err)

	foreignToken, err := auth.NewCodec(auth.NewStaticSecretSource("other-secret"), clock).
		Encode(clock.Set(context.Background(), issuedAt), testPrincipal, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		now   time.Time
		err   error
	}{
		{
			name:  "missing_when_empty",
			token: "",
			now:   issuedAt,
			err:   auth.ErrMissingToken,
		},
		{
			name:  "invalid_when_garbage",
			token: "not-a-jwt",
			now:   issuedAt,
			err:   auth.ErrInvalidToken,
		},
		{
			name:  "invalid_when_signed_with_other_secret",
			token: foreignToken,
			now:   issuedAt,
			err:   auth.ErrInvalidToken,
		},
		{
			name:  "invalid_when_tampered",
			token: tamper(token),
			now:   issuedAt,
			err:   auth.ErrInvalidToken,
		},
		{
			name:  "invalid_when_tampered_and_expired",
			token: tamper(token),
			now:   issuedAt.Add(2 * time.Hour),
			err:   auth.ErrInvalidToken,
		},
		{
			name:  "expired_after_exp",
			token: token,
			now:   issuedAt.Add(2 * time.Hour),
			err:   auth.ErrExpiredToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(clock.Set(context.Background(), tt.now), tt.token)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCodec_Verify_MisconfiguredWithoutSecret(t *testing.T) {
	codec := auth.NewCodec(auth.NewStaticSecretSource(""), pkgtime.NewAdjustableClock())

	_, err := codec.Verify(context.Background(), "a.b.c")
	assert.ErrorIs(t, err, pkgauth.ErrMisconfigured)
}

func TestVerifyToken_RejectsOtherAlgorithms(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   testPrincipal.UserID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = auth.VerifyToken(token, []byte(testSecret), time.Now())
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyToken_RequiresSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = auth.VerifyToken(token, []byte(testSecret), time.Now())
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

// tamper swaps the subject claim and keeps the original signature.
func tamper(token string) string {
	var c jwt.RegisteredClaims
	_, _, _ = jwt.NewParser().ParseUnverified(token, &c)
	c.Subject = "attacker"

	parts := strings.Split(token, ".")
	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("whatever"))

	return parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]
}
