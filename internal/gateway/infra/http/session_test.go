package http_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	gatewayhttp "github.com/klwxsrx/go-rpc-gateway/internal/gateway/infra/http"
	"github.com/klwxsrx/go-rpc-gateway/internal/pkg/auth"
	pkgtime "github.com/klwxsrx/go-rpc-gateway/pkg/time"
)

func TestNewSessionCookies_RejectsInsecureSameSiteNone(t *testing.T) {
	_, err := gatewayhttp.NewSessionCookies(gatewayhttp.SessionCookiePolicy{SameSite: http.SameSiteNoneMode})
	assert.ErrorIs(t, err, gatewayhttp.ErrInsecureSameSiteNone)
}

func TestSessionCookies_IssueAndClearShareAttributes(t *testing.T) {
	cookies, err := gatewayhttp.NewSessionCookies(gatewayhttp.SessionCookiePolicy{
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   30 * time.Minute,
	})
	require.NoError(t, err)

	issued, err := cookies.Issue(service.SessionToken(encodeTestToken(t)))
	require.NoError(t, err)
	cleared := cookies.Clear()

	assert.Equal(t, auth.SessionCookieName, issued.Name)
	assert.Equal(t, 1800, issued.MaxAge)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
	for _, cookie := range []*http.Cookie{issued, cleared} {
		assert.Equal(t, "/", cookie.Path)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	}
}

func TestSessionCookies_Defaults(t *testing.T) {
	cookies, err := gatewayhttp.NewSessionCookies(gatewayhttp.SessionCookiePolicy{})
	require.NoError(t, err)

	issued, err := cookies.Issue(service.SessionToken(encodeTestToken(t)))
	require.NoError(t, err)
	assert.Equal(t, int(gatewayhttp.DefaultSessionMaxAge.Seconds()), issued.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, issued.SameSite)
}

func TestSessionCookies_Issue_RejectsMalformedToken(t *testing.T) {
	cookies, err := gatewayhttp.NewSessionCookies(gatewayhttp.SessionCookiePolicy{})
	require.NoError(t, err)

	_, err = cookies.Issue("opaque")
	assert.Error(t, err)
}

func TestParseSameSite(t *testing.T) {
	for mode, expected := range map[string]http.SameSite{
		"strict": http.SameSiteStrictMode,
		"Lax":    http.SameSiteLaxMode,
		" none ": http.SameSiteNoneMode,
	} {
		sameSite, err := gatewayhttp.ParseSameSite(mode)
		require.NoError(t, err)
		assert.Equal(t, expected, sameSite)
	}

	_, err := gatewayhttp.ParseSameSite("sometimes")
	assert.Error(t, err)
}

func TestRedirects(t *testing.T) {
	tests := []struct {
		basePath string
		prefix   string
	}{
		{basePath: "", prefix: ""},
		{basePath: "/api/", prefix: "/api"},
		{basePath: "api", prefix: "/api"},
	}

	for _, tt := range tests {
		redirects := gatewayhttp.NewRedirects(tt.basePath)
		assert.Equal(t, tt.prefix+"/auth/home", redirects.Landing())
		assert.Equal(t, tt.prefix+"/auth/login", redirects.LoginForm(""))
		assert.Equal(t, tt.prefix+"/auth/register?error=Email+taken", redirects.RegisterForm("Email taken"))
		assert.Equal(t, tt.prefix+"/order/paymentFailed", redirects.PaymentFailed())
		assert.Equal(t, tt.prefix+"/order/verify/a%2Fb", redirects.VerifyTransaction("a/b"))
	}
}

func encodeTestToken(t *testing.T) string {
	t.Helper()
	token, err := auth.NewCodec(auth.NewStaticSecretSource(testSecret), pkgtime.NewAdjustableClock()).
		Encode(context.Background(), testPrincipal, time.Hour)
	require.NoError(t, err)
	return token
}
