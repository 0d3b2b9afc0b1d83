package gateway

import (
	"time"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/infra/http"
	"github.com/klwxsrx/go-rpc-gateway/pkg/env"
)

const jwtSecretEnv = "JWT_SECRET"

type Config struct {
	// JWTSecretEnv names the variable re-read on every strictly verified request.
	JWTSecretEnv  string
	JWTSecret     string
	SessionCookie http.SessionCookiePolicy
	BasePath      string
	WebhookSecret string
}

func MustParseConfig() Config {
	sameSite, err := http.ParseSameSite(env.Must(env.ParseOrDefault("SESSION_COOKIE_SAME_SITE", "none")))
	if err != nil {
		panic(err)
	}

	return Config{
		JWTSecretEnv: jwtSecretEnv,
		JWTSecret:    env.Must(env.ParseOrDefault(jwtSecretEnv, "")),
		SessionCookie: http.SessionCookiePolicy{
			Secure:   env.Must(env.ParseOrDefault("SESSION_COOKIE_SECURE", true)),
			SameSite: sameSite,
			MaxAge:   env.Must(env.ParseOrDefault[time.Duration]("SESSION_MAX_AGE", http.DefaultSessionMaxAge)),
		},
		BasePath:      env.Must(env.ParseOrDefault("GATEWAY_BASE_PATH", "")),
		WebhookSecret: env.Must(env.ParseOrDefault("PAYSTACK_SECRET_KEY", "")),
	}
}
