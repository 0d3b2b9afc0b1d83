package gateway

import (
	"context"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/infra/http"
	"github.com/klwxsrx/go-rpc-gateway/internal/pkg/auth"
	commoncmd "github.com/klwxsrx/go-rpc-gateway/internal/pkg/cmd"
	commonhttp "github.com/klwxsrx/go-rpc-gateway/internal/pkg/http"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
	"github.com/klwxsrx/go-rpc-gateway/pkg/lazy"
	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
	pkgtime "github.com/klwxsrx/go-rpc-gateway/pkg/time"
)

type DependencyContainer struct {
	AuthService         lazy.Loader[service.Auth]
	OrderService        lazy.Loader[service.Order]
	NotificationService lazy.Loader[service.Notification]

	cookieGuard lazy.Loader[[]pkghttp.ServerOption]
	strictGuard lazy.Loader[[]pkghttp.ServerOption]

	sessionCookies   lazy.Loader[http.SessionCookies]
	redirects        lazy.Loader[http.Redirects]
	webhookSignature lazy.Loader[http.WebhookSignature]
	logger           lazy.Loader[log.Logger]
}

func NewDependencyContainer(
	ctx context.Context,
	config lazy.Loader[Config],
	rpcClients lazy.Loader[*commoncmd.RPCClientFactory],
	logger lazy.Loader[log.Logger],
) *DependencyContainer {
	clients := rpcRegistryProvider(rpcClients)
	clock := clockProvider()

	return &DependencyContainer{
		AuthService: lazy.New(func() (service.Auth, error) {
			return service.NewAuth(clients.MustLoad().Get(service.DestinationAuth)), nil
		}),
		OrderService: lazy.New(func() (service.Order, error) {
			return service.NewOrder(clients.MustLoad().Get(service.DestinationOrder)), nil
		}),
		NotificationService: lazy.New(func() (service.Notification, error) {
			return service.NewNotification(clients.MustLoad().Get(service.DestinationNotification)), nil
		}),
		cookieGuard:      cookieGuardProvider(ctx, config, clock, logger),
		strictGuard:      strictGuardProvider(config, clock, logger),
		sessionCookies:   sessionCookiesProvider(config),
		redirects:        redirectsProvider(config),
		webhookSignature: webhookSignatureProvider(config),
		logger:           logger,
	}
}

func (c *DependencyContainer) MustRegisterHTTPHandlers(registry pkghttp.HandlerRegistry) {
	authService := c.AuthService.MustLoad()
	orderService := c.OrderService.MustLoad()
	notificationService := c.NotificationService.MustLoad()
	sessionCookies := c.sessionCookies.MustLoad()
	redirects := c.redirects.MustLoad()
	cookieGuard := c.cookieGuard.MustLoad()
	strictGuard := c.strictGuard.MustLoad()

	registry.Register(http.NewLoginHandler(authService, sessionCookies, redirects))
	registry.Register(http.NewRegisterHandler(authService, sessionCookies, redirects))
	registry.Register(http.NewLogoutHandler(sessionCookies, redirects))
	registry.Register(http.NewGetProfileHandler(authService), cookieGuard...)
	registry.Register(http.NewUpdateProfileHandler(authService), cookieGuard...)

	registry.Register(http.NewCreateOrderHandler(orderService), strictGuard...)
	registry.Register(http.NewGetOrdersHandler(orderService), strictGuard...)
	registry.Register(http.NewVerifyTransactionHandler(orderService, redirects))
	registry.Register(http.NewPaymentCallbackHandler(redirects))
	registry.Register(http.NewWebhookHandler(orderService, c.webhookSignature.MustLoad(), c.logger.MustLoad()))

	registry.Register(http.NewCreateNotificationHandler(notificationService), cookieGuard...)
	registry.Register(http.NewListNotificationsHandler(notificationService), cookieGuard...)
}

func rpcRegistryProvider(rpcClients lazy.Loader[*commoncmd.RPCClientFactory]) lazy.Loader[*rpc.Registry] {
	return lazy.New(func() (*rpc.Registry, error) {
		registry := rpc.NewRegistry()
		for _, dest := range service.Destinations {
			registry.Register(rpcClients.MustLoad().MustInitClient(dest))
		}

		return registry, nil
	})
}

func clockProvider() lazy.Loader[pkgtime.Clock] {
	return lazy.New(func() (pkgtime.Clock, error) {
		return pkgtime.NewAdjustableClock(), nil
	})
}

func cookieGuardProvider(
	ctx context.Context,
	config lazy.Loader[Config],
	clock lazy.Loader[pkgtime.Clock],
	logger lazy.Loader[log.Logger],
) lazy.Loader[[]pkghttp.ServerOption] {
	return lazy.New(func() ([]pkghttp.ServerOption, error) {
		secret := config.MustLoad().JWTSecret
		if secret == "" {
			logger.MustLoad().Error(ctx, "token signing secret is not configured, guarded routes will fail")
		}

		codec := auth.NewCodec(auth.NewStaticSecretSource(secret), clock.MustLoad())
		return []pkghttp.ServerOption{
			pkghttp.WithAuth(auth.NewCookieProvider(codec, logger.MustLoad()), commonhttp.SessionCookieTokenProvider),
			pkghttp.WithAuthenticationRequirement(),
		}, nil
	})
}

func strictGuardProvider(
	config lazy.Loader[Config],
	clock lazy.Loader[pkgtime.Clock],
	logger lazy.Loader[log.Logger],
) lazy.Loader[[]pkghttp.ServerOption] {
	return lazy.New(func() ([]pkghttp.ServerOption, error) {
		provider := auth.NewStrictProvider(
			auth.NewEnvSecretSource(config.MustLoad().JWTSecretEnv),
			clock.MustLoad(),
			logger.MustLoad(),
		)
		return []pkghttp.ServerOption{
			pkghttp.WithAuth(provider, commonhttp.SessionCookieTokenProvider),
			pkghttp.WithAuthenticationRequirement(),
		}, nil
	})
}

func sessionCookiesProvider(config lazy.Loader[Config]) lazy.Loader[http.SessionCookies] {
	return lazy.New(func() (http.SessionCookies, error) {
		return http.NewSessionCookies(config.MustLoad().SessionCookie)
	})
}

func redirectsProvider(config lazy.Loader[Config]) lazy.Loader[http.Redirects] {
	return lazy.New(func() (http.Redirects, error) {
		return http.NewRedirects(config.MustLoad().BasePath), nil
	})
}

func webhookSignatureProvider(config lazy.Loader[Config]) lazy.Loader[http.WebhookSignature] {
	return lazy.New(func() (http.WebhookSignature, error) {
		return http.NewWebhookSignature(config.MustLoad().WebhookSecret), nil
	})
}
