package main

import (
	"context"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway"
	"github.com/klwxsrx/go-rpc-gateway/internal/pkg/cmd"
	pkgcmd "github.com/klwxsrx/go-rpc-gateway/pkg/cmd"
	"github.com/klwxsrx/go-rpc-gateway/pkg/env"
	"github.com/klwxsrx/go-rpc-gateway/pkg/lazy"
)

func main() {
	ctx := context.Background()
	if err := env.Load(); err != nil {
		panic(err)
	}

	infra := cmd.NewInfrastructureContainer(ctx)
	defer infra.Close(ctx)

	container := gateway.NewDependencyContainer(
		ctx,
		lazy.New(func() (gateway.Config, error) {
			return gateway.MustParseConfig(), nil
		}),
		infra.RPCClientFactory,
		infra.Logger,
	)

	httpServer := infra.HTTPServer.MustLoad()
	container.MustRegisterHTTPHandlers(httpServer)

	logger := infra.Logger.MustLoad()
	logger.Info(ctx, "gateway is ready")
	pkgcmd.MustRun(ctx, logger,
		pkgcmd.TermSignalAwaiter,
		httpServer.Listener,
	)
}
