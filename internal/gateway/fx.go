package gateway

import (
	"github.com/taxops/fbrgate/internal/gateway/service"
	"go.uber.org/fx"
)

var Module = fx.Module("gateway.client",
	fx.Provide(service.NewTokenSource),
	fx.Provide(service.NewClient),
)
