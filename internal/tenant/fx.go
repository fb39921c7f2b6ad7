package tenant

import (
	"github.com/taxops/fbrgate/internal/tenant/repository"
	"github.com/taxops/fbrgate/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
