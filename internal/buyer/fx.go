package buyer

import (
	"github.com/taxops/fbrgate/internal/buyer/repository"
	"github.com/taxops/fbrgate/internal/buyer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("buyer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
