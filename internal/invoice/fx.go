package invoice

import (
	"github.com/taxops/fbrgate/internal/invoice/repository"
	"github.com/taxops/fbrgate/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
