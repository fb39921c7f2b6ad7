package product

import (
	"github.com/taxops/fbrgate/internal/product/repository"
	"github.com/taxops/fbrgate/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
