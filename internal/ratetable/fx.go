package ratetable

import (
	"github.com/taxops/fbrgate/internal/ratetable/repository"
	"github.com/taxops/fbrgate/internal/ratetable/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ratetable.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
