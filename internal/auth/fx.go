package auth

import (
	"github.com/taxops/fbrgate/internal/auth/repository"
	"github.com/taxops/fbrgate/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
