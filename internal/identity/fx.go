package identity

import (
	"github.com/smallbiznis/pixelift/internal/identity/repository"
	"github.com/smallbiznis/pixelift/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
