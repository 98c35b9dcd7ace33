package transaction

import (
	"github.com/smallbiznis/pixelift/internal/transaction/repository"
	"github.com/smallbiznis/pixelift/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
