package removal

import (
	"github.com/smallbiznis/pixelift/internal/removal/clipdrop"
	"github.com/smallbiznis/pixelift/internal/removal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("removal.service",
	fx.Provide(clipdrop.NewRemover),
	fx.Provide(service.New),
)
