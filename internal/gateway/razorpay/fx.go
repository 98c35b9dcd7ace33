package razorpay

import "go.uber.org/fx"

var Module = fx.Module("gateway.razorpay",
	fx.Provide(NewAdapter),
)
