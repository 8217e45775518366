package draft

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"draft",
		fx.Provide(New),
	)
}
