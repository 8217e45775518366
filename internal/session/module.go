package session

import (
	"koi_orders/internal/api"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"session",
		fx.Provide(New),
		fx.Provide(func(s *Session) api.TokenSource {
			return s.Token
		}),
	)
}
