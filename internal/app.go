package internal

import (
	"context"

	"koi_orders/internal/api"
	"koi_orders/internal/config"
	"koi_orders/internal/draft"
	"koi_orders/internal/logging"
	"koi_orders/internal/session"
	"koi_orders/internal/store"
	"koi_orders/internal/ui"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	var runner *ui.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		store.Module(),
		session.Module(),
		api.Module(),
		draft.Module(),
		ui.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}
