package db_fx

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"copyflow/internal/infra"
)

var Module = fx.Options(
	fx.Provide(provideDB),
	fx.Invoke(registerClose),
)

func provideDB() *gorm.DB {
	return infra.InitPostgresql()
}

func registerClose(lc fx.Lifecycle, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db)
			return nil
		},
	})
}
