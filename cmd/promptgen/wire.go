//go:build wireinject

package main

import (
	"github.com/google/wire"
)

func InitApp(args *Args) (*App, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideTree,
		ProvideCounter,
		ProvideRegistry,
		ProvideAssembler,
		ProvideDB,
		ProvideMigrator,
		ProvideStore,
		ProvideWatcher,
		ProvideSession,
		wire.Struct(new(App), "Args", "Config", "Logger", "DB", "Store", "Watcher", "Session"),
	)
	return nil, nil, nil
}
