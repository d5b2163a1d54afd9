package main

import (
	"AutoShed/internal/bootstrap"
	pkg "AutoShed/pkg/routes"

	"go.uber.org/fx"
)

func main() {
	bootstrap.Loadenv()
	app := fx.New(
		pkg.EchoModules,
	)

	app.Run()
}
