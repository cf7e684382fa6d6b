package main

import (
	"entiq/cmd/app"
)

func main() {
	app.StartInit()

	app.InitDefault()

	provider := app.InitSchema()

	database := app.InitConnections(provider)

	Router := app.InitRouter(database, provider)

	app.EndInit()

	app.Start(Router, database)
}
