package main

import "databank/internal/app"

// @title                       Databank API
// @version                     1.0
// @description                 Accounts, email confirmation, verification and projects for the databank.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	app.Run()
}
