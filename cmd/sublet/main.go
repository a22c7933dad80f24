// Command sublet runs the sublet marketplace API and its maintenance tasks.
package main

import (
	"os"

	"sublet/cmd/sublet/commands"
)

// @title Sublet API
// @version 1.0
// @description Student sublet marketplace: listings, applications, favorites, messaging and reviews
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@sublet.edu

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
