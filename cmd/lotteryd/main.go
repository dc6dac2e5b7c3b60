package main

import (
	"log"
	"os"

	"github.com/lottery-system/backend/cmd/lotteryd/commands"
)

// @title Lottery System API
// @version 1.0
// @description Local options store for the lottery desktop application

// @host 127.0.0.1:4765
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
