package main

import (
	"context"
	"log"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/server"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
