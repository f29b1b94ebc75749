package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/profilekeeper/internal/server"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
