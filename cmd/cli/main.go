package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/bioguard/internal/client/cli"
	"github.com/dmitrijs2005/bioguard/internal/client/config"
	"github.com/dmitrijs2005/bioguard/internal/flagx"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	args := flagx.Positional(os.Args[1:], config.ValueFlags)
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}

}
