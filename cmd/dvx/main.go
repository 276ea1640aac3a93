package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dvxtools/dvx/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	envURL := flag.String("env", "", "environment URL (e.g. https://org.crm.dynamics.com)")
	configPath := flag.String("config", "", "override config path (optional)")
	vim := flag.Bool("vim", false, "enable hjkl navigation keys")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		EnvURL:     *envURL,
		ConfigPath: *configPath,
		Vim:        *vim,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "dvx: %v\n", err)
		return 1
	}
	return 0
}
