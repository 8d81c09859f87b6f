package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"doc-intel-pipeline/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	backend, err := cli.NewConfigBackend()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cuctl: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, backend, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}
