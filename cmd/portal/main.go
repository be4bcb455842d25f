// File: cmd/portal/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log" // Standard log for startup failures before zap is active
	"os"
	"os/signal"
	"syscall"

	"authportal/internal/config"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	os.Exit(runMain(os.Args[1], os.Args[2:]))
}

func runMain(command string, args []string) int {
	if _, ok := commands[command]; !ok {
		usage(os.Stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err)
		return 1
	}

	portal, cleanup, err := initializePortal(cfg)
	if err != nil {
		log.Printf("FATAL: Failed to initialize portal: %v", err)
		return 1
	}
	defer func() {
		cleanup()
		_ = portal.Logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := portal.Auth.Restore(ctx); err != nil {
		portal.Logger.Error("Failed to restore session", zap.Error(err))
	}

	if command == "serve" {
		return serve(ctx, portal, cfg)
	}
	return run(ctx, portal, command, args, os.Stdout)
}

func serve(ctx context.Context, portal *Portal, cfg *config.Config) int {
	errCh := make(chan error, 1)
	go func() {
		errCh <- portal.Server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			portal.Logger.Error("Server failed", zap.Error(err))
			return 1
		}
		return 0
	case <-ctx.Done():
		portal.Logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancel()
	if err := portal.Server.Shutdown(shutdownCtx); err != nil {
		portal.Logger.Error("Server forced to shutdown", zap.Error(err))
		return 1
	}
	portal.Logger.Info("Server shutdown complete")
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: portal <command> [flags]")
	fmt.Fprintln(w, "commands:")
	for _, name := range commandNames() {
		fmt.Fprintf(w, "  %-14s %s\n", name, commands[name].summary)
	}
}
