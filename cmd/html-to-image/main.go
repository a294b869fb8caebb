package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kush-Singh-26/html-to-image/internal/config"
	"github.com/Kush-Singh-26/html-to-image/internal/logger"
	"github.com/Kush-Singh-26/html-to-image/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	root, err := entryDir()
	if err != nil {
		fmt.Printf("❌ Unexpected error: %v\n", err)
		return 1
	}

	cfg := config.Default(root)

	lg := logger.Stdout()
	defer logger.Sync(lg)

	srv, err := server.New(cfg, server.WithLogger(lg))
	if err != nil {
		fmt.Printf("❌ Unexpected error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Restore default signal handling so a second Ctrl+C kills the process.
	go func() {
		<-ctx.Done()
		stop()
	}()

	return report(os.Stdout, srv.Run(ctx), cfg)
}

// report prints the outcome of Run to w and returns the exit code.
func report(w io.Writer, err error, cfg *config.Config) int {
	var missing *server.IndexMissingError
	switch {
	case err == nil:
		_, _ = fmt.Fprintln(w, "\n\n🛑 Server stopped by user")
		return 0
	case errors.As(err, &missing):
		_, _ = fmt.Fprintf(w, "ERROR: %s not found in current directory\n", missing.Name)
		_, _ = fmt.Fprintf(w, "Current directory: %s\n", missing.Dir)
	case errors.Is(err, server.ErrPortInUse):
		_, _ = fmt.Fprintf(w, "❌ Port %d is already in use\n", cfg.Port)
		_, _ = fmt.Fprintln(w, "Try stopping other servers or use a different port")
	default:
		_, _ = fmt.Fprintf(w, "❌ Server error: %v\n", err)
	}
	return 1
}
