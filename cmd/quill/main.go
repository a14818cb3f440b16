// Package main is the entry point for the quill CLI.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.trai.ch/quill/cmd/quill/commands"
	"go.trai.ch/quill/internal/app"
	_ "go.trai.ch/quill/internal/wiring"
)

const shutdownTimeout = 5 * time.Second

// provider resolves the application components.
type provider func(ctx context.Context) (*app.Components, error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, app.NewApp))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, resolve provider) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, err := resolve(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = io.WriteString(stderr, "Error: "+err.Error()+"\n")
		return 1
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer closeCancel()
		if err := components.App.Close(closeCtx); err != nil {
			components.Logger.Warn("shutdown: " + err.Error())
		}
	}()

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}
