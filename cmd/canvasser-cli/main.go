package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fieldstack/canvasser/internal/canvasser/cli"
	"github.com/fieldstack/canvasser/internal/canvasser/shell"
	"github.com/fieldstack/canvasser/pkg/salesdk"
)

func main() {
	baseURL := os.Getenv("CANVASSER_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	tokens := shell.NewFileTokenStore(tokenPath())
	sh := shell.New(salesdk.NewClient(baseURL), tokens)

	// Pick up where the last run left off if the stored token is live.
	if user, ok := sh.Resume(); ok {
		fmt.Printf("Welcome back, %s.\n", user.Name)
	}

	// Reset the daily view when a shift runs past midnight.
	watcher := shell.NewRolloverWatcher(sh, logger, 0)
	watcher.Start()
	defer watcher.Stop()

	app := cli.NewApp(sh, os.Stdin, os.Stdout)
	app.Run(context.Background())
}

func tokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".canvasser-token"
	}
	return filepath.Join(dir, "canvasser", "token")
}
