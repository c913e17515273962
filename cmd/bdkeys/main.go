// bdkeys manages the OpenAI API key stored in BrainDrive's settings service.
package main

import (
	"log/slog"
	"os"

	"github.com/braindrive/bdkeys/cli"
)

func main() {
	level := slog.LevelWarn
	if os.Getenv("BDKEYS_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cli.Execute()
}
