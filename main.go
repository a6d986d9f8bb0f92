package main

import (
	"log/slog"
	"os"

	"github.com/marcopiovanello/yt-fetch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		slog.Error("yt-fetch stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
}
