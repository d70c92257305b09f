package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/KyleBrandon/thermometer-server/pkg/server"
	_ "github.com/lib/pq"
)

func main() {
	// parse the command-line flags
	flag.Parse()

	config, err := server.InitializeServer()
	if err != nil {
		slog.Error("failed to initialize the server", "error", err)
		os.Exit(1)
	}

	if err := config.RunServer(); err != nil {
		os.Exit(1)
	}
}
