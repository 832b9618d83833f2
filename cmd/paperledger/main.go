package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mdifflin/paperledger/internal/cli"
)

func main() {
	// Optional .env so PAPERLEDGER_DB can be set per checkout.
	// A missing file is fine.
	_ = godotenv.Load()

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
