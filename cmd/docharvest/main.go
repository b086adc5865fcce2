package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/altum-labs/docharvest/internal/adapters/driving/cli"
)

func main() {
	// A local .env can carry DOCHARVEST_TOKEN and DOCHARVEST_BASE_URL.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
