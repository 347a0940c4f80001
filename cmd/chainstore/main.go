package main

import (
	"log"
	"os"

	"github.com/bitcoin-sv/chainstore/cmd/chainstore/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		log.Fatalf("failed to run chainstore: %v", err)
	}

	os.Exit(0)
}
