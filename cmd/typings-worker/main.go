package main

import (
	"log"
	"os"

	"github.com/lpernett/godotenv"

	"typings-worker/internal/cli"
)

// version est injectée via ldflags au moment du build
var version = "dev"

func main() {
	// Charger les variables d'environnement
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	if err := cli.Execute(version); err != nil {
		log.Printf("typings-worker failed: %v", err)
		os.Exit(1)
	}
}
