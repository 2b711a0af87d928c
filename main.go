package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"

	"customer_insight_chatbot/internal/cli"
)

func main() {
	// Load environment variables from .env file when present
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
