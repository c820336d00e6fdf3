package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/alerts"
)

func main() {
	_ = godotenv.Load()

	if err := alerts.ConfigureMailerFromEnv(); err != nil {
		log.Printf("[worker] mailer not fully configured: %v", err)
	}

	log.Println("[worker] starting email worker")
	if err := alerts.RunWorker(); err != nil {
		log.Fatalf("[worker] server error: %v", err)
	}
}
