// Standalone migration runner.
// How to run:
// go run cmd/migrate/main.go
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/resumeforge/forge/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	database, err := db.New(db.OptionsFromEnv())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(database); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations applied")
}
