package main

import (
	"log"
	"os"

	"ai-digest-be/internal/model"
	"ai-digest-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Running AutoMigrate for the summary archive...")
	if err := db.AutoMigrate(&model.Summary{}); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	// Lookups by kind are always newest first.
	index := `CREATE INDEX IF NOT EXISTS idx_summaries_kind_created ON summaries (kind, created_at DESC);`
	if err := db.Exec(index).Error; err != nil {
		log.Printf("Warn: Failed to create index: %v", err)
	}

	log.Println("Migration completed successfully.")
}
