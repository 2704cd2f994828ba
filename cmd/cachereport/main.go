// Command cachereport exports the LLM compute cache to an XLSX workbook
// so prompts and responses can be reviewed by hand.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/konturio/insights-llm-api/adapters/excel"
	"github.com/konturio/insights-llm-api/models"
)

func main() {
	output := flag.String("o", "llm_cache_report.xlsx", "output workbook path")
	limit := flag.Int("limit", 1000, "maximum number of cache rows to export")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	var entries []models.CacheEntry
	err = db.SelectContext(context.Background(), &entries, `
		SELECT hash, model_name, request, response, created_at
		FROM llm_cache
		ORDER BY created_at DESC
		LIMIT $1
	`, *limit)
	if err != nil {
		log.Fatalf("cache query failed: %v", err)
	}

	if err := excel.WriteCacheReport(*output, entries); err != nil {
		log.Fatalf("report export failed: %v", err)
	}
	log.Printf("exported %d cache rows to %s", len(entries), *output)
}
