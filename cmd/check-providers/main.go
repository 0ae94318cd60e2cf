package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"coinvision/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	fmt.Println("🔍 Checking Provider Configuration")
	fmt.Println("==================================")

	printKey := func(name, key string) {
		if key != "" {
			fmt.Printf("   - %s: Enabled\n", name)
		} else {
			fmt.Printf("   - %s: Disabled\n", name)
		}
	}

	if cfg.Providers.Gemini.APIKey == "" &&
		cfg.Providers.Exchange.APIKey == "" &&
		cfg.Providers.FRED.APIKey == "" {
		fmt.Println("⚠️  WARNING: No provider API keys configured!")
		fmt.Println("   Recognition and rate endpoints will fall back or fail.")
		fmt.Println()
	} else {
		fmt.Println("✅ Providers configured:")
		printKey("Gemini", cfg.Providers.Gemini.APIKey)
		printKey("Exchange rates", cfg.Providers.Exchange.APIKey)
		printKey("FRED", cfg.Providers.FRED.APIKey)
		printKey("GNews", cfg.Providers.GNews.APIKey)
		printKey("HuggingFace", cfg.Providers.HuggingFace.APIKey)
		fmt.Println()
	}

	if cfg.Providers.Model.URL == "" {
		fmt.Println("⚠️  Model URL is not set, denomination prediction disabled")
	} else {
		fmt.Printf("✅ Prediction model: %s\n", cfg.Providers.Model.URL)
	}
	fmt.Println()

	db, err := sql.Open("sqlite3", cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	var scanCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM scans").Scan(&scanCount); err != nil {
		fmt.Println("❌ No scans table found (server not yet started)")
		return
	}
	fmt.Printf("📷 Total scans: %d\n", scanCount)

	var userCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&userCount); err == nil {
		fmt.Printf("👤 Registered users: %d\n", userCount)
	}

	rows, err := db.Query(`
		SELECT filename, status, prediction, confidence, upload_time
		FROM scans
		ORDER BY upload_time DESC
		LIMIT 5
	`)
	if err != nil {
		log.Fatal("Failed to query scans:", err)
	}
	defer rows.Close()

	fmt.Println("\n📊 Recent Scans:")
	fmt.Println("----------------")

	count := 0
	for rows.Next() {
		var filename, status, prediction, uploadTime string
		var confidence float64

		if err := rows.Scan(&filename, &status, &prediction, &confidence, &uploadTime); err != nil {
			log.Printf("Error scanning row: %v", err)
			continue
		}

		count++
		fmt.Printf("\n🖼️  %s (%s)\n", filename, uploadTime)
		fmt.Printf("   Status: %s\n", status)
		if prediction != "" {
			fmt.Printf("   Recognized: %s (%.1f%% confidence)\n", prediction, confidence)
		}
	}

	if count == 0 {
		fmt.Println("No scans found yet. Upload a note image to test!")
	} else {
		fmt.Printf("\n✅ Found %d recent scans.\n", count)
	}
}
