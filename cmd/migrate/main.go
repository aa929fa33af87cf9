package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"digitcam/internal/model"
	"digitcam/internal/repository/sqlite"
	"digitcam/internal/service"
	"digitcam/internal/service/storage"
)

// migrate imports an existing text result log into the result history database.
func main() {
	logPath := flag.String("log", "data/log.txt", "Result log to import")
	dbPath := flag.String("db", "data/results.db", "Database path")
	source := flag.String("source", string(model.SourceBackground), "Source recorded for imported entries")
	flag.Parse()

	fmt.Printf("Importing results from %s to database %s\n", *logPath, *dbPath)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	file, err := os.Open(*logPath)
	if err != nil {
		log.Fatalf("Failed to open result log: %v", err)
	}
	defer file.Close()

	var entries []model.LogEntry
	skipped := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		stamp, result, err := storage.ParseLine(scanner.Text())
		if err != nil {
			log.Printf("Skipping line: %v", err)
			skipped++
			continue
		}

		createdAt, err := time.Parse(service.TimestampLayout, stamp)
		if err != nil {
			createdAt = time.Now().UTC()
		}
		entries = append(entries, model.LogEntry{
			Timestamp: stamp,
			Result:    result,
			Source:    model.Source(*source),
			CreatedAt: createdAt,
		})
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read result log: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No results found to import")
		return
	}

	repo := sqlite.NewResultRepository(db)
	fmt.Printf("Inserting %d results into database...\n", len(entries))
	if err := repo.InsertBatch(entries); err != nil {
		log.Fatalf("Failed to insert results: %v", err)
	}

	fmt.Printf("Imported %d results\n", len(entries))
	if skipped > 0 {
		fmt.Printf("Skipped %d malformed lines\n", skipped)
	}

	total, err := repo.GetTotalCount(nil)
	if err == nil {
		fmt.Printf("Total results stored: %d\n", total)
	}
}
