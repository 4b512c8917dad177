package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"log"
	"net/http"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"

	httpapi "github.com/example/campus-match/internal/http"
	"github.com/example/campus-match/internal/models"
)

func main() {
	srv, err := httpapi.NewServerFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	cfg := srv.Config()

	// optional migration: apply migrations/001_schema.sql when requested
	if cfg.PGDSN != "" && cfg.RunMigrations {
		applyMigrations(cfg.PGDSN)
	}
	if cfg.LocationsCSV != "" {
		seedLocations(srv, cfg.LocationsCSV)
	}

	log.Printf("campus-match listening on %s", cfg.HTTPAddr)
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func applyMigrations(dsn string) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Printf("migration db open error: %v", err)
		return
	}
	defer db.Close()
	b, err := os.ReadFile(filepath.Join("migrations", "001_schema.sql"))
	if err != nil {
		log.Printf("migration read error: %v", err)
		return
	}
	if _, err := db.Exec(string(b)); err != nil {
		log.Printf("migration exec error: %v", err)
		return
	}
	log.Printf("migration applied: 001_schema.sql")
}

// seedLocations loads the zip directory from a CSV with columns
// zip_code,city,state,state_name. A header row is skipped.
func seedLocations(srv *httpapi.Server, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("locations csv open error: %v", err)
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		log.Printf("locations csv parse error: %v", err)
		return
	}

	var recs []models.LocationRecord
	for i, row := range rows {
		if len(row) < 4 {
			continue
		}
		if i == 0 && row[0] == "zip_code" {
			continue
		}
		recs = append(recs, models.LocationRecord{
			ZipCode:   row[0],
			City:      row[1],
			State:     row[2],
			StateName: row[3],
		})
	}
	if err := srv.Store.LoadLocations(context.Background(), recs); err != nil {
		log.Printf("locations load error: %v", err)
		return
	}
	log.Printf("loaded %d locations from %s", len(recs), path)
}
