// Package main provides the scene-export tool: it reads a
// quadtree-decomposed InSAR scene CSV and reformats it into the flat
// whitespace-delimited file the external modeling tool ingests. With -db
// the scene is also registered in the sqlite database.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/banshee-data/insar.report/internal/db"
	"github.com/banshee-data/insar.report/internal/insar"
)

var (
	scenePath     = flag.String("scene", "", "Path to quadtree scene CSV (required)")
	track         = flag.String("track", "", "Track label, e.g. ascending or descending (required)")
	description   = flag.String("description", "", "Free-form scene description")
	outPath       = flag.String("out", "", "Output flat file path (default stdout)")
	dbPath        = flag.String("db", "", "Optional sqlite database to register the scene")
	migrationsDir = flag.String("migrations", "migrations", "Migrations directory for -db")
)

func main() {
	flag.Parse()

	if *scenePath == "" {
		log.Fatal("scene file is required")
	}
	if *track == "" {
		log.Fatal("track label is required")
	}

	f, err := os.Open(*scenePath)
	if err != nil {
		log.Fatalf("Failed to open scene file: %v", err)
	}
	cells, err := insar.LoadSceneCells(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}

	scene := insar.NewScene(*track, *description, cells)

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		of, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer of.Close()
		out = of
	}

	if err := insar.WriteFlatFile(out, scene); err != nil {
		log.Fatalf("Failed to write flat file: %v", err)
	}

	if *dbPath != "" {
		database, err := db.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		if err := database.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		if err := insar.NewSceneStore(database.DB).InsertScene(scene); err != nil {
			log.Fatalf("Failed to register scene: %v", err)
		}
		log.Printf("Registered scene %s (%d cells)", scene.SceneID, len(scene.Cells))
	}

	log.Printf("Exported %d cells for %s track", len(cells), *track)
}
