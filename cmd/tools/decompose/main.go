// Package main provides the decompose tool: it reads a viewing-geometry
// config and per-target LOS velocity observations, solves the east/vertical
// least-squares decomposition for every target, and writes the results as
// CSV or JSON. With -db the run and its results are also recorded in the
// sqlite database.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/insar.report/internal/config"
	"github.com/banshee-data/insar.report/internal/db"
	"github.com/banshee-data/insar.report/internal/insar"
)

var (
	geometryPath  = flag.String("geometry", "", "Path to geometry config JSON (required)")
	obsPath       = flag.String("obs", "", "Path to observation CSV, one row per target (required)")
	outPath       = flag.String("out", "", "Output path (default stdout)")
	jsonOut       = flag.Bool("json", false, "Write JSON instead of CSV")
	dbPath        = flag.String("db", "", "Optional sqlite database to record the run")
	migrationsDir = flag.String("migrations", "migrations", "Migrations directory for -db")
	verbose       = flag.Bool("verbose", false, "Log each decomposed target")
)

func main() {
	flag.Parse()

	if *geometryPath == "" {
		log.Fatal("geometry config is required")
	}
	if *obsPath == "" {
		log.Fatal("observation file is required")
	}

	cfg, err := config.LoadGeometryConfig(*geometryPath)
	if err != nil {
		log.Fatalf("Failed to load geometry config: %v", err)
	}

	design, err := insar.NewDesignMatrix(cfg.LOSVectors())
	if err != nil {
		log.Fatalf("Failed to build design matrix: %v", err)
	}

	obsFile, err := os.Open(*obsPath)
	if err != nil {
		log.Fatalf("Failed to open observation file: %v", err)
	}
	observations, err := readObservations(obsFile, len(cfg.Tracks))
	obsFile.Close()
	if err != nil {
		log.Fatalf("Failed to read observations: %v", err)
	}

	results, err := design.DecomposeMany(observations)
	if err != nil {
		log.Fatalf("Decomposition failed: %v", err)
	}

	if *verbose {
		for i, v := range results {
			log.Printf("target %d: east=%.2f up=%.2f", i, v.East, v.Up)
		}
	}

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	if *jsonOut {
		err = writeJSON(out, results)
	} else {
		err = writeCSV(out, results)
	}
	if err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}

	if *dbPath != "" {
		if err := recordRun(cfg, results); err != nil {
			log.Fatalf("Failed to record run: %v", err)
		}
	}

	log.Printf("Decomposed %d targets across %d geometries", len(results), design.Rows())
}

// readObservations parses one CSV row per target with one LOS velocity
// column per track, in geometry-config track order. A single header row is
// tolerated.
func readObservations(r io.Reader, tracks int) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	var out [][]float64
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read observations: %w", err)
		}
		line++

		if len(record) != tracks {
			return nil, fmt.Errorf("line %d: got %d columns, want %d (one per track)", line, len(record), tracks)
		}

		if line == 1 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64); err != nil {
				continue
			}
		}

		row := make([]float64, tracks)
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
			row[i] = v
		}
		out = append(out, row)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("observation file contains no targets")
	}
	return out, nil
}

func writeCSV(w io.Writer, results []insar.DecomposedVelocity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"east", "up"}); err != nil {
		return err
	}
	for _, v := range results {
		record := []string{
			strconv.FormatFloat(v.East, 'f', 4, 64),
			strconv.FormatFloat(v.Up, 'f', 4, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, results []insar.DecomposedVelocity) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// recordRun stores the run in sqlite. Run records capture the canonical
// two-track (ascending, descending) geometry, so other track counts are
// rejected here rather than stored half-described.
func recordRun(cfg *config.GeometryConfig, results []insar.DecomposedVelocity) error {
	if len(cfg.Tracks) != 2 {
		return fmt.Errorf("run recording supports exactly 2 tracks, got %d", len(cfg.Tracks))
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateUp(*migrationsDir); err != nil {
		return err
	}

	run := &insar.DecompositionRun{
		AscAzimuth: *cfg.Tracks[0].AzimuthDeg,
		AscInc:     *cfg.Tracks[0].IncidenceDeg,
		DscAzimuth: *cfg.Tracks[1].AzimuthDeg,
		DscInc:     *cfg.Tracks[1].IncidenceDeg,
	}
	return insar.NewSceneStore(database.DB).RecordRun(run, results)
}
