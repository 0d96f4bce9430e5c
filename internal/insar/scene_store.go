package insar

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/insar.report/internal/monitoring"
)

// SceneStore persists quadtree scenes and decomposition runs to sqlite.
type SceneStore struct {
	db *sql.DB
}

// NewSceneStore creates a store over an already-migrated database handle.
func NewSceneStore(db *sql.DB) *SceneStore {
	return &SceneStore{db: db}
}

// InsertScene writes a scene and its cells in one transaction. If the
// scene has no ID a new UUID is assigned.
func (s *SceneStore) InsertScene(scene *Scene) error {
	if scene.SceneID == "" {
		scene.SceneID = uuid.New().String()
	}
	if scene.CreatedAtNs == 0 {
		scene.CreatedAtNs = time.Now().UnixNano()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert scene: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO insar_scenes (scene_id, track, description, created_at_ns)
		VALUES (?, ?, ?, ?)
	`, scene.SceneID, scene.Track, scene.Description, scene.CreatedAtNs)
	if err != nil {
		return fmt.Errorf("insert scene: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO insar_scene_cells (scene_id, cell_idx, x, y, los_velocity, azimuth, incidence)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare cell insert: %w", err)
	}
	defer stmt.Close()

	for i, cell := range scene.Cells {
		if _, err := stmt.Exec(scene.SceneID, i, cell.X, cell.Y, cell.LOSVelocity, cell.Azimuth, cell.Incidence); err != nil {
			return fmt.Errorf("insert cell %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert scene: %w", err)
	}
	return nil
}

// GetScene retrieves a scene and its cells by ID.
func (s *SceneStore) GetScene(sceneID string) (*Scene, error) {
	var scene Scene
	err := s.db.QueryRow(`
		SELECT scene_id, track, description, created_at_ns
		FROM insar_scenes
		WHERE scene_id = ?
	`, sceneID).Scan(&scene.SceneID, &scene.Track, &scene.Description, &scene.CreatedAtNs)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scene not found: %s", sceneID)
	}
	if err != nil {
		return nil, fmt.Errorf("get scene: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT x, y, los_velocity, azimuth, incidence
		FROM insar_scene_cells
		WHERE scene_id = ?
		ORDER BY cell_idx
	`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("get scene cells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c SceneCell
		if err := rows.Scan(&c.X, &c.Y, &c.LOSVelocity, &c.Azimuth, &c.Incidence); err != nil {
			return nil, fmt.Errorf("scan scene cell: %w", err)
		}
		scene.Cells = append(scene.Cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scene cells: %w", err)
	}

	return &scene, nil
}

// ListScenes returns scene metadata (no cells), newest first.
func (s *SceneStore) ListScenes() ([]Scene, error) {
	rows, err := s.db.Query(`
		SELECT scene_id, track, description, created_at_ns
		FROM insar_scenes
		ORDER BY created_at_ns DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var scenes []Scene
	for rows.Next() {
		var sc Scene
		if err := rows.Scan(&sc.SceneID, &sc.Track, &sc.Description, &sc.CreatedAtNs); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		scenes = append(scenes, sc)
	}
	return scenes, rows.Err()
}

// DecompositionRun records one batch decomposition: the geometry it used
// and how many targets it solved.
type DecompositionRun struct {
	RunID       string  `json:"run_id"`
	AscAzimuth  float64 `json:"asc_azimuth"`
	AscInc      float64 `json:"asc_incidence"`
	DscAzimuth  float64 `json:"dsc_azimuth"`
	DscInc      float64 `json:"dsc_incidence"`
	TargetCount int     `json:"target_count"`
	CreatedAtNs int64   `json:"created_at_ns"`
}

// RecordRun writes a run and its per-target results in one transaction.
// Results are stored in target order so they can be read back aligned with
// the observation input.
func (s *SceneStore) RecordRun(run *DecompositionRun, results []DecomposedVelocity) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAtNs == 0 {
		run.CreatedAtNs = time.Now().UnixNano()
	}
	run.TargetCount = len(results)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO decomposition_runs (run_id, asc_azimuth, asc_incidence, dsc_azimuth, dsc_incidence, target_count, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.AscAzimuth, run.AscInc, run.DscAzimuth, run.DscInc, run.TargetCount, run.CreatedAtNs)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO decomposed_velocities (run_id, target_idx, east, up)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range results {
		if _, err := stmt.Exec(run.RunID, i, v.East, v.Up); err != nil {
			return fmt.Errorf("insert result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record run: %w", err)
	}

	monitoring.Logf("recorded decomposition run %s (%d targets)", run.RunID, run.TargetCount)
	return nil
}

// GetRunResults reads back the decomposed velocities of a run in target
// order.
func (s *SceneStore) GetRunResults(runID string) ([]DecomposedVelocity, error) {
	rows, err := s.db.Query(`
		SELECT east, up
		FROM decomposed_velocities
		WHERE run_id = ?
		ORDER BY target_idx
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get run results: %w", err)
	}
	defer rows.Close()

	var out []DecomposedVelocity
	for rows.Next() {
		var v DecomposedVelocity
		if err := rows.Scan(&v.East, &v.Up); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
