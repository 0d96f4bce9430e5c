package insar

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SceneCell is one leaf of a quadtree-decomposed InSAR scene: a cell center
// in the caller's projected coordinates, the mean LOS velocity over the
// cell, and the look geometry under which it was observed. Angles are
// radians; coordinate and velocity units are whatever the upstream
// decomposition produced.
type SceneCell struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	LOSVelocity float64 `json:"los_velocity"`
	Azimuth     float64 `json:"azimuth"`
	Incidence   float64 `json:"incidence"`
}

// LOS returns the unit line-of-sight vector for the cell's look geometry.
func (c SceneCell) LOS() LOSVector {
	return ComputeLOS(c.Azimuth, c.Incidence)
}

// Scene is a quadtree-decomposed InSAR scene for a single track.
type Scene struct {
	SceneID     string      `json:"scene_id"`
	Track       string      `json:"track"` // "ascending" or "descending"
	Description string      `json:"description,omitempty"`
	Cells       []SceneCell `json:"cells"`
	CreatedAtNs int64       `json:"created_at_ns"`
}

// NewScene creates a scene with a fresh UUID and creation timestamp.
func NewScene(track, description string, cells []SceneCell) *Scene {
	return &Scene{
		SceneID:     uuid.New().String(),
		Track:       track,
		Description: description,
		Cells:       cells,
		CreatedAtNs: time.Now().UnixNano(),
	}
}

// sceneCSVColumns is the expected upstream layout: cell center, LOS
// velocity, and look angles in degrees.
const sceneCSVColumns = 5

// LoadSceneCells parses quadtree cells from the CSV layout produced by the
// upstream decomposition tooling: x, y, los_velocity, azimuth_deg,
// incidence_deg. A single header row is skipped if the first field does not
// parse as a number. Angles are converted to radians at this boundary so
// everything downstream works in radians.
func LoadSceneCells(r io.Reader) ([]SceneCell, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	var cells []SceneCell
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read scene csv: %w", err)
		}
		line++

		if len(record) != sceneCSVColumns {
			return nil, fmt.Errorf("scene csv line %d: got %d columns, want %d", line, len(record), sceneCSVColumns)
		}

		// Tolerate one header row.
		if line == 1 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64); err != nil {
				continue
			}
		}

		vals := make([]float64, sceneCSVColumns)
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("scene csv line %d column %d: %w", line, i+1, err)
			}
			vals[i] = v
		}

		cells = append(cells, SceneCell{
			X:           vals[0],
			Y:           vals[1],
			LOSVelocity: vals[2],
			Azimuth:     vals[3] * math.Pi / 180,
			Incidence:   vals[4] * math.Pi / 180,
		})
	}

	if len(cells) == 0 {
		return nil, fmt.Errorf("scene csv contains no cells")
	}
	return cells, nil
}
