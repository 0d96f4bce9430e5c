package insar

import (
	"bufio"
	"fmt"
	"io"
)

// WriteFlatFile reformats a quadtree scene into the whitespace-delimited
// flat layout the external modeling tool ingests: one row per cell with the
// cell center, LOS velocity, and the three LOS unit-vector components.
//
//	x  y  los_velocity  east  north  up
//
// Rows are emitted in cell order, so repeated exports of the same scene are
// byte-identical.
func WriteFlatFile(w io.Writer, scene *Scene) error {
	if scene == nil || len(scene.Cells) == 0 {
		return fmt.Errorf("empty scene")
	}

	bw := bufio.NewWriter(w)
	for i, cell := range scene.Cells {
		los := cell.LOS()
		_, err := fmt.Fprintf(bw, "%.4f %.4f %.6f %.6f %.6f %.6f\n",
			cell.X, cell.Y, cell.LOSVelocity, los.East, los.North, los.Up)
		if err != nil {
			return fmt.Errorf("write cell %d: %w", i, err)
		}
	}
	return bw.Flush()
}
