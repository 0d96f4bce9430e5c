package insar

import (
	"errors"
	"math"
	"testing"
)

func landslideGeometry(t *testing.T) *DesignMatrix {
	t.Helper()

	// Ascending track heading 348° at 34° incidence, descending track
	// heading 191° at 23° incidence. Observation order is (ascending,
	// descending) throughout.
	asc := ComputeLOS(348*math.Pi/180, 34*math.Pi/180)
	dsc := ComputeLOS(191*math.Pi/180, 23*math.Pi/180)

	d, err := NewDesignMatrix([]LOSVector{asc, dsc})
	if err != nil {
		t.Fatalf("NewDesignMatrix failed: %v", err)
	}
	return d
}

func TestNewDesignMatrix_TooFewVectors(t *testing.T) {
	for _, vectors := range [][]LOSVector{
		nil,
		{},
		{ComputeLOS(0, math.Pi/4)},
	} {
		if _, err := NewDesignMatrix(vectors); !errors.Is(err, ErrInsufficientGeometry) {
			t.Errorf("NewDesignMatrix(%d vectors): got %v, want ErrInsufficientGeometry", len(vectors), err)
		}
	}
}

func TestNewDesignMatrix_ParallelGeometry(t *testing.T) {
	// Two identical looks give collinear rows.
	v := ComputeLOS(348*math.Pi/180, 34*math.Pi/180)
	if _, err := NewDesignMatrix([]LOSVector{v, v}); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("identical vectors: got %v, want ErrDegenerateGeometry", err)
	}

	// Distinct 3D vectors whose east/up projections are parallel are just
	// as unsolvable: mirror the azimuth so only north flips sign.
	a := ComputeLOS(math.Pi/3, math.Pi/5)
	b := ComputeLOS(-math.Pi/3, math.Pi/5)
	if _, err := NewDesignMatrix([]LOSVector{a, b}); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("mirrored azimuths: got %v, want ErrDegenerateGeometry", err)
	}
}

func TestDecompose_DimensionMismatch(t *testing.T) {
	d := landslideGeometry(t)

	for _, obs := range [][]float64{nil, {}, {1.0}, {1.0, 2.0, 3.0}} {
		if _, err := d.Decompose(obs); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("Decompose(%d obs): got %v, want ErrDimensionMismatch", len(obs), err)
		}
	}
}

func TestDecompose_RoundTrip(t *testing.T) {
	// Synthesize observations from a known velocity; the solver must
	// recover it exactly (N=2 is an exact fit).
	d := landslideGeometry(t)

	want := DecomposedVelocity{East: -13.7, Up: 2.9}
	asc := ComputeLOS(348*math.Pi/180, 34*math.Pi/180)
	dsc := ComputeLOS(191*math.Pi/180, 23*math.Pi/180)
	obs := []float64{
		asc.East*want.East + asc.Up*want.Up,
		dsc.East*want.East + dsc.Up*want.Up,
	}

	got, err := d.Decompose(obs)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if math.Abs(got.East-want.East) > 1e-9 || math.Abs(got.Up-want.Up) > 1e-9 {
		t.Errorf("got (%v, %v), want (%v, %v)", got.East, got.Up, want.East, want.Up)
	}

	res, err := d.Residuals(got, obs)
	if err != nil {
		t.Fatalf("Residuals failed: %v", err)
	}
	for i, r := range res {
		if math.Abs(r) > 1e-9 {
			t.Errorf("residual[%d] = %v, want 0 for an exact fit", i, r)
		}
	}
}

func TestDecompose_LandslideTarget(t *testing.T) {
	d := landslideGeometry(t)

	got, err := d.Decompose([]float64{-7.2, 12.2})
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if math.Abs(got.East-(-20.4)) > 0.1 {
		t.Errorf("East = %v, want -20.4 ± 0.1", got.East)
	}
	if math.Abs(got.Up-(-4.8)) > 0.1 {
		t.Errorf("Up = %v, want -4.8 ± 0.1", got.Up)
	}
}

func TestDecomposeMany_LandslideScene(t *testing.T) {
	// The five documented landslide targets, observations ordered
	// (ascending, descending), with their published east/up velocities.
	d := landslideGeometry(t)

	obs := [][]float64{
		{-7.2, 12.2},
		{-4.3, 2.7},
		{-4.6, 5.3},
		{-2.8, 5.0},
		{-12.1, 12.0},
	}
	want := []DecomposedVelocity{
		{East: -20.4, Up: -4.8},
		{East: -7.5, Up: 0.2},
		{East: -10.5, Up: -1.4},
		{East: -8.2, Up: -2.0},
		{East: -25.7, Up: -2.3},
	}

	got, err := d.DecomposeMany(obs)
	if err != nil {
		t.Fatalf("DecomposeMany failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}

	for i := range want {
		if math.Abs(got[i].East-want[i].East) > 0.1 {
			t.Errorf("target %d: East = %v, want %v ± 0.1", i, got[i].East, want[i].East)
		}
		if math.Abs(got[i].Up-want[i].Up) > 0.1 {
			t.Errorf("target %d: Up = %v, want %v ± 0.1", i, got[i].Up, want[i].Up)
		}
	}
}

func TestDecomposeMany_BadTargetAborts(t *testing.T) {
	d := landslideGeometry(t)

	_, err := d.DecomposeMany([][]float64{{-7.2, 12.2}, {1.0}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestDecompose_Overdetermined(t *testing.T) {
	// Three geometries, consistent synthetic observations: the
	// least-squares solution must still recover the true velocity.
	vectors := []LOSVector{
		ComputeLOS(348*math.Pi/180, 34*math.Pi/180),
		ComputeLOS(191*math.Pi/180, 23*math.Pi/180),
		ComputeLOS(192*math.Pi/180, 41*math.Pi/180),
	}
	d, err := NewDesignMatrix(vectors)
	if err != nil {
		t.Fatalf("NewDesignMatrix failed: %v", err)
	}
	if d.Rows() != 3 {
		t.Fatalf("Rows() = %d, want 3", d.Rows())
	}

	want := DecomposedVelocity{East: 4.25, Up: -1.5}
	obs := make([]float64, len(vectors))
	for i, v := range vectors {
		obs[i] = v.East*want.East + v.Up*want.Up
	}

	got, err := d.Decompose(obs)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if math.Abs(got.East-want.East) > 1e-9 || math.Abs(got.Up-want.Up) > 1e-9 {
		t.Errorf("got (%v, %v), want (%v, %v)", got.East, got.Up, want.East, want.Up)
	}
}
