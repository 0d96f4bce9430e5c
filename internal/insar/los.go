// Package insar provides the numerical core for InSAR line-of-sight (LOS)
// velocity processing: LOS unit-vector geometry, least-squares decomposition
// of multi-geometry LOS velocities into east and vertical components, and the
// quadtree scene model used by the export and persistence tooling.
package insar

import "math"

// LOSVector is the unit line-of-sight vector from the radar to a ground
// target, expressed in local east/north/up components. The Up component is
// always non-positive for a downward-looking radar. Values are immutable
// once computed.
type LOSVector struct {
	East  float64
	North float64
	Up    float64
}

// ComputeLOS returns the LOS unit vector for a right-looking radar flying
// along azimuth (radians, clockwise from north) with the given incidence
// angle (radians from vertical).
//
// Left-looking geometries are not supported by this formula; callers with
// left-looking scenes must mirror the azimuth before calling.
func ComputeLOS(azimuth, incidence float64) LOSVector {
	return LOSVector{
		East:  math.Cos(azimuth) * math.Sin(incidence),
		North: -math.Sin(azimuth) * math.Sin(incidence),
		Up:    -math.Cos(incidence),
	}
}

// Norm returns the Euclidean length of the vector. ComputeLOS output has
// norm 1 up to floating-point rounding.
func (v LOSVector) Norm() float64 {
	return math.Sqrt(v.East*v.East + v.North*v.North + v.Up*v.Up)
}
