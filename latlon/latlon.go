package latlon

import "math"

const π = math.Pi

// R is the mean Earth radius in meters.
const R = 6371e3

// MetersPerNM converts meters to nautical miles.
const MetersPerNM = 1852.0

// noFixEpsilon is how close to (0, 0) a position must be to be read as an
// absent GPS fix.
const noFixEpsilon = 1e-9

// Calculator solves the direct and inverse problems on a sphere of radius R.
// Distances are in meters, bearings in degrees.
type Calculator interface {
	DistanceTo(from, to LatLon) float64
	BearingTo(from, to LatLon) float64
	DistanceAndBearingTo(from, to LatLon) (float64, float64)
	Destination(from LatLon, bearing float64, distance float64) LatLon
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsFinite reports whether both components are real numbers.
func (l LatLon) IsFinite() bool {
	return !math.IsNaN(l.Lat) && !math.IsInf(l.Lat, 0) && !math.IsNaN(l.Lon) && !math.IsInf(l.Lon, 0)
}

// IsFix reports whether l is a usable position. Receivers report (0, 0) when
// they have no GPS data, so that point is not a fix.
func (l LatLon) IsFix() bool {
	if !l.IsFinite() {
		return false
	}
	return math.Abs(l.Lat) > noFixEpsilon || math.Abs(l.Lon) > noFixEpsilon
}

func toRadians(a float64) float64 {
	return a * π / 180.0
}

func toDegrees(a float64) float64 {
	return a * 180.0 / π
}

// Wrap360 normalizes d into [0, 360).
func Wrap360(d float64) float64 {
	if 0.0 <= d && d < 360.0 {
		return d
	}
	w := math.Mod(d, 360.0)
	if w < 0 {
		w += 360.0
	}
	// math.Mod(-1e-15, 360) + 360 rounds to 360
	if w >= 360.0 {
		w = 0
	}
	return w
}
