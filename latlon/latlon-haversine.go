package latlon

import "math"

type Haversine struct{}

// Earth is the calculator behind DistanceNM and InitialBearing.
var Earth Calculator = Haversine{}

func (Haversine) initialBearingTo(from, to LatLon) float64 {
	if from == to {
		return 0
	}

	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)

	Δλ := toRadians(to.Lon - from.Lon)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	y := math.Sin(Δλ) * math.Cos(φ2)
	θ := math.Atan2(y, x)

	b := toDegrees(θ)
	if math.IsNaN(b) {
		return 0
	}

	return Wrap360(b)
}

func (Haversine) angularDistance(from, to LatLon) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δφ := φ2 - φ1

	Δλ := toRadians(to.Lon - from.Lon)

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	// rounding can push a slightly outside [0, 1] for antipodal points
	a = math.Min(math.Max(a, 0), 1)

	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceTo returns the great-circle distance in meters.
func (hav Haversine) DistanceTo(from, to LatLon) float64 {
	return R * hav.angularDistance(from, to)
}

// BearingTo returns the initial bearing in degrees, in [0, 360).
func (hav Haversine) BearingTo(from, to LatLon) float64 {
	return hav.initialBearingTo(from, to)
}

func (hav Haversine) DistanceAndBearingTo(from, to LatLon) (float64, float64) {
	return hav.DistanceTo(from, to), hav.initialBearingTo(from, to)
}

// Destination returns the point reached from `from` after travelling
// distance meters on the initial bearing.
func (Haversine) Destination(from LatLon, bearing float64, distance float64) LatLon {
	φ1 := toRadians(from.Lat)
	λ1 := toRadians(from.Lon)
	θ := toRadians(bearing)

	δ := distance / R

	φ2 := math.Asin(math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(θ))
	λ2 := λ1 + math.Atan2(math.Sin(θ)*math.Sin(δ)*math.Cos(φ1), math.Cos(δ)-math.Sin(φ1)*math.Sin(φ2))

	lon := math.Mod(toDegrees(λ2)+540, 360) - 180

	return LatLon{Lat: toDegrees(φ2), Lon: lon}
}

// DistanceNM returns the haversine distance between a and b in nautical miles.
func DistanceNM(a, b LatLon) float64 {
	return Earth.DistanceTo(a, b) / MetersPerNM
}

// InitialBearing returns the forward azimuth from a to b in [0, 360).
// Coincident points give 0.
func InitialBearing(a, b LatLon) float64 {
	return Earth.BearingTo(a, b)
}
