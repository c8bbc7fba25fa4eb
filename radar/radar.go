// Package radar maps polar target geometry onto a circular radar display.
//
// Bearings are compass bearings: 0° is straight up on the canvas and angles
// grow clockwise. Screen y grows downward.
package radar

import (
	"math"

	"github.com/a-bouts/radar-server/latlon"
)

// MinRangeNM floors the display range so that targets sitting on own ship do
// not produce a zero range.
const MinRangeNM = 1.0

// MinVectorSpeed is the speed in knots below which no course leader is drawn.
const MinVectorSpeed = 0.1

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Polar is a position relative to own ship.
type Polar struct {
	DistanceNM float64 `json:"distance"`
	BearingDeg float64 `json:"bearing"`
}

func (p Polar) IsFinite() bool {
	return finite(p.DistanceNM) && finite(p.BearingDeg)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func toRadians(a float64) float64 {
	return a * math.Pi / 180.0
}

// PolarToScreen projects a distance and bearing from the canvas center into
// pixel coordinates. It does not clip: targets beyond maxRangeNM land
// outside the circle and must be filtered by the caller. maxRangeNM must be
// positive; anything else yields the canvas center.
func PolarToScreen(distanceNM, bearingDeg, maxRangeNM, canvasPx float64) Point {
	c := canvasPx / 2
	if maxRangeNM <= 0 {
		return Point{X: c, Y: c}
	}

	r := distanceNM / maxRangeNM * c
	θ := toRadians(bearingDeg)

	return Point{
		X: c + r*math.Sin(θ),
		Y: c - r*math.Cos(θ),
	}
}

// ProjectAbsolute converts an absolute target position into distance and
// bearing from own ship. It reports false when either position is missing,
// non-finite or the (0, 0) no-fix sentinel.
func ProjectAbsolute(own *latlon.LatLon, target latlon.LatLon) (Polar, bool) {
	if own == nil || !own.IsFix() || !target.IsFix() {
		return Polar{}, false
	}

	d, b := latlon.Earth.DistanceAndBearingTo(*own, target)
	return Polar{
		DistanceNM: d / latlon.MetersPerNM,
		BearingDeg: b,
	}, true
}

// CourseVector returns the end of a course-over-ground leader line drawn
// from `from`. The leader is speedKts*scale pixels long, capped at maxLenPx.
// Targets slower than MinVectorSpeed, or with unusable speed or course, get
// no leader.
func CourseVector(from Point, speedKts, courseDeg, maxLenPx, scale float64) (Point, bool) {
	if !finite(speedKts) || !finite(courseDeg) || speedKts < MinVectorSpeed {
		return Point{}, false
	}

	l := math.Min(speedKts*scale, maxLenPx)
	θ := toRadians(courseDeg)

	return Point{
		X: from.X + l*math.Sin(θ),
		Y: from.Y - l*math.Cos(θ),
	}, true
}

// MaxRange returns the largest finite distance, floored at MinRangeNM.
func MaxRange(distances []float64) float64 {
	max := MinRangeNM
	for _, d := range distances {
		if finite(d) && d > max {
			max = d
		}
	}
	return max
}

type Ring struct {
	RadiusPx float64 `json:"radius"`
	RangeNM  float64 `json:"range"`
}

// RangeRings returns n concentric rings at equal fractions of the canvas
// radius, the outermost one at maxRangeNM.
func RangeRings(maxRangeNM, canvasPx float64, n int) []Ring {
	if n <= 0 {
		return nil
	}

	rings := make([]Ring, n)
	for i := 0; i < n; i++ {
		f := float64(i+1) / float64(n)
		rings[i] = Ring{
			RadiusPx: f * canvasPx / 2,
			RangeNM:  f * maxRangeNM,
		}
	}
	return rings
}
