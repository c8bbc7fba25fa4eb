package latlon

import (
	"fmt"
	"math"
)

type Axis int

const (
	Latitude Axis = iota
	Longitude
)

// DMS is a coordinate split into degrees, minutes and seconds for display.
type DMS struct {
	Degrees    int     `json:"degrees"`
	Minutes    int     `json:"minutes"`
	Seconds    float64 `json:"seconds"`
	Hemisphere byte    `json:"-"`
}

// ToDMS splits decimal degrees into a DMS readout. Seconds are rounded to the
// hundredth and carried into minutes and degrees when they round up to 60.
func ToDMS(decimal float64, axis Axis) DMS {
	var h byte
	switch axis {
	case Latitude:
		h = 'N'
		if decimal < 0 {
			h = 'S'
		}
	default:
		h = 'E'
		if decimal < 0 {
			h = 'W'
		}
	}

	if math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return DMS{Hemisphere: h}
	}

	// work in hundredths of a second so the carry is exact
	total := math.Round(math.Abs(decimal) * 3600 * 100)
	cs := int64(total)

	deg := cs / (3600 * 100)
	cs -= deg * 3600 * 100
	mins := cs / (60 * 100)
	cs -= mins * 60 * 100

	return DMS{
		Degrees:    int(deg),
		Minutes:    int(mins),
		Seconds:    float64(cs) / 100,
		Hemisphere: h,
	}
}

func (d DMS) String() string {
	return fmt.Sprintf("%d°%02d'%05.2f\"%c", d.Degrees, d.Minutes, d.Seconds, d.Hemisphere)
}

// DMSString renders the position as `6°31'30.00"N 3°22'30.00"E`.
func (l LatLon) DMSString() string {
	return ToDMS(l.Lat, Latitude).String() + " " + ToDMS(l.Lon, Longitude).String()
}
