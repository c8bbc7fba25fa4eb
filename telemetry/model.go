package telemetry

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/a-bouts/radar-server/latlon"
	"github.com/a-bouts/radar-server/target"
)

// Float decodes a JSON number that the upstream may also send as a numeric
// string, an empty string or null. Empty, null and unparsable values mean
// absent, so one bad field never fails the whole list.
type Float struct {
	Value float64
	Valid bool
}

func (f *Float) UnmarshalJSON(b []byte) error {
	*f = Float{}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.Value = v
	f.Valid = !math.IsNaN(v) && !math.IsInf(v, 0)
	return nil
}

func (f Float) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// OwnShip is the upstream own-vessel fix.
type OwnShip struct {
	Latitude  Float `json:"latitude"`
	Longitude Float `json:"longitude"`
	Heading   Float `json:"heading"`
	Speed     Float `json:"speed"`
	Course    Float `json:"course"`
}

// Vessel converts the fix. A missing, non-finite or (0, 0) position leaves
// Position nil.
func (o OwnShip) Vessel() target.OwnVessel {
	v := target.OwnVessel{
		Heading: o.Heading.Ptr(),
		Speed:   o.Speed.Ptr(),
		Course:  o.Course.Ptr(),
	}
	if o.Latitude.Valid && o.Longitude.Valid {
		p := latlon.LatLon{Lat: o.Latitude.Value, Lon: o.Longitude.Value}
		if p.IsFix() {
			v.Position = &p
		}
	}
	return v
}

// TrackedTarget is one radar (TTM) track.
type TrackedTarget struct {
	TargetNumber Float  `json:"target_number"`
	Distance     Float  `json:"distance"`
	Bearing      Float  `json:"bearing"`
	Speed        Float  `json:"speed"`
	Course       Float  `json:"course"`
	CPA          Float  `json:"cpa"`
	TCPA         Float  `json:"tcpa"`
	Status       string `json:"status"`
}

// Target converts the track. Missing distance or bearing decode as NaN so the
// track is kept in the snapshot but never plotted.
func (t TrackedTarget) Target() (*target.RelativeTarget, bool) {
	if !t.TargetNumber.Valid {
		return nil, false
	}
	rt := &target.RelativeTarget{
		ID:                       int(t.TargetNumber.Value),
		DistanceNM:               math.NaN(),
		BearingDeg:               math.NaN(),
		SpeedKts:                 t.Speed.Ptr(),
		CourseDeg:                t.Course.Ptr(),
		ClosestApproachNM:        t.CPA.Ptr(),
		TimeToClosestApproachMin: t.TCPA.Ptr(),
		Status:                   t.Status,
	}
	if t.Distance.Valid {
		rt.DistanceNM = t.Distance.Value
	}
	if t.Bearing.Valid {
		rt.BearingDeg = t.Bearing.Value
	}
	return rt, true
}

// PositionReport is one AIS (TLL) position.
type PositionReport struct {
	TargetNumber Float  `json:"target_number"`
	Lat          Float  `json:"lat"`
	Lon          Float  `json:"lon"`
	LatDir       string `json:"lat_dir"`
	LonDir       string `json:"lon_dir"`
	Name         string `json:"name"`
	Timestamp    string `json:"timestamp"`
}

// Target converts the report, applying the hemisphere letters when present.
// A (0, 0) position is a transponder without GPS and is dropped.
func (r PositionReport) Target() (*target.AbsoluteTarget, bool) {
	if !r.TargetNumber.Valid || !r.Lat.Valid || !r.Lon.Valid {
		return nil, false
	}

	lat := r.Lat.Value
	if strings.EqualFold(strings.TrimSpace(r.LatDir), "S") {
		lat = -math.Abs(lat)
	}
	lon := r.Lon.Value
	if strings.EqualFold(strings.TrimSpace(r.LonDir), "W") {
		lon = -math.Abs(lon)
	}

	pos := latlon.LatLon{Lat: lat, Lon: lon}
	if !pos.IsFix() {
		return nil, false
	}

	return &target.AbsoluteTarget{
		ID:           int(r.TargetNumber.Value),
		Position:     pos,
		Label:        strings.TrimSpace(r.Name),
		TimestampUTC: r.Timestamp,
	}, true
}
