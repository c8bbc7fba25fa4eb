package model

import (
	"github.com/a-bouts/radar-server/latlon"
	"github.com/a-bouts/radar-server/radar"
	"github.com/a-bouts/radar-server/target"
)

type OwnShip struct {
	Fix       bool           `json:"fix"`
	Position  *latlon.LatLon `json:"position"`
	Latitude  string         `json:"latitude,omitempty"`
	Longitude string         `json:"longitude,omitempty"`
	Heading   *float64       `json:"heading,omitempty"`
	Speed     *float64       `json:"speed,omitempty"`
	Course    *float64       `json:"course,omitempty"`
}

func NewOwnShip(o target.OwnVessel) OwnShip {
	res := OwnShip{
		Heading: o.Heading,
		Speed:   o.Speed,
		Course:  o.Course,
	}
	if fix := o.Fix(); fix != nil {
		res.Fix = true
		res.Position = fix
		res.Latitude = latlon.ToDMS(fix.Lat, latlon.Latitude).String()
		res.Longitude = latlon.ToDMS(fix.Lon, latlon.Longitude).String()
	}
	return res
}

// Contact is a target with its geometry from own ship and its chart
// position, when they can be worked out.
type Contact struct {
	Key      target.Key     `json:"key"`
	Target   target.Target  `json:"target"`
	Polar    *radar.Polar   `json:"polar,omitempty"`
	Position *latlon.LatLon `json:"position,omitempty"`
	Color    target.Color   `json:"color"`
	Selected bool           `json:"selected"`
}

type Plot struct {
	Sequence uint64        `json:"sequence"`
	RangeNM  float64       `json:"range"`
	CanvasPx float64       `json:"size"`
	Fix      bool          `json:"fix"`
	Rings    []radar.Ring  `json:"rings"`
	Blips    []target.Blip `json:"blips"`
}

type SelectRequest struct {
	Source target.Source `json:"source"`
	ID     int           `json:"id"`
}

type Selection struct {
	Selected *target.Key       `json:"selected"`
	Tooltip  map[string]string `json:"tooltip,omitempty"`
	Hit      *bool             `json:"hit,omitempty"`
}

type Sweep struct {
	Angle float64 `json:"angle"`
}

type DMS struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}
