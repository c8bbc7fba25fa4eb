package latlon

import (
	"math"
	"testing"
)

func TestWrap360(t *testing.T) {
	a := Wrap360(-1.0)
	if a != 359.0 {
		t.Errorf("Wrap360(-1) = %f; want 359.0", a)
	}
	b := Wrap360(361.0)
	if b != 1.0 {
		t.Errorf("Wrap360(361.0) = %f; want 1.0", b)
	}
	c := Wrap360(-721.0)
	if c != 359.0 {
		t.Errorf("Wrap360(-721.0) = %f; want 359.0", c)
	}
	d := Wrap360(360.0)
	if d != 0.0 {
		t.Errorf("Wrap360(360.0) = %f; want 0.0", d)
	}
}

func TestIsFix(t *testing.T) {
	tests := []struct {
		name string
		p    LatLon
		want bool
	}{
		{"origin", LatLon{Lat: 0, Lon: 0}, false},
		{"near origin", LatLon{Lat: 1e-10, Lon: -1e-10}, false},
		{"equator", LatLon{Lat: 0, Lon: 3.375}, true},
		{"greenwich", LatLon{Lat: 6.525, Lon: 0}, true},
		{"nan", LatLon{Lat: math.NaN(), Lon: 3}, false},
		{"inf", LatLon{Lat: 6, Lon: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsFix(); got != tt.want {
				t.Errorf("%v.IsFix() = %t; want %t", tt.p, got, tt.want)
			}
		})
	}
}

func TestDistanceNM(t *testing.T) {
	p := LatLon{Lat: 6.525, Lon: 3.375}
	if d := DistanceNM(p, p); d != 0 {
		t.Errorf("DistanceNM(p, p) = %f; want 0", d)
	}

	// one degree of arc on a 6371 km sphere
	d := DistanceNM(LatLon{Lat: 0, Lon: 0}, LatLon{Lat: 0, Lon: 1})
	if math.Round(d*100)/100 != 60.04 {
		t.Errorf("DistanceNM((0,0),(0,1)) = %f; want 60.04", d)
	}
	d = DistanceNM(LatLon{Lat: 10, Lon: 20}, LatLon{Lat: 11, Lon: 20})
	if math.Round(d*100)/100 != 60.04 {
		t.Errorf("DistanceNM((10,20),(11,20)) = %f; want 60.04", d)
	}

	pairs := [][2]LatLon{
		{{Lat: 6.525, Lon: 3.375}, {Lat: 6.53, Lon: 3.38}},
		{{Lat: -33.9, Lon: 18.4}, {Lat: 51.5, Lon: -0.12}},
		{{Lat: 10, Lon: 179.5}, {Lat: -10, Lon: -179.5}},
		{{Lat: 89.9, Lon: 0}, {Lat: -89.9, Lon: 180}},
	}
	for _, p := range pairs {
		ab := DistanceNM(p[0], p[1])
		ba := DistanceNM(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("DistanceNM(%v, %v) = %f but reverse = %f", p[0], p[1], ab, ba)
		}
	}
}

func TestInitialBearing(t *testing.T) {
	o := LatLon{Lat: 0, Lon: 0}
	tests := []struct {
		to   LatLon
		want float64
	}{
		{LatLon{Lat: 1, Lon: 0}, 0},
		{LatLon{Lat: 0, Lon: 1}, 90},
		{LatLon{Lat: -1, Lon: 0}, 180},
		{LatLon{Lat: 0, Lon: -1}, 270},
	}
	for _, tt := range tests {
		b := InitialBearing(o, tt.to)
		if math.Abs(b-tt.want) > 1e-9 {
			t.Errorf("InitialBearing(%v, %v) = %f; want %f", o, tt.to, b, tt.want)
		}
	}

	p := LatLon{Lat: 6.525, Lon: 3.375}
	if b := InitialBearing(p, p); b != 0 {
		t.Errorf("InitialBearing(p, p) = %f; want 0", b)
	}

	points := []LatLon{
		{Lat: 6.525, Lon: 3.375},
		{Lat: -45, Lon: 170},
		{Lat: 45, Lon: -170},
		{Lat: 89.99, Lon: 10},
		{Lat: -89.99, Lon: -10},
		{Lat: 0, Lon: 180},
	}
	for _, a := range points {
		for _, b := range points {
			brg := InitialBearing(a, b)
			if brg < 0 || brg >= 360 || math.IsNaN(brg) {
				t.Errorf("InitialBearing(%v, %v) = %f; want [0, 360)", a, b, brg)
			}
		}
	}
}

func TestAbsoluteTargetGeometry(t *testing.T) {
	own := LatLon{Lat: 6.525, Lon: 3.375}
	tgt := LatLon{Lat: 6.53, Lon: 3.38}

	d := DistanceNM(own, tgt)
	if d < 0.41 || d > 0.43 {
		t.Errorf("DistanceNM(%v, %v) = %f; want ~0.42", own, tgt, d)
	}
	b := InitialBearing(own, tgt)
	if b < 30 || b > 50 {
		t.Errorf("InitialBearing(%v, %v) = %f; want northeast", own, tgt, b)
	}
}

func TestDestination(t *testing.T) {
	from := LatLon{Lat: 6.525, Lon: 3.375}
	to := Haversine{}.Destination(from, 284, 0.68*MetersPerNM)

	d, b := Haversine{}.DistanceAndBearingTo(from, to)
	if math.Round(d) != math.Round(0.68*MetersPerNM) {
		t.Errorf("DistanceTo(Destination(284, 0.68nm)) = %f; want %f", d, 0.68*MetersPerNM)
	}
	if math.Round(b*10)/10 != 284.0 {
		t.Errorf("BearingTo(Destination(284, 0.68nm)) = %f; want 284.0", b)
	}

	wrapped := Haversine{}.Destination(LatLon{Lat: 0, Lon: 179.9}, 90, 0.2*R*π/180)
	if math.Round(wrapped.Lon*10)/10 != -179.9 {
		t.Errorf("Destination across antimeridian lon = %f; want -179.9", wrapped.Lon)
	}
}

func TestToDMS(t *testing.T) {
	tests := []struct {
		name    string
		decimal float64
		axis    Axis
		want    string
	}{
		{"lat north", 6.525, Latitude, "6°31'30.00\"N"},
		{"lon east", 3.375, Longitude, "3°22'30.00\"E"},
		{"lat south", -33.9, Latitude, "33°54'00.00\"S"},
		{"lon west", -0.5, Longitude, "0°30'00.00\"W"},
		{"seconds carry", 59.999999, Latitude, "60°00'00.00\"N"},
		{"fraction", 12.3456, Longitude, "12°20'44.16\"E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToDMS(tt.decimal, tt.axis).String(); got != tt.want {
				t.Errorf("ToDMS(%f) = %s; want %s", tt.decimal, got, tt.want)
			}
		})
	}

	d := ToDMS(-6.525, Latitude)
	if d.Degrees != 6 || d.Minutes != 31 || d.Seconds != 30 || d.Hemisphere != 'S' {
		t.Errorf("ToDMS(-6.525) = %+v; want {6 31 30 S}", d)
	}
}
