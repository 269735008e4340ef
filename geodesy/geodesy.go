// Package geodesy converts between local ENU meter offsets and WGS84
// geographic coordinates. The conversion is linearized about a reference
// latitude, which is accurate at the footprint scale of a single photograph.
package geodesy

import (
	"math"

	geo "github.com/kellydunn/golang-geo"
)

// MetersPerDegree holds the local length of one degree of latitude and
// longitude at a given reference latitude.
type MetersPerDegree struct {
	Lat float64
	Lon float64
}

// NewMetersPerDegree computes the WGS84 ellipsoidal series expansion of meters
// per degree at the given latitude.
func NewMetersPerDegree(latitudeDeg float64) MetersPerDegree {
	l := latitudeDeg * math.Pi / 180
	return MetersPerDegree{
		Lat: 111132.92 - 559.82*math.Cos(2*l) + 1.175*math.Cos(4*l) - 0.0023*math.Cos(6*l),
		Lon: 111412.84*math.Cos(l) - 93.5*math.Cos(3*l) + 0.118*math.Cos(5*l),
	}
}

// Offset returns the geographic point reached by moving east/north meters from
// the origin, linearized about the origin's latitude.
func Offset(origin *geo.Point, eastMeters, northMeters float64) *geo.Point {
	mpd := NewMetersPerDegree(origin.Lat())
	return geo.NewPoint(
		origin.Lat()+northMeters/mpd.Lat,
		origin.Lng()+eastMeters/mpd.Lon,
	)
}

// ENUBetween returns the east/north meter offsets from origin to target,
// linearized about the origin's latitude.
func ENUBetween(origin, target *geo.Point) (eastMeters, northMeters float64) {
	mpd := NewMetersPerDegree(origin.Lat())
	return (target.Lng() - origin.Lng()) * mpd.Lon, (target.Lat() - origin.Lat()) * mpd.Lat
}
