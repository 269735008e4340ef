package geodesy

import (
	"testing"

	geo "github.com/kellydunn/golang-geo"
	"go.viam.com/test"
)

func TestMetersPerDegree(t *testing.T) {
	// at the equator a degree of latitude is about 110574m, longitude 111320m
	mpd := NewMetersPerDegree(0)
	test.That(t, mpd.Lat, test.ShouldAlmostEqual, 110574, 5)
	test.That(t, mpd.Lon, test.ShouldAlmostEqual, 111320, 5)

	// both shrink (latitude slightly grows) toward the poles
	mpd45 := NewMetersPerDegree(45)
	test.That(t, mpd45.Lon, test.ShouldBeLessThan, mpd.Lon)
	test.That(t, mpd45.Lat, test.ShouldBeGreaterThan, mpd.Lat)

	mpd90 := NewMetersPerDegree(90)
	test.That(t, mpd90.Lon, test.ShouldAlmostEqual, 0, 1)
	test.That(t, mpd90.Lat, test.ShouldAlmostEqual, 111694, 5)
}

func TestOffsetRoundTrip(t *testing.T) {
	origin := geo.NewPoint(40.0, 44.5)
	moved := Offset(origin, 1500, -800)
	east, north := ENUBetween(origin, moved)
	test.That(t, east, test.ShouldAlmostEqual, 1500, 1e-6)
	test.That(t, north, test.ShouldAlmostEqual, -800, 1e-6)

	// zero offset is the identity
	same := Offset(origin, 0, 0)
	test.That(t, same.Lat(), test.ShouldEqual, origin.Lat())
	test.That(t, same.Lng(), test.ShouldEqual, origin.Lng())
}
