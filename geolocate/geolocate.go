// Package geolocate computes the ground coordinates seen by a pixel of a
// geolocated photograph. A camera-space viewing ray is rotated into a local
// East-North-Up frame and intersected with either a flat ground plane or a
// digital elevation model.
package geolocate

import (
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"
)

var (
	// ErrRayParallel is returned when the viewing ray is parallel to the
	// ground plane and never intersects it.
	ErrRayParallel = errors.New("ray didn't hit ground: parallel to ground plane")
	// ErrRayPointsAway is returned when the ground intersection lies behind
	// the camera along the ray.
	ErrRayPointsAway = errors.New("ray didn't hit ground: points away from ground")
	// ErrPoseAmbiguous is returned when no attitude sign combination produces
	// a ground intersection.
	ErrPoseAmbiguous = errors.New("no attitude sign combination hits the ground")
	// ErrMissingGPS is returned when the camera pose has no usable position.
	ErrMissingGPS = errors.New("camera pose has no GPS position")
)

// ProjectionResult is the ground point seen by a clicked pixel.
type ProjectionResult struct {
	Lat                 float64 `json:"lat"`
	Lon                 float64 `json:"lon"`
	GroundElevationAMSL float64 `json:"ground_elevation_amsl"`
	// SlantRangeMeters is the horizontal ground distance from the point under
	// the camera to the projected point.
	SlantRangeMeters float64 `json:"slant_range_m"`
	// Converged is false when the terrain refinement exhausted its iteration
	// budget and the result is the best effort rather than a fixed point.
	Converged bool `json:"converged"`
}

// Point returns the projected coordinate as a geo.Point.
func (pr ProjectionResult) Point() *geo.Point {
	return geo.NewPoint(pr.Lat, pr.Lon)
}
