package geolocate

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/camera"
	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/dem"
	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/geodesy"
	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/logging"
	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/spatial"
)

const (
	// rays with a smaller vertical component than this are treated as
	// parallel to the ground plane
	rayUpEpsilon = 1e-6
	// fixed iteration budget of the terrain-following refinement
	refineIterations = 8
	// refinement accepts once the ray parameter moves less than this between
	// iterations, roughly five centimeters along the ray
	refineConvergence = 0.05
)

// Projector projects image pixels onto the ground. It is a value type holding
// immutable inputs, so distinct projections may run concurrently on copies.
type Projector struct {
	Model *camera.PinholeCameraModel
	Pose  *spatial.CameraPose
	// GroundElevationAMSL is the flat ground plane elevation. It is also the
	// fallback whenever terrain sampling fails mid-refinement.
	GroundElevationAMSL float64
	// Terrain enables DEM-aware refinement when set.
	Terrain *dem.Model
	Logger  logging.Logger
}

func (p Projector) logger() logging.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return logging.Global()
}

// Project computes the ground point seen by pixel (u, v), given in sensor
// orientation. Misses (parallel rays, rays pointing away from the ground) are
// reported as errors and are expected outcomes of normal operation.
func (p Projector) Project(ctx context.Context, u, v float64) (ProjectionResult, error) {
	if !p.Pose.HasLocation() {
		return ProjectionResult{}, ErrMissingGPS
	}
	ray, err := p.Model.PixelToRay(u, v)
	if err != nil {
		return ProjectionResult{}, err
	}
	dir := spatial.RotateVector(p.Pose.Attitude.RotationMatrix(), ray)
	if p.Terrain != nil {
		return p.refineAgainstTerrain(ctx, dir)
	}
	return p.intersectFlatPlane(dir)
}

// intersectFlatGround solves the closed-form intersection of a ray from the
// camera with a horizontal plane at the given elevation, returning east/north
// meter offsets and the ray parameter.
func intersectFlatGround(dir r3.Vector, cameraAltitudeAMSL, groundElevationAMSL float64) (float64, float64, float64, error) {
	if math.Abs(dir.Z) < rayUpEpsilon {
		return 0, 0, 0, ErrRayParallel
	}
	t := (groundElevationAMSL - cameraAltitudeAMSL) / dir.Z
	if t < 0 {
		return 0, 0, 0, ErrRayPointsAway
	}
	return t * dir.X, t * dir.Y, t, nil
}

func (p Projector) intersectFlatPlane(dir r3.Vector) (ProjectionResult, error) {
	east, north, _, err := intersectFlatGround(dir, p.Pose.AltitudeAMSL, p.GroundElevationAMSL)
	if err != nil {
		return ProjectionResult{}, err
	}
	pt := geodesy.Offset(p.Pose.Location, east, north)
	return ProjectionResult{
		Lat:                 pt.Lat(),
		Lon:                 pt.Lng(),
		GroundElevationAMSL: p.GroundElevationAMSL,
		SlantRangeMeters:    math.Hypot(east, north),
		Converged:           true,
	}, nil
}

// refineAgainstTerrain follows the ground under the ray: intersect a plane at
// the current elevation estimate, resample the terrain where the ray lands,
// and repeat until the ray parameter settles. The fixed-point assumption holds
// for gently varying terrain; over cliffs the loop may exhaust its budget, in
// which case the last candidate is returned with Converged unset.
func (p Projector) refineAgainstTerrain(ctx context.Context, dir r3.Vector) (ProjectionResult, error) {
	if math.Abs(dir.Z) < rayUpEpsilon {
		return ProjectionResult{}, ErrRayParallel
	}
	camLat := p.Pose.Location.Lat()
	camLon := p.Pose.Location.Lng()

	t := (p.GroundElevationAMSL - p.Pose.AltitudeAMSL) / dir.Z
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		t = 1
	}

	centerLat := camLat
	result := ProjectionResult{}
	haveCandidate := false
	for i := 0; i < refineIterations; i++ {
		east, north := t*dir.X, t*dir.Y
		// re-center the degree scale at the previous candidate's latitude to
		// reduce longitude-scale error as the point moves
		mpd := geodesy.NewMetersPerDegree(centerLat)
		candLat := camLat + north/mpd.Lat
		candLon := camLon + east/mpd.Lon
		centerLat = candLat

		elev, err := p.Terrain.SampleElevation(ctx, candLat, candLon)
		if err != nil {
			if ctx.Err() != nil {
				return ProjectionResult{}, errors.Wrap(ctx.Err(), "terrain sampling canceled")
			}
			p.logger().Debugw("terrain sample failed, falling back to configured ground elevation",
				"lat", candLat, "lon", candLon, "error", err)
			elev = p.GroundElevationAMSL
		}

		result = ProjectionResult{
			Lat:                 candLat,
			Lon:                 candLon,
			GroundElevationAMSL: elev,
			SlantRangeMeters:    math.Hypot(east, north),
		}
		haveCandidate = true

		if math.IsNaN(elev) || math.IsInf(elev, 0) {
			break
		}
		tNew := (elev - p.Pose.AltitudeAMSL) / dir.Z
		if tNew < 0 || math.IsNaN(tNew) || math.IsInf(tNew, 0) {
			break
		}
		if math.Abs(tNew-t) < refineConvergence {
			result.Converged = true
			return result, nil
		}
		t = tNew
	}
	if !haveCandidate {
		return ProjectionResult{}, ErrRayPointsAway
	}
	// iteration budget exhausted: best-effort candidate, flagged unconverged
	p.logger().Debugw("terrain refinement did not converge",
		"lat", result.Lat, "lon", result.Lon, "range_m", result.SlantRangeMeters)
	return result, nil
}

// AboveGroundLevel returns the camera's height over the terrain directly
// below it. Without a terrain model, or when sampling fails, the configured
// flat ground elevation is used.
func (p Projector) AboveGroundLevel(ctx context.Context) (float64, error) {
	if !p.Pose.HasLocation() {
		return 0, ErrMissingGPS
	}
	elev := p.GroundElevationAMSL
	if p.Terrain != nil {
		sampled, err := p.Terrain.SampleElevation(ctx, p.Pose.Location.Lat(), p.Pose.Location.Lng())
		if err == nil {
			elev = sampled
		}
	}
	return p.Pose.AltitudeAMSL - elev, nil
}
