package geolocate

import (
	"context"
	"math"

	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/spatial"
)

// attitude sign polarity differs between camera metadata vendors; the
// auto-corrector probes every combination against a heuristic score
var signCombinations = [8][3]float64{
	{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
	{-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}, {-1, -1, -1},
}

// AutoCorrectAttitude resolves yaw/pitch/roll sign ambiguity by scoring the
// projection of the image-center pixel under all eight sign combinations and
// returning the attitude with the lowest score. The score penalizes grazing
// rays (long ranges) and near-horizontal rays; combinations that miss the
// ground score +Inf. The search is pure: the projector's pose is never
// mutated, each candidate is evaluated on a copy.
func AutoCorrectAttitude(ctx context.Context, p Projector) (spatial.EulerAngles, error) {
	if !p.Pose.HasLocation() {
		return spatial.EulerAngles{}, ErrMissingGPS
	}
	if p.Model == nil || p.Model.PinholeCameraIntrinsics == nil {
		return spatial.EulerAngles{}, ErrPoseAmbiguous
	}
	centerU := float64(p.Model.Width) / 2
	centerV := float64(p.Model.Height) / 2

	base := p.Pose.Attitude
	bestScore := math.Inf(1)
	var bestAttitude spatial.EulerAngles
	for _, signs := range signCombinations {
		candidate := spatial.EulerAngles{
			YawDeg:   base.YawDeg * signs[0],
			PitchDeg: base.PitchDeg * signs[1],
			RollDeg:  base.RollDeg * signs[2],
		}
		score := scoreAttitude(ctx, p, candidate, centerU, centerV)
		if score < bestScore {
			bestScore = score
			bestAttitude = candidate
		}
	}
	if math.IsInf(bestScore, 1) {
		return spatial.EulerAngles{}, ErrPoseAmbiguous
	}
	p.logger().Debugw("auto-corrected attitude",
		"yaw", bestAttitude.YawDeg, "pitch", bestAttitude.PitchDeg, "roll", bestAttitude.RollDeg,
		"score", bestScore)
	return bestAttitude, nil
}

func scoreAttitude(ctx context.Context, p Projector, attitude spatial.EulerAngles, u, v float64) float64 {
	trial := p
	pose := *p.Pose
	pose.Attitude = attitude
	trial.Pose = &pose

	res, err := trial.Project(ctx, u, v)
	if err != nil {
		return math.Inf(1)
	}
	ray, err := trial.Model.PixelToRay(u, v)
	if err != nil {
		return math.Inf(1)
	}
	dir := spatial.RotateVector(attitude.RotationMatrix(), ray)
	return math.Max(1, res.SlantRangeMeters) + 50/(math.Abs(dir.Z)+1e-6)
}
