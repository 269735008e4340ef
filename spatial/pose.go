package spatial

import (
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"
)

// EulerAngles expresses the camera attitude in degrees. Yaw is a compass
// heading (0 = North, clockwise positive), positive pitch tilts the lens
// down toward nadir, positive roll drops the right edge of the image.
type EulerAngles struct {
	YawDeg   float64 `json:"yaw_deg"`
	PitchDeg float64 `json:"pitch_deg"`
	RollDeg  float64 `json:"roll_deg"`
}

// CameraPose is the geographic position and attitude of the camera at the
// moment of exposure.
type CameraPose struct {
	Location     *geo.Point
	AltitudeAMSL float64
	Attitude     EulerAngles
}

// HasLocation reports whether the pose carries usable GPS coordinates.
func (cp *CameraPose) HasLocation() bool {
	return cp != nil && cp.Location != nil
}

// CameraPoseConfig specifies the format of a CameraPose read from a JSON
// project file.
type CameraPoseConfig struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	AltitudeAMSL float64 `json:"altitude_amsl"`
	YawDeg       float64 `json:"yaw_deg"`
	PitchDeg     float64 `json:"pitch_deg"`
	RollDeg      float64 `json:"roll_deg"`
}

// ParseConfig converts a CameraPoseConfig into a CameraPose.
func (cfg *CameraPoseConfig) ParseConfig() (*CameraPose, error) {
	if cfg == nil {
		return nil, errors.New("camera pose config is nil")
	}
	if cfg.Latitude < -90 || cfg.Latitude > 90 {
		return nil, errors.Errorf("latitude %f out of range [-90, 90]", cfg.Latitude)
	}
	if cfg.Longitude < -180 || cfg.Longitude > 180 {
		return nil, errors.Errorf("longitude %f out of range [-180, 180]", cfg.Longitude)
	}
	return &CameraPose{
		Location:     geo.NewPoint(cfg.Latitude, cfg.Longitude),
		AltitudeAMSL: cfg.AltitudeAMSL,
		Attitude: EulerAngles{
			YawDeg:   cfg.YawDeg,
			PitchDeg: cfg.PitchDeg,
			RollDeg:  cfg.RollDeg,
		},
	}, nil
}
