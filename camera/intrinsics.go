// Package camera implements the intrinsic model of the capturing camera: a
// pinhole projection plus an optional Brown-Conrady lens distortion, used to
// turn an observed pixel into a camera-space viewing ray.
package camera

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"
)

// ErrNoIntrinsics is returned when a camera does not have usable intrinsic
// parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intrinsics are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// PinholeCameraIntrinsics holds the parameters necessary to project between
// the 2D image plane and viewing rays in camera space.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px"`
	Height int     `json:"height_px"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("Intrinsics do not exist")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal X point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal Y point Ppy = %#v", params.Ppy))
	}
	return nil
}

// NewPinholeCameraIntrinsicsFromJSONFile takes in a file path to a JSON and
// turns it into PinholeCameraIntrinsics.
func NewPinholeCameraIntrinsicsFromJSONFile(jsonPath string) (*PinholeCameraIntrinsics, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	intrinsics := &PinholeCameraIntrinsics{}
	if err := json.Unmarshal(byteValue, intrinsics); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	return intrinsics, nil
}

// NewPinholeCameraIntrinsicsFromFOV derives focal lengths from a horizontal
// field of view when a calibration is not available. The principal point
// defaults to the image center.
func NewPinholeCameraIntrinsicsFromFOV(width, height int, hfovDeg float64) (*PinholeCameraIntrinsics, error) {
	if width <= 0 || height <= 0 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", width, height))
	}
	halfAngle := hfovDeg * math.Pi / 360.
	if math.Abs(math.Tan(halfAngle)) < 1e-9 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("Field of view %f too narrow to derive a focal length", hfovDeg))
	}
	focal := float64(width) / 2. / math.Tan(halfAngle)
	if focal <= 0 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("Field of view %f yields non-positive focal length", hfovDeg))
	}
	return &PinholeCameraIntrinsics{
		Width:  width,
		Height: height,
		Fx:     focal,
		Fy:     focal,
		Ppx:    float64(width) / 2.,
		Ppy:    float64(height) / 2.,
	}, nil
}

// Rescale returns intrinsics adjusted to a new image resolution. Focal lengths
// and the principal point scale linearly with resolution; distortion
// coefficients are resolution independent and are untouched by this.
func (params *PinholeCameraIntrinsics) Rescale(newWidth, newHeight int) (*PinholeCameraIntrinsics, error) {
	if err := params.CheckValid(); err != nil {
		return nil, err
	}
	if newWidth <= 0 || newHeight <= 0 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", newWidth, newHeight))
	}
	sx := float64(newWidth) / float64(params.Width)
	sy := float64(newHeight) / float64(params.Height)
	return &PinholeCameraIntrinsics{
		Width:  newWidth,
		Height: newHeight,
		Fx:     params.Fx * sx,
		Fy:     params.Fy * sy,
		Ppx:    params.Ppx * sx,
		Ppy:    params.Ppy * sy,
	}, nil
}

// NormalizePixel converts a pixel coordinate into normalized image-plane
// coordinates on the z=1 plane.
func (params *PinholeCameraIntrinsics) NormalizePixel(u, v float64) (float64, float64) {
	return (u - params.Ppx) / params.Fx, (v - params.Ppy) / params.Fy
}

// GetCameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *PinholeCameraIntrinsics) GetCameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// PinholeCameraModel is a pinhole camera with an optional lens distortion.
type PinholeCameraModel struct {
	*PinholeCameraIntrinsics `json:"intrinsic_parameters"`
	Distortion               Distorter `json:"distortion"`
}

// PixelToRay converts an observed pixel into a camera-space viewing ray on the
// z=1 plane. The pixel is expected in sensor orientation; any EXIF rotation
// correction happens upstream. When a distortion model is present the pixel is
// undistorted first. The returned direction is not unit length.
func (model *PinholeCameraModel) PixelToRay(u, v float64) (r3.Vector, error) {
	if model == nil || model.PinholeCameraIntrinsics == nil {
		return r3.Vector{}, NewNoIntrinsicsError("camera model has no intrinsics")
	}
	if err := model.CheckValid(); err != nil {
		return r3.Vector{}, err
	}
	x, y := model.NormalizePixel(u, v)
	if model.Distortion != nil {
		x, y = model.Distortion.Undistort(x, y)
	}
	return r3.Vector{X: x, Y: y, Z: 1}, nil
}
