// Package dem implements a digital elevation model: a north-up elevation
// raster that can be bilinearly sampled at arbitrary geographic coordinates.
package dem

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/logging"
)

var (
	// ErrNotGeographic is returned when the raster's coordinate reference is
	// not confirmed geographic. Sampling such a raster would silently produce
	// elevations in the wrong datum, so it is refused outright.
	ErrNotGeographic = errors.New("DEM coordinate reference is not geographic")
	// ErrOutOfBounds is returned when the sampled coordinate falls outside the
	// raster extent.
	ErrOutOfBounds = errors.New("coordinate outside DEM extent")
	// ErrNoData is returned when every sample in the interpolation window is a
	// no-data value.
	ErrNoData = errors.New("DEM has no data at coordinate")
)

// NoDataPolicy names the strategy used when only part of the 2x2
// interpolation window is valid.
type NoDataPolicy string

// NearestValidNeighbor falls back to the first valid sample in the window.
// Lossy, but acceptable given DEM sparsity near coastlines and no-data edges;
// an inverse-distance-weighted policy can be added without touching call sites.
const NearestValidNeighbor = NoDataPolicy("nearest_valid_neighbor")

// WindowReader reads rectangular windows out of an elevation raster. Reads may
// be backed by disk or memory-mapped rasters, hence the context.
type WindowReader interface {
	// ReadWindow returns the cells of the inclusive rectangle
	// [col0,col1]x[row0,row1] in row-major order.
	ReadWindow(ctx context.Context, col0, row0, col1, row1 int) ([]float64, error)
}

// ModelConfig describes the georeferencing of an elevation raster.
type ModelConfig struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	OriginLon float64 `json:"origin_lon"`
	OriginLat float64 `json:"origin_lat"`
	// ResLon is the longitude step per column, strictly positive.
	ResLon float64 `json:"res_lon"`
	// ResLat is the latitude step per row, strictly negative for the north-up
	// convention (rows increase southward).
	ResLat      float64  `json:"res_lat"`
	NoDataValue *float64 `json:"no_data_value,omitempty"`
	// Geographic confirms the raster CRS is EPSG:4326-equivalent.
	Geographic bool `json:"geographic"`
	// VerticalDatumOffsetM is a deployment-time calibration constant added to
	// every sampled elevation to reconcile the DEM vertical datum against the
	// camera's AMSL reference.
	VerticalDatumOffsetM float64      `json:"vertical_datum_offset_m,omitempty"`
	Policy               NoDataPolicy `json:"policy,omitempty"`
}

// Model is a sampleable digital elevation model.
type Model struct {
	cfg    ModelConfig
	reader WindowReader
	logger logging.Logger
}

// NewModel validates the configuration and returns a Model over the reader.
func NewModel(cfg ModelConfig, reader WindowReader, logger logging.Logger) (*Model, error) {
	if reader == nil {
		return nil, errors.New("window reader is nil")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Errorf("invalid raster size (%d, %d)", cfg.Width, cfg.Height)
	}
	if cfg.ResLon <= 0 {
		return nil, errors.Errorf("longitude resolution %f must be positive", cfg.ResLon)
	}
	if cfg.ResLat >= 0 {
		return nil, errors.Errorf("latitude resolution %f must be negative (north-up)", cfg.ResLat)
	}
	if cfg.Policy == "" {
		cfg.Policy = NearestValidNeighbor
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &Model{cfg: cfg, reader: reader, logger: logger}, nil
}

// Config returns the model's georeferencing configuration.
func (m *Model) Config() ModelConfig {
	return m.cfg
}

// SampleElevation bilinearly interpolates the raster at a geographic
// coordinate and returns the elevation in meters AMSL.
func (m *Model) SampleElevation(ctx context.Context, lat, lon float64) (float64, error) {
	if !m.cfg.Geographic {
		return 0, ErrNotGeographic
	}
	col := (lon - m.cfg.OriginLon) / m.cfg.ResLon
	row := (lat - m.cfg.OriginLat) / m.cfg.ResLat
	c0 := int(math.Floor(col))
	r0 := int(math.Floor(row))
	// the 2x2 window needs a one pixel margin inside the raster
	if c0 < 0 || r0 < 0 || c0+1 > m.cfg.Width-1 || r0+1 > m.cfg.Height-1 {
		return 0, ErrOutOfBounds
	}

	window, err := m.reader.ReadWindow(ctx, c0, r0, c0+1, r0+1)
	if err != nil {
		return 0, errors.Wrap(err, "reading DEM window")
	}
	if len(window) != 4 {
		return 0, errors.Errorf("expected 4 window samples, got %d", len(window))
	}

	valid := make([]bool, 4)
	validCount := 0
	for i, v := range window {
		if m.isValid(v) {
			valid[i] = true
			validCount++
		}
	}

	switch {
	case validCount == 4:
		dx := col - float64(c0)
		dy := row - float64(r0)
		top := window[0]*(1-dx) + window[1]*dx
		bottom := window[2]*(1-dx) + window[3]*dx
		return top*(1-dy) + bottom*dy + m.cfg.VerticalDatumOffsetM, nil
	case validCount > 0:
		// partial no-data window, apply the configured fallback policy
		switch m.cfg.Policy {
		case NearestValidNeighbor:
			for i, ok := range valid {
				if ok {
					return window[i] + m.cfg.VerticalDatumOffsetM, nil
				}
			}
		}
		return 0, errors.Errorf("unknown no-data policy %q", m.cfg.Policy)
	default:
		return 0, ErrNoData
	}
}

func (m *Model) isValid(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if m.cfg.NoDataValue != nil && v == *m.cfg.NoDataValue {
		return false
	}
	return true
}
