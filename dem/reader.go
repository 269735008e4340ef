package dem

import (
	"context"

	"github.com/pkg/errors"
)

// MemoryRaster is a WindowReader over a raster held fully in memory, row major.
type MemoryRaster struct {
	width  int
	height int
	data   []float64
}

// NewMemoryRaster wraps a row-major slice of width*height cells.
func NewMemoryRaster(width, height int, data []float64) (*MemoryRaster, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid raster size (%d, %d)", width, height)
	}
	if len(data) != width*height {
		return nil, errors.Errorf("raster data has %d cells, expected %d", len(data), width*height)
	}
	return &MemoryRaster{width: width, height: height, data: data}, nil
}

// Width returns the raster width in cells.
func (m *MemoryRaster) Width() int { return m.width }

// Height returns the raster height in cells.
func (m *MemoryRaster) Height() int { return m.height }

// ReadWindow returns the cells of the inclusive rectangle [col0,col1]x[row0,row1].
func (m *MemoryRaster) ReadWindow(ctx context.Context, col0, row0, col1, row1 int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if col0 > col1 || row0 > row1 {
		return nil, errors.Errorf("inverted window (%d,%d)-(%d,%d)", col0, row0, col1, row1)
	}
	if col0 < 0 || row0 < 0 || col1 >= m.width || row1 >= m.height {
		return nil, errors.Errorf("window (%d,%d)-(%d,%d) outside raster %dx%d",
			col0, row0, col1, row1, m.width, m.height)
	}
	out := make([]float64, 0, (col1-col0+1)*(row1-row0+1))
	for r := row0; r <= row1; r++ {
		out = append(out, m.data[r*m.width+col0:r*m.width+col1+1]...)
	}
	return out, nil
}
