package dem

import (
	"encoding/binary"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/logging"
)

// The subset of TIFF and GeoTIFF tags needed to build an elevation Model.
// Anything beyond strip-based, uncompressed, single-band rasters is a
// collaborator concern and rejected here.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagSampleFormat    = 339
	tagModelPixelScale = 33550
	tagModelTiepoint   = 33922
	tagGeoKeyDirectory = 34735
	tagGDALNoData      = 42113
)

const (
	geoKeyModelType     = 1024
	modelTypeGeographic = 2
)

const (
	sampleFormatUint  = 1
	sampleFormatInt   = 2
	sampleFormatFloat = 3
)

type ifdEntry struct {
	typ   uint16
	count uint32
	value []byte
}

type tiffFile struct {
	order   binary.ByteOrder
	data    []byte
	entries map[uint16]ifdEntry
}

// DecodeGeoTIFFFile reads a GeoTIFF elevation raster from disk and builds a
// Model backed by an in-memory raster.
func DecodeGeoTIFFFile(path string, logger logging.Logger) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.Wrap(err, "reading GeoTIFF")
	}
	return DecodeGeoTIFF(data, logger)
}

// DecodeGeoTIFF parses an uncompressed, strip-based, single-band GeoTIFF and
// builds a Model from its tie point, pixel scale, no-data and CRS tags.
func DecodeGeoTIFF(data []byte, logger logging.Logger) (*Model, error) {
	if logger == nil {
		logger = logging.Global()
	}
	tf, err := parseTIFF(data)
	if err != nil {
		return nil, err
	}

	width, err := tf.uintValue(tagImageWidth)
	if err != nil {
		return nil, err
	}
	height, err := tf.uintValue(tagImageLength)
	if err != nil {
		return nil, err
	}
	if compression := tf.uintValueDefault(tagCompression, 1); compression != 1 {
		return nil, errors.Errorf("unsupported TIFF compression %d, only uncompressed rasters are handled", compression)
	}
	if samples := tf.uintValueDefault(tagSamplesPerPixel, 1); samples != 1 {
		return nil, errors.Errorf("expected single-band raster, got %d samples per pixel", samples)
	}
	bits := tf.uintValueDefault(tagBitsPerSample, 1)
	format := tf.uintValueDefault(tagSampleFormat, sampleFormatUint)

	raster, err := tf.readStrips(int(width), int(height), int(bits), int(format))
	if err != nil {
		return nil, err
	}

	scale, err := tf.doubleValues(tagModelPixelScale)
	if err != nil || len(scale) < 2 {
		return nil, errors.New("GeoTIFF has no ModelPixelScale tag")
	}
	tiepoint, err := tf.doubleValues(tagModelTiepoint)
	if err != nil || len(tiepoint) < 6 {
		return nil, errors.New("GeoTIFF has no ModelTiepoint tag")
	}
	// the tie point maps pixel (I,J) to world (X,Y); shift back to pixel (0,0)
	originLon := tiepoint[3] - tiepoint[0]*scale[0]
	originLat := tiepoint[4] + tiepoint[1]*scale[1]

	geographic := tf.isGeographic()
	if !geographic {
		logger.Warnw("GeoTIFF CRS is not confirmed geographic; elevation sampling will be refused")
	}

	cfg := ModelConfig{
		Width:      int(width),
		Height:     int(height),
		OriginLon:  originLon,
		OriginLat:  originLat,
		ResLon:     scale[0],
		ResLat:     -scale[1],
		Geographic: geographic,
	}
	if noData, ok := tf.noDataValue(); ok {
		cfg.NoDataValue = &noData
	}

	mem, err := NewMemoryRaster(int(width), int(height), raster)
	if err != nil {
		return nil, err
	}
	logger.Debugw("decoded GeoTIFF DEM",
		"width", width, "height", height,
		"origin_lon", originLon, "origin_lat", originLat,
		"res_lon", scale[0], "res_lat", -scale[1],
		"geographic", geographic)
	return NewModel(cfg, mem, logger)
}

func parseTIFF(data []byte) (*tiffFile, error) {
	if len(data) < 8 {
		return nil, errors.New("file too short to be a TIFF")
	}
	var order binary.ByteOrder
	switch {
	case data[0] == 'I' && data[1] == 'I':
		order = binary.LittleEndian
	case data[0] == 'M' && data[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, errors.New("not a TIFF: bad byte order mark")
	}
	if order.Uint16(data[2:4]) != 42 {
		return nil, errors.New("not a TIFF: bad magic number")
	}
	ifdOffset := order.Uint32(data[4:8])
	if int(ifdOffset)+2 > len(data) {
		return nil, errors.New("IFD offset outside file")
	}
	numEntries := int(order.Uint16(data[ifdOffset : ifdOffset+2]))
	entries := make(map[uint16]ifdEntry, numEntries)
	for i := 0; i < numEntries; i++ {
		base := int(ifdOffset) + 2 + i*12
		if base+12 > len(data) {
			return nil, errors.New("IFD entry outside file")
		}
		tag := order.Uint16(data[base : base+2])
		typ := order.Uint16(data[base+2 : base+4])
		count := order.Uint32(data[base+4 : base+8])
		size := typeSize(typ) * int(count)
		var value []byte
		if size <= 4 {
			value = data[base+8 : base+8+4]
		} else {
			off := int(order.Uint32(data[base+8 : base+12]))
			if off+size > len(data) {
				return nil, errors.Errorf("tag %d value outside file", tag)
			}
			value = data[off : off+size]
		}
		entries[tag] = ifdEntry{typ: typ, count: count, value: value}
	}
	return &tiffFile{order: order, data: data, entries: entries}, nil
}

func typeSize(typ uint16) int {
	switch typ {
	case 1, 2, 6, 7: // BYTE, ASCII, SBYTE, UNDEFINED
		return 1
	case 3, 8: // SHORT, SSHORT
		return 2
	case 4, 9, 11: // LONG, SLONG, FLOAT
		return 4
	case 5, 10, 12: // RATIONAL, SRATIONAL, DOUBLE
		return 8
	default:
		return 0
	}
}

func (tf *tiffFile) uintValues(tag uint16) ([]uint64, error) {
	entry, ok := tf.entries[tag]
	if !ok {
		return nil, errors.Errorf("TIFF tag %d missing", tag)
	}
	out := make([]uint64, 0, entry.count)
	for i := 0; i < int(entry.count); i++ {
		switch entry.typ {
		case 3: // SHORT
			out = append(out, uint64(tf.order.Uint16(entry.value[i*2:i*2+2])))
		case 4: // LONG
			out = append(out, uint64(tf.order.Uint32(entry.value[i*4:i*4+4])))
		default:
			return nil, errors.Errorf("TIFF tag %d has non-integer type %d", tag, entry.typ)
		}
	}
	return out, nil
}

func (tf *tiffFile) uintValue(tag uint16) (uint64, error) {
	vals, err := tf.uintValues(tag)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, errors.Errorf("TIFF tag %d has no values", tag)
	}
	return vals[0], nil
}

func (tf *tiffFile) uintValueDefault(tag uint16, def uint64) uint64 {
	v, err := tf.uintValue(tag)
	if err != nil {
		return def
	}
	return v
}

func (tf *tiffFile) doubleValues(tag uint16) ([]float64, error) {
	entry, ok := tf.entries[tag]
	if !ok {
		return nil, errors.Errorf("TIFF tag %d missing", tag)
	}
	if entry.typ != 12 {
		return nil, errors.Errorf("TIFF tag %d has type %d, expected DOUBLE", tag, entry.typ)
	}
	out := make([]float64, 0, entry.count)
	for i := 0; i < int(entry.count); i++ {
		bits := tf.order.Uint64(entry.value[i*8 : i*8+8])
		out = append(out, math.Float64frombits(bits))
	}
	return out, nil
}

func (tf *tiffFile) asciiValue(tag uint16) (string, bool) {
	entry, ok := tf.entries[tag]
	if !ok || entry.typ != 2 {
		return "", false
	}
	return strings.TrimRight(string(entry.value[:entry.count]), "\x00"), true
}

func (tf *tiffFile) noDataValue() (float64, bool) {
	s, ok := tf.asciiValue(tagGDALNoData)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isGeographic reports whether the GeoKey directory declares a geographic
// model type (GeoTIFF ModelTypeGeoKey == 2).
func (tf *tiffFile) isGeographic() bool {
	keys, err := tf.uintValues(tagGeoKeyDirectory)
	if err != nil || len(keys) < 4 {
		return false
	}
	numKeys := int(keys[3])
	for i := 0; i < numKeys; i++ {
		base := 4 + i*4
		if base+3 >= len(keys) {
			break
		}
		if keys[base] == geoKeyModelType {
			return keys[base+3] == modelTypeGeographic
		}
	}
	return false
}

func (tf *tiffFile) readStrips(width, height, bits, format int) ([]float64, error) {
	offsets, err := tf.uintValues(tagStripOffsets)
	if err != nil {
		return nil, err
	}
	counts, err := tf.uintValues(tagStripByteCounts)
	if err != nil {
		return nil, err
	}
	if len(offsets) != len(counts) {
		return nil, errors.Errorf("%d strip offsets but %d byte counts", len(offsets), len(counts))
	}
	rowsPerStrip := int(tf.uintValueDefault(tagRowsPerStrip, uint64(height)))
	if rowsPerStrip <= 0 {
		rowsPerStrip = height
	}

	cellBytes := bits / 8
	if cellBytes == 0 {
		return nil, errors.Errorf("unsupported bits per sample %d", bits)
	}
	out := make([]float64, 0, width*height)
	row := 0
	for i, off := range offsets {
		rows := rowsPerStrip
		if row+rows > height {
			rows = height - row
		}
		need := rows * width * cellBytes
		if int(counts[i]) < need {
			return nil, errors.Errorf("strip %d has %d bytes, need %d", i, counts[i], need)
		}
		if int(off)+need > len(tf.data) {
			return nil, errors.Errorf("strip %d outside file", i)
		}
		strip := tf.data[off : int(off)+need]
		for c := 0; c < rows*width; c++ {
			cell := strip[c*cellBytes : (c+1)*cellBytes]
			v, err := decodeCell(tf.order, cell, bits, format)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		row += rows
	}
	if len(out) != width*height {
		return nil, errors.Errorf("decoded %d cells, expected %d", len(out), width*height)
	}
	return out, nil
}

func decodeCell(order binary.ByteOrder, cell []byte, bits, format int) (float64, error) {
	switch {
	case bits == 32 && format == sampleFormatFloat:
		return float64(math.Float32frombits(order.Uint32(cell))), nil
	case bits == 64 && format == sampleFormatFloat:
		return math.Float64frombits(order.Uint64(cell)), nil
	case bits == 16 && format == sampleFormatInt:
		return float64(int16(order.Uint16(cell))), nil
	case bits == 16 && format == sampleFormatUint:
		return float64(order.Uint16(cell)), nil
	case bits == 32 && format == sampleFormatInt:
		return float64(int32(order.Uint32(cell))), nil
	default:
		return 0, errors.Errorf("unsupported sample type: %d bits, format %d", bits, format)
	}
}
