// Package npy reads and writes density maps in the NumPy .npy format so
// they can be consumed directly by Python training pipelines.
//
// Maps are written as little-endian float32 ("<f4"), C order, shape
// (height, width), the layout numpy.save produces for a float32 density
// array. Reading goes through github.com/sbinet/npyio and also accepts
// float64 ("<f8") maps, which are narrowed to float32.
package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sbinet/npyio"

	"github.com/ironsheep/keypoint-density-mcp/internal/density"
)

// ErrFormat is returned when a file is not a supported .npy array.
var ErrFormat = errors.New("npy: unsupported format")

var magic = []byte("\x93NUMPY")

const headerAlign = 64

// Write encodes m as a version 1.0 .npy array of shape (Height, Width).
func Write(w io.Writer, m *density.Map) error {
	dict := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", m.Height, m.Width)

	// magic + version + header length + dict + terminating newline
	pre := len(magic) + 2 + 2
	pad := headerAlign - (pre+len(dict)+1)%headerAlign
	if pad == headerAlign {
		pad = 0
	}
	header := dict + string(bytes.Repeat([]byte(" "), pad)) + "\n"

	bw := bufio.NewWriter(w)
	bw.Write(magic)
	bw.Write([]byte{1, 0})
	if err := binary.Write(bw, binary.LittleEndian, uint16(len(header))); err != nil {
		return fmt.Errorf("failed to write header length: %w", err)
	}
	bw.WriteString(header)

	buf := make([]byte, 4*len(m.Data))
	for i, v := range m.Data {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	bw.Write(buf)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write array: %w", err)
	}
	return nil
}

// WriteFile writes m to path, replacing any existing file.
func WriteFile(path string, m *density.Map) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a 2D "<f4" or "<f8" array in C order. Shapes with more than
// density.MaxCells cells are rejected before any data is allocated.
func Read(r io.Reader) (*density.Map, error) {
	return read(r, -1)
}

// ReadFile loads a density map from path. The shape in the header is also
// checked against the file size, so a short file claiming a large shape
// fails without allocating.
func ReadFile(path string) (*density.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return read(bufio.NewReader(f), info.Size())
}

// read decodes an array from r. size is the total number of bytes
// available, or negative when unknown.
func read(r io.Reader, size int64) (*density.Map, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	descr := nr.Header.Descr
	var itemSize int64
	switch descr.Type {
	case "<f4":
		itemSize = 4
	case "<f8":
		itemSize = 8
	default:
		return nil, fmt.Errorf("%w: dtype %q", ErrFormat, descr.Type)
	}
	if descr.Fortran {
		return nil, fmt.Errorf("%w: fortran order", ErrFormat)
	}
	if len(descr.Shape) != 2 {
		return nil, fmt.Errorf("%w: expected 2 dimensions, got %d", ErrFormat, len(descr.Shape))
	}

	height, width := descr.Shape[0], descr.Shape[1]
	if height <= 0 || width <= 0 || height > density.MaxCells/width {
		return nil, fmt.Errorf("%w: shape (%d, %d)", ErrFormat, height, width)
	}
	cells := height * width
	if size >= 0 && int64(cells)*itemSize > size {
		return nil, fmt.Errorf("%w: shape (%d, %d) needs %d bytes, file has %d",
			ErrFormat, height, width, int64(cells)*itemSize, size)
	}

	m, err := density.NewMap(height, width)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	switch itemSize {
	case 4:
		if err := nr.Read(&m.Data); err != nil {
			return nil, fmt.Errorf("failed to read array data: %w", err)
		}
	case 8:
		raw := make([]float64, cells)
		if err := nr.Read(&raw); err != nil {
			return nil, fmt.Errorf("failed to read array data: %w", err)
		}
		if len(raw) != cells {
			return nil, fmt.Errorf("%w: read %d values, want %d", ErrFormat, len(raw), cells)
		}
		for i, v := range raw {
			m.Data[i] = float32(v)
		}
	}
	if len(m.Data) != cells {
		return nil, fmt.Errorf("%w: read %d values, want %d", ErrFormat, len(m.Data), cells)
	}
	return m, nil
}
