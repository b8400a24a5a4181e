package raster

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// Profile describes the geometric meaning of a raster's pixel grid: where it
// sits on Earth and how big it is. It is captured once when a dataset is
// opened and never mutated afterwards.
type Profile struct {
	CRS       string // WKT
	Transform [6]float64
	Width     int
	Height    int
	Bands     int
	DataType  godal.DataType
}

// GridEqual reports whether two profiles describe the same pixel grid, i.e.
// resampling between them would be a no-op.
func (p Profile) GridEqual(other Profile) bool {
	return p.CRS == other.CRS &&
		p.Transform == other.Transform &&
		p.Width == other.Width &&
		p.Height == other.Height
}

// Bounds returns the georeferenced extent of the grid as minX, minY, maxX,
// maxY in the profile's CRS. Assumes a north-up transform, which is what
// orthomosaic exports produce.
func (p Profile) Bounds() (float64, float64, float64, float64) {
	minX := p.Transform[0]
	maxY := p.Transform[3]
	maxX := minX + p.Transform[1]*float64(p.Width)
	minY := maxY + p.Transform[5]*float64(p.Height)
	return minX, minY, maxX, maxY
}

// Array is an in-memory raster: a band-major float32 buffer of
// Bands*Height*Width samples. Pipeline stages always allocate a fresh Array
// for their result so callers can keep reusing their inputs.
type Array struct {
	Bands  int
	Height int
	Width  int
	Data   []float32
}

// NewArray allocates a zeroed raster of the given shape.
func NewArray(bands, height, width int) *Array {
	return &Array{
		Bands:  bands,
		Height: height,
		Width:  width,
		Data:   make([]float32, bands*height*width),
	}
}

// Band returns the flat plane of band b, sharing the underlying buffer.
func (a *Array) Band(b int) []float32 {
	size := a.Height * a.Width
	return a.Data[b*size : (b+1)*size]
}

// Plane is a single-band view with its own dimensions, used for index maps
// and per-band math.
type Plane struct {
	Height int
	Width  int
	Data   []float32
}

// Plane returns band b of the array as a Plane sharing the buffer.
func (a *Array) Plane(b int) Plane {
	return Plane{Height: a.Height, Width: a.Width, Data: a.Band(b)}
}

// At returns the sample at band b, row y, column x.
func (a *Array) At(b, y, x int) float32 {
	return a.Data[b*a.Height*a.Width+y*a.Width+x]
}

// Set writes the sample at band b, row y, column x.
func (a *Array) Set(b, y, x int, v float32) {
	a.Data[b*a.Height*a.Width+y*a.Width+x] = v
}

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	out := NewArray(a.Bands, a.Height, a.Width)
	copy(out.Data, a.Data)
	return out
}

// CheckShape verifies that a profile honestly describes an array. Profiles
// and arrays travel separately through the pipeline, so a mismatch means the
// caller paired the wrong ones and the result would be silently corrupt
// geometry.
func CheckShape(a *Array, p Profile) error {
	if a == nil {
		return fmt.Errorf("nil raster array")
	}
	if a.Bands != p.Bands || a.Height != p.Height || a.Width != p.Width {
		return fmt.Errorf("profile shape (%d bands, %dx%d) does not match array shape (%d bands, %dx%d)",
			p.Bands, p.Height, p.Width, a.Bands, a.Height, a.Width)
	}
	if len(a.Data) != a.Bands*a.Height*a.Width {
		return fmt.Errorf("raster buffer has %d samples, expected %d", len(a.Data), a.Bands*a.Height*a.Width)
	}
	return nil
}
