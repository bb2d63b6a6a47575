package datapoint

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// BoxFormat is the coordinate convention of a bounding box tensor.
type BoxFormat int

const (
	// XYXY stores (x1, y1, x2, y2) with x2/y2 exclusive of nothing; the box
	// spans [x1, x2] x [y1, y2].
	XYXY BoxFormat = iota
	// XYWH stores (x, y, width, height) with (x, y) the top-left corner.
	XYWH
	// CXCYWH stores (center x, center y, width, height).
	CXCYWH
)

// String returns the conventional uppercase name of the format.
func (f BoxFormat) String() string {
	switch f {
	case XYXY:
		return "XYXY"
	case XYWH:
		return "XYWH"
	case CXCYWH:
		return "CXCYWH"
	default:
		return "unknown"
	}
}

// BoundingBoxes is a (instances, 4) float32 tensor of box coordinates tagged
// with its coordinate format and the (height, width) canvas the coordinates
// are defined against.
type BoundingBoxes struct {
	Data         *tensor.Dense
	Format       BoxFormat
	CanvasHeight int
	CanvasWidth  int
}

// NewBoundingBoxes tags a coordinate tensor as bounding boxes. The tensor must
// be float32 and shaped (instances, 4).
func NewBoundingBoxes(d *tensor.Dense, format BoxFormat, canvasHeight, canvasWidth int) (*BoundingBoxes, error) {
	if d == nil {
		return nil, errors.New("bounding box data cannot be nil")
	}
	shape := d.Shape()
	if len(shape) != 2 || shape[1] != 4 {
		return nil, errors.Errorf("bounding boxes must be shaped (instances, 4), got %v", shape)
	}
	if d.Dtype() != tensor.Float32 {
		return nil, errors.Errorf("bounding boxes must be float32, got %v", d.Dtype())
	}
	if canvasHeight <= 0 || canvasWidth <= 0 {
		return nil, errors.Errorf("canvas size must be positive, got (%d, %d)", canvasHeight, canvasWidth)
	}
	return &BoundingBoxes{Data: d, Format: format, CanvasHeight: canvasHeight, CanvasWidth: canvasWidth}, nil
}

// Len returns the number of boxes.
func (bb *BoundingBoxes) Len() int {
	return bb.Data.Shape()[0]
}

// Coords returns the backing coordinate slice, 4 entries per box. The slice
// aliases the tensor; callers must not hold it across a transform.
func (bb *BoundingBoxes) Coords() []float32 {
	return bb.Data.Data().([]float32)
}

// Clone returns a deep copy with the same format and canvas.
func (bb *BoundingBoxes) Clone() *BoundingBoxes {
	return &BoundingBoxes{
		Data:         bb.Data.Clone().(*tensor.Dense),
		Format:       bb.Format,
		CanvasHeight: bb.CanvasHeight,
		CanvasWidth:  bb.CanvasWidth,
	}
}
