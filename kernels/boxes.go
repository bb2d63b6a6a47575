package kernels

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nbaohan713/vision/datapoint"
)

// Region is a crop window in pixel coordinates.
type Region struct {
	Top, Left, Height, Width int
}

// ToXYXY returns a copy of the boxes converted to XYXY coordinates. Boxes
// already in XYXY are still copied so callers can mutate freely.
func ToXYXY(bb *datapoint.BoundingBoxes) *datapoint.BoundingBoxes {
	out := bb.Clone()
	if bb.Format == datapoint.XYXY {
		return out
	}
	coords := out.Coords()
	for i := 0; i < len(coords); i += 4 {
		a, b, c, d := coords[i], coords[i+1], coords[i+2], coords[i+3]
		switch bb.Format {
		case datapoint.XYWH:
			coords[i], coords[i+1], coords[i+2], coords[i+3] = a, b, a+c, b+d
		case datapoint.CXCYWH:
			coords[i], coords[i+1], coords[i+2], coords[i+3] = a-c/2, b-d/2, a+c/2, b+d/2
		}
	}
	out.Format = datapoint.XYXY
	return out
}

// FromXYXY converts XYXY boxes in place to the target format and returns
// them.
func FromXYXY(bb *datapoint.BoundingBoxes, format datapoint.BoxFormat) *datapoint.BoundingBoxes {
	if format == datapoint.XYXY {
		return bb
	}
	coords := bb.Coords()
	for i := 0; i < len(coords); i += 4 {
		x1, y1, x2, y2 := coords[i], coords[i+1], coords[i+2], coords[i+3]
		switch format {
		case datapoint.XYWH:
			coords[i], coords[i+1], coords[i+2], coords[i+3] = x1, y1, x2-x1, y2-y1
		case datapoint.CXCYWH:
			coords[i], coords[i+1], coords[i+2], coords[i+3] = (x1+x2)/2, (y1+y2)/2, x2-x1, y2-y1
		}
	}
	bb.Format = format
	return bb
}

// CropBoxes shifts box coordinates into the region's frame, clamps them to
// the new canvas and rebinds the boxes to the region's size. The coordinate
// format is preserved.
func CropBoxes(bb *datapoint.BoundingBoxes, region Region) (*datapoint.BoundingBoxes, error) {
	if region.Height <= 0 || region.Width <= 0 {
		return nil, errors.Errorf("crop size must be positive, got (%d, %d)", region.Height, region.Width)
	}
	out := ToXYXY(bb)
	coords := out.Coords()
	w := float32(region.Width)
	h := float32(region.Height)
	for i := 0; i < len(coords); i += 4 {
		coords[i] = clamp32(coords[i]-float32(region.Left), 0, w)
		coords[i+1] = clamp32(coords[i+1]-float32(region.Top), 0, h)
		coords[i+2] = clamp32(coords[i+2]-float32(region.Left), 0, w)
		coords[i+3] = clamp32(coords[i+3]-float32(region.Top), 0, h)
	}
	out.CanvasHeight = region.Height
	out.CanvasWidth = region.Width
	return FromXYXY(out, bb.Format), nil
}

// ZeroBoxes zeroes the coordinates of every box whose keep flag is false.
// The boxes stay in the tensor so parallel per-instance data keeps its
// alignment; a later sanitation pass drops them.
func ZeroBoxes(bb *datapoint.BoundingBoxes, keep []bool) (*datapoint.BoundingBoxes, error) {
	if len(keep) != bb.Len() {
		return nil, errors.Errorf("keep mask length %d does not match %d boxes", len(keep), bb.Len())
	}
	out := bb.Clone()
	coords := out.Coords()
	for i, k := range keep {
		if k {
			continue
		}
		for j := 0; j < 4; j++ {
			coords[i*4+j] = 0
		}
	}
	return out, nil
}

// FlipBoxesHorizontal mirrors box coordinates across the vertical center line
// of the canvas.
func FlipBoxesHorizontal(bb *datapoint.BoundingBoxes) *datapoint.BoundingBoxes {
	out := ToXYXY(bb)
	coords := out.Coords()
	w := float32(bb.CanvasWidth)
	for i := 0; i < len(coords); i += 4 {
		coords[i], coords[i+2] = w-coords[i+2], w-coords[i]
	}
	return FromXYXY(out, bb.Format)
}

// FlipBoxesVertical mirrors box coordinates across the horizontal center line
// of the canvas.
func FlipBoxesVertical(bb *datapoint.BoundingBoxes) *datapoint.BoundingBoxes {
	out := ToXYXY(bb)
	coords := out.Coords()
	h := float32(bb.CanvasHeight)
	for i := 0; i < len(coords); i += 4 {
		coords[i+1], coords[i+3] = h-coords[i+3], h-coords[i+1]
	}
	return FromXYXY(out, bb.Format)
}

// ResizeBoxes scales box coordinates to a new canvas size.
func ResizeBoxes(bb *datapoint.BoundingBoxes, height, width int) (*datapoint.BoundingBoxes, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Errorf("target dimensions must be positive, got (%d, %d)", height, width)
	}
	sx := float32(width) / float32(bb.CanvasWidth)
	sy := float32(height) / float32(bb.CanvasHeight)
	out := bb.Clone()
	coords := out.Coords()
	for i := 0; i < len(coords); i += 4 {
		coords[i] *= sx
		coords[i+1] *= sy
		coords[i+2] *= sx
		coords[i+3] *= sy
	}
	out.CanvasHeight = height
	out.CanvasWidth = width
	return out, nil
}

// PadBoxes shifts box coordinates by the left/top margins and grows the
// canvas by all four.
func PadBoxes(bb *datapoint.BoundingBoxes, left, top, right, bottom int) *datapoint.BoundingBoxes {
	out := ToXYXY(bb)
	coords := out.Coords()
	for i := 0; i < len(coords); i += 4 {
		coords[i] += float32(left)
		coords[i+1] += float32(top)
		coords[i+2] += float32(left)
		coords[i+3] += float32(top)
	}
	out.CanvasHeight = bb.CanvasHeight + top + bottom
	out.CanvasWidth = bb.CanvasWidth + left + right
	return FromXYXY(out, bb.Format)
}

// Centers returns the (x, y) center of every box.
func Centers(bb *datapoint.BoundingBoxes) [][2]float32 {
	xy := ToXYXY(bb)
	coords := xy.Coords()
	out := make([][2]float32, bb.Len())
	for i := range out {
		out[i] = [2]float32{
			(coords[i*4] + coords[i*4+2]) / 2,
			(coords[i*4+1] + coords[i*4+3]) / 2,
		}
	}
	return out
}

// IoUWithRegion returns the intersection-over-union of every box against one
// crop region. Boxes that do not overlap the region score 0.
func IoUWithRegion(bb *datapoint.BoundingBoxes, region Region) []float32 {
	xy := ToXYXY(bb)
	coords := xy.Coords()
	rx1 := float32(region.Left)
	ry1 := float32(region.Top)
	rx2 := float32(region.Left + region.Width)
	ry2 := float32(region.Top + region.Height)
	regionArea := float32(region.Width * region.Height)

	out := make([]float32, bb.Len())
	for i := range out {
		x1, y1 := coords[i*4], coords[i*4+1]
		x2, y2 := coords[i*4+2], coords[i*4+3]

		// Intersection corners: the overlap starts at the later of the two
		// starts and ends at the earlier of the two ends.
		ix1 := math32.Max(x1, rx1)
		iy1 := math32.Max(y1, ry1)
		ix2 := math32.Min(x2, rx2)
		iy2 := math32.Min(y2, ry2)
		if ix2 <= ix1 || iy2 <= iy1 {
			continue
		}
		inter := (ix2 - ix1) * (iy2 - iy1)
		union := (x2-x1)*(y2-y1) + regionArea - inter
		out[i] = inter / union
	}
	return out
}

// ValidBoxes flags each box that survives sanitation: every coordinate
// non-negative, the box inside the canvas, and both sides at least minSize.
// A box spanning exactly the full canvas counts as valid.
func ValidBoxes(bb *datapoint.BoundingBoxes, minSize float64) []bool {
	xy := ToXYXY(bb)
	coords := xy.Coords()
	h := float32(bb.CanvasHeight)
	w := float32(bb.CanvasWidth)
	min := float32(minSize)

	out := make([]bool, bb.Len())
	for i := range out {
		x1, y1 := coords[i*4], coords[i*4+1]
		x2, y2 := coords[i*4+2], coords[i*4+3]
		out[i] = x1 >= 0 && y1 >= 0 &&
			x2 <= w && y2 <= h &&
			x2-x1 >= min && y2-y1 >= min
	}
	return out
}

func clamp32(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}
