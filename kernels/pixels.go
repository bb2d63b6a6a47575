// Package kernels holds the per-kind math the transform framework calls into:
// spatial operations on pixel tensors and coordinate arithmetic on bounding
// boxes. Pixel kernels treat the trailing two dimensions as (height, width)
// and apply the operation to every leading plane, so the same kernel serves
// (H, W) masks, (C, H, W) images and (T, C, H, W) clips.
package kernels

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/images"
)

// spatial splits a tensor shape into the product of its leading dimensions
// and the trailing (height, width) pair.
func spatial(t *tensor.Dense) (lead, h, w int, err error) {
	shape := t.Shape()
	if len(shape) < 2 {
		return 0, 0, 0, errors.Errorf("pixel tensor needs at least 2 dimensions, got shape %v", shape)
	}
	lead = 1
	for _, d := range shape[:len(shape)-2] {
		lead *= d
	}
	return lead, shape[len(shape)-2], shape[len(shape)-1], nil
}

func withSpatial(shape tensor.Shape, h, w int) []int {
	out := append([]int(nil), shape...)
	out[len(out)-2] = h
	out[len(out)-1] = w
	return out
}

// Crop extracts a spatial region from every plane of a pixel tensor.
//
// Arguments:
//   - t: The pixel tensor to crop, trailing two dimensions (height, width).
//   - top, left: The origin of the region in pixel coordinates.
//   - height, width: The size of the region; must lie inside the tensor.
//
// Returns:
//   - *tensor.Dense: The cropped tensor, same dtype and leading dimensions.
//   - error: An error if the region is empty or outside the canvas.
func Crop(t *tensor.Dense, top, left, height, width int) (*tensor.Dense, error) {
	lead, h, w, err := spatial(t)
	if err != nil {
		return nil, err
	}
	if height <= 0 || width <= 0 {
		return nil, errors.Errorf("crop size must be positive, got (%d, %d)", height, width)
	}
	if top < 0 || left < 0 || top+height > h || left+width > w {
		return nil, errors.Errorf("crop region (%d, %d, %d, %d) outside canvas (%d, %d)", top, left, height, width, h, w)
	}
	shape := withSpatial(t.Shape(), height, width)
	switch data := t.Data().(type) {
	case []uint8:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(cropData(data, lead, h, w, top, left, height, width))), nil
	case []float32:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(cropData(data, lead, h, w, top, left, height, width))), nil
	case []float64:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(cropData(data, lead, h, w, top, left, height, width))), nil
	default:
		return nil, errors.Errorf("unsupported pixel dtype %v", t.Dtype())
	}
}

func cropData[T any](src []T, lead, h, w, top, left, ch, cw int) []T {
	out := make([]T, lead*ch*cw)
	for p := 0; p < lead; p++ {
		srcPlane := p * h * w
		dstPlane := p * ch * cw
		for y := 0; y < ch; y++ {
			srcRow := srcPlane + (top+y)*w + left
			copy(out[dstPlane+y*cw:dstPlane+(y+1)*cw], src[srcRow:srcRow+cw])
		}
	}
	return out
}

// HorizontalFlip mirrors every plane left to right.
func HorizontalFlip(t *tensor.Dense) (*tensor.Dense, error) {
	lead, h, w, err := spatial(t)
	if err != nil {
		return nil, err
	}
	shape := append([]int(nil), t.Shape()...)
	switch data := t.Data().(type) {
	case []uint8:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(hflipData(data, lead, h, w))), nil
	case []float32:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(hflipData(data, lead, h, w))), nil
	case []float64:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(hflipData(data, lead, h, w))), nil
	default:
		return nil, errors.Errorf("unsupported pixel dtype %v", t.Dtype())
	}
}

func hflipData[T any](src []T, lead, h, w int) []T {
	out := make([]T, len(src))
	for p := 0; p < lead; p++ {
		plane := p * h * w
		for y := 0; y < h; y++ {
			row := plane + y*w
			for x := 0; x < w; x++ {
				out[row+x] = src[row+w-1-x]
			}
		}
	}
	return out
}

// VerticalFlip mirrors every plane top to bottom.
func VerticalFlip(t *tensor.Dense) (*tensor.Dense, error) {
	lead, h, w, err := spatial(t)
	if err != nil {
		return nil, err
	}
	shape := append([]int(nil), t.Shape()...)
	switch data := t.Data().(type) {
	case []uint8:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(vflipData(data, lead, h, w))), nil
	case []float32:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(vflipData(data, lead, h, w))), nil
	case []float64:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(vflipData(data, lead, h, w))), nil
	default:
		return nil, errors.Errorf("unsupported pixel dtype %v", t.Dtype())
	}
}

func vflipData[T any](src []T, lead, h, w int) []T {
	out := make([]T, len(src))
	for p := 0; p < lead; p++ {
		plane := p * h * w
		for y := 0; y < h; y++ {
			copy(out[plane+y*w:plane+(y+1)*w], src[plane+(h-1-y)*w:plane+(h-y)*w])
		}
	}
	return out
}

// Pad grows every plane by the given margins, filling new pixels with the
// fill value truncated to the tensor's dtype.
func Pad(t *tensor.Dense, left, top, right, bottom int, fill float64) (*tensor.Dense, error) {
	if left < 0 || top < 0 || right < 0 || bottom < 0 {
		return nil, errors.Errorf("padding must be non-negative, got (%d, %d, %d, %d)", left, top, right, bottom)
	}
	lead, h, w, err := spatial(t)
	if err != nil {
		return nil, err
	}
	nh, nw := h+top+bottom, w+left+right
	shape := withSpatial(t.Shape(), nh, nw)
	switch data := t.Data().(type) {
	case []uint8:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(padData(data, lead, h, w, left, top, nh, nw, uint8(fill)))), nil
	case []float32:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(padData(data, lead, h, w, left, top, nh, nw, float32(fill)))), nil
	case []float64:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(padData(data, lead, h, w, left, top, nh, nw, fill))), nil
	default:
		return nil, errors.Errorf("unsupported pixel dtype %v", t.Dtype())
	}
}

func padData[T comparable](src []T, lead, h, w, left, top, nh, nw int, fill T) []T {
	out := make([]T, lead*nh*nw)
	var zero T
	if fill != zero {
		for i := range out {
			out[i] = fill
		}
	}
	for p := 0; p < lead; p++ {
		srcPlane := p * h * w
		dstPlane := p * nh * nw
		for y := 0; y < h; y++ {
			copy(out[dstPlane+(top+y)*nw+left:dstPlane+(top+y)*nw+left+w], src[srcPlane+y*w:srcPlane+(y+1)*w])
		}
	}
	return out
}

// Resize resamples every plane to the target size. uint8 tensors shaped
// (1|3, height, width) go through the bilinear image kernel; everything else
// falls back to nearest-neighbor sampling, which is also the right choice for
// label masks.
func Resize(t *tensor.Dense, height, width int) (*tensor.Dense, error) {
	shape := t.Shape()
	if t.Dtype() == tensor.Uint8 && len(shape) == 3 && (shape[0] == 1 || shape[0] == 3) {
		return images.Resample(t, height, width)
	}
	if t.Dtype() == tensor.Uint8 && len(shape) == 4 && (shape[1] == 1 || shape[1] == 3) {
		return resizeFrames(t, height, width)
	}
	return ResizeNearest(t, height, width)
}

// resizeFrames resamples a (frames, channels, height, width) clip one frame
// at a time through the bilinear kernel.
func resizeFrames(t *tensor.Dense, height, width int) (*tensor.Dense, error) {
	shape := t.Shape()
	frames, channels, h, w := shape[0], shape[1], shape[2], shape[3]
	src := t.Data().([]uint8)
	frameSize := channels * h * w

	out := make([]uint8, frames*channels*height*width)
	outFrameSize := channels * height * width
	for f := 0; f < frames; f++ {
		frame := tensor.New(
			tensor.WithShape(channels, h, w),
			tensor.WithBacking(append([]uint8(nil), src[f*frameSize:(f+1)*frameSize]...)),
		)
		resized, err := images.Resample(frame, height, width)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", f)
		}
		copy(out[f*outFrameSize:(f+1)*outFrameSize], resized.Data().([]uint8))
	}
	return tensor.New(tensor.WithShape(frames, channels, height, width), tensor.WithBacking(out)), nil
}

// ResizeNearest resamples every plane to the target size with
// nearest-neighbor sampling.
func ResizeNearest(t *tensor.Dense, height, width int) (*tensor.Dense, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Errorf("target dimensions must be positive, got (%d, %d)", height, width)
	}
	lead, h, w, err := spatial(t)
	if err != nil {
		return nil, err
	}
	shape := withSpatial(t.Shape(), height, width)
	switch data := t.Data().(type) {
	case []uint8:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(nearestData(data, lead, h, w, height, width))), nil
	case []float32:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(nearestData(data, lead, h, w, height, width))), nil
	case []float64:
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(nearestData(data, lead, h, w, height, width))), nil
	default:
		return nil, errors.Errorf("unsupported pixel dtype %v", t.Dtype())
	}
}

func nearestData[T any](src []T, lead, h, w, nh, nw int) []T {
	out := make([]T, lead*nh*nw)
	for p := 0; p < lead; p++ {
		srcPlane := p * h * w
		dstPlane := p * nh * nw
		for y := 0; y < nh; y++ {
			sy := y * h / nh
			for x := 0; x < nw; x++ {
				sx := x * w / nw
				out[dstPlane+y*nw+x] = src[srcPlane+sy*w+sx]
			}
		}
	}
	return out
}

// GatherLeading keeps the rows of the leading dimension flagged in keep,
// preserving relative order.
//
// Arguments:
//   - t: The tensor to filter along its leading dimension.
//   - keep: One flag per leading row; length must equal the leading dimension.
//
// Returns:
//   - *tensor.Dense: The filtered tensor; its leading dimension may be zero.
//   - error: An error if the mask length disagrees with the tensor.
func GatherLeading(t *tensor.Dense, keep []bool) (*tensor.Dense, error) {
	shape := t.Shape()
	if len(shape) == 0 || shape[0] != len(keep) {
		return nil, errors.Errorf("keep mask length %d does not match leading dimension of %v", len(keep), shape)
	}
	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	rowSize := 1
	for _, d := range shape[1:] {
		rowSize *= d
	}
	outShape := append([]int{kept}, shape[1:]...)
	switch data := t.Data().(type) {
	case []uint8:
		return tensor.New(tensor.WithShape(outShape...), tensor.WithBacking(gatherData(data, keep, rowSize, kept))), nil
	case []int:
		return tensor.New(tensor.WithShape(outShape...), tensor.WithBacking(gatherData(data, keep, rowSize, kept))), nil
	case []int32:
		return tensor.New(tensor.WithShape(outShape...), tensor.WithBacking(gatherData(data, keep, rowSize, kept))), nil
	case []int64:
		return tensor.New(tensor.WithShape(outShape...), tensor.WithBacking(gatherData(data, keep, rowSize, kept))), nil
	case []float32:
		return tensor.New(tensor.WithShape(outShape...), tensor.WithBacking(gatherData(data, keep, rowSize, kept))), nil
	case []float64:
		return tensor.New(tensor.WithShape(outShape...), tensor.WithBacking(gatherData(data, keep, rowSize, kept))), nil
	default:
		return nil, errors.Errorf("unsupported dtype %v", t.Dtype())
	}
}

func gatherData[T any](src []T, keep []bool, rowSize, kept int) []T {
	out := make([]T, 0, kept*rowSize)
	for i, k := range keep {
		if k {
			out = append(out, src[i*rowSize:(i+1)*rowSize]...)
		}
	}
	return out
}
