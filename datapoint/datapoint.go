// Package datapoint defines the typed values that flow through augmentation
// pipelines: pixel tensors tagged as images, videos or masks, bounding boxes
// with their coordinate format and canvas, and the classification of untagged
// values.
//
// The tag is what lets a transform tell "this tensor is semantically a mask"
// apart from "this tensor is just data". A raw *tensor.Dense carries no tag
// and classifies as KindPlain; anything that is neither a wrapper nor a dense
// tensor classifies as KindOther and is never transformed.
package datapoint

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Kind is the closed classification of a pipeline value.
type Kind int

const (
	// KindOther marks values the framework passes through untouched:
	// strings, numbers, nil, arbitrary structs.
	KindOther Kind = iota
	// KindPlain marks an untagged dense tensor.
	KindPlain
	KindImage
	KindMask
	KindVideo
	KindBoundingBoxes
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindImage:
		return "image"
	case KindMask:
		return "mask"
	case KindVideo:
		return "video"
	case KindBoundingBoxes:
		return "bounding_boxes"
	default:
		return "other"
	}
}

// IsTyped reports whether the kind carries an explicit semantic tag. Typed
// kinds take precedence over plain tensors when a transform decides which
// values are in scope.
func (k Kind) IsTyped() bool {
	switch k {
	case KindImage, KindMask, KindVideo, KindBoundingBoxes:
		return true
	default:
		return false
	}
}

// Image is a pixel tensor tagged as an image. The trailing two dimensions are
// interpreted as (height, width); a leading channel dimension is typical but
// not required.
type Image struct {
	Data *tensor.Dense
}

// NewImage tags a pixel tensor as an image. The tensor must have at least two
// dimensions so a spatial size can be read off it.
func NewImage(d *tensor.Dense) (*Image, error) {
	if d == nil {
		return nil, errors.New("image data cannot be nil")
	}
	if d.Dims() < 2 {
		return nil, errors.Errorf("image tensor needs at least 2 dimensions, got shape %v", d.Shape())
	}
	return &Image{Data: d}, nil
}

// CanvasSize returns the (height, width) of the image.
func (im *Image) CanvasSize() (height, width int) {
	return trailingHW(im.Data)
}

// Clone returns a deep copy of the image.
func (im *Image) Clone() *Image {
	return &Image{Data: im.Data.Clone().(*tensor.Dense)}
}

// Mask is a pixel tensor tagged as a segmentation or detection mask. Detection
// masks carry one leading per-instance dimension, (instances, height, width).
type Mask struct {
	Data *tensor.Dense
}

// NewMask tags a pixel tensor as a mask.
func NewMask(d *tensor.Dense) (*Mask, error) {
	if d == nil {
		return nil, errors.New("mask data cannot be nil")
	}
	if d.Dims() < 2 {
		return nil, errors.Errorf("mask tensor needs at least 2 dimensions, got shape %v", d.Shape())
	}
	return &Mask{Data: d}, nil
}

// CanvasSize returns the (height, width) of the mask.
func (m *Mask) CanvasSize() (height, width int) {
	return trailingHW(m.Data)
}

// Instances returns the size of the leading per-instance dimension, or 1 for
// a plain (height, width) mask.
func (m *Mask) Instances() int {
	if m.Data.Dims() <= 2 {
		return 1
	}
	return m.Data.Shape()[0]
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	return &Mask{Data: m.Data.Clone().(*tensor.Dense)}
}

// Video is a pixel tensor tagged as a clip, shaped (frames, channels, height,
// width).
type Video struct {
	Data *tensor.Dense
}

// NewVideo tags a pixel tensor as a video clip.
func NewVideo(d *tensor.Dense) (*Video, error) {
	if d == nil {
		return nil, errors.New("video data cannot be nil")
	}
	if d.Dims() < 3 {
		return nil, errors.Errorf("video tensor needs at least 3 dimensions, got shape %v", d.Shape())
	}
	return &Video{Data: d}, nil
}

// CanvasSize returns the (height, width) of the clip.
func (v *Video) CanvasSize() (height, width int) {
	return trailingHW(v.Data)
}

// Clone returns a deep copy of the video.
func (v *Video) Clone() *Video {
	return &Video{Data: v.Data.Clone().(*tensor.Dense)}
}

// Classify maps any value to exactly one Kind. It is total: unrecognized
// values are KindOther, never an error.
func Classify(v any) Kind {
	switch v.(type) {
	case *Image:
		return KindImage
	case *Mask:
		return KindMask
	case *Video:
		return KindVideo
	case *BoundingBoxes:
		return KindBoundingBoxes
	case *tensor.Dense:
		return KindPlain
	default:
		return KindOther
	}
}

func trailingHW(d *tensor.Dense) (h, w int) {
	shape := d.Shape()
	return shape[len(shape)-2], shape[len(shape)-1]
}
