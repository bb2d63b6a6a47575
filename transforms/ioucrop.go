package transforms

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/datapoint"
	"github.com/nbaohan713/vision/kernels"
	"github.com/nbaohan713/vision/sampling"
)

// RandomIoUCrop samples a crop window constrained by its overlap with the
// sample's bounding boxes, the region-proposal augmentation used by SSD-style
// detection training.
//
// Each call first draws one entry of SamplerOptions as the minimum IoU the
// window must reach against at least one box. An option of 1.0 or more is the
// "keep the whole image" branch and yields a pass-through. Otherwise the
// window is searched for at most Trials attempts; exhaustion also degrades to
// a pass-through rather than an error, so a call always terminates.
//
// Boxes whose centers fall outside the window are not dropped: they are
// zeroed and flagged in the sampled parameters, and SanitizeBoundingBoxes is
// expected to remove them together with their parallel per-instance data.
type RandomIoUCrop struct {
	MinScale       float64
	MaxScale       float64
	MinAspectRatio float64
	MaxAspectRatio float64
	SamplerOptions []float64
	Trials         int
	RNG            *sampling.Source
}

// NewRandomIoUCrop builds the crop with the conventional SSD settings:
// scale 0.3-1.0, aspect ratio 0.5-2.0, IoU options
// {0, 0.1, 0.3, 0.5, 0.7, 0.9, 1.0} and 40 trials.
func NewRandomIoUCrop() *RandomIoUCrop {
	return &RandomIoUCrop{
		MinScale:       0.3,
		MaxScale:       1.0,
		MinAspectRatio: 0.5,
		MaxAspectRatio: 2.0,
		SamplerOptions: []float64{0.0, 0.1, 0.3, 0.5, 0.7, 0.9, 1.0},
		Trials:         40,
	}
}

// Apply runs the crop through the dispatch loop.
func (t *RandomIoUCrop) Apply(sample any) (any, error) {
	return dispatch(t, source(t.RNG), sample)
}

func (t *RandomIoUCrop) validateSample(leaves []Leaf) error {
	hasPixels := false
	hasBoxes := false
	for _, leaf := range leaves {
		switch leaf.Kind {
		case datapoint.KindImage, datapoint.KindVideo, datapoint.KindPlain:
			hasPixels = true
		case datapoint.KindBoundingBoxes:
			hasBoxes = true
		}
	}
	if !hasPixels || !hasBoxes {
		return errors.New("random iou crop requires input sample to contain images and bounding boxes")
	}
	return nil
}

func (t *RandomIoUCrop) getParams(src *sampling.Source, scoped []Leaf) (Params, error) {
	var boxes *datapoint.BoundingBoxes
	for _, leaf := range scoped {
		if bb, ok := leaf.Value.(*datapoint.BoundingBoxes); ok {
			boxes = bb
			break
		}
	}
	if boxes == nil {
		return nil, errors.New("random iou crop requires input sample to contain images and bounding boxes")
	}
	origH, origW := boxes.CanvasHeight, boxes.CanvasWidth

	minIoU := t.SamplerOptions[src.Intn(len(t.SamplerOptions))]
	if minIoU >= 1.0 {
		return nil, nil
	}

	centers := kernels.Centers(boxes)
	for trial := 0; trial < t.Trials; trial++ {
		width := int(float64(origW) * src.Float64Range(t.MinScale, t.MaxScale))
		height := int(float64(origH) * src.Float64Range(t.MinScale, t.MaxScale))
		if width == 0 || height == 0 {
			continue
		}
		aspect := float64(width) / float64(height)
		if aspect < t.MinAspectRatio || aspect > t.MaxAspectRatio {
			continue
		}

		left := src.Intn(origW - width + 1)
		top := src.Intn(origH - height + 1)
		region := kernels.Region{Top: top, Left: left, Height: height, Width: width}

		// Only boxes whose centers fall strictly inside the window stay.
		kept := make([]bool, len(centers))
		anyKept := false
		for i, c := range centers {
			kept[i] = float64(c[0]) > float64(left) && float64(c[0]) < float64(left+width) &&
				float64(c[1]) > float64(top) && float64(c[1]) < float64(top+height)
			anyKept = anyKept || kept[i]
		}
		if !anyKept {
			continue
		}

		ious := kernels.IoUWithRegion(boxes, region)
		reached := false
		for i, iou := range ious {
			if kept[i] && float64(iou) >= minIoU {
				reached = true
				break
			}
		}
		if !reached {
			continue
		}

		return Params{
			"top":    top,
			"left":   left,
			"height": height,
			"width":  width,
			"kept":   kept,
		}, nil
	}
	return nil, nil
}

func (t *RandomIoUCrop) transformLeaf(leaf Leaf, params Params) (any, error) {
	region := kernels.Region{
		Top:    params["top"].(int),
		Left:   params["left"].(int),
		Height: params["height"].(int),
		Width:  params["width"].(int),
	}
	switch v := leaf.Value.(type) {
	case *datapoint.Image:
		d, err := kernels.Crop(v.Data, region.Top, region.Left, region.Height, region.Width)
		if err != nil {
			return nil, err
		}
		return &datapoint.Image{Data: d}, nil
	case *datapoint.Video:
		d, err := kernels.Crop(v.Data, region.Top, region.Left, region.Height, region.Width)
		if err != nil {
			return nil, err
		}
		return &datapoint.Video{Data: d}, nil
	case *datapoint.Mask:
		d, err := kernels.Crop(v.Data, region.Top, region.Left, region.Height, region.Width)
		if err != nil {
			return nil, err
		}
		return &datapoint.Mask{Data: d}, nil
	case *datapoint.BoundingBoxes:
		cropped, err := kernels.CropBoxes(v, region)
		if err != nil {
			return nil, err
		}
		return kernels.ZeroBoxes(cropped, params["kept"].([]bool))
	case *tensor.Dense:
		return kernels.Crop(v, region.Top, region.Left, region.Height, region.Width)
	default:
		return nil, errors.Errorf("cannot crop %T", leaf.Value)
	}
}
