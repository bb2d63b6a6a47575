package transforms

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/datapoint"
	"github.com/nbaohan713/vision/sampling"
)

// ColorJitter distorts brightness, contrast and saturation of uint8 pixel
// leaves. Each call samples one factor per enabled channel plus an
// application order, and applies the identical distortion to every in-scope
// pixel leaf. Masks and boxes pass through untouched.
//
// A setting of b means the factor is drawn uniformly from
// [max(0, 1-b), 1+b]; zero disables that channel.
type ColorJitter struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	RNG        *sampling.Source
}

// NewColorJitter builds the photometric distortion.
func NewColorJitter(brightness, contrast, saturation float64) (*ColorJitter, error) {
	for _, v := range []float64{brightness, contrast, saturation} {
		if v < 0 {
			return nil, errors.Errorf("jitter strengths must be non-negative, got (%v, %v, %v)", brightness, contrast, saturation)
		}
	}
	return &ColorJitter{Brightness: brightness, Contrast: contrast, Saturation: saturation}, nil
}

// Apply runs the distortion through the dispatch loop.
func (t *ColorJitter) Apply(sample any) (any, error) {
	return dispatch(t, source(t.RNG), sample)
}

func factorRange(src *sampling.Source, strength float64) float64 {
	if strength == 0 {
		return 1
	}
	lo := 1 - strength
	if lo < 0 {
		lo = 0
	}
	return src.Float64Range(lo, 1+strength)
}

func (t *ColorJitter) getParams(src *sampling.Source, _ []Leaf) (Params, error) {
	return Params{
		"brightness": factorRange(src, t.Brightness),
		"contrast":   factorRange(src, t.Contrast),
		"saturation": factorRange(src, t.Saturation),
		"order":      src.Perm(3),
	}, nil
}

func (t *ColorJitter) transformLeaf(leaf Leaf, params Params) (any, error) {
	switch v := leaf.Value.(type) {
	case *datapoint.Image:
		d, err := jitterPixels(v.Data, params)
		if err != nil {
			return nil, err
		}
		return &datapoint.Image{Data: d}, nil
	case *datapoint.Video:
		d, err := jitterPixels(v.Data, params)
		if err != nil {
			return nil, err
		}
		return &datapoint.Video{Data: d}, nil
	case *tensor.Dense:
		return jitterPixels(v, params)
	case *datapoint.Mask, *datapoint.BoundingBoxes:
		// Photometric distortion has no geometric effect.
		return leaf.Value, nil
	default:
		return nil, errors.Errorf("cannot jitter %T", leaf.Value)
	}
}

func jitterPixels(t *tensor.Dense, params Params) (*tensor.Dense, error) {
	if t.Dtype() != tensor.Uint8 {
		return nil, errors.Errorf("color jitter needs uint8 pixels, got %v", t.Dtype())
	}
	shape := t.Shape()
	if len(shape) < 3 {
		return nil, errors.Errorf("color jitter needs a channel dimension, got shape %v", shape)
	}

	src := t.Data().([]uint8)
	work := make([]float32, len(src))
	for i, p := range src {
		work[i] = float32(p)
	}

	channels := shape[len(shape)-3]
	plane := shape[len(shape)-2] * shape[len(shape)-1]
	frameSize := channels * plane
	frames := len(src) / frameSize

	for _, step := range params["order"].([]int) {
		switch step {
		case 0:
			scalePixels(work, float32(params["brightness"].(float64)))
		case 1:
			adjustContrast(work, float32(params["contrast"].(float64)))
		case 2:
			for f := 0; f < frames; f++ {
				adjustSaturation(work[f*frameSize:(f+1)*frameSize], channels, plane, float32(params["saturation"].(float64)))
			}
		}
	}

	out := make([]uint8, len(src))
	for i, p := range work {
		out[i] = uint8(clamp32(p, 0, 255))
	}
	return tensor.New(tensor.WithShape(append([]int(nil), shape...)...), tensor.WithBacking(out)), nil
}

func scalePixels(work []float32, factor float32) {
	for i := range work {
		work[i] *= factor
	}
}

// adjustContrast blends every pixel with the mean intensity.
func adjustContrast(work []float32, factor float32) {
	var sum float32
	for _, p := range work {
		sum += p
	}
	mean := sum / float32(len(work))
	for i := range work {
		work[i] = mean + (work[i]-mean)*factor
	}
}

// adjustSaturation blends each pixel with its grayscale value. Single-channel
// frames are left alone.
func adjustSaturation(frame []float32, channels, plane int, factor float32) {
	if channels != 3 {
		return
	}
	for i := 0; i < plane; i++ {
		r, g, b := frame[i], frame[plane+i], frame[2*plane+i]
		gray := 0.299*r + 0.587*g + 0.114*b
		frame[i] = gray + (r-gray)*factor
		frame[plane+i] = gray + (g-gray)*factor
		frame[2*plane+i] = gray + (b-gray)*factor
	}
}

func clamp32(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}
