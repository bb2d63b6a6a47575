package transforms

import (
	"strings"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/datapoint"
	"github.com/nbaohan713/vision/kernels"
	"github.com/nbaohan713/vision/structure"
)

// LabelsGetter resolves the labels entry of a sample for sanitation. A nil
// return means the sample has no labels to validate.
type LabelsGetter func(sample any) any

// labelsMode is the configured lookup: auto-detect, explicit getter, or none.
type labelsMode int

const (
	labelsAuto labelsMode = iota
	labelsFunc
	labelsNone
)

// SanitizeBoundingBoxes drops degenerate boxes after a geometric transform:
// boxes with a negative coordinate, boxes outside the canvas, and boxes with
// a side below MinSize. Every tensor in the sample whose leading dimension
// equals the box count (labels, per-instance masks, extra per-instance
// fields) is filtered to the same surviving indices, preserving relative
// order. Entries with a different leading dimension pass through by
// identity.
type SanitizeBoundingBoxes struct {
	MinSize float64
	mode    labelsMode
	getter  LabelsGetter
}

// NewSanitizeBoundingBoxes builds the filter. labelsGetter must be the
// string "default" (auto-detect a key whose name ends in "labels"), a
// LabelsGetter, or nil for samples without labels.
func NewSanitizeBoundingBoxes(minSize float64, labelsGetter any) (*SanitizeBoundingBoxes, error) {
	if minSize < 1 {
		return nil, errors.Errorf("min_size must be >= 1, got %v", minSize)
	}
	t := &SanitizeBoundingBoxes{MinSize: minSize}
	switch g := labelsGetter.(type) {
	case string:
		if g != "default" {
			return nil, errors.Errorf(`labels_getter should either be "default", a callable, or nil, got %q`, g)
		}
		t.mode = labelsAuto
	case LabelsGetter:
		t.mode = labelsFunc
		t.getter = g
	case func(sample any) any:
		t.mode = labelsFunc
		t.getter = g
	case nil:
		t.mode = labelsNone
	default:
		return nil, errors.Errorf(`labels_getter should either be "default", a callable, or nil, got %T`, labelsGetter)
	}
	return t, nil
}

// Apply filters the sample. It does not run through the generic dispatch
// loop: sanitation touches exactly the per-instance entries aligned with the
// single bounding boxes value, regardless of the scope heuristic.
func (t *SanitizeBoundingBoxes) Apply(sample any) (any, error) {
	values, spec := structure.Flatten(sample)
	leaves := classifyLeaves(values)

	var boxes *datapoint.BoundingBoxes
	boxCount := 0
	for _, leaf := range leaves {
		if bb, ok := leaf.Value.(*datapoint.BoundingBoxes); ok {
			boxes = bb
			boxCount++
		}
	}
	if boxCount != 1 {
		return nil, errors.Errorf("sanitation requires exactly one bounding boxes value in the sample, found %d", boxCount)
	}

	if err := t.checkLabels(sample, boxes.Len()); err != nil {
		return nil, err
	}

	valid := kernels.ValidBoxes(boxes, t.MinSize)
	n := boxes.Len()

	out := make([]any, len(leaves))
	for i, leaf := range leaves {
		filtered, err := t.filterLeaf(leaf, n, valid)
		if err != nil {
			return nil, errors.Wrapf(err, "leaf %d (%s)", leaf.Index, leaf.Kind)
		}
		out[i] = filtered
	}
	return structure.Unflatten(spec, out)
}

func (t *SanitizeBoundingBoxes) filterLeaf(leaf Leaf, n int, valid []bool) (any, error) {
	switch v := leaf.Value.(type) {
	case *datapoint.BoundingBoxes:
		d, err := kernels.GatherLeading(v.Data, valid)
		if err != nil {
			return nil, err
		}
		return &datapoint.BoundingBoxes{
			Data:         d,
			Format:       v.Format,
			CanvasHeight: v.CanvasHeight,
			CanvasWidth:  v.CanvasWidth,
		}, nil
	case *datapoint.Mask:
		if v.Data.Dims() < 3 || v.Data.Shape()[0] != n {
			return leaf.Value, nil
		}
		d, err := kernels.GatherLeading(v.Data, valid)
		if err != nil {
			return nil, err
		}
		return &datapoint.Mask{Data: d}, nil
	case *tensor.Dense:
		if v.Dims() == 0 || v.Shape()[0] != n {
			return leaf.Value, nil
		}
		return kernels.GatherLeading(v, valid)
	default:
		return leaf.Value, nil
	}
}

// checkLabels resolves the labels entry per the configured lookup and
// validates it against the box count before anything is filtered.
func (t *SanitizeBoundingBoxes) checkLabels(sample any, n int) error {
	var labels any
	switch t.mode {
	case labelsNone:
		return nil
	case labelsFunc:
		labels = t.getter(sample)
		if labels == nil {
			return nil
		}
	default:
		found, err := autoDetectLabels(sample)
		if err != nil {
			return err
		}
		labels = found
	}

	d, ok := labels.(*tensor.Dense)
	if !ok {
		return errors.Errorf("labels must be a tensor, got %T", labels)
	}
	if d.Dims() == 0 || d.Shape()[0] != n {
		count := 0
		if d.Dims() > 0 {
			count = d.Shape()[0]
		}
		return errors.Errorf("number of boxes (%d) and labels (%d) do not match", n, count)
	}
	return nil
}

// autoDetectLabels finds the labels entry of a dict sample, or of a
// two-tuple whose second item is a dict, by looking for exactly one key
// whose lowercase name ends in "labels".
func autoDetectLabels(sample any) (any, error) {
	m, ok := sample.(map[string]any)
	if !ok {
		if pair, isPair := sample.([]any); isPair && len(pair) == 2 {
			m, ok = pair[1].(map[string]any)
		}
	}
	if !ok {
		return nil, errors.New("could not infer where the labels are: the sample must be a dict or a two-tuple whose second item is a dict")
	}

	var candidates []string
	for k := range m {
		if strings.HasSuffix(strings.ToLower(k), "labels") {
			candidates = append(candidates, k)
		}
	}
	switch len(candidates) {
	case 1:
		return m[candidates[0]], nil
	case 0:
		return nil, errors.New("could not infer where the labels are: no key ends in \"labels\"; pass an explicit labels getter")
	default:
		return nil, errors.Errorf("could not infer where the labels are: multiple candidate keys %v; pass an explicit labels getter", candidates)
	}
}
