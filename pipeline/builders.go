package pipeline

import (
	"github.com/pkg/errors"

	"github.com/nbaohan713/vision/transforms"
)

// DefaultRegistry returns a registry with every built-in transform bound to
// its config name.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for name, b := range map[string]Builder{
		"random_horizontal_flip":  buildRandomHorizontalFlip,
		"random_vertical_flip":    buildRandomVerticalFlip,
		"resize":                  buildResize,
		"random_resize":           buildRandomResize,
		"random_shortest_size":    buildRandomShortestSize,
		"pad":                     buildPad,
		"color_jitter":            buildColorJitter,
		"random_iou_crop":         buildRandomIoUCrop,
		"sanitize_bounding_boxes": buildSanitize,
		"random_apply":            buildRandomApply,
		"random_choice":           buildRandomChoice,
		"random_order":            buildRandomOrder,
	} {
		// Register only fails on empty names, which the table above cannot
		// produce.
		_ = r.Register(name, b)
	}
	return r
}

func buildRandomHorizontalFlip(_ *Registry, cfg map[string]any) (transforms.Transform, error) {
	p, err := floatField(cfg, "p", 0.5)
	if err != nil {
		return nil, err
	}
	return transforms.NewRandomHorizontalFlip(p)
}

func buildRandomVerticalFlip(_ *Registry, cfg map[string]any) (transforms.Transform, error) {
	p, err := floatField(cfg, "p", 0.5)
	if err != nil {
		return nil, err
	}
	return transforms.NewRandomVerticalFlip(p)
}

func buildResize(_ *Registry, cfg map[string]any) (transforms.Transform, error) {
	height, err := intField(cfg, "height", 0)
	if err != nil {
		return nil, err
	}
	width, err := intField(cfg, "width", 0)
	if err != nil {
		return nil, err
	}
	return transforms.NewResize(height, width)
}

func buildRandomResize(_ *Registry, cfg map[string]any) (transforms.Transform, error) {
	minSize, err := intField(cfg, "min_size", 0)
	if err != nil {
		return nil, err
	}
	maxSize, err := intField(cfg, "max_size", 0)
	if err != nil {
		return nil, err
	}
	return transforms.NewRandomResize(minSize, maxSize)
}

func buildRandomShortestSize(_ *Registry, cfg map[string]any) (transforms.Transform, error) {
	minSizes, err := intsField(cfg, "min_sizes")
	if err != nil {
		return nil, err
	}
	maxSize, err := intField(cfg, "max_size", 0)
	if err != nil {
		return nil, err
	}
	return transforms.NewRandomShortestSize(minSizes, maxSize)
}

func buildPad(_ *Registry, cfg map[string]any) (transforms.Transform, error) {
	left, err := intField(cfg, "left", 0)
	if err != nil {
		return nil, err
	}
	top, err := intField(cfg, "top", 0)
	if err != nil {
		return nil, err
	}
	right, err := intField(cfg, "right", 0)
	if err != nil {
		return nil, err
	}
	bottom, err := intField(cfg, "bottom", 0)
	if err != nil {
		return nil, err
	}
	fill, err := fillField(cfg)
	if err != nil {
		return nil, err
	}
	return transforms.NewPad(left, top, right, bottom, fill)
}

func buildColorJitter(_ *Registry, cfg map[string]any) (transforms.Transform, error) {
	brightness, err := floatField(cfg, "brightness", 0)
	if err != nil {
		return nil, err
	}
	contrast, err := floatField(cfg, "contrast", 0)
	if err != nil {
		return nil, err
	}
	saturation, err := floatField(cfg, "saturation", 0)
	if err != nil {
		return nil, err
	}
	return transforms.NewColorJitter(brightness, contrast, saturation)
}

func buildRandomIoUCrop(_ *Registry, cfg map[string]any) (transforms.Transform, error) {
	t := transforms.NewRandomIoUCrop()
	var err error
	if t.MinScale, err = floatField(cfg, "min_scale", t.MinScale); err != nil {
		return nil, err
	}
	if t.MaxScale, err = floatField(cfg, "max_scale", t.MaxScale); err != nil {
		return nil, err
	}
	if t.Trials, err = intField(cfg, "trials", t.Trials); err != nil {
		return nil, err
	}
	if opts, ok := cfg["sampler_options"]; ok {
		options, err := floatsValue(opts)
		if err != nil {
			return nil, errors.Wrap(err, "sampler_options")
		}
		t.SamplerOptions = options
	}
	return t, nil
}

func buildSanitize(_ *Registry, cfg map[string]any) (transforms.Transform, error) {
	minSize, err := floatField(cfg, "min_size", 1)
	if err != nil {
		return nil, err
	}
	getter, err := labelsGetterField(cfg)
	if err != nil {
		return nil, err
	}
	return transforms.NewSanitizeBoundingBoxes(minSize, getter)
}

// labelsGetterField maps the labels_getter config value onto the sanitize
// lookup modes: "default" (also the absent-key default), "none", or any
// other string as a fixed sample key.
func labelsGetterField(cfg map[string]any) (any, error) {
	raw, ok := cfg["labels_getter"]
	if !ok {
		return "default", nil
	}
	if raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, errors.Errorf("labels_getter must be a string, got %T", raw)
	}
	switch s {
	case "default":
		return "default", nil
	case "none":
		return nil, nil
	default:
		getter := transforms.LabelsGetter(func(sample any) any {
			if m, isMap := sample.(map[string]any); isMap {
				return m[s]
			}
			if pair, isPair := sample.([]any); isPair && len(pair) == 2 {
				if m, isMap := pair[1].(map[string]any); isMap {
					return m[s]
				}
			}
			return nil
		})
		return getter, nil
	}
}

func buildRandomApply(r *Registry, cfg map[string]any) (transforms.Transform, error) {
	p, err := floatField(cfg, "p", 0.5)
	if err != nil {
		return nil, err
	}
	children, err := childTransforms(r, cfg)
	if err != nil {
		return nil, err
	}
	return transforms.NewRandomApply(children, p)
}

func buildRandomChoice(r *Registry, cfg map[string]any) (transforms.Transform, error) {
	children, err := childTransforms(r, cfg)
	if err != nil {
		return nil, err
	}
	var weights []float64
	if raw, ok := cfg["p"]; ok {
		if weights, err = floatsValue(raw); err != nil {
			return nil, errors.Wrap(err, "p")
		}
	}
	return transforms.NewRandomChoice(children, weights)
}

func buildRandomOrder(r *Registry, cfg map[string]any) (transforms.Transform, error) {
	children, err := childTransforms(r, cfg)
	if err != nil {
		return nil, err
	}
	return transforms.NewRandomOrder(children)
}

func childTransforms(r *Registry, cfg map[string]any) ([]transforms.Transform, error) {
	raw, ok := cfg["transforms"]
	if !ok {
		return nil, errors.New("container entry needs a transforms list")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.Errorf("transforms must be a list, got %T", raw)
	}
	entries := make([]map[string]any, 0, len(list))
	for i, el := range list {
		entry, isMap := el.(map[string]any)
		if !isMap {
			return nil, errors.Errorf("transforms entry %d must be a mapping, got %T", i, el)
		}
		entries = append(entries, entry)
	}
	return r.BuildList(entries)
}
