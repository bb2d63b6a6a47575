package pipeline

import (
	"github.com/pkg/errors"

	"github.com/nbaohan713/vision/datapoint"
)

// YAML decodes numbers as int or float64 depending on their spelling; the
// field helpers below accept either.

func floatField(cfg map[string]any, key string, def float64) (float64, error) {
	raw, ok := cfg[key]
	if !ok {
		return def, nil
	}
	v, err := floatValue(raw)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return v, nil
}

func intField(cfg map[string]any, key string, def int) (int, error) {
	raw, ok := cfg[key]
	if !ok {
		return def, nil
	}
	v, ok := raw.(int)
	if !ok {
		return 0, errors.Errorf("%s must be an integer, got %T", key, raw)
	}
	return v, nil
}

func intsField(cfg map[string]any, key string) ([]int, error) {
	raw, ok := cfg[key]
	if !ok {
		return nil, errors.Errorf("%s is required", key)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.Errorf("%s must be a list of integers, got %T", key, raw)
	}
	out := make([]int, 0, len(list))
	for i, el := range list {
		v, isInt := el.(int)
		if !isInt {
			return nil, errors.Errorf("%s entry %d must be an integer, got %T", key, i, el)
		}
		out = append(out, v)
	}
	return out, nil
}

func floatValue(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, errors.Errorf("must be a number, got %T", raw)
	}
}

func floatsValue(raw any) ([]float64, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.Errorf("must be a list of numbers, got %T", raw)
	}
	out := make([]float64, 0, len(list))
	for i, el := range list {
		v, err := floatValue(el)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

// fillField reads the per-kind padding fill: a "fill" number applied to
// image, video and plain leaves, and an optional "mask_fill" for masks.
func fillField(cfg map[string]any) (map[datapoint.Kind]float64, error) {
	fill, err := floatField(cfg, "fill", 0)
	if err != nil {
		return nil, err
	}
	maskFill, err := floatField(cfg, "mask_fill", 0)
	if err != nil {
		return nil, err
	}
	return map[datapoint.Kind]float64{
		datapoint.KindImage: fill,
		datapoint.KindVideo: fill,
		datapoint.KindPlain: fill,
		datapoint.KindMask:  maskFill,
	}, nil
}
