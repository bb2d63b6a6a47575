package transforms

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/datapoint"
)

// gradientTensor builds a (channels, h, w) uint8 tensor with a horizontal
// gradient, asymmetric enough that any flip or crop is observable by value.
func gradientTensor(t testing.TB, channels, h, w int) *tensor.Dense {
	t.Helper()
	data := make([]uint8, channels*h*w)
	for c := 0; c < channels; c++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[c*h*w+y*w+x] = uint8((c*7 + y*w + x) % 251)
			}
		}
	}
	return tensor.New(tensor.WithShape(channels, h, w), tensor.WithBacking(data))
}

func testImage(t testing.TB, h, w int) *datapoint.Image {
	t.Helper()
	im, err := datapoint.NewImage(gradientTensor(t, 3, h, w))
	require.NoError(t, err)
	return im
}

func testMask(t testing.TB, instances, h, w int) *datapoint.Mask {
	t.Helper()
	data := make([]uint8, instances*h*w)
	for i := range data {
		data[i] = uint8(i % 2)
	}
	m, err := datapoint.NewMask(tensor.New(tensor.WithShape(instances, h, w), tensor.WithBacking(data)))
	require.NoError(t, err)
	return m
}

func testBoxes(t testing.TB, canvasH, canvasW int, coords ...float32) *datapoint.BoundingBoxes {
	t.Helper()
	data := tensor.New(tensor.WithShape(len(coords)/4, 4), tensor.WithBacking(coords))
	bb, err := datapoint.NewBoundingBoxes(data, datapoint.XYXY, canvasH, canvasW)
	require.NoError(t, err)
	return bb
}

func labelTensor(t testing.TB, labels ...int64) *tensor.Dense {
	t.Helper()
	return tensor.New(tensor.WithShape(len(labels)), tensor.WithBacking(labels))
}
