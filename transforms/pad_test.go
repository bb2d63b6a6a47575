package transforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/nbaohan713/vision/datapoint"
)

func TestPadValidation(t *testing.T) {
	_, err := NewPad(-1, 0, 0, 0, nil)
	assert.Error(t, err)
}

func TestPadGrowsCanvasAndShiftsBoxes(t *testing.T) {
	image := testImage(t, 4, 6)
	boxes := testBoxes(t, 4, 6, 1, 1, 3, 3)

	tr, err := NewPad(2, 1, 2, 1, nil)
	require.NoError(t, err)

	out, err := tr.Apply(map[string]any{"image": image, "boxes": boxes})
	require.NoError(t, err)
	result := out.(map[string]any)

	h, w := result["image"].(*datapoint.Image).CanvasSize()
	assert.Equal(t, 6, h)
	assert.Equal(t, 10, w)

	rb := result["boxes"].(*datapoint.BoundingBoxes)
	assert.Equal(t, []float32{3, 2, 5, 4}, rb.Coords(), "boxes shift by the left/top margins")
	assert.Equal(t, 6, rb.CanvasHeight)
	assert.Equal(t, 10, rb.CanvasWidth)
}

func TestPadPerKindFill(t *testing.T) {
	imageData := tensor.New(tensor.WithShape(1, 1, 1), tensor.WithBacking([]uint8{50}))
	image, err := datapoint.NewImage(imageData)
	require.NoError(t, err)
	maskData := tensor.New(tensor.WithShape(1, 1), tensor.WithBacking([]uint8{7}))
	mask, err := datapoint.NewMask(maskData)
	require.NoError(t, err)

	tr, err := NewPad(1, 0, 0, 0, map[datapoint.Kind]float64{
		datapoint.KindImage: 128,
		// masks keep the zero background label
	})
	require.NoError(t, err)

	out, err := tr.Apply(map[string]any{"image": image, "mask": mask})
	require.NoError(t, err)
	result := out.(map[string]any)

	assert.Equal(t, []uint8{128, 50}, result["image"].(*datapoint.Image).Data.Data().([]uint8))
	assert.Equal(t, []uint8{0, 7}, result["mask"].(*datapoint.Mask).Data.Data().([]uint8))
}
