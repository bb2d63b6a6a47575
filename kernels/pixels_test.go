package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

// grid builds a (1, h, w) uint8 tensor whose pixel at (y, x) is y*w + x, which
// makes it easy to assert spatial rearrangements by value.
func grid(t testing.TB, h, w int) *tensor.Dense {
	t.Helper()
	data := make([]uint8, h*w)
	for i := range data {
		data[i] = uint8(i)
	}
	return tensor.New(tensor.WithShape(1, h, w), tensor.WithBacking(data))
}

func TestCrop(t *testing.T) {
	// 4x4 grid, crop the central 2x2.
	src := grid(t, 4, 4)

	out, err := Crop(src, 1, 1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2}, []int(out.Shape()))
	assert.Equal(t, []uint8{5, 6, 9, 10}, out.Data().([]uint8))
}

func TestCropMultiPlane(t *testing.T) {
	data := []float32{
		1, 2, 3, 4, // plane 0
		5, 6, 7, 8, // plane 1
	}
	src := tensor.New(tensor.WithShape(2, 2, 2), tensor.WithBacking(data))

	out, err := Crop(src, 0, 1, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, []int(out.Shape()))
	assert.Equal(t, []float32{2, 4, 6, 8}, out.Data().([]float32), "every plane should be cropped the same way")
}

func TestCropRejectsOutOfBounds(t *testing.T) {
	src := grid(t, 4, 4)

	_, err := Crop(src, 3, 0, 2, 2)
	assert.Error(t, err, "a region hanging off the bottom must be rejected")

	_, err = Crop(src, 0, 0, 0, 2)
	assert.Error(t, err, "an empty region must be rejected")

	_, err = Crop(src, -1, 0, 2, 2)
	assert.Error(t, err, "a negative origin must be rejected")
}

func TestHorizontalFlip(t *testing.T) {
	src := grid(t, 2, 3)

	out, err := HorizontalFlip(src)
	require.NoError(t, err)
	assert.Equal(t, []uint8{2, 1, 0, 5, 4, 3}, out.Data().([]uint8))

	back, err := HorizontalFlip(out)
	require.NoError(t, err)
	assert.Equal(t, src.Data().([]uint8), back.Data().([]uint8), "flipping twice restores the input")
}

func TestVerticalFlip(t *testing.T) {
	src := grid(t, 3, 2)

	out, err := VerticalFlip(src)
	require.NoError(t, err)
	assert.Equal(t, []uint8{4, 5, 2, 3, 0, 1}, out.Data().([]uint8))

	back, err := VerticalFlip(out)
	require.NoError(t, err)
	assert.Equal(t, src.Data().([]uint8), back.Data().([]uint8), "flipping twice restores the input")
}

func TestPad(t *testing.T) {
	src := tensor.New(tensor.WithShape(1, 2, 2), tensor.WithBacking([]uint8{1, 2, 3, 4}))

	out, err := Pad(src, 1, 1, 0, 0, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 3}, []int(out.Shape()))
	assert.Equal(t, []uint8{
		9, 9, 9,
		9, 1, 2,
		9, 3, 4,
	}, out.Data().([]uint8))
}

func TestPadZeroFill(t *testing.T) {
	src := tensor.New(tensor.WithShape(1, 1, 1), tensor.WithBacking([]float32{5}))

	out, err := Pad(src, 0, 0, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 0, 0, 0}, out.Data().([]float32))
}

func TestPadRejectsNegativeMargins(t *testing.T) {
	src := grid(t, 2, 2)
	_, err := Pad(src, -1, 0, 0, 0, 0)
	assert.Error(t, err)
}

func TestResizeNearest(t *testing.T) {
	src := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]uint8{1, 2, 3, 4}))

	out, err := ResizeNearest(src, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4}, []int(out.Shape()))
	assert.Equal(t, []uint8{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, out.Data().([]uint8), "each source pixel should expand to a 2x2 block")

	down, err := ResizeNearest(out, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, src.Data().([]uint8), down.Data().([]uint8), "downsizing an upsized grid restores it")
}

func TestResizeNearestPreservesLabelValues(t *testing.T) {
	// Masks of class ids must never gain interpolated values.
	src := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]int64{0, 7, 0, 7}))

	out, err := GatherLeading(src, []bool{true, true})
	require.NoError(t, err)
	assert.Equal(t, src.Data().([]int64), out.Data().([]int64))

	resized, err := ResizeNearest(tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float32{0, 7, 0, 7})), 3, 3)
	require.NoError(t, err)
	for _, v := range resized.Data().([]float32) {
		assert.Contains(t, []float32{0, 7}, v, "nearest-neighbor sampling must only ever emit source values")
	}
}

func TestResizeBilinearShape(t *testing.T) {
	src := tensor.New(tensor.WithShape(3, 4, 6), tensor.WithBacking(make([]uint8, 3*4*6)))

	out, err := Resize(src, 8, 12)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 8, 12}, []int(out.Shape()))
	assert.Equal(t, tensor.Uint8, out.Dtype())
}

func TestResizeUniformStaysUniform(t *testing.T) {
	data := make([]uint8, 3*6*6)
	for i := range data {
		data[i] = 128
	}
	src := tensor.New(tensor.WithShape(3, 6, 6), tensor.WithBacking(data))

	out, err := Resize(src, 3, 3)
	require.NoError(t, err)
	for _, v := range out.Data().([]uint8) {
		assert.Equal(t, uint8(128), v, "resampling a constant image must not change its value")
	}
}

func TestResizeVideoPerFrame(t *testing.T) {
	// Two uniform frames with distinct values must stay distinct after resize.
	data := make([]uint8, 2*3*4*4)
	for i := 0; i < 3*4*4; i++ {
		data[i] = 10
		data[3*4*4+i] = 200
	}
	src := tensor.New(tensor.WithShape(2, 3, 4, 4), tensor.WithBacking(data))

	out, err := Resize(src, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 2, 2}, []int(out.Shape()))
	resized := out.Data().([]uint8)
	for i := 0; i < 3*2*2; i++ {
		assert.Equal(t, uint8(10), resized[i], "first frame value")
		assert.Equal(t, uint8(200), resized[3*2*2+i], "second frame value")
	}
}

func TestGatherLeading(t *testing.T) {
	src := tensor.New(tensor.WithShape(3, 2), tensor.WithBacking([]float32{1, 2, 3, 4, 5, 6}))

	out, err := GatherLeading(src, []bool{true, false, true})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, []int(out.Shape()))
	assert.Equal(t, []float32{1, 2, 5, 6}, out.Data().([]float32))

	_, err = GatherLeading(src, []bool{true})
	assert.Error(t, err, "a short keep mask must be rejected")
}

func BenchmarkHorizontalFlip(b *testing.B) {
	data := make([]uint8, 3*480*640)
	src := tensor.New(tensor.WithShape(3, 480, 640), tensor.WithBacking(data))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := HorizontalFlip(src); err != nil {
			b.Fatal(err)
		}
	}
}
