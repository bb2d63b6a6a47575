// Package images - interop between pixel tensors and Go-native image.Image,
// plus the resampling kernel the geometric transforms delegate to.
package images

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// FromGoImage converts an image.Image into a (3, height, width) uint8 tensor
// in RGB channel order.
func FromGoImage(img image.Image) *tensor.Dense {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	data := make([]uint8, 3*height*width)
	plane := height * width
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := y*width + x
			data[idx] = uint8(r >> 8)
			data[plane+idx] = uint8(g >> 8)
			data[2*plane+idx] = uint8(b >> 8)
		}
	}

	return tensor.New(tensor.WithShape(3, height, width), tensor.WithBacking(data))
}

// ToGoImage converts a (channels, height, width) uint8 tensor with 1 or 3
// channels into an image.Image. Single-channel tensors become grayscale.
func ToGoImage(t *tensor.Dense) (image.Image, error) {
	if t.Dtype() != tensor.Uint8 {
		return nil, errors.Errorf("pixel tensor must be uint8, got %v", t.Dtype())
	}
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, errors.Errorf("pixel tensor must be shaped (channels, height, width), got %v", shape)
	}
	channels, height, width := shape[0], shape[1], shape[2]
	data := t.Data().([]uint8)
	plane := height * width

	switch channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetGray(x, y, color.Gray{Y: data[y*width+x]})
			}
		}
		return img, nil
	case 3:
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				idx := y*width + x
				img.SetRGBA(x, y, color.RGBA{
					R: data[idx],
					G: data[plane+idx],
					B: data[2*plane+idx],
					A: 255,
				})
			}
		}
		return img, nil
	default:
		return nil, errors.Errorf("pixel tensor must have 1 or 3 channels, got %d", channels)
	}
}

// Resample resizes a pixel tensor to the target spatial size with bilinear
// interpolation.
//
// Arguments:
//   - t: The (channels, height, width) uint8 tensor to resample, 1 or 3 channels.
//   - height: The target height in pixels.
//   - width: The target width in pixels.
//
// Returns:
//   - *tensor.Dense: The resampled tensor with the same channel count.
//   - error: An error if the target is empty or the tensor is not image-shaped.
func Resample(t *tensor.Dense, height, width int) (*tensor.Dense, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Errorf("target dimensions must be positive, got (%d, %d)", height, width)
	}
	img, err := ToGoImage(t)
	if err != nil {
		return nil, errors.Wrap(err, "resample")
	}
	resized := resize.Resize(uint(width), uint(height), img, resize.Bilinear)

	channels := t.Shape()[0]
	if channels == 1 {
		return grayToTensor(resized, height, width), nil
	}
	return FromGoImage(resized), nil
}

func grayToTensor(img image.Image, height, width int) *tensor.Dense {
	bounds := img.Bounds()
	data := make([]uint8, height*width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			data[y*width+x] = g.Y
		}
	}
	return tensor.New(tensor.WithShape(1, height, width), tensor.WithBacking(data))
}
