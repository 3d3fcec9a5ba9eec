package aspect

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"easel/internal/render"
)

// Normalize scales a hero to cover the format's canvas and center-crops the
// overflow. The result always measures exactly Width x Height; small inputs
// are upscaled rather than padded.
func Normalize(img image.Image, f Format) *image.NRGBA {
	return imaging.Fill(img, f.Width, f.Height, imaging.Center, imaging.Lanczos)
}

// LoadHero decodes an image file and normalizes it onto the format's canvas.
func LoadHero(path string, f Format) (*image.NRGBA, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return Normalize(img, f), nil
}

// Decode reads an image file, classifying failures into the shared error
// taxonomy: unrecognized containers surface as unsupported format, anything
// else unreadable as a decode error.
func Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		marker := render.ErrAssetDecode
		if errors.Is(err, image.ErrFormat) {
			marker = render.ErrUnsupportedFormat
		}
		return nil, render.Wrap(marker, "aspect", "decode", fmt.Sprintf("open %s", path), err)
	}
	return img, nil
}
