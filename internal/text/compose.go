package text

import (
	"image"

	"easel/internal/aspect"
	"easel/internal/logging"
)

// Compose normalizes a hero onto the format canvas and draws the lines over
// it. The result is the full-size canvas; callers downscale or write it.
func (r *Renderer) Compose(heroPath string, format aspect.Format, lines []Line) (*image.NRGBA, error) {
	canvas, err := aspect.LoadHero(heroPath, format)
	if err != nil {
		return nil, err
	}
	if err := r.Draw(canvas, lines); err != nil {
		return nil, err
	}
	r.logger.Debug("text composite built",
		logging.String("hero", heroPath),
		logging.String("format", format.Tag))
	return canvas, nil
}
