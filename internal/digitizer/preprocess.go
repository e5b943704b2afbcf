package digitizer

import (
	"fmt"
	"image"

	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

// Preprocess converts a decoded screenshot to a single channel and inverts
// it, so that the originally dark ink (axes, curve) becomes bright and every
// later threshold works on bright-on-dark.
func Preprocess(src image.Image, alg imaging.GreyAlgorithm) (*imaging.Gray, error) {
	grey, err := imaging.Grey(src, alg)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	return imaging.Invert(grey), nil
}
