package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// EncodedImage is an image serialized for transport in a JSON result.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Format names accepted by Encode.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpg"
	FormatWebP = "webp"
)

// Encode writes img to w in the given format ("png", "jpg"/"jpeg" or "webp").
// WebP output is lossless so debug artifacts keep their exact pixel values.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG, "":
		return imaging.Encode(w, img, imaging.PNG)
	case FormatJPEG, "jpeg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(92))
	case FormatWebP:
		return webp.Encode(w, img, &webp.Options{Lossless: true})
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Extension returns the file extension (without dot) for a format name.
func Extension(format string) string {
	switch format {
	case FormatJPEG, "jpeg":
		return "jpg"
	case FormatWebP:
		return "webp"
	default:
		return "png"
	}
}

// EncodeBase64PNG encodes img as a base64 PNG, optionally rescaled by scale.
func EncodeBase64PNG(img image.Image, scale float64) (*EncodedImage, error) {
	out := img
	if scale != 1.0 && scale > 0 {
		b := img.Bounds()
		w := int(float64(b.Dx()) * scale)
		h := int(float64(b.Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %.3f collapses %dx%d image", scale, b.Dx(), b.Dy())
		}
		out = imaging.Resize(img, w, h, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, out, FormatPNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
