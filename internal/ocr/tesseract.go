package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this text in the image.
	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the complete results of text extraction from an image.
type OCRResult struct {
	// FullText is all recognized text with original spacing/newlines.
	FullText string `json:"full_text"`

	// Regions contains individual words with their bounding boxes.
	// May be empty if bounding box extraction fails (text will still be in FullText).
	Regions []TextRegion `json:"regions"`
}

// Reader recognizes text in an in-memory image.
type Reader interface {
	Read(img image.Image) (*OCRResult, error)
}

// axisWhitelist restricts recognition to what appears on a glucose axis.
const axisWhitelist = "0123456789.,mgdLlo/"

// Tesseract is a Reader backed by the Tesseract engine through gosseract.
//
// Each Read creates and closes its own client, so a Tesseract value may be
// shared between goroutines.
type Tesseract struct {
	// Language is the Tesseract language code, "eng" when empty.
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	// Empty means the engine's default lookup (TESSDATA_PREFIX).
	TessdataPrefix string

	// Whitelist limits the characters Tesseract may emit. Empty allows all.
	Whitelist string
}

// NewTesseract returns a Reader tuned for glucose axis labels.
func NewTesseract(language, tessdataPrefix string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{
		Language:       language,
		TessdataPrefix: tessdataPrefix,
		Whitelist:      axisWhitelist,
	}
}

// Read performs OCR on img and returns the recognized text with word boxes.
//
// The image is handed to Tesseract as an in-memory PNG; no temporary files
// are written. Word boxes are in img's pixel space relative to its top-left
// corner.
//
// If word-level bounding box extraction fails, the full text is still
// returned with an empty Regions slice.
func (t *Tesseract) Read(img image.Image) (*OCRResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(t.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if t.Whitelist != "" {
		if err := client.SetWhitelist(t.Whitelist); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{FullText: text, Regions: []TextRegion{}}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &OCRResult{FullText: text, Regions: regions}, nil
}

// ReadRegion performs OCR on the rectangle r of img, upscaled by scale first.
//
// Small axis labels on phone screenshots are often below the size Tesseract
// reads reliably, so callers usually pass a scale of 2-4. The returned
// bounding boxes are mapped back to img's coordinates: if the region starts
// at (100, 50) and a word is found at (20, 40) in a 2x upscale, its bounds
// start at (110, 70).
func ReadRegion(reader Reader, img image.Image, r image.Rectangle, scale float64) (*OCRResult, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("OCR region %v is empty or outside image bounds %v", r, img.Bounds())
	}
	if scale <= 0 {
		scale = 1
	}

	var region image.Image = imaging.Crop(img, r)
	if scale != 1 {
		w := int(float64(r.Dx()) * scale)
		h := int(float64(r.Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %.2f collapses OCR region %v", scale, r)
		}
		region = imaging.Resize(region, w, h, imaging.Lanczos)
	}

	result, err := reader.Read(region)
	if err != nil {
		return nil, err
	}

	for i := range result.Regions {
		b := &result.Regions[i].Bounds
		b.X1 = r.Min.X + int(float64(b.X1)/scale)
		b.Y1 = r.Min.Y + int(float64(b.Y1)/scale)
		b.X2 = r.Min.X + int(float64(b.X2)/scale)
		b.Y2 = r.Min.Y + int(float64(b.Y2)/scale)
	}

	return result, nil
}

// Info describes the OCR backend for status reporting.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Backend   string `json:"backend"`
	Language  string `json:"language"`
}

// GetInfo reports the linked Tesseract version.
func (t *Tesseract) GetInfo() Info {
	v := gosseract.Version()
	return Info{
		Available: v != "",
		Version:   v,
		Backend:   "gosseract",
		Language:  t.Language,
	}
}
