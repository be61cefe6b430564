// Package imaging normalizes part photos before they are stored.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/erazemk/mechatrack/internal/errs"
)

// Defaults for Processor.
const (
	DefaultMaxDimension = 1024
	DefaultQuality      = 85
	DefaultMaxBytes     = 5 << 20
)

// OutputMIME is the type of every processed photo.
const OutputMIME = "image/jpeg"

// Messages returned for rejected uploads.
const (
	MsgUnsupportedFormat = "Image must be a JPEG or PNG"
	MsgTooLarge          = "Image is too large"
	MsgUnreadable        = "Image could not be decoded"
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is a processed, ready-to-store image.
type Photo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Processor validates uploads and re-encodes them as bounded JPEGs.
type Processor struct {
	MaxBytes     int64
	MaxDimension int
	Quality      int
}

// NewProcessor returns a Processor with the default dimension and quality.
func NewProcessor(maxBytes int64) *Processor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Processor{MaxBytes: maxBytes, MaxDimension: DefaultMaxDimension, Quality: DefaultQuality}
}

// Process sniffs the upload (client headers are ignored), downscales it so
// neither side exceeds MaxDimension and re-encodes it as JPEG.
func (p *Processor) Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if int64(len(data)) > p.MaxBytes {
		return nil, errs.Validation(MsgTooLarge)
	}

	if detected := http.DetectContentType(data); !allowedMIME[detected] {
		return nil, errs.Validation(MsgUnsupportedFormat)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err, MsgUnreadable)
	}

	img = downscale(img, p.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	b := img.Bounds()
	return &Photo{Data: buf.Bytes(), MIME: OutputMIME, Width: b.Dx(), Height: b.Dy()}, nil
}

// downscale keeps the aspect ratio; images already within bounds are
// returned unchanged.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
