package normalizer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	// Raster decoders beyond the stdlib jpeg/png/gif set.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/brightstart/screening-api/internal/config"
	"github.com/brightstart/screening-api/internal/models"
)

// Normalizer validates an uploaded image and converts it to the fixed tensor
// shape the classifier expects. It has no side effects beyond transient
// allocations.
type Normalizer struct {
	maxFileSize int64
	allowed     map[string]struct{}
	height      int
	width       int
	channels    int
}

func NewNormalizer(upload config.UploadConfig, model config.ModelConfig) *Normalizer {
	allowed := make(map[string]struct{}, len(upload.AllowedFormats))
	for _, ext := range upload.AllowedFormats {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &Normalizer{
		maxFileSize: upload.MaxFileSize,
		allowed:     allowed,
		height:      model.InputHeight,
		width:       model.InputWidth,
		channels:    model.InputChans,
	}
}

// Normalize runs the full intake contract in order: extension allow-list,
// size ceiling, decode, then conversion to the model's input shape. Oversized
// payloads are rejected before any decode attempt.
//
// Resize policy: a hard resize to the configured height and width with Lanczos
// resampling. Aspect ratio is not preserved and nothing is cropped; the model
// was trained on images preprocessed the same way, so the policy must not
// change independently of the model artifact.
func (n *Normalizer) Normalize(data []byte, filename string) (*models.Tensor, error) {
	ext := Extension(filename)
	if _, ok := n.allowed[ext]; !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, ext)
	}

	if int64(len(data)) > n.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", models.ErrPayloadTooLarge, len(data), n.maxFileSize)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptImage, err)
	}

	return n.toTensor(img), nil
}

// toTensor flattens any transparency onto a white background, resizes, and
// scales pixel values to [0,1] in interleaved HWC order.
func (n *Normalizer) toTensor(img image.Image) *models.Tensor {
	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	flattened := imaging.Overlay(background, img, image.Pt(0, 0), 1.0)

	resized := imaging.Resize(flattened, n.width, n.height, imaging.Lanczos)

	tensor := &models.Tensor{
		Data:     make([]float32, n.height*n.width*n.channels),
		Height:   n.height,
		Width:    n.width,
		Channels: n.channels,
	}

	if n.channels == 1 {
		gray := imaging.Grayscale(resized)
		for y := 0; y < n.height; y++ {
			for x := 0; x < n.width; x++ {
				tensor.Data[y*n.width+x] = float32(gray.NRGBAAt(x, y).R) / 255.0
			}
		}
		return tensor
	}

	for y := 0; y < n.height; y++ {
		for x := 0; x < n.width; x++ {
			px := resized.NRGBAAt(x, y)
			base := (y*n.width + x) * n.channels
			tensor.Data[base] = float32(px.R) / 255.0
			tensor.Data[base+1] = float32(px.G) / 255.0
			tensor.Data[base+2] = float32(px.B) / 255.0
		}
	}
	return tensor
}

// Extension returns the lowercased filename extension without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
