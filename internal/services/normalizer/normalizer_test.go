package normalizer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightstart/screening-api/internal/config"
	"github.com/brightstart/screening-api/internal/models"
)

func testNormalizer(maxSize int64) *Normalizer {
	return NewNormalizer(
		config.UploadConfig{
			MaxFileSize:    maxSize,
			AllowedFormats: []string{"jpg", "jpeg", "png", "gif", "bmp", "webp", "tiff", "tif"},
		},
		config.ModelConfig{InputHeight: 224, InputWidth: 224, InputChans: 3},
	)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestNormalizeRejectsUnsupportedExtension(t *testing.T) {
	n := testNormalizer(10 << 20)
	data := encodePNG(t, solidImage(10, 10, color.NRGBA{R: 255, A: 255}))

	for _, filename := range []string{"photo.txt", "photo.pdf", "photo", "photo.heic"} {
		_, err := n.Normalize(data, filename)
		assert.ErrorIs(t, err, models.ErrUnsupportedFormat, filename)
	}
}

func TestNormalizeRejectsOversizedPayloadBeforeDecode(t *testing.T) {
	n := testNormalizer(1024)

	// Deliberately not a decodable image: the size check must fire first.
	data := make([]byte, 2048)
	_, err := n.Normalize(data, "face.jpg")
	assert.ErrorIs(t, err, models.ErrPayloadTooLarge)
	assert.NotErrorIs(t, err, models.ErrCorruptImage)
}

func TestNormalizeRejectsCorruptImage(t *testing.T) {
	n := testNormalizer(10 << 20)

	// A text file renamed to .jpg passes the extension check but fails decode.
	_, err := n.Normalize([]byte("this is definitely not a JPEG"), "face.jpg")
	assert.ErrorIs(t, err, models.ErrCorruptImage)
}

func TestNormalizeYieldsFixedDimensions(t *testing.T) {
	n := testNormalizer(10 << 20)

	tests := []struct {
		name string
		data []byte
	}{
		{"small png", encodePNG(t, solidImage(10, 10, color.NRGBA{R: 100, G: 100, B: 100, A: 255}))},
		{"square png", encodePNG(t, solidImage(500, 500, color.NRGBA{R: 200, G: 50, B: 50, A: 255}))},
		{"landscape jpeg", encodeJPEG(t, solidImage(640, 480, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))},
		{"portrait jpeg", encodeJPEG(t, solidImage(480, 640, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))},
		{"already target size", encodePNG(t, solidImage(224, 224, color.NRGBA{A: 255}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := "png"
			if bytes.HasPrefix(tt.data, []byte{0xff, 0xd8}) {
				ext = "jpg"
			}
			tensor, err := n.Normalize(tt.data, "face."+ext)
			require.NoError(t, err)
			assert.Equal(t, 224, tensor.Height)
			assert.Equal(t, 224, tensor.Width)
			assert.Equal(t, 3, tensor.Channels)
			assert.Len(t, tensor.Data, 224*224*3)
		})
	}
}

func TestNormalizeScalesValuesToUnitRange(t *testing.T) {
	n := testNormalizer(10 << 20)
	data := encodeJPEG(t, solidImage(300, 200, color.NRGBA{R: 255, G: 128, B: 0, A: 255}))

	tensor, err := n.Normalize(data, "face.jpg")
	require.NoError(t, err)

	for i, v := range tensor.Data {
		require.GreaterOrEqual(t, v, float32(0), "index %d", i)
		require.LessOrEqual(t, v, float32(1), "index %d", i)
	}
}

func TestNormalizePreservesSolidColor(t *testing.T) {
	n := testNormalizer(10 << 20)
	data := encodePNG(t, solidImage(100, 100, color.NRGBA{R: 255, G: 0, B: 0, A: 255}))

	tensor, err := n.Normalize(data, "red.png")
	require.NoError(t, err)

	// Center pixel of a solid red image stays red after resampling.
	base := (112*224 + 112) * 3
	assert.InDelta(t, 1.0, tensor.Data[base], 0.02)
	assert.InDelta(t, 0.0, tensor.Data[base+1], 0.02)
	assert.InDelta(t, 0.0, tensor.Data[base+2], 0.02)
}

func TestNormalizeFlattensTransparencyOntoWhite(t *testing.T) {
	n := testNormalizer(10 << 20)

	// Fully transparent image: every pixel must come out white.
	data := encodePNG(t, solidImage(64, 64, color.NRGBA{}))
	tensor, err := n.Normalize(data, "transparent.png")
	require.NoError(t, err)

	base := (112*224 + 112) * 3
	assert.InDelta(t, 1.0, tensor.Data[base], 0.02)
	assert.InDelta(t, 1.0, tensor.Data[base+1], 0.02)
	assert.InDelta(t, 1.0, tensor.Data[base+2], 0.02)
}

func TestNormalizeAcceptsUppercaseExtension(t *testing.T) {
	n := testNormalizer(10 << 20)
	data := encodePNG(t, solidImage(32, 32, color.NRGBA{R: 1, G: 2, B: 3, A: 255}))

	_, err := n.Normalize(data, "FACE.PNG")
	assert.NoError(t, err)
}

func TestExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"face.jpg", "jpg"},
		{"face.JPEG", "jpeg"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{".hidden", "hidden"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Extension(tt.filename), tt.filename)
	}
}
