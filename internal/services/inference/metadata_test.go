package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMetadata(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "classifier.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadMetadata(t *testing.T) {
	path := writeMetadata(t, `{
		"input_shape": [1, 224, 224, 3],
		"output_shape": [1, 1],
		"classes": ["Down Syndrome", "Normal"]
	}`)

	meta, err := loadMetadata(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Down Syndrome", "Normal"}, meta.Classes)
	assert.Equal(t, []int64{1, 224, 224, 3}, meta.InputShape)
	// Tensor names default when the export tool did not record them.
	assert.Equal(t, "input", meta.InputName)
	assert.Equal(t, "output", meta.OutputName)
}

func TestLoadMetadataExplicitNames(t *testing.T) {
	path := writeMetadata(t, `{
		"input_name": "images",
		"output_name": "logits",
		"input_shape": [1, 3, 224, 224],
		"output_shape": [1, 2],
		"classes": ["a", "b"]
	}`)

	meta, err := loadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "images", meta.InputName)
	assert.Equal(t, "logits", meta.OutputName)
}

func TestLoadMetadataRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"no classes", `{"input_shape": [1], "output_shape": [1]}`},
		{"no shapes", `{"classes": ["a", "b"]}`},
		{"dynamic batch dimension", `{"input_shape": [-1, 224, 224, 3], "output_shape": [1, 1], "classes": ["a", "b"]}`},
		{"zero output dimension", `{"input_shape": [1, 224, 224, 3], "output_shape": [0], "classes": ["a", "b"]}`},
		{"invalid json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMetadata(writeMetadata(t, tt.contents))
			assert.Error(t, err)
		})
	}
}

func TestLoadMetadataMissingFile(t *testing.T) {
	_, err := loadMetadata(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestShapeLen(t *testing.T) {
	assert.Equal(t, 1*224*224*3, shapeLen([]int64{1, 224, 224, 3}))
	assert.Equal(t, 2, shapeLen([]int64{1, 2}))
	assert.Equal(t, 1, shapeLen(nil))
}
