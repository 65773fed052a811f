package inference

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata describes the model artifact: the tensor shapes it was exported
// with and the class names its output maps onto. It is produced by the
// training pipeline alongside the .onnx file.
type Metadata struct {
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
}

func loadMetadata(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse model metadata: %w", err)
	}

	if len(meta.Classes) == 0 {
		return nil, fmt.Errorf("model metadata lists no classes")
	}
	if len(meta.InputShape) == 0 || len(meta.OutputShape) == 0 {
		return nil, fmt.Errorf("model metadata is missing tensor shapes")
	}
	for _, shape := range [][]int64{meta.InputShape, meta.OutputShape} {
		for _, dim := range shape {
			if dim <= 0 {
				return nil, fmt.Errorf("model metadata has non-positive shape dimension %d; dynamic dimensions must be fixed at export time", dim)
			}
		}
	}
	if meta.InputName == "" {
		meta.InputName = "input"
	}
	if meta.OutputName == "" {
		meta.OutputName = "output"
	}

	return &meta, nil
}

func shapeLen(shape []int64) int {
	n := 1
	for _, dim := range shape {
		n *= int(dim)
	}
	return n
}
