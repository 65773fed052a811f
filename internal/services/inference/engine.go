package inference

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/config"
	"github.com/brightstart/screening-api/internal/models"
)

// Engine wraps a single ONNX session loaded once at process start. It is
// immutable after construction except for the bound input/output tensors,
// which the session reuses across runs; a mutex serializes Classify so
// concurrent requests cannot interleave on them.
type Engine struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	meta         *Metadata
	inputLen     int
	logger       *zap.Logger
}

// NewEngine loads the model artifact and its metadata. Any failure here is
// fatal to startup: the service has no function without a classifier.
func NewEngine(cfg config.ModelConfig, logger *zap.Logger) (*Engine, error) {
	if err := ensureModelFile(cfg, logger); err != nil {
		return nil, err
	}

	meta, err := loadMetadata(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.Path,
		[]string{meta.InputName}, []string{meta.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	logger.Info("model loaded",
		zap.String("path", cfg.Path),
		zap.Strings("classes", meta.Classes),
		zap.Int64s("input_shape", meta.InputShape))

	return &Engine{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		meta:         meta,
		inputLen:     shapeLen(meta.InputShape),
		logger:       logger,
	}, nil
}

// Classes returns the class names in model output order.
func (e *Engine) Classes() []string {
	return e.meta.Classes
}

// Classify runs one forward pass. Deterministic for a fixed artifact and
// identical tensor; no state survives between calls.
func (e *Engine) Classify(ctx context.Context, tensor *models.Tensor) (*models.PredictionResult, error) {
	if len(tensor.Data) != e.inputLen {
		return nil, fmt.Errorf("%w: tensor has %d values, model expects %d",
			models.ErrInference, len(tensor.Data), e.inputLen)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output, err := e.run(tensor.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInference, err)
	}

	result, err := Interpret(e.meta.Classes, output)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInference, err)
	}
	return result, nil
}

func (e *Engine) run(input []float32) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	copy(e.inputTensor.GetData(), input)
	if err := e.session.Run(); err != nil {
		return nil, err
	}

	// Copy out before releasing the lock: the backing array belongs to the
	// session and is overwritten by the next run.
	raw := e.outputTensor.GetData()
	output := make([]float32, len(raw))
	copy(output, raw)
	return output, nil
}

// Close releases the session and tensors. Call once at process shutdown.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inputTensor != nil {
		e.inputTensor.Destroy()
	}
	if e.outputTensor != nil {
		e.outputTensor.Destroy()
	}
	if e.session != nil {
		e.session.Destroy()
	}
	ort.DestroyEnvironment()
}
