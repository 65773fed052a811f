package inference

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/config"
)

const downloadTimeout = 5 * time.Minute

// ensureModelFile fetches the model artifact when it is absent and a download
// URL is configured. A missing artifact with no URL is a startup error.
func ensureModelFile(cfg config.ModelConfig, logger *zap.Logger) error {
	if _, err := os.Stat(cfg.Path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat model file: %w", err)
	}

	if cfg.DownloadURL == "" {
		return fmt.Errorf("model file %s not found and no download URL configured", cfg.Path)
	}

	logger.Info("model file missing, downloading",
		zap.String("path", cfg.Path),
		zap.String("url", cfg.DownloadURL))

	if err := downloadModel(cfg.DownloadURL, cfg.Path); err != nil {
		return fmt.Errorf("download model: %w", err)
	}

	logger.Info("model downloaded", zap.String("path", cfg.Path))
	return nil
}

func downloadModel(url, destination string) error {
	client := &http.Client{Timeout: downloadTimeout}

	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return err
	}

	// Write to a temp file first so a partial download never looks like a
	// valid artifact.
	tmp, err := os.CreateTemp(filepath.Dir(destination), ".model-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), destination)
}
