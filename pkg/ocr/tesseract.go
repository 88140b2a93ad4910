// Package ocr extracts text from prescription images with the tesseract CLI.
package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/angelmondragon/rxcart-backend/pkg/config"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
)

// Extractor turns an image on disk into text. Implementations return "" on
// failure and never an error.
type Extractor interface {
	ExtractText(ctx context.Context, imagePath string) string
}

type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Tesseract shells out to the tesseract binary.
type Tesseract struct {
	binary   string
	language string
	timeout  time.Duration
	logg     *logger.Logger
	run      runner
}

func NewTesseract(cfg config.OCRConfig, logg *logger.Logger) *Tesseract {
	return &Tesseract{
		binary:   cfg.Binary,
		language: cfg.Language,
		timeout:  cfg.Timeout,
		logg:     logg,
		run:      execRunner,
	}
}

func (t *Tesseract) ExtractText(ctx context.Context, imagePath string) string {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	args := []string{imagePath, "stdout"}
	if t.language != "" {
		args = append(args, "-l", t.language)
	}
	out, err := t.run(ctx, t.binary, args...)
	if err != nil {
		if t.logg != nil {
			t.logg.Warn(t.logg.WithFields(ctx, map[string]any{
				"image": imagePath,
				"error": err.Error(),
			}), "ocr.extract_failed")
		}
		return ""
	}
	return strings.TrimSpace(string(out))
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, &runError{err: err, stderr: msg}
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

type runError struct {
	err    error
	stderr string
}

func (e *runError) Error() string { return e.err.Error() + ": " + e.stderr }
func (e *runError) Unwrap() error { return e.err }
