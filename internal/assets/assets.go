// Package assets resolves the concrete PDF and WAV files to open for a
// practice session and launches them in the OS default applications.
package assets

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"reprise/pkg/models"

	"github.com/sirupsen/logrus"
)

// Resolver maps tunes, sets, and parts to their score and recording files.
type Resolver struct {
	logger *logrus.Logger
}

// NewResolver creates an asset resolver.
func NewResolver() *Resolver {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Resolver{logger: logger}
}

// SetLogger replaces the resolver's logger.
func (r *Resolver) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// TuneAssets returns the (pdf, wav) paths for a tune. The recording prefers
// the complete instrument-free WAV, falling back to the instrument-specific
// one; the score prefers the instrument-specific PDF, falling back to the
// plain one. Either path may be empty when no candidate exists.
func (r *Resolver) TuneAssets(setPath, tuneName, instrument string) (string, string) {
	wavPath := ""
	if p := filepath.Join(setPath, tuneName+".wav"); fileExists(p) {
		wavPath = p
	} else if p := filepath.Join(setPath, tuneName+"_"+instrument+".wav"); fileExists(p) {
		r.logger.WithField("tune", tuneName).Warn("No complete WAV, using instrument WAV")
		wavPath = p
	}

	pdfPath := ""
	if p := filepath.Join(setPath, tuneName+"_"+instrument+".pdf"); fileExists(p) {
		pdfPath = p
	} else if p := filepath.Join(setPath, tuneName+".pdf"); fileExists(p) {
		pdfPath = p
	}

	return pdfPath, wavPath
}

// SetAssets returns the assets for practicing a whole set, which opens at
// its first tune (the player advances from there).
func (r *Resolver) SetAssets(setPath string, tunes []models.TuneRef, instrument string) (string, string) {
	if len(tunes) == 0 {
		return "", ""
	}
	return r.TuneAssets(setPath, tunes[0].Name, instrument)
}

// PartAssets returns the assets for a discovered part, which already carries
// its paired paths.
func PartAssets(part models.PartRecord) (string, string) {
	return part.PDFPath, part.WAVPath
}

// OpenFile opens a file with the OS default application.
func (r *Resolver) OpenFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if !fileExists(abs) {
		return fmt.Errorf("file not found: %s", abs)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", abs)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", abs)
	default:
		cmd = exec.Command("xdg-open", abs)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", abs, err)
	}
	return nil
}

// OpenAssets opens both the score and the recording when present.
func (r *Resolver) OpenAssets(pdfPath, wavPath string) {
	for _, path := range []string{pdfPath, wavPath} {
		if path == "" {
			continue
		}
		if err := r.OpenFile(path); err != nil {
			r.logger.WithError(err).WithField("path", path).Error("Could not open asset")
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
