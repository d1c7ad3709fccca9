package assets

import (
	"os"
	"path/filepath"
	"testing"

	"reprise/pkg/models"

	"github.com/sirupsen/logrus"
)

func newTestResolver() *Resolver {
	r := NewResolver()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	r.SetLogger(logger)
	return r
}

func write(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestTuneAssetsPreferredPaths(t *testing.T) {
	setDir := t.TempDir()
	write(t, setDir, "Set 01a - March.wav")
	write(t, setDir, "Set 01a - March_bass.wav")
	write(t, setDir, "Set 01a - March_bass.pdf")
	write(t, setDir, "Set 01a - March.pdf")

	pdf, wav := newTestResolver().TuneAssets(setDir, "Set 01a - March", "bass")

	if filepath.Base(wav) != "Set 01a - March.wav" {
		t.Errorf("wav = %q, want the complete instrument-free recording", wav)
	}
	if filepath.Base(pdf) != "Set 01a - March_bass.pdf" {
		t.Errorf("pdf = %q, want the instrument-specific score", pdf)
	}
}

func TestTuneAssetsFallbacks(t *testing.T) {
	setDir := t.TempDir()
	// Only instrument WAV and plain PDF exist.
	write(t, setDir, "Set 01a - March_bass.wav")
	write(t, setDir, "Set 01a - March.pdf")

	pdf, wav := newTestResolver().TuneAssets(setDir, "Set 01a - March", "bass")

	if filepath.Base(wav) != "Set 01a - March_bass.wav" {
		t.Errorf("wav = %q, want the instrument fallback", wav)
	}
	if filepath.Base(pdf) != "Set 01a - March.pdf" {
		t.Errorf("pdf = %q, want the plain-score fallback", pdf)
	}
}

func TestTuneAssetsMissingFiles(t *testing.T) {
	setDir := t.TempDir()

	pdf, wav := newTestResolver().TuneAssets(setDir, "Set 01a - March", "bass")
	if pdf != "" || wav != "" {
		t.Errorf("assets = (%q, %q), want empty when nothing exists", pdf, wav)
	}
}

func TestSetAssetsUsesFirstTune(t *testing.T) {
	setDir := t.TempDir()
	write(t, setDir, "Set 01a - March.wav")
	write(t, setDir, "Set 01b - Strathspey.wav")

	setID := models.SetID{Section: "Section 1 - Competition", Folder: "Set 01 - Medley"}
	tunes := []models.TuneRef{
		{Name: "Set 01a - March", ID: models.TuneID{Set: setID, Name: "Set 01a - March"}},
		{Name: "Set 01b - Strathspey", ID: models.TuneID{Set: setID, Name: "Set 01b - Strathspey"}},
	}

	_, wav := newTestResolver().SetAssets(setDir, tunes, "bass")
	if filepath.Base(wav) != "Set 01a - March.wav" {
		t.Errorf("set wav = %q, want the first tune's recording", wav)
	}

	if pdf, wav := newTestResolver().SetAssets(setDir, nil, "bass"); pdf != "" || wav != "" {
		t.Error("set with no tunes has no assets")
	}
}

func TestPartAssets(t *testing.T) {
	part := models.PartRecord{PDFPath: "/p/a.pdf", WAVPath: "/p/a.wav"}
	pdf, wav := PartAssets(part)
	if pdf != "/p/a.pdf" || wav != "/p/a.wav" {
		t.Errorf("PartAssets() = (%q, %q)", pdf, wav)
	}
}
