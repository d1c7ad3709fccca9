package discovery

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"reprise/pkg/models"

	"github.com/sirupsen/logrus"
)

var testInstruments = []string{"bagpipes", "seconds", "bass", "snare", "tenor"}

func newTestScanner() *Scanner {
	sc := NewScanner(testInstruments)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	sc.SetLogger(logger)
	return sc
}

func emptyState() *models.State {
	return &models.State{Items: map[string]*models.PracticeItem{}}
}

// touch creates an empty file, making any parent directories.
func touch(t *testing.T, paths ...string) {
	t.Helper()
	path := filepath.Join(paths...)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScanOneSetRecordPerSetFolder(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Section 1 - Competition", "Set 01 - Medley", ".keep")
	touch(t, root, "Section 1 - Competition", "Set 02 - MSR", ".keep")
	touch(t, root, "Section 2 - Parades", "Set 01 - Marches", ".keep")
	touch(t, root, "Section 1 - Competition", ".DS_Store") // file, ignored
	touch(t, root, "#Script Resources", "data", "config.json")
	if err := os.MkdirAll(filepath.Join(root, "Tune Resources"), 0755); err != nil {
		t.Fatal(err)
	}

	sets, err := newTestScanner().Scan(root, t.TempDir(), emptyState())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(sets) != 3 {
		t.Fatalf("Scan() returned %d sets, want 3", len(sets))
	}

	seen := map[string]bool{}
	for _, set := range sets {
		id := set.ID.String()
		if seen[id] {
			t.Errorf("duplicate set id %q", id)
		}
		seen[id] = true
		if len(set.Tunes) == 0 {
			t.Errorf("set %q has no tunes", id)
		}
	}

	// Sorted by (section, folder).
	wantOrder := []string{
		"Section 1 - Competition|Set 01 - Medley",
		"Section 1 - Competition|Set 02 - MSR",
		"Section 2 - Parades|Set 01 - Marches",
	}
	var gotOrder []string
	for _, set := range sets {
		gotOrder = append(gotOrder, set.ID.String())
	}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("Scan() order = %v, want %v", gotOrder, wantOrder)
	}
}

func TestScanSkipsOnlyHiddenSetFolders(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Section 1 - Competition", "Set 01 - Medley", ".keep")
	touch(t, root, "Section 1 - Competition", ".archive", "Old Set.pdf")
	// Names that are excluded at the library root are still valid set
	// folders inside a section.
	touch(t, root, "Section 1 - Competition", "#New Charts", ".keep")

	sets, err := newTestScanner().Scan(root, t.TempDir(), emptyState())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	var folders []string
	for _, set := range sets {
		folders = append(folders, set.FolderName)
	}
	want := []string{"#New Charts", "Set 01 - Medley"}
	if !reflect.DeepEqual(folders, want) {
		t.Errorf("Scan() set folders = %v, want %v", folders, want)
	}
}

func TestScanSyntheticSingleTune(t *testing.T) {
	root := t.TempDir()
	// No structure map, no "Set NN - Title" files: single-tune-set policy.
	touch(t, root, "Section 1 - Competition", "Competition 08 - Welcome", "notes.txt")

	sets, err := newTestScanner().Scan(root, t.TempDir(), emptyState())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("Scan() returned %d sets, want 1", len(sets))
	}

	tunes := sets[0].Tunes
	if len(tunes) != 1 {
		t.Fatalf("got %d tunes, want 1 synthetic tune", len(tunes))
	}
	if tunes[0].Name != "Competition 08 - Welcome" {
		t.Errorf("synthetic tune name = %q, want set folder name", tunes[0].Name)
	}
	wantID := "Section 1 - Competition|Competition 08 - Welcome|Competition 08 - Welcome"
	if tunes[0].ID.String() != wantID {
		t.Errorf("synthetic tune id = %q, want %q", tunes[0].ID.String(), wantID)
	}
}

func TestScanInfersTunesFromFiles(t *testing.T) {
	root := t.TempDir()
	setDir := filepath.Join(root, "Section 1 - Competition", "Set 01 - Medley")
	touch(t, setDir, "Set 01a - March.wav")
	touch(t, setDir, "Set 01a - March_bass.pdf") // instrument part, not a tune
	touch(t, setDir, "Set 01b - Strathspey.pdf")
	touch(t, setDir, "Set 01b - Strathspey.wav") // duplicate stem, deduplicated
	touch(t, setDir, "cover.jpg")

	sets, err := newTestScanner().Scan(root, t.TempDir(), emptyState())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	var names []string
	for _, tune := range sets[0].Tunes {
		names = append(names, tune.Name)
	}
	want := []string{"Set 01a - March", "Set 01b - Strathspey"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("inferred tunes = %v, want %v", names, want)
	}
}

func TestScanUsesStructureMap(t *testing.T) {
	root := t.TempDir()
	dataDir := t.TempDir()
	touch(t, root, "Section 1 - Competition", "Set 01 - Medley", "Set 01a - March.wav")

	structure := `[
		{
			"section_name": "Section 1 - Competition",
			"sets": [
				{
					"folder_name": "Set 01 - Medley",
					"tunes": [
						{"tune_name": "Set 01a - The Atholl Highlanders"},
						{"tune_name": "Set 01b - Wee Highland Laddie"}
					]
				}
			]
		}
	]`
	if err := os.WriteFile(filepath.Join(dataDir, "music_book_structure.json"), []byte(structure), 0644); err != nil {
		t.Fatal(err)
	}

	sets, err := newTestScanner().Scan(root, dataDir, emptyState())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	var names []string
	for _, tune := range sets[0].Tunes {
		names = append(names, tune.Name)
	}
	want := []string{"Set 01a - The Atholl Highlanders", "Set 01b - Wee Highland Laddie"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("structure map tunes = %v, want %v", names, want)
	}
}

func TestScanMalformedStructureMapDegradesToInference(t *testing.T) {
	root := t.TempDir()
	dataDir := t.TempDir()
	touch(t, root, "Section 1 - Competition", "Set 01 - Medley", "Set 01a - March.wav")

	if err := os.WriteFile(filepath.Join(dataDir, "music_book_structure.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	sets, err := newTestScanner().Scan(root, dataDir, emptyState())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(sets) != 1 || len(sets[0].Tunes) != 1 || sets[0].Tunes[0].Name != "Set 01a - March" {
		t.Errorf("expected inference fallback, got %+v", sets[0].Tunes)
	}
}

func TestScanPairsInstrumentPDFWithRecording(t *testing.T) {
	root := t.TempDir()
	setDir := filepath.Join(root, "Section 1 - Competition", "Set 01 - Medley")
	touch(t, setDir, "Parts", "Set 01a - March line 1_bagpipes.pdf")
	touch(t, setDir, "Parts", "Set 01a - March line 1_bass.pdf")
	touch(t, setDir, "Parts", "Set 01a - March line 1.wav")

	sets, err := newTestScanner().Scan(root, t.TempDir(), emptyState())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	parts := sets[0].Parts
	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(parts))
	}
	part := parts[0]
	if part.Key != "Set 01a - March line 1" {
		t.Errorf("part key = %q, want instrument-free stem", part.Key)
	}
	if part.Label != models.LabelLine {
		t.Errorf("part label = %q, want line", part.Label)
	}
	if part.WAVPath == "" || part.PDFPath == "" {
		t.Error("part should have both PDF and WAV paths")
	}
	// Collision resolved to the lexicographically smallest PDF.
	if filepath.Base(part.PDFPath) != "Set 01a - March line 1_bagpipes.pdf" {
		t.Errorf("part pdf = %q, want the _bagpipes variant", filepath.Base(part.PDFPath))
	}
	if part.ShortLabel != "line 1" {
		t.Errorf("part short label = %q, want %q", part.ShortLabel, "line 1")
	}
	wantFull := "Section 1 - Competition|Set 01 - Medley|Parts|Set 01a - March line 1"
	if part.FullID.String() != wantFull {
		t.Errorf("part full id = %q, want %q", part.FullID.String(), wantFull)
	}
}

func TestScanDropsUnpairedAndUnlabeledFiles(t *testing.T) {
	root := t.TempDir()
	setDir := filepath.Join(root, "Section 1 - Competition", "Set 01 - Medley")
	touch(t, setDir, "Parts", "Set 01a - March line 1_bass.pdf") // no WAV
	touch(t, setDir, "Parts", "Set 01a - March line 2.wav")      // no PDF
	touch(t, setDir, "Parts", "other.pdf")                       // no label keyword
	touch(t, setDir, "Parts", "other.wav")

	sets, err := newTestScanner().Scan(root, t.TempDir(), emptyState())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(sets[0].Parts) != 0 {
		t.Errorf("got %d parts, want 0 (unpaired and unlabeled files dropped)", len(sets[0].Parts))
	}
}

func TestScanOrdersPartsByStreakWithinLabel(t *testing.T) {
	root := t.TempDir()
	setDir := filepath.Join(root, "Section 1 - Competition", "Set 01 - Medley")
	touch(t, setDir, "Parts", "Set 01a - March line 1_bass.pdf")
	touch(t, setDir, "Parts", "Set 01a - March line 1.wav")
	touch(t, setDir, "Parts", "Set 01a - March line 2_bass.pdf")
	touch(t, setDir, "Parts", "Set 01a - March line 2.wav")
	touch(t, setDir, "Parts", "Set 01a - March phrase 1_bass.pdf")
	touch(t, setDir, "Parts", "Set 01a - March phrase 1.wav")

	state := emptyState()
	state.Items["Section 1 - Competition|Set 01 - Medley|Parts|Set 01a - March line 1"] = &models.PracticeItem{
		Type: models.TypePart, Streak: 5,
	}
	// line 2 has no item: sorts as streak 0, ahead of line 1.

	sets, err := newTestScanner().Scan(root, t.TempDir(), state)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	parts := sets[0].Parts
	if len(parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(parts))
	}
	// Phrase bucket comes before the line bucket.
	if parts[0].Label != models.LabelPhrase {
		t.Errorf("first part label = %q, want phrase", parts[0].Label)
	}
	if parts[1].Key != "Set 01a - March line 2" {
		t.Errorf("streak-0 line should sort first, got %q", parts[1].Key)
	}
	if parts[2].Key != "Set 01a - March line 1" {
		t.Errorf("streak-5 line should sort last, got %q", parts[2].Key)
	}
}

func TestScanCompetitionSetScenario(t *testing.T) {
	root := t.TempDir()
	setDir := filepath.Join(root, "Section 1 - Comp", "Competition 08 - X")
	touch(t, setDir, "Competition 08 - X.wav")
	touch(t, setDir, "Parts", "Competition 08 - X line 1.pdf")
	touch(t, setDir, "Parts", "Competition 08 - X line 1.wav")

	sets, err := newTestScanner().Scan(root, t.TempDir(), emptyState())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1", len(sets))
	}

	set := sets[0]
	if len(set.Tunes) != 1 || set.Tunes[0].Name != "Competition 08 - X" {
		t.Fatalf("want one synthetic tune named after the set folder, got %+v", set.Tunes)
	}
	if len(set.Parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(set.Parts))
	}
	if set.Parts[0].TuneName != "Competition 08 - X" {
		t.Errorf("part assigned to %q, want the synthetic tune", set.Parts[0].TuneName)
	}
	if set.Parts[0].TuneID != set.Tunes[0].ID {
		t.Errorf("part tune id = %q, want %q", set.Parts[0].TuneID.String(), set.Tunes[0].ID.String())
	}
}

func TestScanIsDeterministic(t *testing.T) {
	root := t.TempDir()
	dataDir := t.TempDir()
	setDir := filepath.Join(root, "Section 1 - Competition", "Set 01 - Medley")
	touch(t, setDir, "Set 01a - March.wav")
	touch(t, setDir, "Parts", "Set 01a - March line 1_bass.pdf")
	touch(t, setDir, "Parts", "Set 01a - March line 1.wav")

	sc := newTestScanner()
	state := emptyState()

	first, err := sc.Scan(root, dataDir, state)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	second, err := sc.Scan(root, dataDir, state)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two scans of an unchanged tree should be identical")
	}
}
