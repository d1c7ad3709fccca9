// Package status owns the persisted practice-status document: loading and
// saving practice_status.json with timestamped backups, merging freshly
// discovered items into it, and applying on-launch score decay.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reprise/pkg/models"

	"github.com/sirupsen/logrus"
)

const (
	// SchemaVersion is written into every saved status document.
	SchemaVersion = 1

	statusFileName = "practice_status.json"
	backupDirName  = "backups"

	defaultDecayRate  = 1.0
	defaultInstrument = "bass"
)

// Store reads and writes the practice status document in a data directory.
type Store struct {
	dataDir           string
	defaultInstrument string
	defaultDecayRate  float64
	logger            *logrus.Logger
}

// NewStore creates a store rooted at the given data directory.
func NewStore(dataDir string) *Store {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Store{
		dataDir:           dataDir,
		defaultInstrument: defaultInstrument,
		defaultDecayRate:  defaultDecayRate,
		logger:            logger,
	}
}

// SetLogger replaces the store's logger (used by main to share one
// configured logger across components).
func (s *Store) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetDefaults replaces the instrument and decay rate seeded into fresh or
// partial status documents, normally taken from the practice section of the
// config. Empty or non-positive values keep the built-in defaults.
func (s *Store) SetDefaults(instrument string, decayRate float64) {
	if instrument != "" {
		s.defaultInstrument = instrument
	}
	if decayRate > 0 {
		s.defaultDecayRate = decayRate
	}
}

// NewState returns a fresh, empty practice status document with the built-in
// defaults.
func NewState() *models.State {
	return &models.State{
		SchemaVersion:   SchemaVersion,
		DecayRate:       defaultDecayRate,
		FocusInstrument: defaultInstrument,
		FocusSetIDs:     []string{},
		ShowFocusOnly:   false,
		SetInstruments:  map[string]string{},
		Items:           map[string]*models.PracticeItem{},
	}
}

// newState is NewState with the store's configured defaults applied.
func (s *Store) newState() *models.State {
	state := NewState()
	state.DecayRate = s.defaultDecayRate
	state.FocusInstrument = s.defaultInstrument
	return state
}

// Load reads the status document from the data directory. A missing or
// unparseable file yields a fresh empty state rather than an error; partial
// documents are normalized so all fields are usable.
func (s *Store) Load() *models.State {
	path := filepath.Join(s.dataDir, statusFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("path", path).Warn("Could not read practice status, starting fresh")
		}
		return s.newState()
	}

	state := &models.State{}
	if err := json.Unmarshal(data, state); err != nil {
		s.logger.WithError(err).WithField("path", path).Error("Invalid practice status JSON, starting fresh")
		return s.newState()
	}

	s.normalize(state)
	return state
}

// Save writes the status document, creating a timestamped backup of the
// previous file first. The document's last_updated and schema_version are
// refreshed on the way out.
func (s *Store) Save(state *models.State) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	state.LastUpdated = &now
	state.SchemaVersion = SchemaVersion

	path := filepath.Join(s.dataDir, statusFileName)
	s.backup(path)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode practice status: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write practice status: %w", err)
	}

	return nil
}

// backup copies the current status file into backups/ with a timestamped
// name. Backup failures are logged, never fatal.
func (s *Store) backup(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		return // nothing to back up
	}

	backupDir := filepath.Join(s.dataDir, backupDirName)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		s.logger.WithError(err).Warn("Could not create backup directory")
		return
	}

	name := fmt.Sprintf("practice_status_%s.json", time.Now().UTC().Format("20060102_150405"))
	backupPath := filepath.Join(backupDir, name)
	if err := os.WriteFile(backupPath, content, 0644); err != nil {
		s.logger.WithError(err).WithField("backup_path", backupPath).Warn("Could not write backup")
	}
}

// normalize fills defaults into a loaded document so older or hand-edited
// files remain usable.
func (s *Store) normalize(state *models.State) {
	if state.SchemaVersion == 0 {
		state.SchemaVersion = SchemaVersion
	}
	if state.DecayRate == 0 {
		state.DecayRate = s.defaultDecayRate
	}
	if state.FocusInstrument == "" {
		state.FocusInstrument = s.defaultInstrument
	}
	if state.FocusSetIDs == nil {
		state.FocusSetIDs = []string{}
	}
	if state.SetInstruments == nil {
		state.SetInstruments = map[string]string{}
	}
	if state.Items == nil {
		state.Items = map[string]*models.PracticeItem{}
	}
}
