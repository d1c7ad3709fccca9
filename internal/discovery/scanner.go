// Package discovery interprets the score library's folder layout: it finds
// section and set folders, resolves each set's tunes, and pairs up the
// audio/score files of practiced parts. Discovery is a read-only pass; the
// same tree always produces the same records.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"reprise/internal/naming"
	"reprise/pkg/models"

	"github.com/sirupsen/logrus"
)

// partsFolderName is the subfolder of a set that holds practiced fragments.
const partsFolderName = "Parts"

// Scanner walks the library tree and assembles set records.
type Scanner struct {
	instruments []string
	logger      *logrus.Logger
}

// NewScanner creates a scanner that recognizes the given instrument suffixes.
func NewScanner(instruments []string) *Scanner {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Scanner{
		instruments: instruments,
		logger:      logger,
	}
}

// SetLogger replaces the scanner's logger.
func (sc *Scanner) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		sc.logger = logger
	}
}

// Scan discovers every set in the library, resolving tunes through the
// structure map in dataDir when one is present and falling back to filename
// inference otherwise. The practice state supplies part streaks for
// ordering; Scan never mutates it. The result is sorted by section name,
// then set folder name.
//
// Individual unreadable folders are skipped with a warning; only an
// inaccessible library root is an error.
func (sc *Scanner) Scan(libraryRoot, dataDir string, state *models.State) ([]models.SetRecord, error) {
	sources := sc.tuneSources(dataDir)

	rootEntries, err := os.ReadDir(libraryRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read library root: %w", err)
	}

	var result []models.SetRecord

	for _, sectionEntry := range rootEntries {
		if !sectionEntry.IsDir() || naming.ExcludedDir(sectionEntry.Name()) {
			continue
		}
		if !naming.IsSectionFolder(sectionEntry.Name()) {
			continue
		}

		sectionName := sectionEntry.Name()
		sectionPath := filepath.Join(libraryRoot, sectionName)

		setEntries, err := os.ReadDir(sectionPath)
		if err != nil {
			sc.logger.WithError(err).WithField("section", sectionName).Warn("Could not read section folder, skipping")
			continue
		}

		for _, setEntry := range setEntries {
			if !setEntry.IsDir() || naming.HiddenName(setEntry.Name()) {
				continue
			}

			record := sc.scanSet(sectionName, sectionPath, setEntry.Name(), sources, state)
			result = append(result, record)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SectionName != result[j].SectionName {
			return result[i].SectionName < result[j].SectionName
		}
		return result[i].FolderName < result[j].FolderName
	})

	return result, nil
}

// scanSet assembles the record for one set folder: tunes from the resolver
// chain, parts from the Parts subfolder when it exists.
func (sc *Scanner) scanSet(sectionName, sectionPath, folderName string, sources []tuneSource, state *models.State) models.SetRecord {
	setPath := filepath.Join(sectionPath, folderName)
	setID := models.SetID{Section: sectionName, Folder: folderName}

	var tunes []models.TuneRef
	for _, source := range sources {
		tunes = source.Tunes(setID, setPath)
		if len(tunes) > 0 {
			break
		}
	}

	var parts []models.PartRecord
	partsPath := filepath.Join(setPath, partsFolderName)
	if info, err := os.Stat(partsPath); err == nil && info.IsDir() {
		parts = sc.pairParts(partsPath, setID, state)
		for i := range parts {
			parts[i].TuneID, parts[i].TuneName = AssignTune(parts[i].Key, tunes, setID)
			parts[i].FullID = models.PartID{Set: setID, Key: parts[i].Key}
		}
	}

	return models.SetRecord{
		SectionName: sectionName,
		FolderName:  folderName,
		Path:        setPath,
		ID:          setID,
		Tunes:       tunes,
		Parts:       parts,
	}
}
