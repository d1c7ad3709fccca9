// Package organizer files downloaded part scores and recordings from a
// downloads directory into the owning set's Parts folder, matching filename
// prefixes against the library's folder layout.
package organizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reprise/internal/naming"
	"reprise/pkg/models"

	"github.com/sirupsen/logrus"
)

// target is the destination a filename prefix maps to.
type target struct {
	sectionName string
	folderName  string
}

// Stats accounts for one organizing run.
type Stats struct {
	Organized int
	Errors    int
}

// Organizer moves part files from a downloads directory into
// <section>/<set>/Parts/ under the library root.
type Organizer struct {
	downloadsDir string
	libraryRoot  string
	instruments  []string
	folderMap    map[string]target
	logger       *logrus.Logger
}

// NewOrganizer creates an organizer and indexes the library's set folders.
func NewOrganizer(downloadsDir, libraryRoot string, instruments []string) *Organizer {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	o := &Organizer{
		downloadsDir: downloadsDir,
		libraryRoot:  libraryRoot,
		instruments:  instruments,
		logger:       logger,
	}
	o.folderMap = o.buildFolderMap()
	return o
}

// SetLogger replaces the organizer's logger.
func (o *Organizer) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		o.logger = logger
	}
}

// buildFolderMap indexes every set folder by its full name and by its short
// form before " - " (e.g. "Competition 08"), so downloaded filenames can be
// matched flexibly.
func (o *Organizer) buildFolderMap() map[string]target {
	mapping := make(map[string]target)

	sections, err := os.ReadDir(o.libraryRoot)
	if err != nil {
		o.logger.WithError(err).WithField("library_root", o.libraryRoot).Warn("Could not read library root")
		return mapping
	}

	for _, sectionEntry := range sections {
		if !sectionEntry.IsDir() || naming.ExcludedDir(sectionEntry.Name()) {
			continue
		}
		if !naming.IsSectionFolder(sectionEntry.Name()) {
			continue
		}
		sectionName := sectionEntry.Name()

		sets, err := os.ReadDir(filepath.Join(o.libraryRoot, sectionName))
		if err != nil {
			o.logger.WithError(err).WithField("section", sectionName).Warn("Could not read section folder")
			continue
		}
		for _, setEntry := range sets {
			if !setEntry.IsDir() || naming.HiddenName(setEntry.Name()) {
				continue
			}
			folderName := setEntry.Name()
			mapping[folderName] = target{sectionName: sectionName, folderName: folderName}

			short := strings.TrimSpace(strings.SplitN(folderName, " - ", 2)[0])
			if short != "" {
				if _, exists := mapping[short]; !exists {
					mapping[short] = target{sectionName: sectionName, folderName: folderName}
				}
			}
		}
	}

	return mapping
}

// OrganizeDownloads moves every part-like PDF and WAV in the downloads
// directory into its set's Parts folder. With dryRun, moves are only logged.
// Passing a non-empty onlyFiles restricts the run to those paths.
func (o *Organizer) OrganizeDownloads(dryRun bool, onlyFiles []string) Stats {
	stats := Stats{}

	var candidates []string
	if len(onlyFiles) > 0 {
		candidates = onlyFiles
	} else {
		entries, err := os.ReadDir(o.downloadsDir)
		if err != nil {
			o.logger.WithError(err).WithField("downloads_dir", o.downloadsDir).Warn("Could not read downloads directory")
			return stats
		}
		for _, entry := range entries {
			candidates = append(candidates, filepath.Join(o.downloadsDir, entry.Name()))
		}
	}

	for _, path := range candidates {
		name := filepath.Base(path)
		if strings.HasPrefix(name, ".") {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".pdf" && ext != ".wav" {
			continue
		}
		if ExtractPrefix(name, o.instruments) == "" {
			continue
		}

		moved, err := o.organizeFile(path, dryRun)
		if err != nil {
			o.logger.WithError(err).WithField("file", name).Error("Error organizing file")
			stats.Errors++
			continue
		}
		if moved {
			stats.Organized++
		}
	}

	return stats
}

// organizeFile moves a single file into the matching set's Parts folder.
// A file with no matching folder is skipped with a warning, not an error.
func (o *Organizer) organizeFile(path string, dryRun bool) (bool, error) {
	name := filepath.Base(path)
	prefix := ExtractPrefix(name, o.instruments)

	dest, ok := o.findTarget(prefix)
	if !ok {
		o.logger.WithFields(logrus.Fields{
			"prefix": prefix,
			"file":   name,
		}).Warn("No matching set folder for file")
		return false, nil
	}

	partsDir := filepath.Join(o.libraryRoot, dest.sectionName, dest.folderName, "Parts")
	targetPath := filepath.Join(partsDir, name)

	if dryRun {
		o.logger.WithFields(logrus.Fields{
			"file":   name,
			"folder": dest.folderName,
		}).Info("Would move file into Parts folder")
		return false, nil
	}

	if err := os.MkdirAll(partsDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create Parts folder: %w", err)
	}
	if err := os.Remove(targetPath); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to replace existing file: %w", err)
	}
	if err := os.Rename(path, targetPath); err != nil {
		return false, fmt.Errorf("failed to move file: %w", err)
	}

	o.logger.WithFields(logrus.Fields{
		"file":   name,
		"folder": dest.folderName,
	}).Info("Moved file into Parts folder")
	return true, nil
}

// findTarget resolves a prefix to a set folder: exact match first, then a
// prefix relationship in either direction.
func (o *Organizer) findTarget(prefix string) (target, bool) {
	if dest, ok := o.folderMap[prefix]; ok {
		return dest, true
	}
	for key, dest := range o.folderMap {
		if strings.HasPrefix(prefix, key) || strings.HasPrefix(key, prefix) {
			return dest, true
		}
	}
	return target{}, false
}

// ExtractPrefix derives the folder-matching prefix from a downloaded part
// filename: everything before the first " <label> " occurrence, with any
// trailing instrument suffix removed.
//
//	"Competition 08 - Welcome part 1 bass.pdf" -> "Competition 08 - Welcome"
func ExtractPrefix(filename string, instruments []string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	lower := strings.ToLower(stem)
	for _, label := range models.PartLabels {
		if idx := strings.Index(lower, " "+string(label)+" "); idx >= 0 {
			stem = strings.TrimSpace(stem[:idx])
			break
		}
	}

	return strings.TrimSpace(naming.StripInstrumentSuffix(stem, instruments))
}
