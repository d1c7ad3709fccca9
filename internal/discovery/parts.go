package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reprise/internal/naming"
	"reprise/pkg/models"

	"github.com/sirupsen/logrus"
)

// pairedFiles holds the chosen PDF and WAV for one pairing key.
type pairedFiles struct {
	pdf string
	wav string
}

// pairParts pairs the PDF and WAV files of a Parts folder into part records.
// The PDF side is instrument-specific, so its stem is normalized to the
// instrument-agnostic pairing key; the recording already carries the bare
// key. Only keys with both halves survive. Results are grouped phrase, then
// line, then part, and each group is ordered by current streak ascending so
// the weakest fragments come first.
func (sc *Scanner) pairParts(partsPath string, setID models.SetID, state *models.State) []models.PartRecord {
	entries, err := os.ReadDir(partsPath)
	if err != nil {
		sc.logger.WithError(err).WithField("path", partsPath).Warn("Could not read Parts folder, skipping")
		return nil
	}

	pairs := make(map[string]*pairedFiles)
	var keyOrder []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, ok := naming.DetectLabel(name); !ok {
			continue // not a part file
		}

		ext := strings.ToLower(filepath.Ext(name))
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		path := filepath.Join(partsPath, name)

		var key string
		switch ext {
		case ".pdf":
			key = naming.StripInstrumentSuffix(stem, sc.instruments)
		case ".wav":
			key = stem
		default:
			continue
		}

		pair, ok := pairs[key]
		if !ok {
			pair = &pairedFiles{}
			pairs[key] = pair
			keyOrder = append(keyOrder, key)
		}

		switch ext {
		case ".pdf":
			pair.pdf = sc.resolveCollision(key, pair.pdf, path)
		case ".wav":
			pair.wav = sc.resolveCollision(key, pair.wav, path)
		}
	}

	buckets := make(map[models.PartLabel][]models.PartRecord)
	for _, key := range keyOrder {
		pair := pairs[key]
		if pair.pdf == "" || pair.wav == "" {
			sc.logger.WithFields(logrus.Fields{
				"key":  key,
				"path": partsPath,
			}).Debug("Part is missing its PDF or WAV half, skipping")
			continue
		}

		label, ok := naming.DetectLabel(key)
		if !ok {
			continue
		}

		buckets[label] = append(buckets[label], models.PartRecord{
			Key:        key,
			ShortLabel: naming.ShortLabel(key),
			Label:      label,
			PDFPath:    pair.pdf,
			WAVPath:    pair.wav,
		})
	}

	var result []models.PartRecord
	for _, label := range models.PartLabels {
		group := buckets[label]
		// Stable sort keeps discovery order for equal streaks.
		sort.SliceStable(group, func(i, j int) bool {
			left := models.PartID{Set: setID, Key: group[i].Key}
			right := models.PartID{Set: setID, Key: group[j].Key}
			return state.Streak(left.String()) < state.Streak(right.String())
		})
		result = append(result, group...)
	}

	return result
}

// resolveCollision picks between two files claiming the same pairing key on
// the same side (e.g. two instrument-variant PDFs). The lexicographically
// smallest filename wins, so re-scans are reproducible.
func (sc *Scanner) resolveCollision(key, existing, candidate string) string {
	if existing == "" {
		return candidate
	}
	sc.logger.WithFields(logrus.Fields{
		"key":      key,
		"kept":     existing,
		"conflict": candidate,
	}).Debug("Multiple files collapse to one pairing key")
	if candidate < existing {
		return candidate
	}
	return existing
}
