// Package naming holds the pure filename and folder-name conventions the
// library layout is built on: part label keywords, instrument suffixes,
// section and tune naming patterns.
package naming

import (
	"regexp"
	"strings"

	"reprise/pkg/models"
)

// Folder names that never contain practiceable material.
var reservedFolders = map[string]bool{
	"Tune Resources":    true,
	"#Script Resources": true,
}

var (
	sectionPattern  = regexp.MustCompile(`(?i)^Section\s+\d+\s+-`)
	tuneStemPattern = regexp.MustCompile(`(?i)^Set\s+\d+[a-z]?\s+-\s+.+`)
)

// ExcludedDir reports whether a top-level directory name should be skipped
// entirely during discovery: hidden folders, script/resource folders, and
// any name starting with "#".
func ExcludedDir(name string) bool {
	return strings.HasPrefix(name, "#") || HiddenName(name) || reservedFolders[name]
}

// HiddenName reports whether a file or folder name is hidden. Inside a
// section, hidden names are the only ones discovery skips; any other
// subfolder is a set.
func HiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}

// IsSectionFolder reports whether a folder name matches the top-level
// "Section <N> - <Name>" convention.
func IsSectionFolder(name string) bool {
	return sectionPattern.MatchString(name)
}

// IsTuneStem reports whether a file stem matches the "Set <NN><letter?> -
// <Title>" convention used for complete tune scores and recordings.
func IsTuneStem(stem string) bool {
	return tuneStemPattern.MatchString(stem)
}

// DetectLabel returns which part label keyword appears in the name, checking
// phrase, then line, then part as case-insensitive substrings. The second
// return is false when no keyword is present; such files are not parts.
func DetectLabel(name string) (models.PartLabel, bool) {
	lower := strings.ToLower(name)
	for _, label := range models.PartLabels {
		if strings.Contains(lower, string(label)) {
			return label, true
		}
	}
	return "", false
}

// StripInstrumentSuffix removes a trailing "_<instrument>" or " <instrument>"
// from a file stem, producing the instrument-agnostic pairing key shared by
// an instrument-specific PDF and its recording. Stems without a recognized
// suffix pass through unchanged.
func StripInstrumentSuffix(stem string, instruments []string) string {
	lower := strings.ToLower(stem)
	for _, inst := range instruments {
		for _, sep := range []string{"_", " "} {
			suffix := sep + strings.ToLower(inst)
			if strings.HasSuffix(lower, suffix) {
				return strings.TrimSpace(stem[:len(stem)-len(suffix)])
			}
		}
	}
	return stem
}

// HasInstrumentSuffix reports whether a stem ends in "_<instrument>" for any
// known instrument. Complete tune files carry no such suffix.
func HasInstrumentSuffix(stem string, instruments []string) bool {
	lower := strings.ToLower(stem)
	for _, inst := range instruments {
		if strings.HasSuffix(lower, "_"+strings.ToLower(inst)) {
			return true
		}
	}
	return false
}

// ShortLabel extracts the human-readable tail of a part id, starting at the
// first " <keyword>" occurrence (phrase, line, part, checked in that order).
// Ids without a keyword are returned unchanged. The result preserves the
// original casing, and re-applying ShortLabel to its own output is a no-op
// since the returned substring begins exactly at the keyword.
func ShortLabel(fullID string) string {
	lower := strings.ToLower(fullID)
	for _, label := range models.PartLabels {
		if idx := strings.Index(lower, " "+string(label)); idx >= 0 {
			return fullID[idx+1:]
		}
	}
	return fullID
}
