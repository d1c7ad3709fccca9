package discovery

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reprise/internal/naming"
	"reprise/pkg/models"
)

// structureMapFileName is the well-known structure map file under the data
// directory, maintained by the library's companion tooling.
const structureMapFileName = "music_book_structure.json"

// structureSection mirrors one section entry of the structure map.
type structureSection struct {
	SectionName string `json:"section_name"`
	Sets        []struct {
		FolderName string `json:"folder_name"`
		Tunes      []struct {
			TuneName string `json:"tune_name"`
		} `json:"tunes"`
	} `json:"sets"`
}

// tuneSource resolves the tune list for one set folder. Sources are tried
// in order; the first non-empty answer wins.
type tuneSource interface {
	Tunes(setID models.SetID, setPath string) []models.TuneRef
}

// tuneSources builds the resolver chain: structure map when loadable, then
// filename inference, then the synthetic single-tune fallback. The chain
// always produces at least one tune for any set.
func (sc *Scanner) tuneSources(dataDir string) []tuneSource {
	sources := []tuneSource{}
	if m := sc.loadStructureMap(dataDir); m != nil {
		sources = append(sources, m)
	}
	return append(sources,
		&inferredTunes{instruments: sc.instruments},
		&syntheticTune{},
	)
}

// structureMap resolves tunes from the externally maintained structure file.
type structureMap struct {
	// keyed by "<section>\x00<folder>"; folder names never contain NUL
	tunes map[string][]string
}

// loadStructureMap parses the structure map if present. Any read or parse
// failure degrades to nil (filesystem inference), never an error.
func (sc *Scanner) loadStructureMap(dataDir string) *structureMap {
	path := filepath.Join(dataDir, structureMapFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var sections []structureSection
	if err := json.Unmarshal(data, &sections); err != nil {
		sc.logger.WithError(err).WithField("path", path).Warn("Could not parse structure map, inferring tunes from files")
		return nil
	}

	m := &structureMap{tunes: make(map[string][]string)}
	for _, section := range sections {
		for _, set := range section.Sets {
			var names []string
			for _, tune := range set.Tunes {
				if tune.TuneName != "" {
					names = append(names, tune.TuneName)
				}
			}
			m.tunes[section.SectionName+"\x00"+set.FolderName] = names
		}
	}
	return m
}

func (m *structureMap) Tunes(setID models.SetID, setPath string) []models.TuneRef {
	names := m.tunes[setID.Section+"\x00"+setID.Folder]
	refs := make([]models.TuneRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, models.TuneRef{
			Name: name,
			ID:   models.TuneID{Set: setID, Name: name},
		})
	}
	return refs
}

// inferredTunes derives tune names from the complete score/recording files
// sitting directly in the set folder: PDF or WAV stems with no instrument
// suffix that follow the "Set <NN><letter?> - <Title>" convention.
type inferredTunes struct {
	instruments []string
}

func (it *inferredTunes) Tunes(setID models.SetID, setPath string) []models.TuneRef {
	entries, err := os.ReadDir(setPath)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".pdf" && ext != ".wav" {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if naming.HasInstrumentSuffix(stem, it.instruments) {
			continue
		}
		if naming.IsTuneStem(stem) {
			seen[stem] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	refs := make([]models.TuneRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, models.TuneRef{
			Name: name,
			ID:   models.TuneID{Set: setID, Name: name},
		})
	}
	return refs
}

// syntheticTune is the last resort: a set with no resolvable tunes is
// treated as a single tune named after its own folder (e.g. competition
// sets with one score and no "Set NN" naming).
type syntheticTune struct{}

func (st *syntheticTune) Tunes(setID models.SetID, setPath string) []models.TuneRef {
	return []models.TuneRef{{
		Name: setID.Folder,
		ID:   models.TuneID{Set: setID, Name: setID.Folder},
	}}
}
