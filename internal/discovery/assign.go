package discovery

import (
	"strings"

	"reprise/pkg/models"
)

// AssignTune maps a part's pairing key to the tune it belongs to. The tune
// whose name is the longest prefix of the key wins, which disambiguates
// names like "Set 01" vs "Set 01b". When no tune name is a prefix, or the
// set has no tunes, the set folder itself stands in as the tune.
func AssignTune(key string, tunes []models.TuneRef, setID models.SetID) (models.TuneID, string) {
	bestLen := -1
	var best models.TuneRef

	for _, tune := range tunes {
		if strings.HasPrefix(key, tune.Name) && len(tune.Name) > bestLen {
			bestLen = len(tune.Name)
			best = tune
		}
	}

	if bestLen >= 0 {
		return best.ID, best.Name
	}

	return models.TuneID{Set: setID, Name: setID.Folder}, setID.Folder
}
